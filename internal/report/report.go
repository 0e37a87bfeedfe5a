// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders result sets as terminal tables, JSON, YAML and CSV.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/gene-annotator/internal/enrichment"
	"github.com/pdiddy/gene-annotator/internal/input"
	"github.com/pdiddy/gene-annotator/internal/normalize"
	"github.com/pdiddy/gene-annotator/pkg/types"
)

// Format names an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatCSV   Format = "csv"
)

// NoneFound fills empty cells in tables and CSV exports.
const NoneFound = "None found"

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML, FormatCSV:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown format %q (want table, json, yaml or csv)", s)
	}
}

// Write renders rs in format f. sheet, when non-nil, supplies the original
// input rows for CSV exports.
func Write(w io.Writer, rs types.ResultSet, f Format, sheet *input.Sheet) error {
	switch f {
	case FormatJSON:
		return JSON(w, rs)
	case FormatYAML:
		return YAML(w, rs)
	case FormatCSV:
		return CSV(w, rs, sheet)
	default:
		if err := Table(w, rs); err != nil {
			return err
		}
		return Ranking(w, TopTargets(rs, 10))
	}
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML writes v as a YAML document.
func YAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Table writes one line per record with truncated columns.
func Table(w io.Writer, rs types.ResultSet) error {
	if len(rs.Records) == 0 {
		_, err := fmt.Fprintln(w, "No genes to annotate.")
		return err
	}

	fmt.Fprintf(w, "%-10s  %-40s  %-30s  %-7s  %-12s  %s\n",
		"Gene", "Description", "Drug Targets", "Targets", "Druggability", "Sources")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for _, r := range rs.Records {
		fmt.Fprintf(w, "%-10s  %-40s  %-30s  %-7d  %-12s  %s\n",
			truncate(r.Identifier, 10),
			truncate(orNone(r.Description), 40),
			truncate(orNone(strings.Join(r.DrugTargets, ", ")), 30),
			len(r.DrugTargets),
			truncate(orNone(strings.Join(r.Druggability, ", ")), 12),
			sources(r),
		)
	}

	_, err := fmt.Fprintf(w, "\n%d genes, %d with drug targets\n", len(rs.Records), withTargets(rs))
	return err
}

// Ranked is a gene and its drug target count.
type Ranked struct {
	Identifier string `json:"identifier" yaml:"identifier"`
	Targets    int    `json:"targets" yaml:"targets"`
}

// TopTargets returns up to n genes with at least one drug target, most
// targets first. Ties keep input order.
func TopTargets(rs types.ResultSet, n int) []Ranked {
	var out []Ranked
	for _, r := range rs.Records {
		if r.HasDrugTargets() {
			out = append(out, Ranked{Identifier: r.Identifier, Targets: len(r.DrugTargets)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Targets > out[j].Targets })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Ranking writes the top genes by drug target count.
func Ranking(w io.Writer, ranked []Ranked) error {
	if len(ranked) == 0 {
		return nil
	}
	fmt.Fprintf(w, "\nTop %d genes by number of drug targets\n", len(ranked))
	for i, r := range ranked {
		bar := strings.Repeat("#", min(r.Targets, 40))
		fmt.Fprintf(w, "%3d. %-10s %3d %s\n", i+1, truncate(r.Identifier, 10), r.Targets, bar)
	}
	return nil
}

// Detail writes every field of one record.
func Detail(w io.Writer, r types.AnnotationRecord) error {
	line := func(label, field, value string) {
		src := r.Provenance[field]
		if src == "" {
			src = types.SourceNone
		}
		fmt.Fprintf(w, "%-18s %s  [%s]\n", label+":", orNone(value), src)
	}

	fmt.Fprintf(w, "Gene: %s\n\n", r.Identifier)
	line("Description", types.FieldDescription, r.Description)
	line("Pathways", types.FieldPathways, strings.Join(r.Pathways, "; "))
	line("Hallmark pathways", types.FieldHallmarkPathways, strings.Join(r.HallmarkPathways, "; "))
	line("Drug targets", types.FieldDrugTargets, strings.Join(r.DrugTargets, ", "))
	line("Druggability", types.FieldDruggability, strings.Join(r.Druggability, ", "))
	line("Mutations", types.FieldMutationInfo, r.MutationInfo)

	fmt.Fprintln(w, "\nLinks:")
	for _, l := range r.ExternalLinks {
		fmt.Fprintf(w, "  %-10s %s\n", l.Label, l.URL)
	}

	if len(r.Diagnostics) > 0 {
		fmt.Fprintln(w, "\nProvider errors:")
		names := make([]string, 0, len(r.Diagnostics))
		for name := range r.Diagnostics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %-10s %s\n", name, r.Diagnostics[name])
		}
	}
	return nil
}

// Enrichment writes an enrichment table one term per line.
func Enrichment(w io.Writer, t enrichment.Table) error {
	if len(t.Terms) == 0 {
		_, err := fmt.Fprintln(w, "No enriched terms.")
		return err
	}
	fmt.Fprintf(w, "Library: %s\n\n", t.Library)
	fmt.Fprintf(w, "%-4s  %-40s  %-10s  %-10s  %s\n", "Rank", "Term", "P-value", "Adj. P", "Genes")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, term := range t.Terms {
		fmt.Fprintf(w, "%-4d  %-40s  %-10.3g  %-10.3g  %s\n",
			term.Rank, truncate(term.Name, 40), term.PValue, term.AdjustedPValue, strings.Join(term.Genes, ","))
	}
	return nil
}

// csvColumns are the annotation columns appended to every export row.
var csvColumns = []string{
	"Description", "Pathways", "Hallmark Pathways", "Drug Targets", "Num Targets",
	"Druggability", "Mutation Info", "GeneCards", "NCBI",
}

// CSV writes the export sheet. With an input sheet, every original row is
// kept and the annotation columns are appended, matched on the gene
// column; otherwise one row per record is written.
func CSV(w io.Writer, rs types.ResultSet, sheet *input.Sheet) error {
	cw := csv.NewWriter(w)

	if sheet == nil || sheet.Header == nil {
		cw.Write(append([]string{"Gene"}, csvColumns...))
		for _, r := range rs.Records {
			cw.Write(append([]string{r.Identifier}, csvCells(r)...))
		}
		cw.Flush()
		return cw.Error()
	}

	bySymbol := make(map[string]types.AnnotationRecord, len(rs.Records))
	for _, r := range rs.Records {
		bySymbol[r.Symbol] = r
	}

	header := append(append([]string{}, sheet.Header...), csvColumns...)
	cw.Write(header)
	for _, row := range sheet.Rows {
		out := append([]string{}, row...)
		var gene string
		if sheet.Column < len(row) {
			gene = normalize.Key(row[sheet.Column])
		}
		if r, ok := bySymbol[gene]; ok {
			out = append(out, csvCells(r)...)
		} else {
			out = append(out, make([]string, len(csvColumns))...)
		}
		cw.Write(out)
	}
	cw.Flush()
	return cw.Error()
}

func csvCells(r types.AnnotationRecord) []string {
	var genecards, ncbi string
	for _, l := range r.ExternalLinks {
		switch l.Label {
		case "GeneCards":
			genecards = l.URL
		case "NCBI":
			ncbi = l.URL
		}
	}
	return []string{
		orNone(r.Description),
		orNone(strings.Join(r.Pathways, "; ")),
		orNone(strings.Join(r.HallmarkPathways, "; ")),
		orNone(strings.Join(r.DrugTargets, ", ")),
		fmt.Sprint(len(r.DrugTargets)),
		orNone(strings.Join(r.Druggability, ", ")),
		orNone(r.MutationInfo),
		genecards,
		ncbi,
	}
}

func sources(r types.AnnotationRecord) string {
	seen := map[string]bool{}
	var out []string
	for _, f := range types.AllFields {
		for _, src := range strings.Split(r.Provenance[f], ",") {
			if src == "" || src == types.SourceNone || src == types.SourceLinks || seen[src] {
				continue
			}
			seen[src] = true
			out = append(out, src)
		}
	}
	if len(out) == 0 {
		return types.SourceNone
	}
	return strings.Join(out, ",")
}

func withTargets(rs types.ResultSet) int {
	n := 0
	for _, r := range rs.Records {
		if r.HasDrugTargets() {
			n++
		}
	}
	return n
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return NoneFound
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
