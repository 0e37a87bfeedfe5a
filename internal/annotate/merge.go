// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/pdiddy/gene-annotator/internal/fallback"
	"github.com/pdiddy/gene-annotator/pkg/types"
)

// Merger combines provider results and fallback data into one record.
// It is pure: the same inputs always yield the same record.
type Merger struct {
	// Fallback supplies values for fields no live provider filled.
	Fallback *fallback.Table

	// Owners maps a field to the providers able to supply it. An empty
	// field whose owner failed is marked "unavailable" instead of "none".
	Owners map[string][]string
}

// Merge builds the record for id. results must be in priority order;
// the first ok result with a non-empty value wins each field, except
// drug_targets which is the union of every source.
func (m Merger) Merge(id types.Identifier, results []types.ProviderResult) types.AnnotationRecord {
	rec := types.AnnotationRecord{
		Identifier: id.Display,
		Symbol:     id.Symbol,
		Provenance: make(map[string]string, len(types.AllFields)),
	}

	failed := make(map[string]bool)
	for _, r := range results {
		if r.Status.Code != types.StatusError {
			continue
		}
		failed[r.Provider] = true
		if rec.Diagnostics == nil {
			rec.Diagnostics = make(map[string]string)
		}
		reason := r.Status.Reason
		if reason == "" {
			reason = r.Status.Category
		}
		rec.Diagnostics[r.Provider] = reason
	}

	var vs []string

	vs, rec.Provenance[types.FieldDescription] = m.pick(id.Symbol, types.FieldDescription, results, failed)
	rec.Description = first(vs)

	rec.Pathways, rec.Provenance[types.FieldPathways] = m.pick(id.Symbol, types.FieldPathways, results, failed)
	rec.HallmarkPathways, rec.Provenance[types.FieldHallmarkPathways] = m.pick(id.Symbol, types.FieldHallmarkPathways, results, failed)
	rec.Druggability, rec.Provenance[types.FieldDruggability] = m.pick(id.Symbol, types.FieldDruggability, results, failed)

	vs, rec.Provenance[types.FieldMutationInfo] = m.pick(id.Symbol, types.FieldMutationInfo, results, failed)
	rec.MutationInfo = first(vs)

	rec.DrugTargets, rec.Provenance[types.FieldDrugTargets] = m.unionDrugTargets(id.Symbol, results, failed)

	rec.ExternalLinks = Links(id.Symbol)
	rec.Provenance[types.FieldExternalLinks] = types.SourceLinks

	return rec
}

// pick applies the precedence rule for a single-source field.
func (m Merger) pick(symbol, field string, results []types.ProviderResult, failed map[string]bool) ([]string, string) {
	for _, r := range results {
		if !r.Status.OK() {
			continue
		}
		if vs := nonEmpty(r.Fields[field]); len(vs) > 0 {
			return vs, r.Provider
		}
	}
	if vs := nonEmpty(m.Fallback.Lookup(symbol, field)); len(vs) > 0 {
		return vs, types.SourceFallback
	}
	return []string{}, m.emptySource(field, failed)
}

// unionDrugTargets merges drug names from every ok provider and the
// fallback table. Duplicates are detected case-insensitively and the
// first spelling seen (in priority order) is kept. Output is sorted by the
// case-folded name. Provenance lists contributing sources in priority order.
func (m Merger) unionDrugTargets(symbol string, results []types.ProviderResult, failed map[string]bool) ([]string, string) {
	fold := cases.Fold()
	byKey := make(map[string]string)
	var contributors []string

	add := func(source string, values []string) {
		contributed := false
		for _, v := range values {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			contributed = true
			key := fold.String(v)
			if _, ok := byKey[key]; !ok {
				byKey[key] = v
			}
		}
		if contributed {
			contributors = append(contributors, source)
		}
	}

	for _, r := range results {
		if r.Status.OK() {
			add(r.Provider, r.Fields[types.FieldDrugTargets])
		}
	}
	add(types.SourceFallback, m.Fallback.Lookup(symbol, types.FieldDrugTargets))

	if len(byKey) == 0 {
		return []string{}, m.emptySource(types.FieldDrugTargets, failed)
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = byKey[k]
	}
	return out, strings.Join(contributors, ",")
}

func (m Merger) emptySource(field string, failed map[string]bool) string {
	for _, owner := range m.Owners[field] {
		if failed[owner] {
			return types.SourceUnavailable
		}
	}
	return types.SourceNone
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func first(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}
