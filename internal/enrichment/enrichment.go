// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrichment wraps gene set enrichment analysis as an opaque remote
// capability. The statistics are computed by the service; this package only
// submits gene lists and returns the term table it reports.
package enrichment

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/pdiddy/gene-annotator/internal/normalize"
)

// Runner runs an enrichment analysis over a gene list.
type Runner interface {
	RunEnrichment(ctx context.Context, symbols []string) (Table, error)
}

// ErrMalformed marks a response that could not be decoded into a Table.
var ErrMalformed = errors.New("malformed enrichment response")

// StatusError reports a non-success HTTP status from the service.
type StatusError struct {
	Code int
	Op   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("enrichr %s returned HTTP %d", e.Op, e.Code)
}

// Term is one row of an enrichment table.
type Term struct {
	Rank           int      `json:"rank" yaml:"rank"`
	Name           string   `json:"name" yaml:"name"`
	PValue         float64  `json:"p_value" yaml:"p_value"`
	AdjustedPValue float64  `json:"adjusted_p_value" yaml:"adjusted_p_value"`
	ZScore         float64  `json:"z_score" yaml:"z_score"`
	CombinedScore  float64  `json:"combined_score" yaml:"combined_score"`
	Genes          []string `json:"genes" yaml:"genes"`
}

// Table is the result of one enrichment run, best-ranked term first.
type Table struct {
	Library string `json:"library" yaml:"library"`
	Terms   []Term `json:"terms" yaml:"terms"`
}

// Top returns a copy of t holding at most n terms. n <= 0 keeps all.
func (t Table) Top(n int) Table {
	terms := make([]Term, len(t.Terms))
	copy(terms, t.Terms)
	sort.SliceStable(terms, func(i, j int) bool { return terms[i].Rank < terms[j].Rank })
	if n > 0 && len(terms) > n {
		terms = terms[:n]
	}
	return Table{Library: t.Library, Terms: terms}
}

// TermsForGene returns the names of terms whose overlapping genes include
// symbol, compared by normalized symbol, in table order.
func (t Table) TermsForGene(symbol string) []string {
	key := normalize.Key(symbol)
	var out []string
	for _, term := range t.Terms {
		for _, g := range term.Genes {
			if normalize.Key(g) == key {
				out = append(out, term.Name)
				break
			}
		}
	}
	return out
}
