// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"

	"github.com/pdiddy/gene-annotator/internal/enrichment"
	"github.com/pdiddy/gene-annotator/pkg/types"
)

// Enrichment is the pathway-enrichment provider. It runs one enrichment
// analysis over the whole request and attributes each of the top terms to
// the genes in its overlap.
type Enrichment struct {
	Runner   enrichment.Runner
	TopTerms int
}

// Name returns the provider identifier.
func (e *Enrichment) Name() string { return types.ProviderEnrichr }

// Fields returns the fields enrichment supplies.
func (e *Enrichment) Fields() []string { return []string{types.FieldHallmarkPathways} }

// BatchSize is 0: enrichment is only meaningful over the full gene list.
func (e *Enrichment) BatchSize() int { return 0 }

// Fetch runs the enrichment and maps terms back to symbols.
func (e *Enrichment) Fetch(ctx context.Context, ids []types.Identifier) []types.ProviderResult {
	if len(ids) == 0 {
		return nil
	}
	symbols := make([]string, len(ids))
	for i, id := range ids {
		symbols[i] = id.Symbol
	}

	table, err := e.Runner.RunEnrichment(ctx, symbols)
	if err != nil {
		return FailAll(e.Name(), ids, err)
	}
	top := table.Top(e.TopTerms)

	out := make([]types.ProviderResult, len(ids))
	for i, id := range ids {
		out[i] = found(e.Name(), id.Symbol, map[string][]string{
			types.FieldHallmarkPathways: top.TermsForGene(id.Symbol),
		})
	}
	return out
}
