// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/gene-annotator/internal/normalize"
	"github.com/pdiddy/gene-annotator/pkg/types"
)

// DefaultCOSMICURL is the COSMIC mutation API root. The public service
// requires registration; when it cannot be reached the provider reports
// provider_unavailable like any other outage.
const DefaultCOSMICURL = "https://cancer.sanger.ac.uk/cosmic/api/v1"

// COSMIC is the mutation provider. It reports how many somatic mutations
// are recorded for a gene.
type COSMIC struct {
	opts Options
}

// NewCOSMIC returns a COSMIC client. A non-empty Options.APIKey is sent as
// a bearer token.
func NewCOSMIC(opts Options) *COSMIC { return &COSMIC{opts: opts} }

// Name returns the provider identifier.
func (c *COSMIC) Name() string { return types.ProviderCOSMIC }

// Fields returns the fields COSMIC supplies.
func (c *COSMIC) Fields() []string { return []string{types.FieldMutationInfo} }

// BatchSize is 1: the endpoint is addressed per gene.
func (c *COSMIC) BatchSize() int { return 1 }

// Fetch queries each symbol's mutation summary.
func (c *COSMIC) Fetch(ctx context.Context, ids []types.Identifier) []types.ProviderResult {
	out := make([]types.ProviderResult, len(ids))
	for i, id := range ids {
		out[i] = c.fetchOne(ctx, id.Symbol)
	}
	return out
}

func (c *COSMIC) fetchOne(ctx context.Context, symbol string) types.ProviderResult {
	endpoint := strings.TrimRight(c.opts.baseURL(DefaultCOSMICURL), "/") +
		"/genes/" + url.PathEscape(symbol) + "/mutations"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Failed(c.Name(), symbol, newError(CategoryUnavailable, c.Name(), "creating request", err))
	}
	if c.opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	}

	var resp struct {
		Gene          string `json:"gene"`
		MutationCount *int   `json:"mutation_count"`
	}
	if err := doJSON(ctx, c.Name(), c.opts, req, &resp); err != nil {
		return Failed(c.Name(), symbol, err)
	}
	if resp.MutationCount == nil || (resp.Gene != "" && normalize.Key(resp.Gene) != normalize.Key(symbol)) {
		return notFound(c.Name(), symbol)
	}
	return found(c.Name(), symbol, map[string][]string{
		types.FieldMutationInfo: {fmt.Sprintf("Mutations reported: %d", *resp.MutationCount)},
	})
}
