// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provider implements the clients for external gene annotation
// sources. Every client satisfies Provider and reports failures through
// ProviderResult.Status instead of returning errors.
package provider

import (
	"context"
	"net/http"
	"time"

	"github.com/pdiddy/gene-annotator/internal/httputil"
	"github.com/pdiddy/gene-annotator/pkg/types"
)

// Provider fetches annotation fields for gene symbols from one source.
// Implementations are safe for concurrent use and share no mutable state.
type Provider interface {
	// Name returns the provider identifier used in provenance.
	Name() string

	// Fields lists the annotation fields the provider can supply.
	Fields() []string

	// BatchSize returns how many identifiers one Fetch call accepts:
	// 1 for per-identifier sources, n > 1 for batched sources, and 0 for
	// sources that need the whole request at once.
	BatchSize() int

	// Fetch returns exactly one result per identifier, in input order.
	// It never returns data attributed to a symbol it was not asked about.
	Fetch(ctx context.Context, ids []types.Identifier) []types.ProviderResult
}

// Options configures an HTTP-backed provider client.
type Options struct {
	Client    *http.Client
	BaseURL   string
	UserAgent string
	Retry     httputil.Policy
	BatchSize int
	APIKey    string
}

func (o Options) baseURL(def string) string {
	if o.BaseURL != "" {
		return o.BaseURL
	}
	return def
}

func (o Options) batchSize(def int) int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return def
}

func (o Options) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return http.DefaultClient
}

// found builds an ok result, or not_found when every field is empty.
// Empty fields are omitted.
func found(provider, symbol string, fields map[string][]string) types.ProviderResult {
	clean := make(map[string][]string, len(fields))
	for k, v := range fields {
		if len(v) > 0 {
			clean[k] = v
		}
	}
	if len(clean) == 0 {
		return notFound(provider, symbol)
	}
	return types.ProviderResult{
		Identifier: symbol,
		Provider:   provider,
		Fields:     clean,
		FetchedAt:  time.Now(),
		Status:     types.Status{Code: types.StatusOK},
	}
}

func notFound(provider, symbol string) types.ProviderResult {
	return types.ProviderResult{
		Identifier: symbol,
		Provider:   provider,
		FetchedAt:  time.Now(),
		Status:     types.Status{Code: types.StatusNotFound},
	}
}

// Failed builds an error result for symbol from err.
func Failed(provider, symbol string, err error) types.ProviderResult {
	if CategoryOf(err) == CategoryNotFound {
		return notFound(provider, symbol)
	}
	return types.ProviderResult{
		Identifier: symbol,
		Provider:   provider,
		FetchedAt:  time.Now(),
		Status: types.Status{
			Code:     types.StatusError,
			Category: string(CategoryOf(err)),
			Reason:   err.Error(),
		},
	}
}

// FailAll builds one Failed result per identifier.
func FailAll(provider string, ids []types.Identifier, err error) []types.ProviderResult {
	out := make([]types.ProviderResult, len(ids))
	for i, id := range ids {
		out[i] = Failed(provider, id.Symbol, err)
	}
	return out
}

// collect maps symbol → result and emits one result per id in order,
// using not_found for ids with no entry.
func collect(provider string, ids []types.Identifier, bySymbol map[string]types.ProviderResult) []types.ProviderResult {
	out := make([]types.ProviderResult, len(ids))
	for i, id := range ids {
		if r, ok := bySymbol[id.Symbol]; ok {
			out[i] = r
			continue
		}
		out[i] = notFound(provider, id.Symbol)
	}
	return out
}
