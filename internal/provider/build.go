// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/pdiddy/gene-annotator/internal/enrichment"
	"github.com/pdiddy/gene-annotator/internal/httputil"
	"github.com/pdiddy/gene-annotator/pkg/types"
)

// FromConfig constructs every enabled provider in cfg, all sharing client.
// It fails on provider names it does not know.
func FromConfig(cfg types.Config, client *http.Client) ([]Provider, error) {
	names := make([]string, 0, len(cfg.Providers))
	for name := range cfg.Providers {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []Provider
	for _, name := range names {
		pc := cfg.Providers[name]
		if !pc.Enabled {
			continue
		}
		p, err := newProvider(name, pc, cfg, client)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func newProvider(name string, pc types.ProviderConfig, cfg types.Config, client *http.Client) (Provider, error) {
	opts := Options{
		Client:    client,
		BaseURL:   pc.BaseURL,
		UserAgent: cfg.HTTP.UserAgent,
		Retry:     httputil.PolicyFrom(cfg.Retry),
		BatchSize: pc.BatchSize,
		APIKey:    pc.APIKey,
	}

	switch name {
	case types.ProviderMyGene:
		return NewMyGene(opts), nil
	case types.ProviderDGIdb:
		return NewDGIdb(opts), nil
	case types.ProviderPharos:
		return NewPharos(opts), nil
	case types.ProviderCOSMIC:
		return NewCOSMIC(opts), nil
	case types.ProviderEnrichr:
		return &Enrichment{
			Runner:   NewEnrichr(cfg, pc, client),
			TopTerms: cfg.Enrichment.TopTerms,
		}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}

// NewEnrichr builds the Enrichr runner described by cfg.
func NewEnrichr(cfg types.Config, pc types.ProviderConfig, client *http.Client) *enrichment.Enrichr {
	return &enrichment.Enrichr{
		Client:    client,
		BaseURL:   pc.BaseURL,
		Library:   cfg.Enrichment.GeneSetLibrary,
		UserAgent: cfg.HTTP.UserAgent,
		Retry:     httputil.PolicyFrom(cfg.Retry),
	}
}
