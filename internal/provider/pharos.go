// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"strings"

	"github.com/pdiddy/gene-annotator/internal/normalize"
	"github.com/pdiddy/gene-annotator/pkg/types"
)

// DefaultPharosURL is the Pharos GraphQL endpoint.
const DefaultPharosURL = "https://pharos-api.ncats.io/graphql"

const pharosQuery = `query TargetLevel($sym: String) {
  target(q: {sym: $sym}) {
    sym
    name
    tdl
  }
}`

// Pharos is the druggability provider. It reports the IDG target
// development level (Tclin, Tchem, Tbio, Tdark) for a gene.
type Pharos struct {
	opts Options
}

// NewPharos returns a Pharos client.
func NewPharos(opts Options) *Pharos { return &Pharos{opts: opts} }

// Name returns the provider identifier.
func (p *Pharos) Name() string { return types.ProviderPharos }

// Fields returns the fields Pharos supplies.
func (p *Pharos) Fields() []string { return []string{types.FieldDruggability} }

// BatchSize is 1: the target query resolves one symbol at a time.
func (p *Pharos) BatchSize() int { return 1 }

// Fetch resolves each symbol with its own request.
func (p *Pharos) Fetch(ctx context.Context, ids []types.Identifier) []types.ProviderResult {
	out := make([]types.ProviderResult, len(ids))
	for i, id := range ids {
		out[i] = p.fetchOne(ctx, id.Symbol)
	}
	return out
}

func (p *Pharos) fetchOne(ctx context.Context, symbol string) types.ProviderResult {
	var data struct {
		Target *struct {
			Sym  string `json:"sym"`
			Name string `json:"name"`
			TDL  string `json:"tdl"`
		} `json:"target"`
	}
	err := postGraphQL(ctx, p.Name(), p.opts, p.opts.baseURL(DefaultPharosURL), pharosQuery,
		map[string]any{"sym": symbol}, &data)
	if err != nil {
		return Failed(p.Name(), symbol, err)
	}
	if data.Target == nil || normalize.Key(data.Target.Sym) != normalize.Key(symbol) {
		return notFound(p.Name(), symbol)
	}

	var levels []string
	if tdl := strings.TrimSpace(data.Target.TDL); tdl != "" {
		levels = []string{tdl}
	}
	return found(p.Name(), symbol, map[string][]string{types.FieldDruggability: levels})
}
