// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"strings"

	"github.com/pdiddy/gene-annotator/internal/normalize"
	"github.com/pdiddy/gene-annotator/pkg/types"
)

// DefaultDGIdbURL is the DGIdb GraphQL endpoint.
const DefaultDGIdbURL = "https://dgidb.org/api/graphql"

const dgidbQuery = `query GeneInteractions($names: [String!]) {
  genes(names: $names) {
    nodes {
      name
      interactions {
        drug { name }
      }
    }
  }
}`

// DGIdb is the drug-interaction provider backed by the Drug Gene
// Interaction Database.
type DGIdb struct {
	opts Options
}

// NewDGIdb returns a DGIdb client. Batches default to 50 symbols.
func NewDGIdb(opts Options) *DGIdb { return &DGIdb{opts: opts} }

// Name returns the provider identifier.
func (d *DGIdb) Name() string { return types.ProviderDGIdb }

// Fields returns the fields DGIdb supplies.
func (d *DGIdb) Fields() []string { return []string{types.FieldDrugTargets} }

// BatchSize returns the configured batch size.
func (d *DGIdb) BatchSize() int { return d.opts.batchSize(50) }

// Fetch queries interacting drugs for every symbol in one GraphQL request.
func (d *DGIdb) Fetch(ctx context.Context, ids []types.Identifier) []types.ProviderResult {
	if len(ids) == 0 {
		return nil
	}
	names := make([]string, len(ids))
	wanted := make(map[string]bool, len(ids))
	for i, id := range ids {
		names[i] = id.Symbol
		wanted[id.Symbol] = true
	}

	var data struct {
		Genes struct {
			Nodes []dgidbGene `json:"nodes"`
		} `json:"genes"`
	}
	err := postGraphQL(ctx, d.Name(), d.opts, d.opts.baseURL(DefaultDGIdbURL), dgidbQuery,
		map[string]any{"names": names}, &data)
	if err != nil {
		return FailAll(d.Name(), ids, err)
	}

	drugs := make(map[string][]string)
	for _, g := range data.Genes.Nodes {
		sym := normalize.Key(g.Name)
		if !wanted[sym] {
			continue
		}
		for _, in := range g.Interactions {
			if name := strings.TrimSpace(in.Drug.Name); name != "" {
				drugs[sym] = append(drugs[sym], name)
			}
		}
	}

	bySymbol := make(map[string]types.ProviderResult, len(drugs))
	for sym, ds := range drugs {
		bySymbol[sym] = found(d.Name(), sym, map[string][]string{types.FieldDrugTargets: ds})
	}
	return collect(d.Name(), ids, bySymbol)
}

// DGIdb JSON structures.
type dgidbGene struct {
	Name         string             `json:"name"`
	Interactions []dgidbInteraction `json:"interactions"`
}

type dgidbInteraction struct {
	Drug struct {
		Name string `json:"name"`
	} `json:"drug"`
}
