// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/pdiddy/gene-annotator/internal/normalize"
	"github.com/pdiddy/gene-annotator/pkg/types"
)

// DefaultMyGeneURL is the MyGene.info v3 API root.
const DefaultMyGeneURL = "https://mygene.info/v3"

const mygeneFields = "symbol,name,summary,pathway"

// MyGene is the gene-info provider backed by MyGene.info. It supplies the
// gene description and curated pathway memberships.
type MyGene struct {
	opts Options
}

// NewMyGene returns a MyGene client. Batches default to 100 symbols.
func NewMyGene(opts Options) *MyGene { return &MyGene{opts: opts} }

// Name returns the provider identifier.
func (m *MyGene) Name() string { return types.ProviderMyGene }

// Fields returns the fields MyGene supplies.
func (m *MyGene) Fields() []string {
	return []string{types.FieldDescription, types.FieldPathways}
}

// BatchSize returns the configured batch size.
func (m *MyGene) BatchSize() int { return m.opts.batchSize(100) }

// Fetch queries MyGene.info. A single symbol uses the GET query endpoint
// and its hits list; several symbols use the POST batch endpoint, which
// returns one object per query term.
func (m *MyGene) Fetch(ctx context.Context, ids []types.Identifier) []types.ProviderResult {
	if len(ids) == 0 {
		return nil
	}

	var hits []mygeneHit
	var err error
	if len(ids) == 1 {
		hits, err = m.querySingle(ctx, ids[0].Symbol)
	} else {
		hits, err = m.queryBatch(ctx, ids)
	}
	if err != nil {
		return FailAll(m.Name(), ids, err)
	}

	bySymbol := make(map[string]types.ProviderResult, len(ids))
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id.Symbol] = true
	}
	for _, h := range hits {
		if h.NotFound {
			continue
		}
		sym := normalize.Key(h.Symbol)
		if !wanted[sym] {
			continue
		}
		if _, dup := bySymbol[sym]; dup {
			continue
		}
		desc := h.Summary
		if desc == "" {
			desc = h.FullName
		}
		fields := map[string][]string{types.FieldPathways: pathwayNames(h.Pathway)}
		if desc != "" {
			fields[types.FieldDescription] = []string{desc}
		}
		bySymbol[sym] = found(m.Name(), sym, fields)
	}
	return collect(m.Name(), ids, bySymbol)
}

func (m *MyGene) querySingle(ctx context.Context, symbol string) ([]mygeneHit, error) {
	params := url.Values{
		"q":       {"symbol:" + symbol},
		"species": {"human"},
		"fields":  {mygeneFields},
		"size":    {"10"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.opts.baseURL(DefaultMyGeneURL)+"/query?"+params.Encode(), nil)
	if err != nil {
		return nil, newError(CategoryUnavailable, m.Name(), "creating request", err)
	}

	var resp struct {
		Total int         `json:"total"`
		Hits  []mygeneHit `json:"hits"`
	}
	if err := doJSON(ctx, m.Name(), m.opts, req, &resp); err != nil {
		return nil, err
	}
	return resp.Hits, nil
}

func (m *MyGene) queryBatch(ctx context.Context, ids []types.Identifier) ([]mygeneHit, error) {
	symbols := make([]string, len(ids))
	for i, id := range ids {
		symbols[i] = id.Symbol
	}
	form := url.Values{
		"q":       {strings.Join(symbols, ",")},
		"scopes":  {"symbol"},
		"species": {"human"},
		"fields":  {mygeneFields},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.opts.baseURL(DefaultMyGeneURL)+"/query", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, newError(CategoryUnavailable, m.Name(), "creating request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var hits []mygeneHit
	if err := doJSON(ctx, m.Name(), m.opts, req, &hits); err != nil {
		return nil, err
	}
	return hits, nil
}

// pathwayNames flattens MyGene's pathway object. Each source key (kegg,
// reactome, wikipathways, ...) maps to either one {id, name} object or a
// list of them. Names are deduplicated and sorted; entries that match
// neither shape are skipped.
func pathwayNames(raw map[string]json.RawMessage) []string {
	seen := make(map[string]bool)
	var names []string
	add := func(p mygenePathway) {
		name := p.Name
		if name == "" {
			name = p.ID
		}
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	for _, msg := range raw {
		var many []mygenePathway
		if err := json.Unmarshal(msg, &many); err == nil {
			for _, p := range many {
				add(p)
			}
			continue
		}
		var one mygenePathway
		if err := json.Unmarshal(msg, &one); err == nil {
			add(one)
		}
	}
	sort.Strings(names)
	return names
}

// MyGene.info JSON structures.
type mygeneHit struct {
	Query    string                     `json:"query"`
	NotFound bool                       `json:"notfound"`
	ID       string                     `json:"_id"`
	Symbol   string                     `json:"symbol"`
	FullName string                     `json:"name"`
	Summary  string                     `json:"summary"`
	Pathway  map[string]json.RawMessage `json:"pathway"`
}

type mygenePathway struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
