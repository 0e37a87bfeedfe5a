// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/gene-annotator/internal/fallback"
	"github.com/pdiddy/gene-annotator/pkg/types"
)

func ok(provider, symbol string, fields map[string][]string) types.ProviderResult {
	return types.ProviderResult{
		Identifier: symbol,
		Provider:   provider,
		Fields:     fields,
		Status:     types.Status{Code: types.StatusOK},
	}
}

func failed(provider, symbol, reason string) types.ProviderResult {
	return types.ProviderResult{
		Identifier: symbol,
		Provider:   provider,
		Status:     types.Status{Code: types.StatusError, Category: "provider_unavailable", Reason: reason},
	}
}

func testTable(t *testing.T, data string) *fallback.Table {
	t.Helper()
	tbl, err := fallback.Parse([]byte(data))
	require.NoError(t, err)
	return tbl
}

func TestMerge_ProviderBeatsFallback(t *testing.T) {
	m := Merger{Fallback: testTable(t, "EGFR:\n  druggability: [Tchem]\n")}
	id := types.Identifier{Symbol: "EGFR", Display: "egfr"}

	rec := m.Merge(id, []types.ProviderResult{
		ok("pharos", "EGFR", map[string][]string{types.FieldDruggability: {"Tclin"}}),
	})

	assert.Equal(t, "egfr", rec.Identifier)
	assert.Equal(t, "EGFR", rec.Symbol)
	assert.Equal(t, []string{"Tclin"}, rec.Druggability)
	assert.Equal(t, "pharos", rec.Provenance[types.FieldDruggability])
}

func TestMerge_FallbackFillsGap(t *testing.T) {
	m := Merger{Fallback: testTable(t, "EGFR:\n  druggability: [Tchem]\n")}
	rec := m.Merge(types.Identifier{Symbol: "EGFR", Display: "EGFR"}, []types.ProviderResult{
		{Identifier: "EGFR", Provider: "pharos", Status: types.Status{Code: types.StatusNotFound}},
	})

	assert.Equal(t, []string{"Tchem"}, rec.Druggability)
	assert.Equal(t, types.SourceFallback, rec.Provenance[types.FieldDruggability])
}

func TestMerge_PriorityOrderWins(t *testing.T) {
	m := Merger{}
	rec := m.Merge(types.Identifier{Symbol: "TP53", Display: "TP53"}, []types.ProviderResult{
		ok("a", "TP53", map[string][]string{types.FieldDescription: {"  "}}),
		ok("b", "TP53", map[string][]string{types.FieldDescription: {"tumor protein p53"}}),
		ok("c", "TP53", map[string][]string{types.FieldDescription: {"other"}}),
	})

	assert.Equal(t, "tumor protein p53", rec.Description)
	assert.Equal(t, "b", rec.Provenance[types.FieldDescription])
}

func TestMerge_DrugTargetUnion(t *testing.T) {
	m := Merger{Fallback: testTable(t, "G1:\n  drug_targets: [z]\n")}
	rec := m.Merge(types.Identifier{Symbol: "G1", Display: "G1"}, []types.ProviderResult{
		ok("a", "G1", map[string][]string{types.FieldDrugTargets: {"X", "Y"}}),
		ok("b", "G1", map[string][]string{types.FieldDrugTargets: {"y", "Z"}}),
	})

	assert.Equal(t, []string{"X", "Y", "Z"}, rec.DrugTargets)
	assert.Equal(t, "a,b,fallback", rec.Provenance[types.FieldDrugTargets])
}

func TestMerge_EmptyFieldsAreNone(t *testing.T) {
	m := Merger{}
	rec := m.Merge(types.Identifier{Symbol: "NOTAGENE123", Display: "NOTAGENE123"}, nil)

	for _, f := range types.AllFields {
		if f == types.FieldExternalLinks {
			assert.Equal(t, types.SourceLinks, rec.Provenance[f])
			continue
		}
		assert.Equal(t, types.SourceNone, rec.Provenance[f], f)
	}
	assert.NotNil(t, rec.Pathways)
	assert.NotNil(t, rec.DrugTargets)
	assert.Empty(t, rec.DrugTargets)
	assert.Len(t, rec.ExternalLinks, 2)
	assert.Nil(t, rec.Diagnostics)
}

func TestMerge_FailedOwnerIsUnavailable(t *testing.T) {
	m := Merger{Owners: map[string][]string{
		types.FieldDrugTargets:  {"dgidb"},
		types.FieldDescription:  {"mygene"},
		types.FieldDruggability: {"pharos"},
	}}
	rec := m.Merge(types.Identifier{Symbol: "KRAS", Display: "KRAS"}, []types.ProviderResult{
		failed("dgidb", "KRAS", "dgidb: connection refused"),
		ok("mygene", "KRAS", map[string][]string{types.FieldDescription: {"KRAS proto-oncogene"}}),
	})

	assert.Equal(t, types.SourceUnavailable, rec.Provenance[types.FieldDrugTargets])
	assert.Equal(t, "mygene", rec.Provenance[types.FieldDescription])
	assert.Equal(t, types.SourceNone, rec.Provenance[types.FieldDruggability])
	assert.Equal(t, map[string]string{"dgidb": "dgidb: connection refused"}, rec.Diagnostics)
}

func TestMerge_ErrorResultIgnoredForValues(t *testing.T) {
	m := Merger{}
	r := failed("a", "BRAF", "boom")
	r.Fields = map[string][]string{types.FieldDescription: {"stale"}}

	rec := m.Merge(types.Identifier{Symbol: "BRAF", Display: "BRAF"}, []types.ProviderResult{r})
	assert.Empty(t, rec.Description)
}

func TestMerge_Deterministic(t *testing.T) {
	m := Merger{Fallback: fallback.Builtin()}
	results := []types.ProviderResult{
		ok("a", "EGFR", map[string][]string{types.FieldDrugTargets: {"Osimertinib", "Erlotinib"}}),
	}
	id := types.Identifier{Symbol: "EGFR", Display: "EGFR"}

	assert.Equal(t, m.Merge(id, results), m.Merge(id, results))
}
