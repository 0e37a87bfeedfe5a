// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/gene-annotator/pkg/types"
)

const sampleMyGeneSingle = `{
  "total": 2,
  "hits": [
    {
      "_id": "7157",
      "symbol": "TP53",
      "name": "tumor protein p53",
      "summary": "This gene encodes a tumor suppressor protein.",
      "pathway": {
        "kegg": [{"id": "hsa04115", "name": "p53 signaling pathway"}, {"id": "hsa05200", "name": "Pathways in cancer"}],
        "reactome": {"id": "R-HSA-69541", "name": "Stabilization of p53"},
        "wikipathways": [{"id": "WP707", "name": "Pathways in cancer"}]
      }
    },
    {"_id": "8626", "symbol": "TP63", "summary": "Wrong gene."}
  ]
}`

const sampleMyGeneBatch = `[
  {"query": "TP53", "_id": "7157", "symbol": "TP53", "summary": "Tumor suppressor.", "pathway": {"kegg": {"id": "hsa04115", "name": "p53 signaling pathway"}}},
  {"query": "KRAS", "_id": "3845", "symbol": "KRAS", "name": "KRAS proto-oncogene, GTPase"},
  {"query": "KRAS", "_id": "9999", "symbol": "KRAS", "summary": "Duplicate hit ignored."},
  {"query": "NOTAGENE123", "notfound": true}
]`

func TestMyGeneFetchSingle(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/query", r.URL.Path)
		gotQuery = r.URL.Query().Get("q")
		fmt.Fprint(w, sampleMyGeneSingle)
	}))
	defer ts.Close()

	res := NewMyGene(testOpts(ts)).Fetch(context.Background(), ids("tp53"))
	require.Len(t, res, 1)
	assert.Equal(t, "symbol:TP53", gotQuery)

	r := res[0]
	assert.Equal(t, types.StatusOK, r.Status.Code)
	assert.Equal(t, "TP53", r.Identifier)
	assert.Equal(t, "mygene", r.Provider)
	assert.Equal(t, []string{"This gene encodes a tumor suppressor protein."}, r.Fields[types.FieldDescription])
	assert.Equal(t, []string{"Pathways in cancer", "Stabilization of p53", "p53 signaling pathway"}, r.Fields[types.FieldPathways])
	assert.False(t, r.FetchedAt.IsZero())
}

func TestMyGeneFetchBatch(t *testing.T) {
	var form string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, r.ParseForm())
		form = r.PostForm.Get("q")
		assert.Equal(t, "symbol", r.PostForm.Get("scopes"))
		fmt.Fprint(w, sampleMyGeneBatch)
	}))
	defer ts.Close()

	res := NewMyGene(testOpts(ts)).Fetch(context.Background(), ids("TP53", "kras", "NOTAGENE123", "BRAF"))
	require.Len(t, res, 4)
	assert.Equal(t, "TP53,KRAS,NOTAGENE123,BRAF", form)

	assert.Equal(t, types.StatusOK, res[0].Status.Code)
	assert.Equal(t, []string{"p53 signaling pathway"}, res[0].Fields[types.FieldPathways])

	assert.Equal(t, types.StatusOK, res[1].Status.Code)
	assert.Equal(t, []string{"KRAS proto-oncogene, GTPase"}, res[1].Fields[types.FieldDescription], "falls back to gene name, first hit wins")
	assert.NotContains(t, res[1].Fields, types.FieldPathways)

	assert.Equal(t, types.StatusNotFound, res[2].Status.Code)
	assert.Empty(t, res[2].Fields)
	assert.Equal(t, types.StatusNotFound, res[3].Status.Code, "symbol absent from response")
}

func TestMyGeneIgnoresOtherSymbols(t *testing.T) {
	ts := jsonServer(t, http.StatusOK, `{"hits": [{"symbol": "TP63", "summary": "Other gene."}]}`)
	res := NewMyGene(testOpts(ts)).Fetch(context.Background(), ids("TP53"))
	require.Len(t, res, 1)
	assert.Equal(t, types.StatusNotFound, res[0].Status.Code)
}

func TestMyGeneErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		code     types.StatusCode
		category Category
	}{
		{"server error", http.StatusInternalServerError, "", types.StatusError, CategoryUnavailable},
		{"malformed", http.StatusOK, `{"hits": "nope"}`, types.StatusError, CategoryMalformed},
		{"not found status", http.StatusNotFound, "", types.StatusNotFound, ""},
		{"bad request", http.StatusBadRequest, "", types.StatusError, CategoryUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := jsonServer(t, tt.status, tt.body)
			res := NewMyGene(testOpts(ts)).Fetch(context.Background(), ids("TP53", "KRAS"))
			require.Len(t, res, 2)
			for _, r := range res {
				assert.Equal(t, tt.code, r.Status.Code)
				assert.Equal(t, string(tt.category), r.Status.Category)
			}
		})
	}
}

func TestMyGeneRetryBound(t *testing.T) {
	t.Run("fails twice then succeeds", func(t *testing.T) {
		var calls int32
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) <= 2 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"hits": []map[string]any{{"symbol": "KRAS", "summary": "GTPase"}}})
		}))
		defer ts.Close()

		res := NewMyGene(testOpts(ts)).Fetch(context.Background(), ids("KRAS"))
		require.Len(t, res, 1)
		assert.Equal(t, types.StatusOK, res[0].Status.Code)
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})

	t.Run("always fails", func(t *testing.T) {
		var calls int32
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer ts.Close()

		res := NewMyGene(testOpts(ts)).Fetch(context.Background(), ids("KRAS"))
		require.Len(t, res, 1)
		assert.Equal(t, types.StatusError, res[0].Status.Code)
		assert.Equal(t, string(CategoryUnavailable), res[0].Status.Category)
		assert.Contains(t, res[0].Status.Reason, "HTTP 502")
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})
}

func TestMyGeneConnectionRefused(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	opts := testOpts(ts)
	ts.Close()

	res := NewMyGene(opts).Fetch(context.Background(), ids("TP53"))
	require.Len(t, res, 1)
	assert.Equal(t, types.StatusError, res[0].Status.Code)
	assert.Equal(t, string(CategoryUnavailable), res[0].Status.Category)
}

func TestPathwayNames(t *testing.T) {
	raw := map[string]json.RawMessage{
		"kegg":     json.RawMessage(`[{"id":"k1","name":"B"},{"id":"k2","name":"A"}]`),
		"reactome": json.RawMessage(`{"id":"r1","name":"A"}`),
		"pid":      json.RawMessage(`{"id":"only-id"}`),
		"junk":     json.RawMessage(`42`),
	}
	assert.Equal(t, []string{"A", "B", "only-id"}, pathwayNames(raw))
	assert.Nil(t, pathwayNames(nil))
}
