// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/gene-annotator/pkg/types"
)

const sampleDGIdb = `{
  "data": {
    "genes": {
      "nodes": [
        {"name": "EGFR", "interactions": [{"drug": {"name": "ERLOTINIB"}}, {"drug": {"name": "OSIMERTINIB"}}, {"drug": {"name": " "}}]},
        {"name": "ERBB3", "interactions": [{"drug": {"name": "PATRITUMAB"}}]},
        {"name": "tp53", "interactions": []}
      ]
    }
  }
}`

func TestDGIdbFetch(t *testing.T) {
	var got graphQLRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, sampleDGIdb)
	}))
	defer ts.Close()

	d := NewDGIdb(testOpts(ts))
	assert.Equal(t, 50, d.BatchSize())

	res := d.Fetch(context.Background(), ids("egfr", "TP53"))
	require.Len(t, res, 2)

	assert.Contains(t, got.Query, "genes(names: $names)")
	assert.Equal(t, []any{"EGFR", "TP53"}, got.Variables["names"])

	assert.Equal(t, types.StatusOK, res[0].Status.Code)
	assert.Equal(t, []string{"ERLOTINIB", "OSIMERTINIB"}, res[0].Fields[types.FieldDrugTargets])
	assert.Equal(t, types.StatusNotFound, res[1].Status.Code, "no interactions")
}

func TestDGIdbGraphQLErrors(t *testing.T) {
	ts := jsonServer(t, http.StatusOK, `{"data": null, "errors": [{"message": "rate limited"}]}`)
	res := NewDGIdb(testOpts(ts)).Fetch(context.Background(), ids("EGFR"))
	require.Len(t, res, 1)
	assert.Equal(t, types.StatusError, res[0].Status.Code)
	assert.Equal(t, string(CategoryUnavailable), res[0].Status.Category)
	assert.Contains(t, res[0].Status.Reason, "rate limited")
}

func TestDGIdbMalformed(t *testing.T) {
	ts := jsonServer(t, http.StatusOK, `{"data": {"genes": {"nodes": {"name": "EGFR"}}}}`)
	res := NewDGIdb(testOpts(ts)).Fetch(context.Background(), ids("EGFR"))
	require.Len(t, res, 1)
	assert.Equal(t, string(CategoryMalformed), res[0].Status.Category)
}

func TestDGIdbBatchSizeOverride(t *testing.T) {
	assert.Equal(t, 10, NewDGIdb(Options{BatchSize: 10}).BatchSize())
}
