// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrichment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/gene-annotator/internal/httputil"
)

const sampleEnrichJSON = `{
  "MSigDB_Hallmark_2020": [
    [1, "p53 Pathway", 1.2e-8, -3.1, 55.2, ["TP53", "MDM2", "CDKN1A"], 3.4e-7, 0, 0],
    [2, "KRAS Signaling Up", 2.0e-4, -2.2, 18.7, ["KRAS", "ETV4"], 1.1e-3, 0, 0],
    [3, "Apoptosis", 4.4e-3, -1.9, 10.3, ["TP53", "CASP3"], 9.0e-3, 0, 0]
  ]
}`

type enrichrServer struct {
	addListStatus int
	enrichStatus  int
	enrichBody    string
	gotList       string
	gotLibrary    string
}

func (s *enrichrServer) start(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/addList"):
			if s.addListStatus != 0 {
				w.WriteHeader(s.addListStatus)
				return
			}
			assert.NoError(t, r.ParseMultipartForm(1<<20))
			s.gotList = r.FormValue("list")
			fmt.Fprint(w, `{"shortId": "abc", "userListId": 4242}`)
		case strings.HasSuffix(r.URL.Path, "/enrich"):
			if s.enrichStatus != 0 {
				w.WriteHeader(s.enrichStatus)
				return
			}
			s.gotLibrary = r.URL.Query().Get("backgroundType")
			assert.Equal(t, "4242", r.URL.Query().Get("userListId"))
			fmt.Fprint(w, s.enrichBody)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newTestEnrichr(ts *httptest.Server) *Enrichr {
	return &Enrichr{
		Client:    ts.Client(),
		BaseURL:   ts.URL,
		Library:   "MSigDB_Hallmark_2020",
		UserAgent: "test/0.1",
		Retry:     httputil.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond},
	}
}

func TestEnrichrRunEnrichment(t *testing.T) {
	srv := &enrichrServer{enrichBody: sampleEnrichJSON}
	ts := srv.start(t)

	table, err := newTestEnrichr(ts).RunEnrichment(context.Background(), []string{"TP53", "KRAS"})
	require.NoError(t, err)

	assert.Equal(t, "TP53\nKRAS", srv.gotList)
	assert.Equal(t, "MSigDB_Hallmark_2020", srv.gotLibrary)
	require.Len(t, table.Terms, 3)
	assert.Equal(t, "p53 Pathway", table.Terms[0].Name)
	assert.Equal(t, 1, table.Terms[0].Rank)
	assert.Equal(t, []string{"TP53", "MDM2", "CDKN1A"}, table.Terms[0].Genes)
	assert.InDelta(t, 3.4e-7, table.Terms[0].AdjustedPValue, 1e-12)
}

func TestEnrichrEmptyList(t *testing.T) {
	table, err := (&Enrichr{Library: "L"}).RunEnrichment(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, table.Terms)
}

func TestEnrichrStatusErrors(t *testing.T) {
	srv := &enrichrServer{addListStatus: http.StatusBadRequest}
	ts := srv.start(t)

	_, err := newTestEnrichr(ts).RunEnrichment(context.Background(), []string{"TP53"})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.Code)
	assert.Equal(t, "addList", se.Op)
}

func TestEnrichrMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>`},
		{"library missing", `{"Other": []}`},
		{"short row", `{"MSigDB_Hallmark_2020": [[1, "x"]]}`},
		{"wrong column type", `{"MSigDB_Hallmark_2020": [[1, 2, 0.1, 0, 0, "TP53", 0.1]]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := &enrichrServer{enrichBody: tt.body}
			ts := srv.start(t)
			_, err := newTestEnrichr(ts).RunEnrichment(context.Background(), []string{"TP53"})
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestTableTopAndTermsForGene(t *testing.T) {
	table := Table{Library: "L", Terms: []Term{
		{Rank: 2, Name: "B", Genes: []string{"kras"}},
		{Rank: 1, Name: "A", Genes: []string{"TP53", "KRAS"}},
		{Rank: 3, Name: "C", Genes: []string{"TP53"}},
	}}

	top := table.Top(2)
	require.Len(t, top.Terms, 2)
	assert.Equal(t, "A", top.Terms[0].Name)
	assert.Equal(t, "B", top.Terms[1].Name)
	assert.Equal(t, "B", table.Terms[0].Name, "Top must not reorder the receiver")

	assert.Equal(t, []string{"A", "B"}, top.TermsForGene("KRAS"))
	assert.Equal(t, []string{"A", "C"}, table.Top(0).TermsForGene("tp53"))
	assert.Nil(t, top.TermsForGene("TP5"))
	assert.Equal(t, []string{"A", "B"}, top.TermsForGene("\uff2b\uff32\uff21\uff33"))
}
