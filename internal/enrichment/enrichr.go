// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/gene-annotator/internal/httputil"
)

// DefaultEnrichrURL is the public Enrichr API root.
const DefaultEnrichrURL = "https://maayanlab.cloud/Enrichr"

// Enrichr runs enrichment through the Enrichr two-step API: addList uploads
// the gene list, enrich scores it against one gene set library.
type Enrichr struct {
	Client    *http.Client
	BaseURL   string
	Library   string
	UserAgent string
	Retry     httputil.Policy
}

// RunEnrichment uploads symbols and returns the library's term table.
func (e *Enrichr) RunEnrichment(ctx context.Context, symbols []string) (Table, error) {
	if len(symbols) == 0 {
		return Table{Library: e.Library}, nil
	}

	listID, err := e.addList(ctx, symbols)
	if err != nil {
		return Table{}, err
	}
	return e.enrich(ctx, listID)
}

func (e *Enrichr) base() string {
	if e.BaseURL != "" {
		return strings.TrimRight(e.BaseURL, "/")
	}
	return DefaultEnrichrURL
}

func (e *Enrichr) addList(ctx context.Context, symbols []string) (int64, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("list", strings.Join(symbols, "\n")); err != nil {
		return 0, fmt.Errorf("building addList form: %w", err)
	}
	if err := mw.WriteField("description", "gene-annotator"); err != nil {
		return 0, fmt.Errorf("building addList form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return 0, fmt.Errorf("building addList form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.base()+"/addList", bytes.NewReader(body.Bytes()))
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("User-Agent", e.UserAgent)

	resp, err := httputil.Do(ctx, e.Client, req, e.Retry)
	if err != nil {
		return 0, fmt.Errorf("enrichr addList request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &StatusError{Code: resp.StatusCode, Op: "addList"}
	}

	var added struct {
		UserListID int64  `json:"userListId"`
		ShortID    string `json:"shortId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&added); err != nil {
		return 0, fmt.Errorf("%w: addList: %v", ErrMalformed, err)
	}
	if added.UserListID == 0 {
		return 0, fmt.Errorf("%w: addList returned no userListId", ErrMalformed)
	}
	return added.UserListID, nil
}

func (e *Enrichr) enrich(ctx context.Context, listID int64) (Table, error) {
	params := url.Values{
		"userListId":     {fmt.Sprintf("%d", listID)},
		"backgroundType": {e.Library},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.base()+"/enrich?"+params.Encode(), nil)
	if err != nil {
		return Table{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", e.UserAgent)

	resp, err := httputil.Do(ctx, e.Client, req, e.Retry)
	if err != nil {
		return Table{}, fmt.Errorf("enrichr enrich request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Table{}, &StatusError{Code: resp.StatusCode, Op: "enrich"}
	}

	var payload map[string][][]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Table{}, fmt.Errorf("%w: enrich: %v", ErrMalformed, err)
	}
	rows, ok := payload[e.Library]
	if !ok {
		return Table{}, fmt.Errorf("%w: library %q missing from response", ErrMalformed, e.Library)
	}

	table := Table{Library: e.Library, Terms: make([]Term, 0, len(rows))}
	for i, row := range rows {
		term, err := parseRow(row)
		if err != nil {
			return Table{}, fmt.Errorf("%w: row %d: %v", ErrMalformed, i, err)
		}
		table.Terms = append(table.Terms, term)
	}
	return table, nil
}

// parseRow decodes an Enrichr result row:
// [rank, term, p-value, z-score, combined score, [genes], adjusted p-value, ...].
func parseRow(row []json.RawMessage) (Term, error) {
	if len(row) < 7 {
		return Term{}, fmt.Errorf("expected at least 7 columns, got %d", len(row))
	}
	var t Term
	targets := []struct {
		idx int
		dst any
	}{
		{0, &t.Rank},
		{1, &t.Name},
		{2, &t.PValue},
		{3, &t.ZScore},
		{4, &t.CombinedScore},
		{5, &t.Genes},
		{6, &t.AdjustedPValue},
	}
	for _, tg := range targets {
		if err := json.Unmarshal(row[tg.idx], tg.dst); err != nil {
			return Term{}, fmt.Errorf("column %d: %w", tg.idx, err)
		}
	}
	return t, nil
}
