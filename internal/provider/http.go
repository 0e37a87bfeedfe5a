// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/gene-annotator/internal/httputil"
)

// maxBody bounds how much of a response is read.
const maxBody = 32 << 20

// doJSON sends req through the retrying transport and decodes a 200 body
// into out. A 404 maps to CategoryNotFound; other statuses, including 429
// and 5xx left after the retry budget, map to CategoryUnavailable.
func doJSON(ctx context.Context, name string, o Options, req *http.Request, out any) error {
	if o.UserAgent != "" {
		req.Header.Set("User-Agent", o.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.Do(ctx, o.client(), req, o.Retry)
	if err != nil {
		if httputil.IsTimeout(err) {
			return newError(CategoryTimeout, name, "request timed out", err)
		}
		return newError(CategoryUnavailable, name, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		io.Copy(io.Discard, resp.Body)
		return newError(CategoryNotFound, name, "not found", nil)
	case resp.StatusCode != http.StatusOK:
		io.Copy(io.Discard, resp.Body)
		return newError(CategoryUnavailable, name, fmt.Sprintf("HTTP %d", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(out); err != nil {
		if httputil.IsTimeout(err) {
			return newError(CategoryTimeout, name, "reading response", err)
		}
		return newError(CategoryMalformed, name, "decoding response", err)
	}
	return nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

// postGraphQL runs a GraphQL query and decodes the data member into data.
// A response carrying errors and no data is reported as unavailable.
func postGraphQL(ctx context.Context, name string, o Options, endpoint, query string, vars map[string]any, data any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return newError(CategoryMalformed, name, "encoding query", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return newError(CategoryUnavailable, name, "creating request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphQLError  `json:"errors"`
	}
	if err := doJSON(ctx, name, o, req, &envelope); err != nil {
		return err
	}

	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		if len(envelope.Errors) > 0 {
			msgs := make([]string, len(envelope.Errors))
			for i, e := range envelope.Errors {
				msgs[i] = e.Message
			}
			return newError(CategoryUnavailable, name, "graphql: "+strings.Join(msgs, "; "), nil)
		}
		return newError(CategoryMalformed, name, "graphql response without data", nil)
	}
	if err := json.Unmarshal(envelope.Data, data); err != nil {
		return newError(CategoryMalformed, name, "decoding graphql data", err)
	}
	return nil
}
