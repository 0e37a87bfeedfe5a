// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize turns raw gene identifier tokens into unique, canonical
// Identifiers. It performs no I/O.
package normalize

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/gene-annotator/pkg/types"
)

// Normalize cleans tokens and returns unique identifiers in first-occurrence
// order. Tokens that are empty after trimming are dropped.
func Normalize(tokens []string) []types.Identifier {
	values := make([]any, len(tokens))
	for i, t := range tokens {
		values[i] = t
	}
	return NormalizeValues(values)
}

// NormalizeValues is Normalize for loosely typed input such as parsed
// spreadsheet cells. Values that are not text (string, []byte or
// fmt.Stringer) are dropped.
func NormalizeValues(values []any) []types.Identifier {
	upper := cases.Upper(language.Und)
	seen := make(map[string]struct{}, len(values))
	out := make([]types.Identifier, 0, len(values))

	for _, v := range values {
		text, ok := asText(v)
		if !ok {
			continue
		}
		display := clean(text)
		if display == "" {
			continue
		}
		symbol := upper.String(display)
		if _, dup := seen[symbol]; dup {
			continue
		}
		seen[symbol] = struct{}{}
		out = append(out, types.Identifier{Symbol: symbol, Display: display})
	}
	return out
}

// Key returns the canonical symbol for s: the same cleaning and
// upper-casing Normalize applies. Use it wherever a symbol is looked up.
func Key(s string) string {
	return cases.Upper(language.Und).String(clean(s))
}

// Symbols returns the query symbols of ids.
func Symbols(ids []types.Identifier) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Symbol
	}
	return out
}

func asText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	case fmt.Stringer:
		return t.String(), true
	default:
		return "", false
	}
}

// clean applies NFKC normalization, removes control characters and trims.
func clean(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
