// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fallback holds the curated static annotations used when live
// providers return nothing for a field.
package fallback

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/gene-annotator/internal/normalize"
)

//go:embed drugs.yaml
var builtin []byte

// Table maps an upper-case gene symbol to field values. A Table is never
// modified after construction, so concurrent readers need no locking.
type Table struct {
	entries map[string]map[string][]string
}

// Builtin returns the table shipped with the binary. It panics if the
// embedded data is invalid, which a unit test guards against.
func Builtin() *Table {
	t, err := Parse(builtin)
	if err != nil {
		panic(fmt.Sprintf("fallback: invalid built-in table: %v", err))
	}
	return t
}

// Load reads a YAML table from path.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fallback table %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing fallback table %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes a YAML document of the form symbol → field → values.
// Symbols are upper-cased; blank values are skipped.
func Parse(data []byte) (*Table, error) {
	var raw map[string]map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	entries := make(map[string]map[string][]string, len(raw))
	for sym, fields := range raw {
		key := normalize.Key(sym)
		if key == "" {
			continue
		}
		clean := make(map[string][]string, len(fields))
		for field, values := range fields {
			var vs []string
			for _, v := range values {
				if v = strings.TrimSpace(v); v != "" {
					vs = append(vs, v)
				}
			}
			if len(vs) > 0 {
				clean[field] = vs
			}
		}
		entries[key] = clean
	}
	return &Table{entries: entries}, nil
}

// Empty returns a table with no entries.
func Empty() *Table {
	return &Table{entries: map[string]map[string][]string{}}
}

// Lookup returns the values for symbol and field, or nil. The returned
// slice is a copy.
func (t *Table) Lookup(symbol, field string) []string {
	if t == nil {
		return nil
	}
	vs := t.entries[normalize.Key(symbol)][field]
	if len(vs) == 0 {
		return nil
	}
	out := make([]string, len(vs))
	copy(out, vs)
	return out
}

// Len returns the number of symbols in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}
