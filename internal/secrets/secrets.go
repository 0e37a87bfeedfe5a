// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads provider credentials from a directory of plain-text
// files. The filename is the key name and the trimmed contents the value.
//
// Recognised files are named <provider>-api-key, for example cosmic-api-key.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/gene-annotator/pkg/types"
)

// DefaultDir is the secrets directory searched relative to the working directory.
const DefaultDir = ".secrets"

// Load reads all regular files in dir and returns filename → trimmed contents.
// A missing directory is not an error. Unreadable files are logged and skipped.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	out := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("could not read secret", "name", name, "error", err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			out[name] = value
		}
	}
	return out, nil
}

// KeyFile returns the secret filename holding provider's API key.
func KeyFile(provider string) string {
	return provider + "-api-key"
}

// Apply copies API keys from s into cfg.Providers. A key already set in
// the configuration wins. It returns the providers that received a key.
func Apply(cfg *types.Config, s map[string]string) []string {
	var applied []string
	for name, pc := range cfg.Providers {
		if pc.APIKey != "" {
			continue
		}
		key, ok := s[KeyFile(name)]
		if !ok {
			continue
		}
		pc.APIKey = key
		cfg.Providers[name] = pc
		applied = append(applied, name)
	}
	return applied
}
