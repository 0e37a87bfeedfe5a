// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/gene-annotator/pkg/types"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  map[string]string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "cosmic-api-key", "  ck_abc123  \n")
				writeFile(t, dir, "dgidb-api-key", "dk_xyz789")
				return dir
			},
			want: map[string]string{
				"cosmic-api-key": "ck_abc123",
				"dgidb-api-key":  "dk_xyz789",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "cosmic-api-key", "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: map[string]string{"cosmic-api-key": "valid-key"},
		},
		{
			name: "skips dotfiles and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, "cosmic-api-key", "ck_real")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{"cosmic-api-key": "ck_real"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApply(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.Providers[types.ProviderDGIdb] = types.ProviderConfig{Enabled: true, APIKey: "from-config"}

	applied := Apply(&cfg, map[string]string{
		"cosmic-api-key": "ck_1",
		"dgidb-api-key":  "ignored",
		"unrelated":      "x",
	})
	sort.Strings(applied)

	assert.Equal(t, []string{"cosmic"}, applied)
	assert.Equal(t, "ck_1", cfg.Providers[types.ProviderCOSMIC].APIKey)
	assert.Equal(t, "from-config", cfg.Providers[types.ProviderDGIdb].APIKey)
	assert.Empty(t, cfg.Providers[types.ProviderMyGene].APIKey)
}

func TestKeyFile(t *testing.T) {
	assert.Equal(t, "cosmic-api-key", KeyFile("cosmic"))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
