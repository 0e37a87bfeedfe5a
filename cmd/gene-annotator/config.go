// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/viper"

	"github.com/pdiddy/gene-annotator/internal/fallback"
	"github.com/pdiddy/gene-annotator/internal/secrets"
	"github.com/pdiddy/gene-annotator/pkg/types"
)

// setDefaults registers scalar defaults so environment variables such as
// GENE_ANNOTATOR_RETRY_MAX_ATTEMPTS are seen by Unmarshal.
func setDefaults(v *viper.Viper) {
	d := types.DefaultConfig()
	v.SetDefault("http.timeout", d.HTTP.Timeout)
	v.SetDefault("http.user_agent", d.HTTP.UserAgent)
	v.SetDefault("retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("retry.base_delay", d.Retry.BaseDelay)
	v.SetDefault("retry.max_delay", d.Retry.MaxDelay)
	v.SetDefault("priority", d.Priority)
	v.SetDefault("enrichment.gene_set_library", d.Enrichment.GeneSetLibrary)
	v.SetDefault("enrichment.top_terms", d.Enrichment.TopTerms)
	v.SetDefault("concurrency", d.Concurrency)
	v.SetDefault("deadline", d.Deadline)
	v.SetDefault("mode", string(d.Mode))
	v.SetDefault("fallback_file", "")
	v.SetDefault("archive_path", "")
	v.SetDefault("metrics_file", "")
	for name, pc := range d.Providers {
		v.SetDefault("providers."+name+".enabled", pc.Enabled)
	}
}

// loadConfig decodes the viper state on top of DefaultConfig and applies
// API keys from the secrets directory.
func loadConfig(v *viper.Viper) (types.Config, error) {
	cfg := types.DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	if applied := secrets.Apply(&cfg, loadedSecrets); len(applied) > 0 {
		logger.Debug("applied provider keys", "providers", applied)
	}
	return cfg, nil
}

func loadFallback(cfg types.Config) (*fallback.Table, error) {
	if cfg.FallbackFile == "" {
		return fallback.Builtin(), nil
	}
	return fallback.Load(cfg.FallbackFile)
}

func newHTTPClient(cfg types.Config) *http.Client {
	return &http.Client{Timeout: cfg.HTTP.Timeout}
}

// checkProviders rejects a --providers selection naming a provider that is
// configured but disabled. Names absent from the configuration are left to
// the annotator, which reports them as unknown.
func checkProviders(cfg types.Config, names []string) error {
	for _, n := range names {
		if pc, ok := cfg.Providers[n]; ok && !pc.Enabled {
			return fmt.Errorf("provider %q is not enabled (set providers.%s.enabled: true)", n, n)
		}
	}
	return nil
}
