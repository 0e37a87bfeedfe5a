// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by every provider client.
type HTTPConfig struct {
	// Timeout bounds a single HTTP attempt (default 10s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "gene-annotator/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// RetryConfig controls how transient provider failures are retried.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts per request, the first
	// one included (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" mapstructure:"max_attempts"`

	// BaseDelay is the wait before the first retry; later waits double.
	BaseDelay time.Duration `json:"base_delay" yaml:"base_delay" mapstructure:"base_delay"`

	// MaxDelay caps the wait between attempts.
	MaxDelay time.Duration `json:"max_delay" yaml:"max_delay" mapstructure:"max_delay"`
}

// ProviderConfig holds per-provider settings.
type ProviderConfig struct {
	// Enabled controls whether the provider is registered.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// BaseURL overrides the public API endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// BatchSize limits identifiers per request. Zero keeps the provider default.
	BatchSize int `json:"batch_size,omitempty" yaml:"batch_size,omitempty" mapstructure:"batch_size"`

	// APIKey authenticates against providers that require it.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`
}

// EnrichmentConfig holds settings for the Enrichr enrichment capability.
type EnrichmentConfig struct {
	// GeneSetLibrary is the Enrichr library name (default "MSigDB_Hallmark_2020").
	GeneSetLibrary string `json:"gene_set_library" yaml:"gene_set_library" mapstructure:"gene_set_library"`

	// TopTerms is the number of best-ranked terms kept (default 5).
	TopTerms int `json:"top_terms" yaml:"top_terms" mapstructure:"top_terms"`
}

// Mode selects how identifiers are grouped into provider requests.
type Mode string

const (
	// ModeBatch sends as many identifiers per request as a provider accepts.
	ModeBatch Mode = "batch"

	// ModeSingle sends one identifier per request to every provider that
	// can be queried per identifier.
	ModeSingle Mode = "single"
)

// Config is the complete gene-annotator configuration.
type Config struct {
	HTTP  HTTPConfig  `json:"http" yaml:"http" mapstructure:"http"`
	Retry RetryConfig `json:"retry" yaml:"retry" mapstructure:"retry"`

	// Providers is keyed by provider name: mygene, dgidb, pharos, cosmic, enrichr.
	Providers map[string]ProviderConfig `json:"providers" yaml:"providers" mapstructure:"providers"`

	// Priority orders providers for merge precedence. Providers missing
	// from the list rank after listed ones.
	Priority []string `json:"priority" yaml:"priority" mapstructure:"priority"`

	Enrichment EnrichmentConfig `json:"enrichment" yaml:"enrichment" mapstructure:"enrichment"`

	// Concurrency bounds in-flight provider requests (default 8).
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`

	// Deadline bounds one whole aggregation call (default 2m).
	Deadline time.Duration `json:"deadline" yaml:"deadline" mapstructure:"deadline"`

	Mode Mode `json:"mode" yaml:"mode" mapstructure:"mode"`

	// FallbackFile replaces the built-in fallback table when set.
	FallbackFile string `json:"fallback_file,omitempty" yaml:"fallback_file,omitempty" mapstructure:"fallback_file"`

	// ArchivePath is the SQLite run archive. Empty disables archiving.
	ArchivePath string `json:"archive_path,omitempty" yaml:"archive_path,omitempty" mapstructure:"archive_path"`

	// MetricsFile receives Prometheus text-format metrics after each run.
	MetricsFile string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty" mapstructure:"metrics_file"`
}

// Provider names.
const (
	ProviderMyGene  = "mygene"
	ProviderDGIdb   = "dgidb"
	ProviderPharos  = "pharos"
	ProviderCOSMIC  = "cosmic"
	ProviderEnrichr = "enrichr"
)

// DefaultConfig returns the configuration used when nothing is overridden.
// COSMIC is disabled because its public API requires registration.
func DefaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "gene-annotator/0.1",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   1 * time.Second,
			MaxDelay:    8 * time.Second,
		},
		Providers: map[string]ProviderConfig{
			ProviderMyGene:  {Enabled: true},
			ProviderDGIdb:   {Enabled: true},
			ProviderPharos:  {Enabled: true},
			ProviderCOSMIC:  {Enabled: false},
			ProviderEnrichr: {Enabled: true},
		},
		Priority: []string{
			ProviderMyGene,
			ProviderDGIdb,
			ProviderPharos,
			ProviderCOSMIC,
			ProviderEnrichr,
		},
		Enrichment: EnrichmentConfig{
			GeneSetLibrary: "MSigDB_Hallmark_2020",
			TopTerms:       5,
		},
		Concurrency: 8,
		Deadline:    2 * time.Minute,
		Mode:        ModeBatch,
	}
}
