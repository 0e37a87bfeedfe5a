// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/gene-annotator/internal/annotate"
	"github.com/pdiddy/gene-annotator/internal/archive"
	"github.com/pdiddy/gene-annotator/internal/input"
	"github.com/pdiddy/gene-annotator/internal/metrics"
	"github.com/pdiddy/gene-annotator/internal/provider"
	"github.com/pdiddy/gene-annotator/internal/report"
	"github.com/pdiddy/gene-annotator/pkg/types"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate [genes...]",
	Short: "Annotate gene symbols from the configured providers",
	Long: `Annotate queries every enabled provider for the given gene symbols and
merges the answers into one record per unique symbol, in input order.

Symbols come from the arguments, from --file (CSV/TSV with a header row, or a
plain list), or both. Providers that fail or miss the deadline leave their
fields empty and are reported per gene; the command still succeeds.`,
	RunE: runAnnotate,
}

func init() {
	f := annotateCmd.Flags()
	f.String("file", "", "input file: .csv/.tsv sheet or plain list of symbols")
	f.String("column", "", "gene column name or 1-based number (default: first column)")
	f.StringSlice("providers", nil, "restrict to these providers (comma-separated)")
	f.String("mode", "", "request grouping: batch or single (default batch)")
	f.Duration("deadline", 0, "overall deadline for the run (default 2m)")
	f.Int("concurrency", 0, "maximum in-flight provider requests (default 8)")
	f.String("format", "table", "output format: table, json, yaml or csv")
	f.StringP("output", "o", "", "write output to this file instead of stdout")
	f.String("archive", "", "save the run to this SQLite archive")
	f.String("metrics-file", "", "write Prometheus text metrics to this file")

	viper.BindPFlag("mode", f.Lookup("mode"))
	viper.BindPFlag("deadline", f.Lookup("deadline"))
	viper.BindPFlag("concurrency", f.Lookup("concurrency"))
	viper.BindPFlag("archive_path", f.Lookup("archive"))
	viper.BindPFlag("metrics_file", f.Lookup("metrics-file"))

	rootCmd.AddCommand(annotateCmd)
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(mustString(cmd, "format"))
	if err != nil {
		return err
	}

	genes, sheet, err := gatherGenes(cmd, args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	only, _ := cmd.Flags().GetStringSlice("providers")
	if err := checkProviders(cfg, only); err != nil {
		return err
	}
	fb, err := loadFallback(cfg)
	if err != nil {
		return err
	}
	ps, err := provider.FromConfig(cfg, newHTTPClient(cfg))
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	if cfg.MetricsFile != "" {
		m = metrics.New()
	}

	ann, err := annotate.New(annotate.Config{
		Providers:   ps,
		Fallback:    fb,
		Priority:    cfg.Priority,
		Concurrency: cfg.Concurrency,
		Logger:      logger,
		Metrics:     m,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt)
	defer stop()

	rs, err := ann.Annotate(ctx, genes, annotate.Options{
		Providers:   only,
		Mode:        cfg.Mode,
		Deadline:    cfg.Deadline,
		Concurrency: cfg.Concurrency,
	})
	if err != nil {
		return err
	}

	if err := writeOutput(cmd, func(w io.Writer) error {
		return report.Write(w, rs, format, sheet)
	}); err != nil {
		return err
	}

	if cfg.ArchivePath != "" {
		if err := saveRun(ctx, cfg.ArchivePath, rs, cfg.Mode); err != nil {
			return err
		}
	}
	if m != nil {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	return nil
}

func saveRun(ctx context.Context, path string, rs types.ResultSet, mode types.Mode) error {
	store, err := archive.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Save(ctx, rs, mode)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Saved run %s (%d genes) to %s\n", run.ID, run.Records, path)
	return nil
}

// gatherGenes combines positional symbols with those read from --file.
// The sheet is returned for CSV exports that keep the original columns.
func gatherGenes(cmd *cobra.Command, args []string) ([]string, *input.Sheet, error) {
	genes := append([]string{}, args...)

	var sheet *input.Sheet
	if path := mustString(cmd, "file"); path != "" {
		s, err := input.ReadFile(path, mustString(cmd, "column"))
		if err != nil {
			return nil, nil, err
		}
		sheet = s
		genes = append(genes, s.Genes()...)
	}

	if len(genes) == 0 {
		return nil, nil, fmt.Errorf("provide one or more gene symbols or --file")
	}
	return genes, sheet, nil
}

// writeOutput runs fn against --output, or stdout when unset.
func writeOutput(cmd *cobra.Command, fn func(io.Writer) error) error {
	path := mustString(cmd, "output")
	if path == "" {
		return fn(cmd.OutOrStdout())
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing output %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
	return nil
}

func mustString(cmd *cobra.Command, name string) string {
	s, _ := cmd.Flags().GetString(name)
	return s
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
