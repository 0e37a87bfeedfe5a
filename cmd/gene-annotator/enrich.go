// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/gene-annotator/internal/normalize"
	"github.com/pdiddy/gene-annotator/internal/provider"
	"github.com/pdiddy/gene-annotator/internal/report"
	"github.com/pdiddy/gene-annotator/pkg/types"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich [genes...]",
	Short: "Run gene set enrichment for a gene list",
	Long: `Enrich submits the gene list to Enrichr and prints the best-ranked terms of
the configured gene set library (default MSigDB_Hallmark_2020, top 5).`,
	RunE: runEnrich,
}

func init() {
	f := enrichCmd.Flags()
	f.String("file", "", "input file: .csv/.tsv sheet or plain list of symbols")
	f.String("column", "", "gene column name or 1-based number (default: first column)")
	f.String("library", "", "Enrichr gene set library")
	f.Int("top", 0, "number of terms to print; 0 uses the configured top_terms, -1 prints all")
	f.String("format", "table", "output format: table, json or yaml")
	f.StringP("output", "o", "", "write output to this file instead of stdout")

	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(mustString(cmd, "format"))
	if err != nil {
		return err
	}
	if format == report.FormatCSV {
		return fmt.Errorf("csv output is not supported for enrichment tables")
	}

	genes, _, err := gatherGenes(cmd, args)
	if err != nil {
		return err
	}
	symbols := normalize.Symbols(normalize.Normalize(genes))
	if len(symbols) == 0 {
		return fmt.Errorf("no valid gene symbols")
	}

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if lib := mustString(cmd, "library"); lib != "" {
		cfg.Enrichment.GeneSetLibrary = lib
	}
	top, _ := cmd.Flags().GetInt("top")
	if top == 0 {
		top = cfg.Enrichment.TopTerms
	}

	runner := provider.NewEnrichr(cfg, cfg.Providers[types.ProviderEnrichr], newHTTPClient(cfg))

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt)
	defer stop()

	table, err := runner.RunEnrichment(ctx, symbols)
	if err != nil {
		return fmt.Errorf("running enrichment: %w", err)
	}
	table = table.Top(top)

	return writeOutput(cmd, func(w io.Writer) error {
		switch format {
		case report.FormatJSON:
			return report.JSON(w, table)
		case report.FormatYAML:
			return report.YAML(w, table)
		default:
			return report.Enrichment(w, table)
		}
	})
}
