// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/gene-annotator/internal/archive"
	"github.com/pdiddy/gene-annotator/internal/report"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List archived annotation runs",
	RunE:  runListRuns,
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete RUN_ID",
	Short: "Delete an archived run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openArchive(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(cmdContext(cmd), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", args[0])
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show RUN_ID [GENE]",
	Short: "Show an archived run, or one gene from it",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runShow,
}

func init() {
	runsCmd.PersistentFlags().String("archive", "", "SQLite run archive (default: archive_path from config)")
	runsCmd.Flags().Int("limit", 20, "maximum runs to list; 0 lists all")
	runsCmd.Flags().Bool("json", false, "output runs as JSON")
	runsCmd.AddCommand(runsDeleteCmd)

	showCmd.Flags().String("archive", "", "SQLite run archive (default: archive_path from config)")
	showCmd.Flags().String("format", "table", "output format: table, json, yaml or csv")
	showCmd.Flags().StringP("output", "o", "", "write output to this file instead of stdout")

	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(showCmd)
}

func openArchive(cmd *cobra.Command) (*archive.Store, error) {
	path := mustString(cmd, "archive")
	if path == "" {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return nil, err
		}
		path = cfg.ArchivePath
	}
	if path == "" {
		return nil, fmt.Errorf("no archive: pass --archive or set archive_path in the config")
	}
	return archive.Open(path)
}

func runListRuns(cmd *cobra.Command, args []string) error {
	store, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.List(context.Background(), limit)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return report.JSON(w, runs)
	}
	return formatRuns(w, runs)
}

func formatRuns(w io.Writer, runs []archive.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No archived runs.")
		return nil
	}

	fmt.Fprintf(w, "%-36s  %-20s  %-6s  %-7s  %-7s  %s\n",
		"Run", "Created", "Mode", "Genes", "Targets", "Providers")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, r := range runs {
		fmt.Fprintf(w, "%-36s  %-20s  %-6s  %-7d  %-7d  %s\n",
			r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Mode, r.Records, r.WithTargets,
			strings.Join(r.Providers, ","))
	}
	fmt.Fprintf(w, "\n%d runs\n", len(runs))
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(mustString(cmd, "format"))
	if err != nil {
		return err
	}

	store, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmdContext(cmd)
	if len(args) == 2 {
		rec, err := store.Record(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		return writeOutput(cmd, func(w io.Writer) error {
			switch format {
			case report.FormatJSON:
				return report.JSON(w, rec)
			case report.FormatYAML:
				return report.YAML(w, rec)
			default:
				return report.Detail(w, rec)
			}
		})
	}

	rs, err := store.Load(ctx, args[0])
	if err != nil {
		return err
	}
	return writeOutput(cmd, func(w io.Writer) error {
		return report.Write(w, rs, format, nil)
	})
}
