// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/gene-annotator/internal/annotate"
	"github.com/pdiddy/gene-annotator/internal/provider"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List configured providers in merge priority order",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		ps, err := provider.FromConfig(cfg, newHTTPClient(cfg))
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-4s  %-8s  %-6s  %-30s  %s\n", "Rank", "Name", "Batch", "Fields", "Endpoint")
		fmt.Fprintln(w, strings.Repeat("-", 90))

		if len(ps) > 0 {
			ann, err := annotate.New(annotate.Config{Providers: ps, Priority: cfg.Priority})
			if err != nil {
				return err
			}
			byName := make(map[string]provider.Provider, len(ps))
			for _, p := range ps {
				byName[p.Name()] = p
			}
			for i, name := range ann.Providers() {
				p := byName[name]
				batch := fmt.Sprint(p.BatchSize())
				if p.BatchSize() == 0 {
					batch = "all"
				}
				endpoint := cfg.Providers[name].BaseURL
				if endpoint == "" {
					endpoint = "(default)"
				}
				fmt.Fprintf(w, "%-4d  %-8s  %-6s  %-30s  %s\n",
					i+1, name, batch, strings.Join(p.Fields(), ","), endpoint)
			}
		}

		var disabled []string
		for name, pc := range cfg.Providers {
			if !pc.Enabled {
				disabled = append(disabled, name)
			}
		}
		sort.Strings(disabled)
		if len(disabled) > 0 {
			fmt.Fprintf(w, "\nDisabled: %s\n", strings.Join(disabled, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}
