// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/landing-engine/internal/casegen"
)

var casesCmd = &cobra.Command{
	Use:   "cases [seed]...",
	Short: "Generate case records from seed phrases",
	Long: `Cases expands seed phrases into keyword candidates via SERP context and
an LLM, then expands each keyword into concrete case records appended to
the JSONL case store. Seeds come from arguments, --seeds-file, the config,
or the built-in list, in that order.`,
	RunE: runCases,
}

func runCases(cmd *cobra.Command, args []string) error {
	cfg := caseGenConfig()

	keywordsPerSeed, _ := cmd.Flags().GetInt("keywords-per-seed")
	casesPerKeyword, _ := cmd.Flags().GetInt("cases-per-keyword")

	seeds := args
	if seedsFile, _ := cmd.Flags().GetString("seeds-file"); len(seeds) == 0 && seedsFile != "" {
		sf, err := casegen.ReadSeedFile(seedsFile)
		if err != nil {
			return err
		}
		seeds = sf.Seeds
		if keywordsPerSeed <= 0 {
			keywordsPerSeed = sf.KeywordsPerSeed
		}
		if casesPerKeyword <= 0 {
			casesPerKeyword = sf.CasesPerKeyword
		}
	}
	if len(seeds) == 0 {
		seeds = cfg.Seeds
	}
	if len(seeds) == 0 {
		seeds = casegen.DefaultSeeds
	}

	if keywordsPerSeed <= 0 {
		keywordsPerSeed = cfg.KeywordsPerSeed
	}
	if casesPerKeyword <= 0 {
		casesPerKeyword = cfg.CasesPerKeyword
	}

	client, err := llmClient()
	if err != nil {
		return err
	}

	gen := &casegen.Generator{
		LLM:  client,
		Serp: serpClient(),
		Cfg:  cfg,
	}

	added, err := gen.AppendFromSeeds(context.Background(), seeds, keywordsPerSeed, casesPerKeyword, cfg.CasesFile, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Printf("added %d case(s) to %s\n", len(added), cfg.CasesFile)
	return nil
}

func init() {
	casesCmd.Flags().String("seeds-file", "", "YAML seed batch file (ignored when seeds are passed as arguments)")
	casesCmd.Flags().Int("keywords-per-seed", 0, "keyword candidates per seed (0 = default)")
	casesCmd.Flags().Int("cases-per-keyword", 0, "case records per keyword (0 = default)")

	rootCmd.AddCommand(casesCmd)
}
