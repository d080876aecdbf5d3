// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/landing-engine/internal/casegen"
)

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Generate new cases and process the batch in one invocation",
	Long: `Cycle runs case generation from the configured seeds and then processes
the batch, so a single cron entry keeps the site growing: new todo cases
are appended first and are eligible for the same run.`,
	RunE: runCycle,
}

func runCycle(cmd *cobra.Command, args []string) error {
	cfg := caseGenConfig()

	seeds := cfg.Seeds
	if len(seeds) == 0 {
		seeds = casegen.DefaultSeeds
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

	added, err := gen.AppendFromSeeds(context.Background(), seeds,
		cfg.KeywordsPerSeed, cfg.CasesPerKeyword, cfg.CasesFile, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Printf("added %d case(s)\n", len(added))

	lenient, _ := cmd.Flags().GetBool("lenient")
	r, err := newRunner(lenient)
	if err != nil {
		return err
	}
	results, err := r.RunAll(context.Background(), cfg.CasesFile)
	if err != nil {
		return err
	}
	fmt.Printf("processed %d case(s)\n", len(results))
	return nil
}

func init() {
	cycleCmd.Flags().Bool("lenient", false, "enable the diagnostic approval bypass")

	rootCmd.AddCommand(cycleCmd)
}
