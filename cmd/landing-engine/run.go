// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/landing-engine/internal/pipeline"
	"github.com/pdiddy/landing-engine/internal/runner"
)

var runCmd = &cobra.Command{
	Use:   "run <case-id>",
	Short: "Run the page workflow for a single case",
	Long: `Run executes the writer/reviewer/fixer workflow and the final gate for
one case selected by ID, publishes the page if it is approved, and saves
the case's new status back to the store.`,
	Args: cobra.ExactArgs(1),
	RunE: runSingle,
}

var runAllCmd = &cobra.Command{
	Use:   "run-all",
	Short: "Run the page workflow for all runnable cases",
	Long: `Run-all processes runnable cases from the store in order, bounded per
invocation, publishing pages for approved cases. Designed for cron: a
workflow error leaves the case runnable for the next batch.`,
	RunE: runAll,
}

func newRunner(lenient bool) (*runner.Runner, error) {
	client, err := llmClient()
	if err != nil {
		return nil, err
	}
	pipeCfg := pipelineConfig()
	if lenient {
		pipeCfg.Lenient = true
	}
	agents := pipeline.NewLLMAgents(client, pipeCfg)
	return runner.New(agents, pipeCfg, publishConfig(), runnerConfig(), os.Stdout), nil
}

func runSingle(cmd *cobra.Command, args []string) error {
	lenient, _ := cmd.Flags().GetBool("lenient")
	r, err := newRunner(lenient)
	if err != nil {
		return err
	}

	result, err := r.RunSingle(context.Background(), caseGenConfig().CasesFile, args[0])
	if err != nil {
		return err
	}

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	fmt.Printf("case %s finished with status %s after %d round(s)\n",
		result.Case.CaseID, result.Pipeline.Status, result.Pipeline.Rounds)
	return nil
}

func runAll(cmd *cobra.Command, args []string) error {
	lenient, _ := cmd.Flags().GetBool("lenient")
	r, err := newRunner(lenient)
	if err != nil {
		return err
	}
	if maxCases, _ := cmd.Flags().GetInt("max-cases"); maxCases > 0 {
		r.Cfg.MaxCasesPerRun = maxCases
	}

	results, err := r.RunAll(context.Background(), caseGenConfig().CasesFile)
	if err != nil {
		return err
	}

	published := 0
	for _, res := range results {
		if res.Deploy != nil && res.Deploy.Succeeded() {
			published++
		}
	}
	fmt.Printf("processed %d case(s), published %d page(s)\n", len(results), published)
	return nil
}

func init() {
	runCmd.Flags().Bool("lenient", false, "enable the diagnostic approval bypass")
	runCmd.Flags().Bool("json", false, "output the full result as JSON")

	runAllCmd.Flags().Bool("lenient", false, "enable the diagnostic approval bypass")
	runAllCmd.Flags().Int("max-cases", 0, "cases to process this run (0 = default)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(runAllCmd)
}
