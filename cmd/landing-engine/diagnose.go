// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/landing-engine/internal/debugger"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Analyze recent deploy failures and write fix-plan reports",
	Long: `Diagnose feeds the most recent deploy failures, together with the
implicated source files, to the debug model and writes one markdown
report per failure under the reports directory.`,
	RunE: runDiagnose,
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	client, err := llmClient()
	if err != nil {
		return err
	}

	cfg := debuggerConfig()
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
		cfg.Limit = limit
	}

	d := &debugger.Debugger{LLM: client, Cfg: cfg}
	reports, err := d.Run(context.Background(), os.Stdout)
	if err != nil {
		return err
	}
	fmt.Printf("%d report(s) generated\n", len(reports))
	return nil
}

func init() {
	diagnoseCmd.Flags().Int("limit", 0, "recent failures to analyze (0 = default)")

	rootCmd.AddCommand(diagnoseCmd)
}
