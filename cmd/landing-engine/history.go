// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/landing-engine/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Index and query past runs and deploy failures",
	Long: `History maintains a local SQLite index over the review and deploy
failure logs. Use subcommands to (re)build the index or query it.`,
}

// --- store subcommand ---

var historyStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Ingest the run and failure logs into the history index",
	Long: `Store reads logs/review_logs.jsonl and logs/deploy_failures.jsonl into
a SQLite database with FTS5 over failure messages. Files unchanged since
the last indexing are skipped.`,
	RunE: runHistoryStore,
}

func runHistoryStore(cmd *cobra.Command, args []string) error {
	store, err := history.NewStore(historyConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(context.Background(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d log file(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- retrieve subcommand ---

var historyRetrieveCmd = &cobra.Command{
	Use:   "retrieve [text]",
	Short: "Query indexed runs and deploy failures",
	Long: `Retrieve queries the history index. A text argument searches deploy
failure messages with FTS5; --status and --case filter run records.`,
	RunE: runHistoryRetrieve,
}

func runHistoryRetrieve(cmd *cobra.Command, args []string) error {
	store, err := history.NewStore(historyConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	status, _ := cmd.Flags().GetString("status")
	caseID, _ := cmd.Flags().GetString("case")
	limit, _ := cmd.Flags().GetInt("limit")

	opts := history.QueryOptions{
		Text:       strings.Join(args, " "),
		Status:     status,
		CaseID:     caseID,
		MaxResults: limit,
	}
	if opts.Text == "" && opts.Status == "" && opts.CaseID == "" {
		return fmt.Errorf("query or filter required: provide search text, --status, or --case")
	}

	result, err := store.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	for _, r := range result.Runs {
		fmt.Printf("%-40s  approved=%-5t  rounds=%d  %s\n", r.CaseID, r.Approved, r.Rounds, r.Status)
	}
	for _, f := range result.Failures {
		fmt.Printf("%-40s  %-14s  %s\n", f.CaseID, f.Stage, f.Message)
	}
	fmt.Printf("\n%d run(s), %d failure(s)\n", len(result.Runs), len(result.Failures))
	return nil
}

func init() {
	historyRetrieveCmd.Flags().String("status", "", "filter runs by terminal status")
	historyRetrieveCmd.Flags().String("case", "", "filter by case ID")
	historyRetrieveCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	historyRetrieveCmd.Flags().Bool("json", false, "output results as JSON")

	historyCmd.AddCommand(historyStoreCmd)
	historyCmd.AddCommand(historyRetrieveCmd)

	rootCmd.AddCommand(historyCmd)
}
