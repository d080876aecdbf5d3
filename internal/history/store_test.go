// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/landing-engine/pkg/types"
)

const sampleReviewLog = `{"case_id":"case-1","approved":true,"rounds":0,"status":"approved_for_publish","scores":{"legal":0.9,"tone":0.85,"structure":0.9,"seo":0.8},"error_type":"none","model_writer":"gpt-5-mini","model_reviewer":"gpt-5-mini"}
{"case_id":"case-2","approved":false,"rounds":3,"status":"blocked_by_loop","error_type":"none","model_writer":"gpt-5-mini","model_reviewer":"gpt-5-mini"}
{"case_id":"case-3","approved":false,"rounds":0,"status":"writer_hard_fail","error_type":"writer_hard_fail"}
`

const sampleFailureLog = `{"case_id":"case-1","error_type":"deploy_failed","stage":"deploy_stub","error_message":"git push rejected by remote","timestamp":"2026-03-01T00:00:00Z"}
{"case_id":"case-4","error_type":"deploy_failed","stage":"deploy_stub","error_message":"sitemap write permission denied","timestamp":"2026-03-02T00:00:00Z"}
`

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	logsDir := t.TempDir()
	store, err := NewStore(types.HistoryConfig{
		LogsDir:  logsDir,
		IndexDir: filepath.Join(logsDir, "index"),
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store, logsDir
}

func writeLog(t *testing.T, logsDir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(logsDir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func ingest(t *testing.T, store *Store) (IngestSummary, string) {
	t.Helper()
	var out bytes.Buffer
	summary, err := store.Ingest(context.Background(), &out)
	if err != nil {
		t.Fatal(err)
	}
	return summary, out.String()
}

func TestIngestBothSources(t *testing.T) {
	store, logsDir := newTestStore(t)
	writeLog(t, logsDir, "review_logs.jsonl", sampleReviewLog)
	writeLog(t, logsDir, "deploy_failures.jsonl", sampleFailureLog)

	summary, out := ingest(t, store)
	if summary.Indexed != 2 || summary.Skipped != 0 || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if !strings.Contains(out, "review_logs.jsonl (3 records)") {
		t.Errorf("output missing run count:\n%s", out)
	}
	if !strings.Contains(out, "deploy_failures.jsonl (2 records)") {
		t.Errorf("output missing failure count:\n%s", out)
	}
}

func TestIngestSkipsMissingSources(t *testing.T) {
	store, _ := newTestStore(t)
	summary, _ := ingest(t, store)
	if summary.Skipped != 2 || summary.Indexed != 0 {
		t.Errorf("summary = %+v, want both sources skipped", summary)
	}
}

func TestIngestSkipsUnchangedFiles(t *testing.T) {
	store, logsDir := newTestStore(t)
	writeLog(t, logsDir, "review_logs.jsonl", sampleReviewLog)

	if summary, _ := ingest(t, store); summary.Indexed != 1 {
		t.Fatalf("first pass summary = %+v", summary)
	}
	summary, out := ingest(t, store)
	if summary.Indexed != 0 || summary.Skipped != 2 {
		t.Errorf("second pass summary = %+v, want unchanged file skipped", summary)
	}
	if !strings.Contains(out, "skipped review_logs.jsonl") {
		t.Errorf("output:\n%s", out)
	}
}

func TestIngestReindexesChangedFileWithoutDuplicates(t *testing.T) {
	store, logsDir := newTestStore(t)
	path := filepath.Join(logsDir, "review_logs.jsonl")
	writeLog(t, logsDir, "review_logs.jsonl", sampleReviewLog)
	ingest(t, store)

	// Append a record and push the mod time forward past timestamp granularity.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(`{"case_id":"case-5","approved":true,"rounds":1,"status":"approved_for_publish"}` + "\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	summary, out := ingest(t, store)
	if summary.Indexed != 1 {
		t.Fatalf("summary = %+v, want changed file re-indexed", summary)
	}
	if !strings.Contains(out, "(4 records)") {
		t.Errorf("output:\n%s", out)
	}

	res, err := store.Retrieve(context.Background(), QueryOptions{MaxResults: 50})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Runs) != 4 {
		t.Errorf("got %d runs after re-index, want 4 (no duplicates)", len(res.Runs))
	}
}

func TestRetrieveStatusFilter(t *testing.T) {
	store, logsDir := newTestStore(t)
	writeLog(t, logsDir, "review_logs.jsonl", sampleReviewLog)
	ingest(t, store)

	res, err := store.Retrieve(context.Background(), QueryOptions{Status: "blocked_by_loop"})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Runs) != 1 || res.Runs[0].CaseID != "case-2" {
		t.Fatalf("runs = %+v", res.Runs)
	}
	if res.Runs[0].Rounds != 3 {
		t.Errorf("rounds = %d", res.Runs[0].Rounds)
	}
}

func TestRetrieveByCaseIncludesFailures(t *testing.T) {
	store, logsDir := newTestStore(t)
	writeLog(t, logsDir, "review_logs.jsonl", sampleReviewLog)
	writeLog(t, logsDir, "deploy_failures.jsonl", sampleFailureLog)
	ingest(t, store)

	res, err := store.Retrieve(context.Background(), QueryOptions{CaseID: "case-1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Runs) != 1 || !res.Runs[0].Approved {
		t.Fatalf("runs = %+v", res.Runs)
	}
	if res.Runs[0].Scores == nil || res.Runs[0].Scores.Legal != 0.9 {
		t.Errorf("scores = %+v", res.Runs[0].Scores)
	}
	if len(res.Failures) != 1 || res.Failures[0].Message != "git push rejected by remote" {
		t.Fatalf("failures = %+v", res.Failures)
	}
}

func TestRetrieveTextSearch(t *testing.T) {
	store, logsDir := newTestStore(t)
	writeLog(t, logsDir, "deploy_failures.jsonl", sampleFailureLog)
	ingest(t, store)

	res, err := store.Retrieve(context.Background(), QueryOptions{Text: "sitemap"})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Failures) != 1 || res.Failures[0].CaseID != "case-4" {
		t.Fatalf("failures = %+v", res.Failures)
	}
	if res.Runs != nil {
		t.Error("text search should not return run records")
	}
}

func TestRetrieveNewestFirstAndLimit(t *testing.T) {
	store, logsDir := newTestStore(t)
	writeLog(t, logsDir, "review_logs.jsonl", sampleReviewLog)
	ingest(t, store)

	res, err := store.Retrieve(context.Background(), QueryOptions{MaxResults: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Runs) != 2 {
		t.Fatalf("got %d runs, want limit of 2", len(res.Runs))
	}
	if res.Runs[0].CaseID != "case-3" || res.Runs[1].CaseID != "case-2" {
		t.Errorf("order = %s, %s; want newest first", res.Runs[0].CaseID, res.Runs[1].CaseID)
	}
}

func TestIngestSkipsCorruptLines(t *testing.T) {
	store, logsDir := newTestStore(t)
	writeLog(t, logsDir, "review_logs.jsonl", `{"case_id":"case-1","approved":true,"rounds":0,"status":"approved_for_publish"}
not json at all
`)

	_, out := ingest(t, store)
	if !strings.Contains(out, "(1 records)") {
		t.Errorf("output:\n%s", out)
	}
}
