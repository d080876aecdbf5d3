// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/landing-engine/pkg/types"
)

const reviewLogFile = "review_logs.jsonl"

// ReviewLogEntry is one structured record in logs/review_logs.jsonl,
// appended after every workflow execution.
type ReviewLogEntry struct {
	CaseID         string           `json:"case_id"`
	Approved       bool             `json:"approved"`
	Rounds         int              `json:"rounds"`
	Status         types.CaseStatus `json:"status"`
	Scores         *types.Scores    `json:"scores"`
	ErrorType      string           `json:"error_type"`
	ModelWriter    string           `json:"model_writer"`
	ModelReviewer  string           `json:"model_reviewer"`
	ModelFixer     string           `json:"model_fixer"`
	ModelFinalGate string           `json:"model_final_gate"`
}

// AppendReviewLog appends one entry to the review log.
func AppendReviewLog(logsDir string, entry ReviewLogEntry) error {
	logsDir = logsDirOrDefault(logsDir)
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("creating logs directory: %w", err)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding review log entry: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(logsDir, reviewLogFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening review log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("appending review log entry: %w", err)
	}
	return nil
}

// WriteDebug saves a per-stage payload to logs/debug/<case>.<stage>.json.
// Debug dumps are best-effort and never fail the workflow.
func WriteDebug(logsDir, caseID, stage string, payload any) {
	debugDir := filepath.Join(logsDirOrDefault(logsDir), "debug")
	if err := os.MkdirAll(debugDir, 0o755); err != nil {
		return
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(filepath.Join(debugDir, fmt.Sprintf("%s.%s.json", caseID, stage)), data, 0o644)
}
