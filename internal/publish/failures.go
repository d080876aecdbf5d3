// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const failureLogFile = "deploy_failures.jsonl"

// FailureEntry is one record in logs/deploy_failures.jsonl.
type FailureEntry struct {
	CaseID       string `json:"case_id"`
	ErrorType    string `json:"error_type"`
	Stage        string `json:"stage"`
	ErrorMessage string `json:"error_message"`
	Timestamp    string `json:"timestamp"`
}

// AppendFailure appends one entry to the deploy failure log.
func AppendFailure(logsDir string, entry FailureEntry) error {
	if logsDir == "" {
		logsDir = "logs"
	}
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("creating logs directory: %w", err)
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding failure entry: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(logsDir, failureLogFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening failure log: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("appending failure entry: %w", err)
	}
	return nil
}

// LoadFailures reads the whole failure log; a missing file means no failures.
// Unparseable lines are skipped so one corrupt record cannot hide the rest.
func LoadFailures(logsDir string) ([]FailureEntry, error) {
	if logsDir == "" {
		logsDir = "logs"
	}
	f, err := os.Open(filepath.Join(logsDir, failureLogFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening failure log: %w", err)
	}
	defer f.Close()

	var entries []FailureEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry FailureEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading failure log: %w", err)
	}
	return entries, nil
}

// CountFailures returns the number of recorded deploy failures.
func CountFailures(logsDir string) (int, error) {
	entries, err := LoadFailures(logsDir)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// LoadRecentFailures returns the most recent n entries, oldest first.
func LoadRecentFailures(logsDir string, n int) ([]FailureEntry, error) {
	entries, err := LoadFailures(logsDir)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}
