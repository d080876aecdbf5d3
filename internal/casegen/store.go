// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package casegen persists case records and expands seed phrases into them
// via the SERP and LLM gateways.
package casegen

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/landing-engine/pkg/types"
)

// LoadCases reads the JSONL case store. A missing file is an empty store,
// not an error. Blank lines are skipped; record order is preserved.
func LoadCases(path string) ([]types.Case, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening case store %s: %w", path, err)
	}
	defer f.Close()

	var cases []types.Case
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var c types.Case
		if err := json.Unmarshal([]byte(line), &c); err != nil {
			return nil, fmt.Errorf("parsing case store %s line %d: %w", path, lineNo, err)
		}
		cases = append(cases, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading case store %s: %w", path, err)
	}
	return cases, nil
}

// SaveCases rewrites the whole case store, one JSON object per line.
func SaveCases(path string, cases []types.Case) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating case store directory: %w", err)
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for _, c := range cases {
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("encoding case %s: %w", c.CaseID, err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing case store %s: %w", path, err)
	}
	return nil
}
