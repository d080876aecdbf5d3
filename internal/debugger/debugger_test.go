// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package debugger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/landing-engine/internal/llm"
	"github.com/pdiddy/landing-engine/internal/publish"
	"github.com/pdiddy/landing-engine/pkg/types"
)

type fakeCaller struct {
	responses []string
	errs      []error
	requests  []llm.Request
}

func (f *fakeCaller) CallJSON(ctx context.Context, req llm.Request) (json.RawMessage, error) {
	idx := len(f.requests)
	f.requests = append(f.requests, req)
	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}
	if idx < len(f.responses) {
		return json.RawMessage(f.responses[idx]), nil
	}
	return nil, errors.New("no scripted response")
}

func debuggerConfig(t *testing.T) types.DebuggerConfig {
	t.Helper()
	root := t.TempDir()
	return types.DebuggerConfig{
		ModelConfig: types.ModelConfig{Model: "gpt-5.1", MaxOutputTokens: 1200},
		LogsDir:     filepath.Join(root, "logs"),
		ReportsDir:  filepath.Join(root, "reports"),
	}
}

func appendFailures(t *testing.T, logsDir string, entries ...publish.FailureEntry) {
	t.Helper()
	for _, e := range entries {
		if err := publish.AppendFailure(logsDir, e); err != nil {
			t.Fatal(err)
		}
	}
}

func TestRunWritesReportPerFailure(t *testing.T) {
	cfg := debuggerConfig(t)
	appendFailures(t, cfg.LogsDir, publish.FailureEntry{
		CaseID:       "case-1",
		Stage:        "deploy_stub",
		ErrorMessage: "git push rejected",
	})

	caller := &fakeCaller{responses: []string{
		`{"summary":"push 단계에서 원격 저장소가 거부함","plan":["원격 상태 확인"],"diffs":["diff --git"]}`,
	}}
	d := &Debugger{LLM: caller, Cfg: cfg}

	var out bytes.Buffer
	reports, err := d.Run(context.Background(), &out)
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 1 {
		t.Fatalf("got %d reports, want 1", len(reports))
	}
	if filepath.Base(reports[0]) != "code_debug_case-1.md" {
		t.Errorf("report path = %s", reports[0])
	}

	data, err := os.ReadFile(reports[0])
	if err != nil {
		t.Fatal(err)
	}
	report := string(data)
	for _, want := range []string{
		"# Code Debug Report for case-1",
		"- stage: deploy_stub",
		"- error: git push rejected",
		"push 단계에서 원격 저장소가 거부함",
		"## Plan (small, incremental)",
		"## Suggested Diffs",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q", want)
		}
	}

	req := caller.requests[0]
	if req.Model != "gpt-5.1" || req.MaxOutputTokens != 1200 {
		t.Errorf("request model/tokens = %s/%d", req.Model, req.MaxOutputTokens)
	}
	if req.ReasoningEffort != "high" {
		t.Errorf("reasoning effort = %q", req.ReasoningEffort)
	}
}

func TestRunAcceptsAlternateKeys(t *testing.T) {
	cfg := debuggerConfig(t)
	appendFailures(t, cfg.LogsDir, publish.FailureEntry{CaseID: "case-2", ErrorMessage: "boom"})

	caller := &fakeCaller{responses: []string{
		`{"analysis":"대체 키로 온 분석","steps":["첫 단계"],"patches":["patch"]}`,
	}}
	d := &Debugger{LLM: caller, Cfg: cfg}

	reports, err := d.Run(context.Background(), io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(reports[0])
	if err != nil {
		t.Fatal(err)
	}
	report := string(data)
	if !strings.Contains(report, "대체 키로 온 분석") {
		t.Error("analysis fallback not used for summary")
	}
	if !strings.Contains(report, "첫 단계") {
		t.Error("steps fallback not used for plan")
	}
}

func TestRunContinuesPastAnalysisFailure(t *testing.T) {
	cfg := debuggerConfig(t)
	appendFailures(t, cfg.LogsDir,
		publish.FailureEntry{CaseID: "case-3", ErrorMessage: "first"},
		publish.FailureEntry{CaseID: "case-4", ErrorMessage: "second"},
	)

	caller := &fakeCaller{
		errs:      []error{errors.New("model unavailable"), nil},
		responses: []string{"", `{"summary":"ok"}`},
	}
	d := &Debugger{LLM: caller, Cfg: cfg}

	var out bytes.Buffer
	reports, err := d.Run(context.Background(), &out)
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 1 {
		t.Fatalf("got %d reports, want the surviving analysis only", len(reports))
	}
	if !strings.Contains(out.String(), "case case-3: analysis failed") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestRunNoFailures(t *testing.T) {
	cfg := debuggerConfig(t)
	d := &Debugger{LLM: &fakeCaller{}, Cfg: cfg}

	var out bytes.Buffer
	reports, err := d.Run(context.Background(), &out)
	if err != nil {
		t.Fatal(err)
	}
	if reports != nil {
		t.Errorf("reports = %v", reports)
	}
	if !strings.Contains(out.String(), "no deploy failures recorded") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestRunHonorsLimit(t *testing.T) {
	cfg := debuggerConfig(t)
	cfg.Limit = 1
	appendFailures(t, cfg.LogsDir,
		publish.FailureEntry{CaseID: "case-5", ErrorMessage: "older"},
		publish.FailureEntry{CaseID: "case-6", ErrorMessage: "newest"},
	)

	caller := &fakeCaller{responses: []string{`{"summary":"ok"}`}}
	d := &Debugger{LLM: caller, Cfg: cfg}

	reports, err := d.Run(context.Background(), io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 1 || filepath.Base(reports[0]) != "code_debug_case-6.md" {
		t.Errorf("reports = %v, want only the most recent failure", reports)
	}
}
