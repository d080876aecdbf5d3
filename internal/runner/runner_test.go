// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package runner

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/landing-engine/internal/casegen"
	"github.com/pdiddy/landing-engine/internal/pipeline"
	"github.com/pdiddy/landing-engine/internal/publish"
	"github.com/pdiddy/landing-engine/pkg/types"
)

// stubWriter returns a schema-valid draft whose slug carries the case ID, so
// the stub reviewer can approve or reject per case.
type stubWriter struct {
	fail map[string]bool
}

func (w stubWriter) Write(ctx context.Context, c types.Case, retryReason string) (types.Draft, error) {
	if w.fail[c.CaseID] {
		return types.Draft{}, errors.New("simulated transport failure")
	}
	return types.Draft{
		Content: types.Content{
			Hero: types.Hero{Headline: "프리랜서 미수금 대응 가이드: 떼인 돈 받는 법"},
			Sections: []types.Section{{
				ID:    "overview",
				Title: "상황 개요",
				Body:  strings.Repeat("용역 대금을 받지 못한 상황에서의 대응 절차를 단계별로 정리합니다. ", 3),
			}},
		},
		Meta: types.Meta{
			Slug:        c.CaseID,
			Title:       "미수금 가이드",
			Description: "대응 절차 안내",
		},
	}, nil
}

type stubReviewer struct {
	reject map[string]bool
}

func (r stubReviewer) Review(ctx context.Context, d types.Draft, mode pipeline.ReviewMode) (types.Review, error) {
	if r.reject[d.Meta.Slug] {
		return types.Review{Approved: false, Reasons: []string{"rejected"}}, nil
	}
	return types.Review{Approved: true, Scores: types.Scores{Legal: 0.9, Tone: 0.9, Structure: 0.9, SEO: 0.9}}, nil
}

type stubFixer struct{}

func (stubFixer) Fix(ctx context.Context, d types.Draft, feedback types.Review) pipeline.FixOutcome {
	revised := d
	return pipeline.FixOutcome{Draft: &revised}
}

type stubGate struct{}

func (stubGate) Check(ctx context.Context, d types.Draft) (types.Review, error) {
	return types.Review{Approved: true}, nil
}

func newTestRunner(t *testing.T, agents pipeline.Agents) (*Runner, *bytes.Buffer) {
	t.Helper()
	root := t.TempDir()
	out := &bytes.Buffer{}
	r := New(agents,
		types.PipelineConfig{MaxRounds: 1, LogsDir: filepath.Join(root, "logs")},
		types.PublishConfig{PublicDir: filepath.Join(root, "public"), LogsDir: filepath.Join(root, "logs")},
		types.RunnerConfig{},
		out)
	r.Now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return r, out
}

func defaultAgents() pipeline.Agents {
	return pipeline.Agents{
		Writer:    stubWriter{},
		Reviewer:  stubReviewer{},
		Fixer:     stubFixer{},
		FinalGate: stubGate{},
	}
}

func writeCases(t *testing.T, cases []types.Case) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cases.jsonl")
	if err := casegen.SaveCases(path, cases); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunAllPublishesOnlyApproved(t *testing.T) {
	agents := defaultAgents()
	agents.Reviewer = stubReviewer{reject: map[string]bool{"case-2": true}}
	r, _ := newTestRunner(t, agents)

	var published []string
	r.Publisher = func(c types.Case, d types.Draft, cfg types.PublishConfig) publish.PublishResult {
		published = append(published, c.CaseID)
		return publish.PublishResult{Status: "success"}
	}

	path := writeCases(t, []types.Case{
		{CaseID: "case-1", Status: types.StatusTodo},
		{CaseID: "case-2", Status: types.StatusTodo},
	})

	results, err := r.RunAll(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if len(published) != 1 || published[0] != "case-1" {
		t.Errorf("published = %v, want only the approved case", published)
	}

	saved, err := casegen.LoadCases(path)
	if err != nil {
		t.Fatal(err)
	}
	if saved[0].Status != types.StatusApprovedForPublish {
		t.Errorf("case-1 status = %q", saved[0].Status)
	}
	if saved[1].Status != types.StatusBlockedByLoop {
		t.Errorf("case-2 status = %q", saved[1].Status)
	}
	for _, c := range saved {
		if c.LastRunAt == nil || *c.LastRunAt != "2026-03-01T12:00:00Z" {
			t.Errorf("case %s last_run_at = %v", c.CaseID, c.LastRunAt)
		}
	}
}

func TestRunAllSkipsNonRunnable(t *testing.T) {
	r, _ := newTestRunner(t, defaultAgents())
	r.Publisher = func(c types.Case, d types.Draft, cfg types.PublishConfig) publish.PublishResult {
		return publish.PublishResult{Status: "success"}
	}

	path := writeCases(t, []types.Case{
		{CaseID: "case-1", Status: types.StatusApprovedForPublish},
		{CaseID: "case-2", Status: types.StatusBlockedByFinalGate},
		{CaseID: "case-3"},
	})

	results, err := r.RunAll(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Case.CaseID != "case-3" {
		t.Fatalf("results = %+v, want only the empty-status case", results)
	}
}

func TestRunAllRespectsCaseCap(t *testing.T) {
	r, _ := newTestRunner(t, defaultAgents())
	r.Cfg.MaxCasesPerRun = 2
	r.Publisher = func(c types.Case, d types.Draft, cfg types.PublishConfig) publish.PublishResult {
		return publish.PublishResult{Status: "success"}
	}

	path := writeCases(t, []types.Case{
		{CaseID: "case-1"}, {CaseID: "case-2"}, {CaseID: "case-3"},
	})

	results, err := r.RunAll(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want cap of 2", len(results))
	}

	saved, err := casegen.LoadCases(path)
	if err != nil {
		t.Fatal(err)
	}
	if !saved[2].Status.Runnable() {
		t.Errorf("case-3 status = %q, should stay runnable", saved[2].Status)
	}
}

func TestRunAllWorkflowErrorLeavesCaseRunnable(t *testing.T) {
	agents := defaultAgents()
	agents.Writer = stubWriter{fail: map[string]bool{"case-1": true}}
	r, _ := newTestRunner(t, agents)
	r.Publisher = func(c types.Case, d types.Draft, cfg types.PublishConfig) publish.PublishResult {
		return publish.PublishResult{Status: "success"}
	}

	path := writeCases(t, []types.Case{
		{CaseID: "case-1"}, {CaseID: "case-2"},
	})

	results, err := r.RunAll(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want the batch to continue past the error", len(results))
	}
	if results[0].Err == nil {
		t.Error("transport failure not surfaced on the case result")
	}

	saved, err := casegen.LoadCases(path)
	if err != nil {
		t.Fatal(err)
	}
	if !saved[0].Status.Runnable() {
		t.Errorf("errored case status = %q, should stay runnable", saved[0].Status)
	}
	if saved[0].LastRunAt != nil {
		t.Error("errored case got a last_run_at timestamp")
	}
	if saved[1].Status != types.StatusApprovedForPublish {
		t.Errorf("case-2 status = %q", saved[1].Status)
	}
}

func TestRunAllReportsFailureGrowth(t *testing.T) {
	r, out := newTestRunner(t, defaultAgents())
	r.Publisher = func(c types.Case, d types.Draft, cfg types.PublishConfig) publish.PublishResult {
		_ = publish.AppendFailure(cfg.LogsDir, publish.FailureEntry{
			CaseID: c.CaseID, ErrorType: "deploy_failed", Stage: "deploy_stub",
		})
		return publish.PublishResult{Status: "failed", Error: "simulated"}
	}

	path := writeCases(t, []types.Case{{CaseID: "case-1"}})

	if _, err := r.RunAll(context.Background(), path); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "deploy failures grew from 0 to 1") {
		t.Errorf("missing growth warning in output:\n%s", out.String())
	}
}

func TestRunSingle(t *testing.T) {
	r, _ := newTestRunner(t, defaultAgents())
	r.Publisher = func(c types.Case, d types.Draft, cfg types.PublishConfig) publish.PublishResult {
		return publish.PublishResult{Status: "success"}
	}

	path := writeCases(t, []types.Case{
		{CaseID: "case-1"}, {CaseID: "case-2"},
	})

	result, err := r.RunSingle(context.Background(), path, "case-2")
	if err != nil {
		t.Fatal(err)
	}
	if result.Case.CaseID != "case-2" {
		t.Errorf("ran %q, want case-2", result.Case.CaseID)
	}
	if result.Deploy == nil || !result.Deploy.Succeeded() {
		t.Errorf("deploy = %+v", result.Deploy)
	}

	saved, err := casegen.LoadCases(path)
	if err != nil {
		t.Fatal(err)
	}
	if saved[0].Status != types.StatusTodo && saved[0].Status != "" {
		t.Errorf("untouched case status changed to %q", saved[0].Status)
	}
	if saved[1].Status != types.StatusApprovedForPublish {
		t.Errorf("case-2 status = %q", saved[1].Status)
	}
}

func TestRunSingleUnknownCase(t *testing.T) {
	r, _ := newTestRunner(t, defaultAgents())
	path := writeCases(t, []types.Case{{CaseID: "case-1"}})

	if _, err := r.RunSingle(context.Background(), path, "missing"); err == nil {
		t.Fatal("expected error for unknown case ID")
	}
}
