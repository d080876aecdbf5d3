// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdiddy/landing-engine/pkg/types"
)

func publishConfig(t *testing.T) types.PublishConfig {
	t.Helper()
	root := t.TempDir()
	return types.PublishConfig{
		PublicDir: filepath.Join(root, "public"),
		LogsDir:   filepath.Join(root, "logs"),
		BaseURL:   "https://ddein-don.com",
	}
}

func TestPublishSuccess(t *testing.T) {
	cfg := publishConfig(t)
	c := types.Case{CaseID: "case-11", Topic: "프리랜서 미수금"}

	res := Publish(c, sampleDraft(), cfg)

	if !res.Succeeded() {
		t.Fatalf("result = %+v", res)
	}
	if res.Message != "deploy stub success" {
		t.Errorf("message = %q", res.Message)
	}
	if filepath.Base(res.Path) != "case-11.html" {
		t.Errorf("path = %q, want page keyed by case ID", res.Path)
	}
	if _, err := os.Stat(res.Path); err != nil {
		t.Errorf("page file missing: %v", err)
	}

	pages, err := LoadPages(cfg.PublicDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 1 || pages[0].Slug != "freelancer-unpaid" {
		t.Errorf("catalog = %+v", pages)
	}
	if _, err := os.Stat(filepath.Join(cfg.PublicDir, "sitemap.xml")); err != nil {
		t.Errorf("sitemap missing: %v", err)
	}

	n, err := CountFailures(cfg.LogsDir)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("failure log has %d entries after a clean publish", n)
	}
}

func TestPublishDeployFailureIsLogged(t *testing.T) {
	orig := deployStub
	deployStub = func(path string) (bool, string) { return false, "simulated outage" }
	t.Cleanup(func() { deployStub = orig })

	cfg := publishConfig(t)
	res := Publish(types.Case{CaseID: "case-12"}, sampleDraft(), cfg)

	if res.Succeeded() {
		t.Fatal("deploy failure reported as success")
	}
	if res.Error == "" {
		t.Error("failed result carries no error message")
	}

	entries, err := LoadFailures(cfg.LogsDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d failure entries, want 1", len(entries))
	}
	e := entries[0]
	if e.CaseID != "case-12" || e.ErrorType != "deploy_failed" || e.Stage != "deploy_stub" {
		t.Errorf("failure entry = %+v", e)
	}
	if e.Timestamp == "" {
		t.Error("failure entry missing timestamp")
	}
}

func TestPublishGitPushFailure(t *testing.T) {
	orig := gitPush
	var gotMessage string
	gitPush = func(message string) error {
		gotMessage = message
		return errors.New("remote rejected")
	}
	t.Cleanup(func() { gitPush = orig })

	cfg := publishConfig(t)
	cfg.GitPush = true
	res := Publish(types.Case{CaseID: "case-13"}, sampleDraft(), cfg)

	if res.Succeeded() {
		t.Fatal("push failure reported as success")
	}
	if gotMessage != "auto: publish case-13" {
		t.Errorf("commit message = %q", gotMessage)
	}

	n, err := CountFailures(cfg.LogsDir)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("failure count = %d, want 1", n)
	}
}

func TestPublishGitPushDisabledByDefault(t *testing.T) {
	orig := gitPush
	called := false
	gitPush = func(message string) error {
		called = true
		return nil
	}
	t.Cleanup(func() { gitPush = orig })

	cfg := publishConfig(t)
	res := Publish(types.Case{CaseID: "case-14"}, sampleDraft(), cfg)

	if !res.Succeeded() {
		t.Fatalf("result = %+v", res)
	}
	if called {
		t.Error("git push ran with git_push disabled")
	}
}
