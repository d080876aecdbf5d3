// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"fmt"
	"os/exec"
	"time"

	"github.com/pdiddy/landing-engine/pkg/types"
)

// PublishResult summarizes one publish attempt for a case.
type PublishResult struct {
	Status  string `json:"status"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Succeeded reports whether the page reached the public directory.
func (r PublishResult) Succeeded() bool { return r.Status == "success" }

// DeployStub stands in for the real deploy hook (CI, CDN invalidation).
// Hosting serves the public directory directly, so writing the file is the
// deploy; the stub keeps the failure-logging path exercised end to end.
func DeployStub(path string) (bool, string) {
	return true, "deploy stub success"
}

// deployStub and gitCommitAndPush are package vars so tests can inject
// failures without a git checkout.
var (
	deployStub = DeployStub
	gitPush    = GitCommitAndPush
)

// GitCommitAndPush stages the public directory, commits, and pushes.
func GitCommitAndPush(message string) error {
	cmds := [][]string{
		{"git", "add", "public"},
		{"git", "commit", "-m", message},
		{"git", "push"},
	}
	for _, args := range cmds {
		cmd := exec.Command(args[0], args[1:]...)
		out, err := cmd.CombinedOutput()
		if err != nil {
			return fmt.Errorf("git command %v failed: %v: %s", args, err, out)
		}
	}
	return nil
}

// Publish renders a draft, writes it under the public directory, updates the
// page catalog and sitemap, and runs the deploy step. Any failure is
// recorded in the deploy failure log and returned as a failed result; the
// caller never needs its own error handling around publication.
func Publish(c types.Case, d types.Draft, cfg types.PublishConfig) PublishResult {
	timestamp := time.Now().UTC().Format(time.RFC3339)

	fail := func(err error) PublishResult {
		entry := FailureEntry{
			CaseID:       c.CaseID,
			ErrorType:    "deploy_failed",
			Stage:        "deploy_stub",
			ErrorMessage: err.Error(),
			Timestamp:    timestamp,
		}
		if logErr := AppendFailure(cfg.LogsDir, entry); logErr != nil {
			return PublishResult{Status: "failed", Error: fmt.Sprintf("%v (failure log: %v)", err, logErr)}
		}
		return PublishResult{Status: "failed", Error: err.Error()}
	}

	html, err := RenderHTML(d)
	if err != nil {
		return fail(err)
	}
	path, err := SaveHTML(cfg.PublicDir, c.CaseID, html)
	if err != nil {
		return fail(err)
	}

	if err := UpdatePages(cfg.PublicDir, ExtractPageMeta(c, d, time.Now())); err != nil {
		return fail(err)
	}
	if _, err := BuildSitemap(cfg.PublicDir, cfg.BaseURL, time.Now()); err != nil {
		return fail(err)
	}

	ok, message := deployStub(path)
	if !ok {
		return fail(fmt.Errorf("deploy stub: %s", message))
	}

	if cfg.GitPush {
		if err := gitPush(fmt.Sprintf("auto: publish %s", c.CaseID)); err != nil {
			return fail(err)
		}
	}

	return PublishResult{Status: "success", Path: path, Message: message}
}
