// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runner drives the batch loop: iterate runnable cases, execute the
// page workflow for each, publish approvals, and persist case statuses.
package runner

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/landing-engine/internal/casegen"
	"github.com/pdiddy/landing-engine/internal/pipeline"
	"github.com/pdiddy/landing-engine/internal/publish"
	"github.com/pdiddy/landing-engine/pkg/types"
)

// DefaultMaxCasesPerRun bounds one batch when the config does not.
const DefaultMaxCasesPerRun = 10

// CaseResult pairs one case with its workflow and publish outcomes.
type CaseResult struct {
	Case     types.Case             `json:"case"`
	Pipeline pipeline.Result        `json:"pipeline"`
	Deploy   *publish.PublishResult `json:"deploy,omitempty"`
	Err      error                  `json:"-"`
}

// Runner executes batches over the case store.
type Runner struct {
	Agents      pipeline.Agents
	PipelineCfg types.PipelineConfig
	PublishCfg  types.PublishConfig
	Cfg         types.RunnerConfig

	// Out receives progress lines; defaults to io.Discard.
	Out io.Writer

	// Publisher publishes one approved draft. A field so tests can assert
	// that only approved cases reach publication.
	Publisher func(c types.Case, d types.Draft, cfg types.PublishConfig) publish.PublishResult

	// Now supplies status timestamps; defaults to time.Now.
	Now func() time.Time
}

// New returns a Runner with the default publisher wired in.
func New(agents pipeline.Agents, pipelineCfg types.PipelineConfig, publishCfg types.PublishConfig, cfg types.RunnerConfig, out io.Writer) *Runner {
	if out == nil {
		out = io.Discard
	}
	return &Runner{
		Agents:      agents,
		PipelineCfg: pipelineCfg,
		PublishCfg:  publishCfg,
		Cfg:         cfg,
		Out:         out,
		Publisher:   publish.Publish,
		Now:         time.Now,
	}
}

// RunAll processes up to the configured number of runnable cases from the
// case store, in file order. Pages are published only for cases that end
// approved_for_publish. A workflow error leaves the case runnable for the
// next batch; the batch itself continues. Updated statuses are saved back
// even when the batch stops early on context cancellation.
func (r *Runner) RunAll(ctx context.Context, casesFile string) ([]CaseResult, error) {
	cases, err := casegen.LoadCases(casesFile)
	if err != nil {
		return nil, err
	}

	maxCases := r.Cfg.MaxCasesPerRun
	if maxCases <= 0 {
		maxCases = DefaultMaxCasesPerRun
	}

	failuresBefore, err := publish.CountFailures(r.PublishCfg.LogsDir)
	if err != nil {
		return nil, err
	}

	var results []CaseResult
	processed := 0

	for i := range cases {
		if processed >= maxCases || ctx.Err() != nil {
			break
		}
		if !cases[i].Status.Runnable() {
			continue
		}
		processed++

		result := r.runOne(ctx, &cases[i])
		results = append(results, result)
	}

	// Statuses accumulated so far are persisted regardless of how the
	// batch ended.
	if saveErr := casegen.SaveCases(casesFile, cases); saveErr != nil {
		return results, saveErr
	}

	failuresAfter, err := publish.CountFailures(r.PublishCfg.LogsDir)
	if err == nil && failuresAfter > failuresBefore {
		fmt.Fprintf(r.Out, "deploy failures grew from %d to %d; run the diagnose command for analysis\n",
			failuresBefore, failuresAfter)
	}

	return results, nil
}

// RunSingle executes the workflow for one case selected by ID and persists
// its new status.
func (r *Runner) RunSingle(ctx context.Context, casesFile, caseID string) (CaseResult, error) {
	cases, err := casegen.LoadCases(casesFile)
	if err != nil {
		return CaseResult{}, err
	}
	for i := range cases {
		if cases[i].CaseID != caseID {
			continue
		}
		result := r.runOne(ctx, &cases[i])
		if saveErr := casegen.SaveCases(casesFile, cases); saveErr != nil {
			return result, saveErr
		}
		return result, result.Err
	}
	return CaseResult{}, fmt.Errorf("case %q not found in %s", caseID, casesFile)
}

// runOne executes workflow plus optional publication for one case, mutating
// its status and last_run_at in place.
func (r *Runner) runOne(ctx context.Context, c *types.Case) CaseResult {
	fmt.Fprintf(r.Out, "case %s: running workflow\n", c.CaseID)

	res, err := pipeline.Run(ctx, r.Agents, *c, r.PipelineCfg)
	if err != nil {
		// Transport-level failure: the case stays runnable for the next batch.
		fmt.Fprintf(r.Out, "case %s: workflow error: %v\n", c.CaseID, err)
		return CaseResult{Case: *c, Err: err}
	}

	now := r.Now().UTC().Format(time.RFC3339)
	c.Status = res.Status
	c.LastRunAt = &now

	result := CaseResult{Case: *c, Pipeline: res}

	if res.Status == types.StatusApprovedForPublish {
		deploy := r.Publisher(*c, res.Draft, r.PublishCfg)
		result.Deploy = &deploy
		fmt.Fprintf(r.Out, "case %s: %s, publish %s\n", c.CaseID, res.Status, deploy.Status)
	} else {
		fmt.Fprintf(r.Out, "case %s: %s\n", c.CaseID, res.Status)
	}
	return result
}
