// Package coderun executes a user's code against a challenge's visible test
// cases through the remote execution endpoint and grades the output.
package coderun

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/programme-lv/arena/apiclient"
	"github.com/programme-lv/arena/harness"
	"github.com/programme-lv/arena/planglist"
	"golang.org/x/sync/errgroup"
)

// Executor is the remote execution endpoint. *apiclient.Client is one.
type Executor interface {
	Execute(ctx context.Context, req apiclient.ExecuteRequest) apiclient.Result[apiclient.ExecutionResult]
}

type Runner struct {
	exec     Executor
	parallel int
	logger   *slog.Logger
}

// NewRunner returns a runner that keeps at most parallel executions in
// flight. Values below 1 run tests one at a time.
func NewRunner(exec Executor, parallel int) *Runner {
	if parallel < 1 {
		parallel = 1
	}
	return &Runner{
		exec:     exec,
		parallel: parallel,
		logger:   slog.Default().With("module", "coderun"),
	}
}

func (r *Runner) SetLogger(l *slog.Logger) {
	r.logger = l
}

// Run makes exactly one execute call per visible test case. Results keep
// the order of the test cases.
func (r *Runner) Run(ctx context.Context, in RunInput) (Report, error) {
	if strings.TrimSpace(in.Code) == "" {
		return Report{}, newErrEmptyCode()
	}
	if _, err := planglist.GetProgrammingLanguageById(in.Language); err != nil {
		return Report{}, err
	}

	visible, hidden := Visible(in.TestCases)
	tmpl := harness.FindTemplate(in.Templates, in.Language)
	if tmpl == nil {
		r.logger.Debug("no template for language, sending raw code", "language", in.Language)
	}

	results := make([]Result, len(visible))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallel)
	for i, tc := range visible {
		g.Go(func() error {
			results[i] = r.runOne(gctx, tmpl, in, tc)
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Results: results, Total: len(visible), HiddenCount: hidden}
	for _, res := range results {
		if res.Status == StatusPassed {
			report.Passed++
		}
	}
	r.logger.Info("run finished",
		"challenge", in.ChallengeID,
		"language", in.Language,
		"passed", report.Passed,
		"total", report.Total)
	return report, ctx.Err()
}

func (r *Runner) runOne(ctx context.Context, tmpl *apiclient.FunctionTemplate, in RunInput, tc apiclient.TestCase) Result {
	res := Result{
		TestCaseID: tc.ID,
		Input:      tc.Input,
		Expected:   tc.ExpectedOutput,
	}

	asm := harness.Build(tmpl, in.Language, in.Code, tc.Input)
	res.Fallback = asm.Fallback
	if asm.Err != nil {
		res.Status = StatusError
		res.Message = asm.Err.Error()
		return res
	}

	req := apiclient.ExecuteRequest{Code: asm.Source, Language: in.Language}
	if !asm.InputInjected {
		req.Stdin = tc.Input
	}

	start := time.Now()
	out, err := r.exec.Execute(ctx, req).Get()
	res.Duration = time.Since(start)
	if err != nil {
		r.logger.Warn("execution failed", "test_case", tc.ID, "error", err)
		res.Status = StatusError
		res.Message = err.Error()
		return res
	}

	res.Actual = out.Output
	if out.ExecutionTimeMs > 0 {
		res.Duration = time.Duration(out.ExecutionTimeMs * float64(time.Millisecond))
	}
	if out.Error != "" {
		res.Status = StatusError
		res.Message = out.Error
		return res
	}
	if strings.TrimSpace(out.Output) == strings.TrimSpace(tc.ExpectedOutput) {
		res.Status = StatusPassed
	} else {
		res.Status = StatusFailed
	}
	return res
}

// Submit runs the visible tests, scores them and hands the submission to
// onSubmit, typically a call that stores it remotely.
func (r *Runner) Submit(ctx context.Context, in RunInput, onSubmit func(apiclient.Submission) error) (Report, apiclient.Submission, error) {
	report, err := r.Run(ctx, in)
	if err != nil {
		return report, apiclient.Submission{}, err
	}

	sub := apiclient.Submission{
		ChallengeID: in.ChallengeID,
		ContestID:   in.ContestID,
		Code:        in.Code,
		Language:    in.Language,
		PassedTests: report.Passed,
		TotalTests:  report.Total,
		Score:       report.Score(),
	}
	if onSubmit != nil {
		if err := onSubmit(sub); err != nil {
			return report, sub, err
		}
	}
	return report, sub, nil
}
