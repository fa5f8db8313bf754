package pages

import (
	"context"
	"fmt"
	"sync"

	"github.com/programme-lv/arena/apiclient"
	"github.com/programme-lv/arena/coderun"
	"github.com/programme-lv/arena/harness"
	"github.com/programme-lv/arena/planglist"
	"golang.org/x/sync/errgroup"
)

type SolveData struct {
	Challenge   apiclient.Challenge
	Templates   []apiclient.FunctionTemplate
	TestCases   []apiclient.TestCase
	Samples     []apiclient.TestCase
	HiddenCount int
}

// ChallengeSolve is the editor: one code buffer per language, run against
// the sample tests and submit.
type ChallengeSolve struct {
	*Page[SolveData]
	deps      Deps
	id        string
	contestID string
	runner    *coderun.Runner

	mu         sync.Mutex
	language   string
	buffers    map[string]string
	report     *coderun.Report
	submission *apiclient.Submission
}

// NewChallengeSolve opens the editor for a challenge; contestID is empty
// outside contests.
func NewChallengeSolve(d Deps, id, contestID string) *ChallengeSolve {
	runner := coderun.NewRunner(d.client(), d.ParallelRuns)
	runner.SetLogger(d.logger())
	p := &ChallengeSolve{
		deps:      d,
		id:        id,
		contestID: contestID,
		runner:    runner,
		buffers:   map[string]string{},
	}
	p.Page = newPage(d, Path(PathChallengeSolve, id), Authenticated, func(ctx context.Context) (SolveData, error) {
		var data SolveData
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			data.Challenge, err = d.client().GetChallenge(gctx, id).Get()
			return err
		})
		g.Go(func() error {
			var err error
			data.Templates, err = d.client().Templates(gctx, id).Get()
			return err
		})
		g.Go(func() error {
			var err error
			data.TestCases, err = d.client().TestCases(gctx, id).Get()
			return err
		})
		if err := g.Wait(); err != nil {
			return SolveData{}, err
		}
		data.Samples, data.HiddenCount = coderun.Visible(data.TestCases)
		return data, nil
	})
	return p
}

func (p *ChallengeSolve) Load(ctx context.Context) error {
	if err := p.Page.Load(ctx); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.language == "" {
		p.language = p.defaultLanguage()
	}
	return nil
}

func (p *ChallengeSolve) ContestID() string {
	return p.contestID
}

// defaultLanguage is the first supported language with a template.
func (p *ChallengeSolve) defaultLanguage() string {
	tmpls := p.Data().Templates
	for _, id := range planglist.IDs() {
		if harness.FindTemplate(tmpls, id) != nil {
			return id
		}
	}
	return planglist.IDs()[0]
}

func (p *ChallengeSolve) Language() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.language
}

// SetLanguage switches the editor; each language keeps its own buffer.
func (p *ChallengeSolve) SetLanguage(lang string) error {
	if _, err := planglist.GetProgrammingLanguageById(lang); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.language = lang
	return nil
}

// Starter is the code a language's buffer starts with: the template's
// starter code, or a hello world under a note when the challenge has no
// template for it.
func (p *ChallengeSolve) Starter(lang string) string {
	if t := harness.FindTemplate(p.Data().Templates, lang); t != nil {
		return t.StarterCode
	}
	if l, err := planglist.GetProgrammingLanguageById(lang); err == nil {
		return fmt.Sprintf("%s no %s template for this challenge, the program runs as written\n%s", l.LineComment, l.FullName, l.HelloWorldCode)
	}
	return ""
}

func (p *ChallengeSolve) Code() string {
	p.mu.Lock()
	lang := p.language
	code, ok := p.buffers[lang]
	p.mu.Unlock()
	if ok {
		return code
	}
	return p.Starter(lang)
}

func (p *ChallengeSolve) SetCode(code string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buffers[p.language] = code
}

// ResetCode drops the edits of the current language.
func (p *ChallengeSolve) ResetCode() {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.buffers, p.language)
}

func (p *ChallengeSolve) input() coderun.RunInput {
	data := p.Data()
	return coderun.RunInput{
		ChallengeID: p.id,
		ContestID:   p.contestID,
		Language:    p.Language(),
		Code:        p.Code(),
		Templates:   data.Templates,
		TestCases:   data.TestCases,
	}
}

// Run executes the code against the sample tests.
func (p *ChallengeSolve) Run(ctx context.Context) (coderun.Report, error) {
	report, err := p.runner.Run(ctx, p.input())
	if err != nil {
		return report, err
	}
	p.mu.Lock()
	p.report = &report
	p.mu.Unlock()
	return report, nil
}

// Submit runs the tests and stores the scored submission remotely.
func (p *ChallengeSolve) Submit(ctx context.Context) (coderun.Report, apiclient.Submission, error) {
	var stored apiclient.Submission
	report, _, err := p.runner.Submit(ctx, p.input(), func(sub apiclient.Submission) error {
		var err error
		stored, err = p.deps.client().CreateSubmission(ctx, sub).Get()
		return err
	})
	if err != nil {
		return report, stored, err
	}
	p.mu.Lock()
	p.report = &report
	p.submission = &stored
	p.mu.Unlock()
	p.deps.logger().Info("submitted", "challenge", p.id, "score", stored.Score)
	return report, stored, nil
}

// LastReport is the result of the latest run or submit, nil before any.
func (p *ChallengeSolve) LastReport() *coderun.Report {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.report
}

func (p *ChallengeSolve) LastSubmission() *apiclient.Submission {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.submission
}
