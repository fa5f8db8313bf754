// Package admin performs the multi-step writes behind the admin pages.
// Each write is a saga: a failed step undoes the steps before it.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gosimple/slug"
	"github.com/programme-lv/arena/apiclient"
	"github.com/programme-lv/arena/harness"
	"github.com/programme-lv/arena/planglist"
	"github.com/programme-lv/arena/validation"
)

type Admin struct {
	client *apiclient.Client
	logger *slog.Logger
}

func New(client *apiclient.Client) *Admin {
	return &Admin{
		client: client,
		logger: slog.Default().With("module", "admin"),
	}
}

func (a *Admin) SetLogger(l *slog.Logger) {
	a.logger = l
}

// ValidateChallenge checks a draft before anything is sent.
func ValidateChallenge(d ChallengeDraft) error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	for i, tc := range d.TestCases {
		if tc.Expected == "" {
			return newErrTestCase(i, "expected output is required")
		}
	}
	seen := mapset.NewThreadUnsafeSet[string]()
	for _, t := range d.Templates {
		if _, err := planglist.GetProgrammingLanguageById(t.Language); err != nil {
			return newErrInvalidTemplate(t.Language, err)
		}
		if !seen.Add(t.Language) {
			return newErrDuplicateLanguage(t.Language)
		}
		if t.ExecutionTemplate == "" {
			continue
		}
		if err := harness.Validate(t.ExecutionTemplate, t.StarterCode); err != nil {
			return newErrInvalidTemplate(t.Language, err)
		}
	}
	return nil
}

func ValidateContest(d ContestDraft) error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	if !d.EndTime.After(d.StartTime) {
		return newErrSchedule("end_time must be after start_time")
	}
	if !d.RegistrationDeadline.IsZero() && d.RegistrationDeadline.After(d.EndTime) {
		return newErrSchedule("registration_deadline must not be after end_time")
	}
	return nil
}

// normalizeTags lower-cases, trims and dedupes tags, keeping their order.
func normalizeTags(tags []string) []string {
	seen := mapset.NewThreadUnsafeSet[string]()
	res := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || !seen.Add(t) {
			continue
		}
		res = append(res, t)
	}
	return res
}

func (d ChallengeDraft) challenge() apiclient.Challenge {
	s := d.Slug
	if s == "" {
		s = slug.Make(d.Title)
	}
	return apiclient.Challenge{
		Title:         strings.TrimSpace(d.Title),
		Slug:          s,
		Description:   d.Description,
		Difficulty:    d.Difficulty,
		Tags:          normalizeTags(d.Tags),
		TimeLimitMs:   d.TimeLimitMs,
		MemoryLimitMB: d.MemoryLimitMB,
		Points:        d.Points,
		Author:        d.Author,
	}
}

func (tc TestCaseDraft) testCase() apiclient.TestCase {
	return apiclient.TestCase{
		Input:          tc.Input,
		ExpectedOutput: tc.Expected,
		IsHidden:       tc.Hidden,
		Points:         tc.Points,
	}
}

func (t TemplateDraft) template() apiclient.FunctionTemplate {
	return apiclient.FunctionTemplate{
		Language:          t.Language,
		FunctionName:      t.FunctionName,
		Signature:         t.Signature,
		StarterCode:       t.StarterCode,
		ExecutionTemplate: t.ExecutionTemplate,
	}
}

// childSteps creates the draft's test cases and templates under *id.
func (a *Admin) childSteps(id *string, d ChallengeDraft) []Step {
	var steps []Step
	for i, tc := range d.TestCases {
		steps = append(steps, Step{
			Name: fmt.Sprintf("create test case %d", i+1),
			Do: func(ctx context.Context) error {
				_, err := a.client.CreateTestCase(ctx, *id, tc.testCase()).Get()
				return err
			},
		})
	}
	for _, t := range d.Templates {
		steps = append(steps, Step{
			Name: fmt.Sprintf("create %s template", t.Language),
			Do: func(ctx context.Context) error {
				_, err := a.client.CreateTemplate(ctx, *id, t.template()).Get()
				return err
			},
		})
	}
	return steps
}

// CreateChallenge creates the challenge, then its test cases and
// templates. Any failure deletes the challenge again.
func (a *Admin) CreateChallenge(ctx context.Context, d ChallengeDraft) (apiclient.Challenge, error) {
	if err := ValidateChallenge(d); err != nil {
		return apiclient.Challenge{}, err
	}

	var created apiclient.Challenge
	saga := NewSaga("create challenge", a.logger)
	saga.Add(Step{
		Name: "create challenge",
		Do: func(ctx context.Context) error {
			var err error
			created, err = a.client.CreateChallenge(ctx, d.challenge()).Get()
			return err
		},
		Undo: func(ctx context.Context) error {
			_, err := a.client.DeleteChallenge(ctx, created.ID).Get()
			return err
		},
		Leftover: func() string {
			return fmt.Sprintf("challenge %q (id %s)", created.Title, created.ID)
		},
	})
	saga.Add(a.childSteps(&created.ID, d)...)

	if err := saga.Run(ctx); err != nil {
		return apiclient.Challenge{}, err
	}
	a.logger.Info("challenge created", "id", created.ID, "slug", created.Slug,
		"test_cases", len(d.TestCases), "templates", len(d.Templates))
	return created, nil
}

// UpdateChallenge overwrites the challenge and replaces its test cases
// and templates. Only the challenge fields can be restored on failure;
// deleted children are not recreated.
func (a *Admin) UpdateChallenge(ctx context.Context, id string, d ChallengeDraft) (apiclient.Challenge, error) {
	if err := ValidateChallenge(d); err != nil {
		return apiclient.Challenge{}, err
	}

	previous, err := a.client.GetChallenge(ctx, id).Get()
	if err != nil {
		return apiclient.Challenge{}, err
	}
	oldTests, err := a.client.TestCases(ctx, id).Get()
	if err != nil {
		return apiclient.Challenge{}, err
	}
	oldTmpls, err := a.client.Templates(ctx, id).Get()
	if err != nil {
		return apiclient.Challenge{}, err
	}

	var updated apiclient.Challenge
	saga := NewSaga("update challenge", a.logger)
	saga.Add(Step{
		Name: "update challenge",
		Do: func(ctx context.Context) error {
			var err error
			updated, err = a.client.UpdateChallenge(ctx, id, d.challenge()).Get()
			return err
		},
		Undo: func(ctx context.Context) error {
			_, err := a.client.UpdateChallenge(ctx, id, previous).Get()
			return err
		},
		Leftover: func() string {
			return fmt.Sprintf("the edited fields of challenge %s", id)
		},
	})
	for _, tc := range oldTests {
		saga.Add(Step{
			Name: fmt.Sprintf("delete test case %s", tc.ID),
			Do: func(ctx context.Context) error {
				_, err := a.client.DeleteTestCase(ctx, tc.ID).Get()
				return err
			},
		})
	}
	for _, t := range oldTmpls {
		saga.Add(Step{
			Name: fmt.Sprintf("delete %s template", t.Language),
			Do: func(ctx context.Context) error {
				_, err := a.client.DeleteTemplate(ctx, t.ID).Get()
				return err
			},
		})
	}
	saga.Add(a.childSteps(&id, d)...)

	if err := saga.Run(ctx); err != nil {
		return apiclient.Challenge{}, err
	}
	a.logger.Info("challenge updated", "id", id)
	return updated, nil
}

// CreateContest creates the contest and links its challenges. Any failure
// deletes the contest again.
func (a *Admin) CreateContest(ctx context.Context, d ContestDraft) (apiclient.Contest, error) {
	if err := ValidateContest(d); err != nil {
		return apiclient.Contest{}, err
	}

	contest := d.contest()

	var created apiclient.Contest
	saga := NewSaga("create contest", a.logger)
	saga.Add(Step{
		Name: "create contest",
		Do: func(ctx context.Context) error {
			var err error
			created, err = a.client.CreateContest(ctx, contest).Get()
			return err
		},
		Undo: func(ctx context.Context) error {
			_, err := a.client.DeleteContest(ctx, created.ID).Get()
			return err
		},
		Leftover: func() string {
			return fmt.Sprintf("contest %q (id %s)", created.Title, created.ID)
		},
	})
	for i, ch := range d.Challenges {
		saga.Add(Step{
			Name: fmt.Sprintf("link challenge %s", ch.ID),
			Do: func(ctx context.Context) error {
				link := apiclient.ContestChallenge{ChallengeID: ch.ID, Points: ch.Points, Order: i + 1}
				_, err := a.client.AddContestChallenge(ctx, created.ID, link).Get()
				return err
			},
		})
	}

	if err := saga.Run(ctx); err != nil {
		return apiclient.Contest{}, err
	}
	a.logger.Info("contest created", "id", created.ID, "challenges", len(d.Challenges))
	return created, nil
}

func (d ContestDraft) contest() apiclient.Contest {
	return apiclient.Contest{
		Title:                strings.TrimSpace(d.Title),
		Description:          d.Description,
		StartTime:            d.StartTime,
		EndTime:              d.EndTime,
		RegistrationDeadline: d.registrationDeadline(),
		DurationMinutes:      int(d.EndTime.Sub(d.StartTime).Minutes()),
		MaxParticipants:      d.MaxParticipants,
		Prizes:               d.Prizes,
		Rules:                d.Rules,
	}
}

func (d ContestDraft) registrationDeadline() *time.Time {
	if d.RegistrationDeadline.IsZero() {
		return nil
	}
	t := d.RegistrationDeadline
	return &t
}

// UpdateContest overwrites the contest fields and links the draft's
// challenges that are not linked yet. Links are never removed. A failure
// restores the previous fields; links made before it are kept.
func (a *Admin) UpdateContest(ctx context.Context, id string, d ContestDraft) (apiclient.Contest, error) {
	if err := ValidateContest(d); err != nil {
		return apiclient.Contest{}, err
	}

	previous, err := a.client.GetContest(ctx, id).Get()
	if err != nil {
		return apiclient.Contest{}, err
	}
	linked, err := a.client.ContestChallenges(ctx, id).Get()
	if err != nil {
		return apiclient.Contest{}, err
	}
	have := mapset.NewThreadUnsafeSet[string]()
	for _, ch := range linked {
		have.Add(ch.ID)
	}

	contest := d.contest()
	contest.ID = id
	contest.Participants = previous.Participants

	var updated apiclient.Contest
	saga := NewSaga("update contest", a.logger)
	saga.Add(Step{
		Name: "update contest",
		Do: func(ctx context.Context) error {
			var err error
			updated, err = a.client.UpdateContest(ctx, id, contest).Get()
			return err
		},
		Undo: func(ctx context.Context) error {
			_, err := a.client.UpdateContest(ctx, id, previous).Get()
			return err
		},
		Leftover: func() string {
			return fmt.Sprintf("the edited fields of contest %s", id)
		},
	})
	order := len(linked)
	for _, ch := range d.Challenges {
		if !have.Add(ch.ID) {
			continue
		}
		order++
		link := apiclient.ContestChallenge{ChallengeID: ch.ID, Points: ch.Points, Order: order}
		saga.Add(Step{
			Name: fmt.Sprintf("link challenge %s", ch.ID),
			Do: func(ctx context.Context) error {
				_, err := a.client.AddContestChallenge(ctx, id, link).Get()
				return err
			},
		})
	}

	if err := saga.Run(ctx); err != nil {
		return apiclient.Contest{}, err
	}
	a.logger.Info("contest updated", "id", id, "linked", order-len(linked))
	return updated, nil
}

func (a *Admin) DeleteChallenge(ctx context.Context, id string) error {
	if _, err := a.client.DeleteChallenge(ctx, id).Get(); err != nil {
		return err
	}
	a.logger.Info("challenge deleted", "id", id)
	return nil
}

func (a *Admin) DeleteContest(ctx context.Context, id string) error {
	if _, err := a.client.DeleteContest(ctx, id).Get(); err != nil {
		return err
	}
	a.logger.Info("contest deleted", "id", id)
	return nil
}
