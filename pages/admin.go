package pages

import (
	"context"

	"github.com/programme-lv/arena/admin"
	"github.com/programme-lv/arena/apiclient"
)

type AdminChallenges struct {
	*Page[[]apiclient.Challenge]
	admin *admin.Admin
}

func NewAdminChallenges(d Deps) *AdminChallenges {
	adm := admin.New(d.client())
	adm.SetLogger(d.logger())
	return &AdminChallenges{
		Page: newPage(d, PathAdminChallenges, AdminOnly, func(ctx context.Context) ([]apiclient.Challenge, error) {
			return d.client().ListChallenges(ctx).Get()
		}),
		admin: adm,
	}
}

// Create runs the creation saga and reloads the list.
func (p *AdminChallenges) Create(ctx context.Context, draft admin.ChallengeDraft) (apiclient.Challenge, error) {
	ch, err := p.admin.CreateChallenge(ctx, draft)
	if err != nil {
		return ch, err
	}
	return ch, p.Load(ctx)
}

func (p *AdminChallenges) Update(ctx context.Context, id string, draft admin.ChallengeDraft) (apiclient.Challenge, error) {
	ch, err := p.admin.UpdateChallenge(ctx, id, draft)
	if err != nil {
		return ch, err
	}
	return ch, p.Load(ctx)
}

func (p *AdminChallenges) Delete(ctx context.Context, id string) error {
	if err := p.admin.DeleteChallenge(ctx, id); err != nil {
		return err
	}
	return p.Load(ctx)
}

// Draft fetches a challenge with its children as an editable draft.
func (p *AdminChallenges) Draft(ctx context.Context, id string) (admin.ChallengeDraft, error) {
	c := p.deps.client()
	ch, err := c.GetChallenge(ctx, id).Get()
	if err != nil {
		return admin.ChallengeDraft{}, err
	}
	tcs, err := c.TestCases(ctx, id).Get()
	if err != nil {
		return admin.ChallengeDraft{}, err
	}
	tmpls, err := c.Templates(ctx, id).Get()
	if err != nil {
		return admin.ChallengeDraft{}, err
	}
	return admin.DraftFromChallenge(ch, tcs, tmpls), nil
}

type AdminContests struct {
	*Page[[]apiclient.Contest]
	admin *admin.Admin
}

func NewAdminContests(d Deps) *AdminContests {
	adm := admin.New(d.client())
	adm.SetLogger(d.logger())
	return &AdminContests{
		Page: newPage(d, PathAdminContests, AdminOnly, func(ctx context.Context) ([]apiclient.Contest, error) {
			return d.client().ListContests(ctx).Get()
		}),
		admin: adm,
	}
}

func (p *AdminContests) Create(ctx context.Context, draft admin.ContestDraft) (apiclient.Contest, error) {
	c, err := p.admin.CreateContest(ctx, draft)
	if err != nil {
		return c, err
	}
	return c, p.Load(ctx)
}

func (p *AdminContests) Update(ctx context.Context, id string, draft admin.ContestDraft) (apiclient.Contest, error) {
	c, err := p.admin.UpdateContest(ctx, id, draft)
	if err != nil {
		return c, err
	}
	return c, p.Load(ctx)
}

func (p *AdminContests) Delete(ctx context.Context, id string) error {
	if err := p.admin.DeleteContest(ctx, id); err != nil {
		return err
	}
	return p.Load(ctx)
}
