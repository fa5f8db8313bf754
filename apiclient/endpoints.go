package apiclient

import (
	"context"
	"net/http"
	"net/url"
)

type LoginParams struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterParams struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, p LoginParams) Result[AuthPayload] {
	return call[AuthPayload](ctx, c, http.MethodPost, "/auth/login", nil, p)
}

func (c *Client) Register(ctx context.Context, p RegisterParams) Result[AuthPayload] {
	return call[AuthPayload](ctx, c, http.MethodPost, "/auth/register", nil, p)
}

// Profile returns the user the current token belongs to.
func (c *Client) Profile(ctx context.Context) Result[User] {
	return call[User](ctx, c, http.MethodGet, "/auth/profile", nil, nil)
}

// contests

func (c *Client) ListContests(ctx context.Context) Result[[]Contest] {
	return call[[]Contest](ctx, c, http.MethodGet, "/contests", nil, nil)
}

func (c *Client) GetContest(ctx context.Context, id string) Result[Contest] {
	return call[Contest](ctx, c, http.MethodGet, pathID("/contests/%s", id), nil, nil)
}

func (c *Client) CreateContest(ctx context.Context, contest Contest) Result[Contest] {
	return call[Contest](ctx, c, http.MethodPost, "/contests", nil, contest)
}

func (c *Client) UpdateContest(ctx context.Context, id string, contest Contest) Result[Contest] {
	return call[Contest](ctx, c, http.MethodPut, pathID("/contests/%s", id), nil, contest)
}

func (c *Client) DeleteContest(ctx context.Context, id string) Result[Empty] {
	return call[Empty](ctx, c, http.MethodDelete, pathID("/contests/%s", id), nil, nil)
}

func (c *Client) JoinContest(ctx context.Context, id string) Result[Empty] {
	return call[Empty](ctx, c, http.MethodPost, pathID("/contests/%s/register", id), nil, nil)
}

func (c *Client) ContestChallenges(ctx context.Context, id string) Result[[]Challenge] {
	return call[[]Challenge](ctx, c, http.MethodGet, pathID("/contests/%s/challenges", id), nil, nil)
}

func (c *Client) AddContestChallenge(ctx context.Context, contestID string, link ContestChallenge) Result[Empty] {
	return call[Empty](ctx, c, http.MethodPost, pathID("/contests/%s/challenges", contestID), nil, link)
}

func (c *Client) Leaderboard(ctx context.Context, contestID string) Result[[]Participant] {
	return call[[]Participant](ctx, c, http.MethodGet, pathID("/contests/%s/leaderboard", contestID), nil, nil)
}

func (c *Client) GlobalLeaderboard(ctx context.Context) Result[[]Participant] {
	return call[[]Participant](ctx, c, http.MethodGet, "/leaderboard", nil, nil)
}

// challenges

func (c *Client) ListChallenges(ctx context.Context) Result[[]Challenge] {
	return call[[]Challenge](ctx, c, http.MethodGet, "/challenges", nil, nil)
}

func (c *Client) GetChallenge(ctx context.Context, id string) Result[Challenge] {
	return call[Challenge](ctx, c, http.MethodGet, pathID("/challenges/%s", id), nil, nil)
}

func (c *Client) CreateChallenge(ctx context.Context, ch Challenge) Result[Challenge] {
	return call[Challenge](ctx, c, http.MethodPost, "/challenges", nil, ch)
}

func (c *Client) UpdateChallenge(ctx context.Context, id string, ch Challenge) Result[Challenge] {
	return call[Challenge](ctx, c, http.MethodPut, pathID("/challenges/%s", id), nil, ch)
}

func (c *Client) DeleteChallenge(ctx context.Context, id string) Result[Empty] {
	return call[Empty](ctx, c, http.MethodDelete, pathID("/challenges/%s", id), nil, nil)
}

// test cases and templates

func (c *Client) TestCases(ctx context.Context, challengeID string) Result[[]TestCase] {
	return call[[]TestCase](ctx, c, http.MethodGet, pathID("/challenges/%s/test-cases", challengeID), nil, nil)
}

func (c *Client) CreateTestCase(ctx context.Context, challengeID string, tc TestCase) Result[TestCase] {
	return call[TestCase](ctx, c, http.MethodPost, pathID("/challenges/%s/test-cases", challengeID), nil, tc)
}

func (c *Client) DeleteTestCase(ctx context.Context, id string) Result[Empty] {
	return call[Empty](ctx, c, http.MethodDelete, pathID("/test-cases/%s", id), nil, nil)
}

func (c *Client) Templates(ctx context.Context, challengeID string) Result[[]FunctionTemplate] {
	return call[[]FunctionTemplate](ctx, c, http.MethodGet, pathID("/challenges/%s/templates", challengeID), nil, nil)
}

func (c *Client) CreateTemplate(ctx context.Context, challengeID string, tmpl FunctionTemplate) Result[FunctionTemplate] {
	return call[FunctionTemplate](ctx, c, http.MethodPost, pathID("/challenges/%s/templates", challengeID), nil, tmpl)
}

func (c *Client) DeleteTemplate(ctx context.Context, id string) Result[Empty] {
	return call[Empty](ctx, c, http.MethodDelete, pathID("/templates/%s", id), nil, nil)
}

// execution and submissions

func (c *Client) Execute(ctx context.Context, req ExecuteRequest) Result[ExecutionResult] {
	return call[ExecutionResult](ctx, c, http.MethodPost, "/execute", nil, req)
}

func (c *Client) CreateSubmission(ctx context.Context, s Submission) Result[Submission] {
	return call[Submission](ctx, c, http.MethodPost, "/submissions", nil, s)
}

func (c *Client) ListSubmissions(ctx context.Context, f SubmissionFilter) Result[[]Submission] {
	q := url.Values{}
	if f.ChallengeID != "" {
		q.Set("challengeId", f.ChallengeID)
	}
	if f.ContestID != "" {
		q.Set("contestId", f.ContestID)
	}
	return call[[]Submission](ctx, c, http.MethodGet, "/submissions", q, nil)
}
