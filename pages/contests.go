package pages

import (
	"context"
	"sort"
	"time"

	"github.com/programme-lv/arena/apiclient"
	"github.com/programme-lv/arena/countdown"
	"golang.org/x/sync/errgroup"
)

type ContestItem struct {
	Contest apiclient.Contest
	Status  apiclient.ContestStatus
	// Countdown is the time until start for upcoming contests and until
	// the end for active ones.
	Countdown        time.Duration
	RegistrationOpen bool
}

func contestItem(c apiclient.Contest, now time.Time) ContestItem {
	item := ContestItem{
		Contest:          c,
		Status:           c.StatusAt(now),
		RegistrationOpen: c.RegistrationOpen(now),
	}
	switch item.Status {
	case apiclient.ContestUpcoming:
		item.Countdown = countdown.Remaining(now, c.StartTime)
	case apiclient.ContestActive:
		item.Countdown = countdown.Remaining(now, c.EndTime)
	}
	return item
}

type ContestListData struct {
	Active   []ContestItem
	Upcoming []ContestItem
	Ended    []ContestItem
}

func (d ContestListData) Len() int {
	return len(d.Active) + len(d.Upcoming) + len(d.Ended)
}

type ContestList = Page[ContestListData]

func NewContestList(d Deps) *ContestList {
	return newPage(d, PathContests, Authenticated, func(ctx context.Context) (ContestListData, error) {
		contests, err := d.client().ListContests(ctx).Get()
		if err != nil {
			return ContestListData{}, err
		}
		now := d.now()
		var data ContestListData
		for _, c := range contests {
			item := contestItem(c, now)
			switch item.Status {
			case apiclient.ContestActive:
				data.Active = append(data.Active, item)
			case apiclient.ContestUpcoming:
				data.Upcoming = append(data.Upcoming, item)
			default:
				data.Ended = append(data.Ended, item)
			}
		}
		sort.SliceStable(data.Upcoming, func(i, j int) bool {
			return data.Upcoming[i].Contest.StartTime.Before(data.Upcoming[j].Contest.StartTime)
		})
		sort.SliceStable(data.Ended, func(i, j int) bool {
			return data.Ended[i].Contest.EndTime.After(data.Ended[j].Contest.EndTime)
		})
		return data, nil
	})
}

type ContestDetailData struct {
	ContestItem
	Challenges []apiclient.Challenge
}

type ContestDetail = Page[ContestDetailData]

func NewContestDetail(d Deps, id string) *ContestDetail {
	return newPage(d, Path(PathContest, id), Authenticated, func(ctx context.Context) (ContestDetailData, error) {
		return fetchContest(ctx, d, id)
	})
}

// fetchContest loads a contest and its challenges concurrently.
func fetchContest(ctx context.Context, d Deps, id string) (ContestDetailData, error) {
	var contest apiclient.Contest
	var challenges []apiclient.Challenge

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		contest, err = d.client().GetContest(gctx, id).Get()
		return err
	})
	g.Go(func() error {
		var err error
		challenges, err = d.client().ContestChallenges(gctx, id).Get()
		return err
	})
	if err := g.Wait(); err != nil {
		return ContestDetailData{}, err
	}
	return ContestDetailData{
		ContestItem: contestItem(contest, d.now()),
		Challenges:  challenges,
	}, nil
}

type ParticipateData struct {
	ContestDetailData
	// Solved maps challenge id to the best score reached in this contest.
	Solved map[string]float64
}

// ContestParticipate is the in-contest view: the challenge set, the time
// left and the user's progress.
type ContestParticipate struct {
	*Page[ParticipateData]
	deps Deps
	id   string
}

func NewContestParticipate(d Deps, id string) *ContestParticipate {
	p := &ContestParticipate{deps: d, id: id}
	p.Page = newPage(d, Path(PathContestParticipate, id), Authenticated, func(ctx context.Context) (ParticipateData, error) {
		detail, err := fetchContest(ctx, d, id)
		if err != nil {
			return ParticipateData{}, err
		}
		if detail.Status != apiclient.ContestActive {
			return ParticipateData{}, newErrContestNotActive(string(detail.Status))
		}
		subs, err := d.client().ListSubmissions(ctx, apiclient.SubmissionFilter{ContestID: id}).Get()
		if err != nil {
			return ParticipateData{}, err
		}
		return ParticipateData{ContestDetailData: detail, Solved: bestScores(subs)}, nil
	})
	return p
}

// Join registers the user for the contest.
func (p *ContestParticipate) Join(ctx context.Context) error {
	contest, err := p.deps.client().GetContest(ctx, p.id).Get()
	if err != nil {
		return err
	}
	if !contest.RegistrationOpen(p.deps.now()) {
		return newErrRegistrationClosed()
	}
	if _, err := p.deps.client().JoinContest(ctx, p.id).Get(); err != nil {
		return err
	}
	p.deps.logger().Info("joined contest", "contest", p.id)
	return nil
}

// StartTimer ticks once a second until the contest ends. The caller stops
// it when the page goes away.
func (p *ContestParticipate) StartTimer(onTick func(left time.Duration)) *countdown.Timer {
	end := p.Data().Contest.EndTime
	return countdown.Start(end, time.Second, onTick, countdown.WithClock(p.deps.now))
}

func bestScores(subs []apiclient.Submission) map[string]float64 {
	best := map[string]float64{}
	for _, s := range subs {
		if cur, ok := best[s.ChallengeID]; !ok || s.Score > cur {
			best[s.ChallengeID] = s.Score
		}
	}
	return best
}

type ResultsData struct {
	Contest     apiclient.Contest
	Submissions []apiclient.Submission
	// TotalScore sums the best score of every attempted challenge.
	TotalScore float64
	// Standing is the user's leaderboard row, nil when not ranked.
	Standing *apiclient.Participant
}

type ContestResults = Page[ResultsData]

func NewContestResults(d Deps, id string) *ContestResults {
	return newPage(d, Path(PathContestResults, id), Authenticated, func(ctx context.Context) (ResultsData, error) {
		var data ResultsData
		var board []apiclient.Participant

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			data.Contest, err = d.client().GetContest(gctx, id).Get()
			return err
		})
		g.Go(func() error {
			var err error
			data.Submissions, err = d.client().ListSubmissions(gctx, apiclient.SubmissionFilter{ContestID: id}).Get()
			return err
		})
		g.Go(func() error {
			var err error
			board, err = d.client().Leaderboard(gctx, id).Get()
			return err
		})
		if err := g.Wait(); err != nil {
			return ResultsData{}, err
		}

		sort.SliceStable(data.Submissions, func(i, j int) bool {
			return data.Submissions[i].SubmittedAt.After(data.Submissions[j].SubmittedAt)
		})
		for _, score := range bestScores(data.Submissions) {
			data.TotalScore += score
		}
		if u := d.Session.User(); u != nil {
			for i := range board {
				if board[i].UserID == u.ID || board[i].Username == u.Username {
					row := board[i]
					data.Standing = &row
					break
				}
			}
		}
		return data, nil
	})
}

type LeaderboardData struct {
	Contest *apiclient.Contest // nil on the global leaderboard
	Rows    []apiclient.Participant
}

type Leaderboard = Page[LeaderboardData]

func NewContestLeaderboard(d Deps, id string) *Leaderboard {
	return newPage(d, Path(PathContestLeaderboard, id), Authenticated, func(ctx context.Context) (LeaderboardData, error) {
		contest, err := d.client().GetContest(ctx, id).Get()
		if err != nil {
			return LeaderboardData{}, err
		}
		rows, err := d.client().Leaderboard(ctx, id).Get()
		if err != nil {
			return LeaderboardData{}, err
		}
		return LeaderboardData{Contest: &contest, Rows: sortedRows(rows)}, nil
	})
}

func NewGlobalLeaderboard(d Deps) *Leaderboard {
	return newPage(d, PathLeaderboard, Authenticated, func(ctx context.Context) (LeaderboardData, error) {
		rows, err := d.client().GlobalLeaderboard(ctx).Get()
		if err != nil {
			return LeaderboardData{}, err
		}
		return LeaderboardData{Rows: sortedRows(rows)}, nil
	})
}

func sortedRows(rows []apiclient.Participant) []apiclient.Participant {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Rank < rows[j].Rank
	})
	return rows
}
