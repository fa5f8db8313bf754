package pages

import (
	"context"
	"sort"

	"github.com/programme-lv/arena/apiclient"
)

type ProfileData struct {
	User        apiclient.User
	Submissions []apiclient.Submission
	// Solved counts challenges with at least one submission passing every test.
	Solved       int
	AverageScore float64
}

type Profile = Page[ProfileData]

func NewProfile(d Deps) *Profile {
	return newPage(d, PathProfile, Authenticated, func(ctx context.Context) (ProfileData, error) {
		user, err := d.client().Profile(ctx).Get()
		if err != nil {
			return ProfileData{}, err
		}
		subs, err := d.client().ListSubmissions(ctx, apiclient.SubmissionFilter{}).Get()
		if err != nil {
			return ProfileData{}, err
		}
		sort.SliceStable(subs, func(i, j int) bool {
			return subs[i].SubmittedAt.After(subs[j].SubmittedAt)
		})

		data := ProfileData{User: user, Submissions: subs}
		solved := map[string]bool{}
		total := 0.0
		for _, s := range subs {
			total += s.Score
			if s.TotalTests > 0 && s.PassedTests == s.TotalTests {
				solved[s.ChallengeID] = true
			}
		}
		data.Solved = len(solved)
		if len(subs) > 0 {
			data.AverageScore = total / float64(len(subs))
		}
		return data, nil
	})
}
