package pages

import (
	"context"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/programme-lv/arena/apiclient"
	"github.com/programme-lv/arena/coderun"
	"github.com/programme-lv/arena/srvcerror"
	"golang.org/x/sync/errgroup"
)

type ChallengeFilter struct {
	Difficulty apiclient.Difficulty // empty matches all
	Tags       []string             // a challenge must carry every tag
	Search     string               // case-insensitive, title or description
}

func (f ChallengeFilter) match(ch apiclient.Challenge) bool {
	if f.Difficulty != "" && ch.Difficulty != f.Difficulty {
		return false
	}
	if len(f.Tags) > 0 {
		have := mapset.NewThreadUnsafeSet[string]()
		for _, t := range ch.Tags {
			have.Add(strings.ToLower(t))
		}
		for _, t := range f.Tags {
			if !have.Contains(strings.ToLower(t)) {
				return false
			}
		}
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(ch.Title), q) &&
			!strings.Contains(strings.ToLower(ch.Description), q) {
			return false
		}
	}
	return true
}

type ChallengeListData struct {
	All      []apiclient.Challenge
	Filtered []apiclient.Challenge
	// Tags is every tag in use, sorted.
	Tags   []string
	Filter ChallengeFilter
}

type ChallengeList struct {
	*Page[ChallengeListData]
}

func NewChallengeList(d Deps, f ChallengeFilter) *ChallengeList {
	return &ChallengeList{newPage(d, PathChallenges, Authenticated, func(ctx context.Context) (ChallengeListData, error) {
		all, err := d.client().ListChallenges(ctx).Get()
		if err != nil {
			return ChallengeListData{}, err
		}
		tags := mapset.NewThreadUnsafeSet[string]()
		for _, ch := range all {
			for _, t := range ch.Tags {
				tags.Add(strings.ToLower(t))
			}
		}
		sorted := tags.ToSlice()
		sort.Strings(sorted)
		data := ChallengeListData{All: all, Tags: sorted, Filter: f}
		data.Filtered = applyFilter(all, f)
		return data, nil
	})}
}

// SetFilter refilters the loaded challenges without fetching again.
func (p *ChallengeList) SetFilter(f ChallengeFilter) {
	p.update(func(data *ChallengeListData) {
		data.Filter = f
		data.Filtered = applyFilter(data.All, f)
	})
}

func applyFilter(all []apiclient.Challenge, f ChallengeFilter) []apiclient.Challenge {
	res := make([]apiclient.Challenge, 0, len(all))
	for _, ch := range all {
		if f.match(ch) {
			res = append(res, ch)
		}
	}
	return res
}

type ChallengeDetailData struct {
	Challenge apiclient.Challenge
	// Samples are the visible test cases. Hidden ones are only counted.
	Samples     []apiclient.TestCase
	HiddenCount int
	Languages   []string
}

type ChallengeDetail = Page[ChallengeDetailData]

// NewChallengeDetail finds the challenge in the challenge list; an id
// missing from the list is a not-found state.
func NewChallengeDetail(d Deps, id string) *ChallengeDetail {
	return newPage(d, Path(PathChallenge, id), Authenticated, func(ctx context.Context) (ChallengeDetailData, error) {
		all, err := d.client().ListChallenges(ctx).Get()
		if err != nil {
			return ChallengeDetailData{}, err
		}
		var data ChallengeDetailData
		found := false
		for _, ch := range all {
			if ch.ID == id {
				data.Challenge = ch
				found = true
				break
			}
		}
		if !found {
			return ChallengeDetailData{}, srvcerror.ErrNotFound("challenge")
		}

		var tests []apiclient.TestCase
		var tmpls []apiclient.FunctionTemplate
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			tests, err = d.client().TestCases(gctx, id).Get()
			return err
		})
		g.Go(func() error {
			var err error
			tmpls, err = d.client().Templates(gctx, id).Get()
			return err
		})
		if err := g.Wait(); err != nil {
			return ChallengeDetailData{}, err
		}

		data.Samples, data.HiddenCount = coderun.Visible(tests)
		for _, t := range tmpls {
			data.Languages = append(data.Languages, t.Language)
		}
		return data, nil
	})
}
