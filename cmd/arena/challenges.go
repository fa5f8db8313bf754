package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/programme-lv/arena/apiclient"
	"github.com/programme-lv/arena/pages"
	"github.com/programme-lv/arena/planglist"
	"github.com/programme-lv/arena/ui"
	"github.com/programme-lv/arena/ui/solve"
	"github.com/spf13/cobra"
)

func challengesCmd(a *app) *cobra.Command {
	var filter pages.ChallengeFilter
	var difficulty string

	var cmd = &cobra.Command{
		Use:     "challenges",
		Aliases: []string{"challenge"},
		Short:   "Browse and solve challenges",
	}

	var listCmd = &cobra.Command{
		Use:   "list",
		Short: "List challenges, optionally filtered",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter.Difficulty = apiclient.Difficulty(strings.ToLower(difficulty))
			page := pages.NewChallengeList(a.deps(cmd.Context()), filter)
			if err := a.load(cmd.Context(), page); err != nil {
				return err
			}
			data := page.Data()
			if len(data.Filtered) == 0 {
				a.println(ui.Muted.Render("no challenges match"))
			} else {
				a.println(ui.ChallengeTable(data.Filtered))
			}
			if len(data.Tags) > 0 {
				a.println(ui.Muted.Render("tags: " + strings.Join(data.Tags, ", ")))
			}
			return nil
		},
	}
	listCmd.Flags().StringVarP(&difficulty, "difficulty", "d", "", "Only easy, medium or hard challenges")
	listCmd.Flags().StringSliceVarP(&filter.Tags, "tag", "t", nil, "Only challenges carrying every given tag")
	listCmd.Flags().StringVarP(&filter.Search, "search", "s", "", "Search titles and descriptions")

	var showCmd = &cobra.Command{
		Use:   "show <challenge-id>",
		Short: "Show a challenge statement and its sample tests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page := pages.NewChallengeDetail(a.deps(cmd.Context()), args[0])
			if err := a.load(cmd.Context(), page); err != nil {
				return err
			}
			a.printChallenge(page.Data())
			return nil
		},
	}

	var contestID, file, lang string

	var solveCmd = &cobra.Command{
		Use:   "solve <challenge-id>",
		Short: "Open the challenge in the terminal editor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			page, deadline, err := a.openSolve(ctx, args[0], contestID)
			if err != nil {
				return err
			}
			if lang != "" {
				if err := page.SetLanguage(lang); err != nil {
					return err
				}
			}
			_, err = tea.NewProgram(solve.New(ctx, page, deadline)).Run()
			return err
		},
	}
	solveCmd.Flags().StringVarP(&contestID, "contest", "c", "", "Solve as part of an active contest")
	solveCmd.Flags().StringVarP(&lang, "lang", "l", "", "Language to start with")

	var runCmd = &cobra.Command{
		Use:   "run <challenge-id>",
		Short: "Run a solution file against the sample tests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, _, err := a.solveFromFile(cmd.Context(), args[0], "", file, lang)
			if err != nil {
				return err
			}
			report, err := page.Run(cmd.Context())
			if err != nil {
				return err
			}
			a.println(ui.ReportView(report))
			return nil
		},
	}

	var submitCmd = &cobra.Command{
		Use:   "submit <challenge-id>",
		Short: "Run a solution file and submit the score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			page, deadline, err := a.solveFromFile(ctx, args[0], contestID, file, lang)
			if err != nil {
				return err
			}
			if !deadline.IsZero() && !time.Now().Before(deadline) {
				return fmt.Errorf("the contest has ended, submissions are closed")
			}
			report, sub, err := page.Submit(ctx)
			if err != nil {
				return err
			}
			a.println(ui.ReportView(report))
			a.printf("submitted, score %s\n", ui.Value.Render(fmt.Sprintf("%.0f", sub.Score)))
			return nil
		},
	}

	for _, c := range []*cobra.Command{runCmd, submitCmd} {
		c.Flags().StringVarP(&file, "file", "f", "", "Solution source file (required)")
		c.Flags().StringVarP(&lang, "lang", "l", "", "Language, guessed from the file extension when empty")
		c.MarkFlagRequired("file")
	}
	submitCmd.Flags().StringVarP(&contestID, "contest", "c", "", "Submit to an active contest")

	cmd.AddCommand(listCmd, showCmd, solveCmd, runCmd, submitCmd)
	return cmd
}

func (a *app) printChallenge(data pages.ChallengeDetailData) {
	ch := data.Challenge
	meta := []string{ui.DifficultyBadge(ch.Difficulty)}
	if ch.TimeLimitMs > 0 {
		meta = append(meta, fmt.Sprintf("%d ms", ch.TimeLimitMs))
	}
	if ch.MemoryLimitMB > 0 {
		meta = append(meta, fmt.Sprintf("%d MB", ch.MemoryLimitMB))
	}
	if len(ch.Tags) > 0 {
		meta = append(meta, strings.Join(ch.Tags, ", "))
	}
	a.println(ui.Card(ch.Title, strings.Join(meta, "  ")+"\n\n"+ch.Description))

	for i, tc := range data.Samples {
		body := fmt.Sprintf("input:\n%s\n\nexpected:\n%s", tc.Input, tc.ExpectedOutput)
		a.println(ui.Card(fmt.Sprintf("Sample %d", i+1), body))
	}
	if data.HiddenCount > 0 {
		a.println(ui.Muted.Render(fmt.Sprintf("+%d hidden tests", data.HiddenCount)))
	}
	if len(data.Languages) > 0 {
		a.println(ui.Muted.Render("languages: " + strings.Join(data.Languages, ", ")))
	}
}

// openSolve loads the editor page. With a contest id the contest must be
// active and its end time becomes the submission deadline.
func (a *app) openSolve(ctx context.Context, id, contestID string) (*pages.ChallengeSolve, time.Time, error) {
	var deadline time.Time
	if contestID != "" {
		contest := pages.NewContestParticipate(a.deps(ctx), contestID)
		if err := a.load(ctx, contest); err != nil {
			return nil, deadline, err
		}
		deadline = contest.Data().Contest.EndTime
	}
	page := pages.NewChallengeSolve(a.deps(ctx), id, contestID)
	if err := a.load(ctx, page); err != nil {
		return nil, deadline, err
	}
	return page, deadline, nil
}

func (a *app) solveFromFile(ctx context.Context, id, contestID, file, lang string) (*pages.ChallengeSolve, time.Time, error) {
	code, err := os.ReadFile(file)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("reading solution: %w", err)
	}
	if lang == "" {
		l, err := planglist.FromFilename(file)
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("%w: pass --lang", err)
		}
		lang = l.ID
	}

	page, deadline, err := a.openSolve(ctx, id, contestID)
	if err != nil {
		return nil, deadline, err
	}
	if err := page.SetLanguage(lang); err != nil {
		return nil, deadline, err
	}
	page.SetCode(string(code))
	return page, deadline, nil
}

func leaderboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the global leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			page := pages.NewGlobalLeaderboard(a.deps(cmd.Context()))
			if err := a.load(cmd.Context(), page); err != nil {
				return err
			}
			rows := page.Data().Rows
			if len(rows) == 0 {
				a.println(ui.Muted.Render("nobody has scored yet"))
				return nil
			}
			a.println(ui.LeaderboardTable(rows))
			return nil
		},
	}
}
