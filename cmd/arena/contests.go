package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/programme-lv/arena/apiclient"
	"github.com/programme-lv/arena/countdown"
	"github.com/programme-lv/arena/pages"
	"github.com/programme-lv/arena/ui"
	"github.com/spf13/cobra"
)

func contestsCmd(a *app) *cobra.Command {
	var cmd = &cobra.Command{
		Use:     "contests",
		Aliases: []string{"contest"},
		Short:   "Browse, join and follow contests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.listContests(cmd.Context())
		},
	}

	var listCmd = &cobra.Command{
		Use:   "list",
		Short: "List active, upcoming and past contests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.listContests(cmd.Context())
		},
	}

	var showCmd = &cobra.Command{
		Use:   "show <contest-id>",
		Short: "Show a contest and its challenges",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page := pages.NewContestDetail(a.deps(cmd.Context()), args[0])
			if err := a.load(cmd.Context(), page); err != nil {
				return err
			}
			data := page.Data()
			a.println(ui.Card(data.Contest.Title+" "+ui.ContestBadge(data.Status), contestBody(data.ContestItem)))
			if len(data.Challenges) > 0 {
				a.println(ui.ChallengeTable(data.Challenges))
			}
			return nil
		},
	}

	var joinCmd = &cobra.Command{
		Use:   "join <contest-id>",
		Short: "Register for a contest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.guard(pages.Path(pages.PathContestParticipate, args[0])); err != nil {
				return err
			}
			page := pages.NewContestParticipate(a.deps(cmd.Context()), args[0])
			if err := page.Join(cmd.Context()); err != nil {
				return err
			}
			a.printf("joined contest %s\n", ui.Value.Render(args[0]))
			return nil
		},
	}

	var boardCmd = &cobra.Command{
		Use:   "leaderboard <contest-id>",
		Short: "Show a contest's leaderboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page := pages.NewContestLeaderboard(a.deps(cmd.Context()), args[0])
			if err := a.load(cmd.Context(), page); err != nil {
				return err
			}
			data := page.Data()
			a.println(ui.Title.Render(data.Contest.Title))
			a.println(ui.LeaderboardTable(data.Rows))
			return nil
		},
	}

	var resultsCmd = &cobra.Command{
		Use:   "results <contest-id>",
		Short: "Show your submissions and standing in a contest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page := pages.NewContestResults(a.deps(cmd.Context()), args[0])
			if err := a.load(cmd.Context(), page); err != nil {
				return err
			}
			a.printResults(page.Data())
			return nil
		},
	}

	var watchCmd = &cobra.Command{
		Use:   "watch <contest-id>",
		Short: "Follow an active contest until it ends",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.watchContest(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(listCmd, showCmd, joinCmd, boardCmd, resultsCmd, watchCmd)
	return cmd
}

func (a *app) listContests(ctx context.Context) error {
	page := pages.NewContestList(a.deps(ctx))
	if err := a.load(ctx, page); err != nil {
		return err
	}
	data := page.Data()
	if data.Len() == 0 {
		a.println(ui.Muted.Render("no contests yet"))
		return nil
	}
	sections := []struct {
		title string
		items []pages.ContestItem
		when  string
	}{
		{"Active", data.Active, "ends in"},
		{"Upcoming", data.Upcoming, "starts in"},
		{"Past", data.Ended, "ended"},
	}
	for _, s := range sections {
		if len(s.items) == 0 {
			continue
		}
		rows := make([][]string, 0, len(s.items))
		for _, it := range s.items {
			when := it.Contest.EndTime.Local().Format(time.DateTime)
			if it.Status != apiclient.ContestEnded {
				when = countdown.Format(it.Countdown)
			}
			reg := ""
			if it.RegistrationOpen && it.Status != apiclient.ContestEnded {
				reg = "open"
			}
			rows = append(rows, []string{
				it.Contest.ID,
				it.Contest.Title,
				when,
				fmt.Sprintf("%d", it.Contest.Participants),
				reg,
			})
		}
		a.println(ui.Title.Render(s.title))
		a.println(ui.Table([]string{"ID", "Title", s.when, "Participants", "Registration"}, rows))
	}
	return nil
}

func contestBody(it pages.ContestItem) string {
	c := it.Contest
	var b strings.Builder
	if c.Description != "" {
		b.WriteString(c.Description + "\n\n")
	}
	fmt.Fprintf(&b, "starts:       %s\n", c.StartTime.Local().Format(time.DateTime))
	fmt.Fprintf(&b, "ends:         %s\n", c.EndTime.Local().Format(time.DateTime))
	if c.DurationMinutes > 0 {
		fmt.Fprintf(&b, "duration:     %d min\n", c.DurationMinutes)
	}
	switch it.Status {
	case apiclient.ContestUpcoming:
		fmt.Fprintf(&b, "starts in:    %s\n", countdown.Format(it.Countdown))
	case apiclient.ContestActive:
		fmt.Fprintf(&b, "time left:    %s\n", countdown.Format(it.Countdown))
	}
	participants := fmt.Sprintf("%d", c.Participants)
	if c.MaxParticipants > 0 {
		participants += fmt.Sprintf(" / %d", c.MaxParticipants)
	}
	fmt.Fprintf(&b, "participants: %s", participants)
	if len(c.Prizes) > 0 {
		fmt.Fprintf(&b, "\nprizes:       %s", strings.Join(c.Prizes, ", "))
	}
	if c.Rules != "" {
		fmt.Fprintf(&b, "\n\n%s", c.Rules)
	}
	return b.String()
}

func (a *app) printResults(data pages.ResultsData) {
	a.println(ui.Title.Render(data.Contest.Title))
	standing := ui.Muted.Render("not ranked")
	if data.Standing != nil {
		standing = fmt.Sprintf("rank %d", data.Standing.Rank)
	}
	a.printf("total score %s, %s\n", ui.Value.Render(fmt.Sprintf("%.0f", data.TotalScore)), standing)
	if len(data.Submissions) == 0 {
		a.println(ui.Muted.Render("no submissions"))
		return
	}
	rows := make([][]string, 0, len(data.Submissions))
	for _, s := range data.Submissions {
		rows = append(rows, []string{
			s.SubmittedAt.Local().Format(time.DateTime),
			s.ChallengeID,
			s.Language,
			fmt.Sprintf("%d/%d", s.PassedTests, s.TotalTests),
			fmt.Sprintf("%.0f", s.Score),
		})
	}
	a.println(ui.Table([]string{"Submitted", "Challenge", "Language", "Tests", "Score"}, rows))
}

// watchContest prints the contest's challenges with the user's best scores
// and keeps a countdown line running until the contest ends.
func (a *app) watchContest(ctx context.Context, id string) error {
	page := pages.NewContestParticipate(a.deps(ctx), id)
	if err := a.load(ctx, page); err != nil {
		return err
	}
	data := page.Data()
	a.println(ui.Title.Render(data.Contest.Title))

	rows := make([][]string, 0, len(data.Challenges))
	for _, ch := range data.Challenges {
		score := "-"
		if s, ok := data.Solved[ch.ID]; ok {
			score = fmt.Sprintf("%.0f", s)
		}
		rows = append(rows, []string{ch.ID, ch.Title, ui.DifficultyBadge(ch.Difficulty), score})
	}
	a.println(ui.Table([]string{"ID", "Title", "Difficulty", "Best"}, rows))

	timer := page.StartTimer(func(left time.Duration) {
		a.printf("\rtime left %s ", ui.Value.Render(countdown.Format(left)))
	})
	defer timer.Stop()

	select {
	case <-timer.Done():
		a.printf("\n%s\n", ui.Error.Render("the contest has ended"))
	case <-ctx.Done():
		a.println("")
	}
	return nil
}
