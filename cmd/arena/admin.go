package main

import (
	"fmt"
	"strings"

	"github.com/programme-lv/arena/admin"
	"github.com/programme-lv/arena/pages"
	"github.com/programme-lv/arena/ui"
	"github.com/spf13/cobra"
)

func adminCmd(a *app) *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "admin",
		Short: "Manage challenges and contests (admin role required)",
	}
	cmd.AddCommand(adminChallengeCmd(a), adminContestCmd(a))
	return cmd
}

func adminChallengeCmd(a *app) *cobra.Command {
	var file string

	var cmd = &cobra.Command{
		Use:   "challenge",
		Short: "Create, update, export and delete challenges",
	}

	var createCmd = &cobra.Command{
		Use:   "create",
		Short: "Create a challenge with its test cases and templates from a TOML draft",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			draft, err := admin.LoadChallengeDraft(file)
			if err != nil {
				return err
			}
			page := pages.NewAdminChallenges(a.deps(ctx))
			if err := a.load(ctx, page); err != nil {
				return err
			}
			ch, err := page.Create(ctx, draft)
			if err != nil {
				return sagaHint(err)
			}
			a.printf("created challenge %s (id %s, %d tests, %d templates)\n",
				ui.Value.Render(ch.Title), ch.ID, len(draft.TestCases), len(draft.Templates))
			return nil
		},
	}

	var updateCmd = &cobra.Command{
		Use:   "update <challenge-id>",
		Short: "Replace a challenge's fields, test cases and templates from a TOML draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			draft, err := admin.LoadChallengeDraft(file)
			if err != nil {
				return err
			}
			page := pages.NewAdminChallenges(a.deps(ctx))
			if err := a.load(ctx, page); err != nil {
				return err
			}
			ch, err := page.Update(ctx, args[0], draft)
			if err != nil {
				return sagaHint(err)
			}
			a.printf("updated challenge %s (id %s)\n", ui.Value.Render(ch.Title), ch.ID)
			return nil
		},
	}

	for _, c := range []*cobra.Command{createCmd, updateCmd} {
		c.Flags().StringVarP(&file, "file", "f", "", "Challenge draft in TOML (required)")
		c.MarkFlagRequired("file")
	}

	var exportCmd = &cobra.Command{
		Use:   "export <challenge-id>",
		Short: "Print a challenge as a TOML draft, ready for editing and update",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			page := pages.NewAdminChallenges(a.deps(ctx))
			if err := a.load(ctx, page); err != nil {
				return err
			}
			draft, err := page.Draft(ctx, args[0])
			if err != nil {
				return err
			}
			content, err := admin.EncodeChallengeDraft(draft)
			if err != nil {
				return err
			}
			_, err = a.out.Write(content)
			return err
		},
	}

	var deleteCmd = &cobra.Command{
		Use:   "delete <challenge-id>",
		Short: "Delete a challenge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			page := pages.NewAdminChallenges(a.deps(ctx))
			if err := a.load(ctx, page); err != nil {
				return err
			}
			if err := page.Delete(ctx, args[0]); err != nil {
				return err
			}
			a.printf("deleted challenge %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(createCmd, updateCmd, exportCmd, deleteCmd)
	return cmd
}

func adminContestCmd(a *app) *cobra.Command {
	var file string

	var cmd = &cobra.Command{
		Use:   "contest",
		Short: "Create, update and delete contests",
	}

	var createCmd = &cobra.Command{
		Use:   "create",
		Short: "Create a contest and link its challenges from a TOML draft",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			draft, err := admin.LoadContestDraft(file)
			if err != nil {
				return err
			}
			page := pages.NewAdminContests(a.deps(ctx))
			if err := a.load(ctx, page); err != nil {
				return err
			}
			c, err := page.Create(ctx, draft)
			if err != nil {
				return sagaHint(err)
			}
			a.printf("created contest %s (id %s, %d challenges)\n",
				ui.Value.Render(c.Title), c.ID, len(draft.Challenges))
			return nil
		},
	}
	var updateCmd = &cobra.Command{
		Use:   "update <contest-id>",
		Short: "Replace a contest's fields and link new challenges from a TOML draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			draft, err := admin.LoadContestDraft(file)
			if err != nil {
				return err
			}
			page := pages.NewAdminContests(a.deps(ctx))
			if err := a.load(ctx, page); err != nil {
				return err
			}
			c, err := page.Update(ctx, args[0], draft)
			if err != nil {
				return sagaHint(err)
			}
			a.printf("updated contest %s (id %s)\n", ui.Value.Render(c.Title), c.ID)
			return nil
		},
	}

	for _, c := range []*cobra.Command{createCmd, updateCmd} {
		c.Flags().StringVarP(&file, "file", "f", "", "Contest draft in TOML (required)")
		c.MarkFlagRequired("file")
	}

	var deleteCmd = &cobra.Command{
		Use:   "delete <contest-id>",
		Short: "Delete a contest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			page := pages.NewAdminContests(a.deps(ctx))
			if err := a.load(ctx, page); err != nil {
				return err
			}
			if err := page.Delete(ctx, args[0]); err != nil {
				return err
			}
			a.printf("deleted contest %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(createCmd, updateCmd, deleteCmd)
	return cmd
}

// sagaHint names the undone steps of a failed write that was fully
// rolled back; otherwise the saga error already says what was left.
func sagaHint(err error) error {
	se, ok := admin.AsSagaError(err)
	if !ok || !se.RolledBack() || len(se.Compensated) == 0 {
		return err
	}
	return fmt.Errorf("%w (rolled back: %s)", err, strings.Join(se.Compensated, ", "))
}
