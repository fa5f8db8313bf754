package main

import (
	"fmt"

	"github.com/programme-lv/arena/pages"
	"github.com/programme-lv/arena/ui"
	"github.com/spf13/cobra"
)

func loginCmd(a *app) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			vals, err := prompt("Sign in",
				field{label: "username", value: username},
				field{label: "password", value: password, secret: true},
			)
			if err != nil {
				return err
			}
			err = pages.NewAuth(a.deps(cmd.Context())).Login(cmd.Context(), vals[0], vals[1])
			if err != nil {
				return err
			}
			a.printf("signed in as %s\n", ui.Value.Render(a.sess.User().Username))
			a.printContinue(pages.PathLogin)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (prompted when empty)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when empty)")
	return cmd
}

func registerCmd(a *app) *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in with it",
		RunE: func(cmd *cobra.Command, args []string) error {
			vals, err := prompt("Create an account",
				field{label: "username", value: username},
				field{label: "email", value: email},
				field{label: "password", value: password, secret: true},
			)
			if err != nil {
				return err
			}
			err = pages.NewAuth(a.deps(cmd.Context())).Register(cmd.Context(), vals[0], vals[1], vals[2])
			if err != nil {
				return err
			}
			a.printf("welcome, %s\n", ui.Value.Render(a.sess.User().Username))
			a.printContinue(pages.PathRegister)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (prompted when empty)")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Email (prompted when empty)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when empty)")
	return cmd
}

// printContinue shows where the stored redirect sent the user, if anywhere.
func (a *app) printContinue(from string) {
	if to := a.nav.Last(); to != "" && to != from {
		a.printf("continue where you left off: %s\n", ui.Value.Render(to))
	}
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Run: func(cmd *cobra.Command, args []string) {
			pages.NewAuth(a.deps(cmd.Context())).Logout()
			a.println("signed out")
		},
	}
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user and their progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.sess.IsAuthenticated() {
				a.println(ui.Muted.Render("not signed in"))
				return nil
			}
			profile := pages.NewProfile(a.deps(cmd.Context()))
			if err := a.load(cmd.Context(), profile); err != nil {
				return err
			}
			data := profile.Data()
			body := fmt.Sprintf("role:          %s\nsubmissions:   %d\nsolved:        %d\naverage score: %.1f",
				data.User.Role, len(data.Submissions), data.Solved, data.AverageScore)
			if data.User.Email != "" {
				body = "email:         " + data.User.Email + "\n" + body
			}
			a.println(ui.Card(data.User.Username, body))
			return nil
		},
	}
}
