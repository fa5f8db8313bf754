package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/programme-lv/arena/srvcerror"
	"github.com/spf13/cobra"
)

func main() {
	a := &app{}

	var rootCmd = &cobra.Command{
		Use:           "arena",
		Short:         "Contests and coding challenges from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.setup(cmd.Context())
			if err != nil {
				return err
			}
			cmd.SetContext(ctx)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	rootCmd.AddCommand(
		loginCmd(a),
		registerCmd(a),
		logoutCmd(a),
		whoamiCmd(a),
		contestsCmd(a),
		challengesCmd(a),
		leaderboardCmd(a),
		adminCmd(a),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorLine(err))
		stop()
		os.Exit(1)
	}
}

// errorLine prints the user message and, for service errors, the code.
func errorLine(err error) string {
	var se *srvcerror.Error
	if errors.As(err, &se) && se.ErrorCode() != "" {
		return fmt.Sprintf("error: %s [%s]", err.Error(), se.ErrorCode())
	}
	return "error: " + err.Error()
}
