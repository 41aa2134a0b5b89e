package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/bedrock-up/internal/service/updater"
)

// checkCmd reports whether an update is available without downloading it.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report whether a newer server build is available",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		options, err := prepare(cmd, &values)
		if err != nil {
			return err
		}

		result, err := updater.Check(ctx, options)
		if err != nil {
			return err
		}

		printCheckResult(cmd, result)

		return nil
	},
}

// printCheckResult writes a short human readable summary.
func printCheckResult(cmd *cobra.Command, result *updater.CheckResult) {
	out := cmd.OutOrStdout()

	if !result.RemoteAvailable {
		_, _ = fmt.Fprintln(out, "The download catalog is unavailable.")
		return
	}

	_, _ = fmt.Fprintf(out, "Installed: %s\nAvailable: %s\n", result.CachedVersion, result.RemoteVersion)

	if result.UpdateNeeded {
		_, _ = fmt.Fprintln(out, "An update is available.")
	} else {
		_, _ = fmt.Fprintln(out, "Up to date.")
	}
}
