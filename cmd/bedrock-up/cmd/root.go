package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/bedrock-up/internal/service/updater"
	"github.com/oshokin/bedrock-up/internal/version"
)

var (
	// values collects the command line flags.
	values flagValues

	// rootCmd represents the base command for downloading and applying server updates.
	rootCmd = &cobra.Command{
		Use:   "bedrock-up",
		Short: "Keep a Minecraft Bedrock dedicated server up to date",
		Long: "bedrock-up checks the official download catalog for a new server build, " +
			"downloads the archive and applies it over the installation while keeping user files.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options, err := prepare(cmd, &values)
			if err != nil {
				return err
			}

			return updater.Run(ctx, options)
		},
	}
)

// Execute runs the bedrock-up CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		_, _ = rootCmd.ErrOrStderr().Write([]byte("Error: " + err.Error() + "\n"))

		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	bindFlags(rootCmd.PersistentFlags(), &values)

	rootCmd.AddCommand(checkCmd)
}
