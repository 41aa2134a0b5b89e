package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oshokin/bedrock-up/internal/config"
	"github.com/oshokin/bedrock-up/internal/domain/release"
	"github.com/oshokin/bedrock-up/internal/logger"
	"github.com/oshokin/bedrock-up/internal/repository/cache"
	"github.com/oshokin/bedrock-up/internal/service/updater"
)

// Flag names shared by the root and check commands.
const (
	flagDownloadType = "download-type"
	flagForce        = "force"
	flagServerPath   = "server-path"
	flagCachePath    = "cache-path"
	flagExclude      = "exclude"
	flagConfig       = "config"
	flagLogLevel     = "log-level"
	flagStopServer   = "stop-server"
)

// flagValues holds raw command line values before they are merged into the settings.
type flagValues struct {
	downloadType string
	force        bool
	serverPath   string
	cachePath    string
	exclude      []string
	configPath   string
	logLevel     string
	stopServer   bool
}

// bindFlags registers the persistent flags on root.
func bindFlags(flags *pflag.FlagSet, values *flagValues) {
	flags.StringVarP(&values.downloadType, flagDownloadType, "d", "",
		"build to track: "+strings.Join(release.DownloadTypeNames(), ", "))
	flags.BoolVarP(&values.force, flagForce, "f", false, "apply the update even if the version is unchanged")
	flags.StringVarP(&values.serverPath, flagServerPath, "s", "", "server installation directory")
	flags.StringVarP(&values.cachePath, flagCachePath, "c", cache.DefaultPath, "file holding the last applied catalog")
	flags.StringSliceVarP(&values.exclude, flagExclude, "e", nil,
		"relative paths kept when they already exist (repeatable, comma or space separated)")
	flags.StringVar(&values.configPath, flagConfig, "", "optional YAML settings file")
	flags.StringVar(&values.logLevel, flagLogLevel, config.DefaultLogLevel, "minimum log level (debug, info, warn, error)")
	flags.BoolVar(&values.stopServer, flagStopServer, false, "stop a running server before applying the update")
}

// loadSettings merges the settings file with the flags set on the command line.
// Only flags the user actually changed override file values.
func loadSettings(cmd *cobra.Command, values *flagValues) (*config.Config, error) {
	cfg := config.Default()

	if values.configPath != "" {
		loaded, err := config.Load(values.configPath)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	flags := cmd.Flags()

	if flags.Changed(flagDownloadType) {
		cfg.DownloadType = values.downloadType
	}

	if flags.Changed(flagServerPath) {
		cfg.ServerPath = values.serverPath
	}

	if flags.Changed(flagCachePath) {
		cfg.CachePath = values.cachePath
	}

	if flags.Changed(flagExclude) {
		cfg.Exclude = splitExclusions(values.exclude)
	}

	if flags.Changed(flagLogLevel) {
		cfg.LogLevel = values.logLevel
	}

	if flags.Changed(flagStopServer) {
		cfg.StopServer = values.stopServer
	}

	cfg.Force = values.force

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// splitExclusions accepts both repeated flags and a single space separated value.
func splitExclusions(values []string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		result = append(result, strings.Fields(value)...)
	}

	return result
}

// prepare loads the settings, applies the log level and builds updater options.
func prepare(cmd *cobra.Command, values *flagValues) (*updater.Options, error) {
	cfg, err := loadSettings(cmd, values)
	if err != nil {
		return nil, err
	}

	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	return updater.OptionsFromConfig(cfg)
}
