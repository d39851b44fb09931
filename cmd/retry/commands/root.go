// Package commands defines the CLI command structure and flag bindings.
//
// This package contains the cobra command definition that handles argument
// parsing, flag binding, and configuration resolution. Command execution is
// delegated to handler functions in the handlers package.
package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/marshall/retry/cmd/retry/handlers"
	"github.com/marshall/retry/internal/config"
)

type rootFlags struct {
	backoff        bool
	maxBackoff     uint64
	maxTries       uint64
	quiet          bool
	sleep          uint64
	verbose        bool
	retryOnSuccess bool
	version        bool
	configPath     string
	metricsFile    string
}

// Root returns the retry command.
//
// Flag parsing stops at the first non-flag argument so the wrapped command's
// own flags are passed through untouched.
func Root() *cobra.Command {
	cmd, _ := newRoot()
	return cmd
}

func newRoot() (*cobra.Command, *rootFlags) {
	f := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "retry [options] [--] cmd [args..]",
		Short: "Retry a command until it succeeds",
		Long: `Retry runs cmd until it exits with status 0 or the attempt budget is spent,
sleeping between attempts.

The exit status of retry is the exit status of the final attempt.

On every attempt cmd sees these environment variables:
  RETRY_TRY             current attempt, starting at 1
  RETRY_MAX             maximum attempts (0 = unlimited)
  RETRY_NEXT_SLEEP      seconds to sleep before the next attempt
  RETRY_PREV_SLEEP      seconds slept before this attempt (unset on the first)
  RETRY_PREV_EXIT_CODE  exit code of the previous attempt (unset on the first,
                        or if it was killed by a signal)`,
		Example: `  # Retry up to 3 times, one second apart
  retry -n 3 -s 1 -- curl -fsS https://example.com

  # Exponential backoff capped at 30 seconds, never give up
  retry -b -m 30 -n 0 ./wait-for-db.sh

  # Keep running while the command succeeds
  retry -x -s 10 -- ping -c 1 example.com`,
		Args:                  cobra.ArbitraryArgs,
		DisableFlagsInUseLine: true,
		SilenceUsage:          true,
		SilenceErrors:         true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.version {
				fmt.Fprintln(cmd.OutOrStdout(), VersionString(f.quiet))
				return nil
			}

			cfg, err := resolveConfig(cmd.Flags(), f, args)
			if err != nil {
				_ = cmd.Usage()
				return err
			}
			return handlers.Retry(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().SetInterspersed(false)
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		_ = c.Usage()
		return err
	})

	cmd.Flags().BoolVarP(&f.backoff, "backoff", "b", false, "Sleep times between each try will increase exponentially (up to max-backoff)")
	cmd.Flags().Uint64VarP(&f.maxBackoff, "max-backoff", "m", config.DefaultMaxBackoff, "Max sleep in seconds between tries when using exponential backoff")
	cmd.Flags().Uint64VarP(&f.maxTries, "max-tries", "n", config.DefaultMaxTries, "Max number of tries. Set to 0 for unlimited tries")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "Don't log anything")
	cmd.Flags().Uint64VarP(&f.sleep, "sleep", "s", config.DefaultSleep, "Sleep n seconds between tries")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "More verbose logging")
	cmd.Flags().BoolVarP(&f.retryOnSuccess, "retry-on-success", "x", false, "Retry when cmd has an exit code of 0")
	cmd.Flags().BoolVarP(&f.version, "version", "V", false, "Print version information")
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Path to a YAML file with default options")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics of the run to this file")

	return cmd, f
}

// resolveConfig layers the defaults file, if any, under the flags that were
// set explicitly on the command line.
func resolveConfig(flags *pflag.FlagSet, f *rootFlags, args []string) (config.Config, error) {
	if len(args) == 0 {
		return config.Config{}, config.ErrNoCommand
	}

	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.LoadFile(f.configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if flags.Changed("backoff") {
		cfg.Backoff = f.backoff
	}
	if flags.Changed("max-backoff") {
		cfg.MaxBackoff = f.maxBackoff
	}
	if flags.Changed("max-tries") {
		cfg.MaxTries = f.maxTries
	}
	if flags.Changed("quiet") {
		cfg.Quiet = f.quiet
	}
	if flags.Changed("sleep") {
		cfg.Sleep = f.sleep
	}
	if flags.Changed("verbose") {
		cfg.LogLevel = config.LevelInfo
		if f.verbose {
			cfg.LogLevel = config.LevelDebug
		}
	}
	if flags.Changed("retry-on-success") {
		cfg.RetryOnSuccess = f.retryOnSuccess
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = f.metricsFile
	}

	cfg.Command = args
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrNoCommand) {
			return config.Config{}, err
		}
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
