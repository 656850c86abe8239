/*
PURPOSE:
  Defines the root Cobra command for the Bench Trend CLI.
  Handles global flags and command initialization.

REQUIREMENTS:
  User-specified:
  - Provide a CLI interface.
  - Support global flags like --config.

  Implementation-discovered:
  - Needs to expose an Execute() function for main.go.
  - Logger level/format must be set before any subcommand logs.

ARCHITECTURE INTEGRATION:
  - Called by: cmd/bench-trend/main.go
  - Calls: Child commands (trend, parse, list-logs, link, init)
  - Modifies: Global configuration state (temporarily, until passed down).

ERROR HANDLING:
  - Returns error to main.go for exit code handling.

IMPLEMENTATION RULES:
  - Use `PersistentFlags()` for flags available to all subcommands.
  - Keep Run logic in subcommands, Root is usually empty or helps.

USAGE:
  Called by main.go.

SELF-HEALING INSTRUCTIONS:
  - If adding new global flags, add them to init().

RELATED FILES:
  - cmd/bench-trend/main.go

MAINTENANCE:
  - Update when adding global configuration options.
*/

package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/daryltucker/bench-trend/internal/output"
)

var (
	// cfgFile stores the path to the config file (if specified via flag)
	cfgFile   string
	verbose   bool
	logFormat string

	rootCmd = &cobra.Command{
		Use:   "bench-trend",
		Short: "Parse benchmark logs and detect performance regressions",
		Long: `Extracts measurements from benchmark tool logs and fits a trend line per
bench/config/time type across revisions. Use 'trend --help' for analysis options.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			return output.Configure(cmd.ErrOrStderr(), level, logFormat)
		},
	}
)

// Execute executes the root command. Cancelling ctx stops long-running
// commands such as trend.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./bench_trend.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")
}
