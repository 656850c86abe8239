/*
PURPOSE:
  Defines the 'list-logs' subcommand.
  Helps debug log discovery before a full analysis.

REQUIREMENTS:
  User-specified:
  - List the logs and the revision each one was attributed to.

  Implementation-discovered:
  - Useful validation step for file_pattern changes.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.CollectLogs()

ERROR HANDLING:
  - Returns error if the directory or pattern is invalid.

IMPLEMENTATION RULES:
  - Simple output to stdout.

USAGE:
  bench-trend list-logs --log-dir ./logs

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/source/source.go

MAINTENANCE:
  - None.
*/

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daryltucker/bench-trend/internal/config"
	"github.com/daryltucker/bench-trend/internal/engine"
)

var listLogsCmd = &cobra.Command{
	Use:   "list-logs",
	Short: "List benchmark logs and their revisions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-dir") {
			cfg.LogDir = listLogDir
		}
		if listPattern != "" {
			cfg.FilePattern = listPattern
		}

		logs, err := engine.CollectLogs(cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, l := range logs {
			fmt.Fprintf(out, "r%d\t%s\n", l.Revision, l.Location)
		}
		fmt.Fprintf(out, "%d logs\n", len(logs))
		return nil
	},
}

var (
	listLogDir  string
	listPattern string
)

func init() {
	rootCmd.AddCommand(listLogsCmd)
	listLogsCmd.Flags().StringVar(&listLogDir, "log-dir", "", "Directory containing benchmark logs")
	listLogsCmd.Flags().StringVar(&listPattern, "pattern", "", "File name regex with one capture group for the revision")
}
