package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daryltucker/bench-trend/internal/config"
	"github.com/daryltucker/bench-trend/internal/revision"
)

var linkCmd = &cobra.Command{
	Use:   "link REV...",
	Short: "Print HTML links to revision change pages",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		linker := revision.Linker{Host: cfg.LinkHost}
		for _, rev := range args {
			fmt.Fprintln(cmd.OutOrStdout(), linker.Link(rev))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(linkCmd)
}
