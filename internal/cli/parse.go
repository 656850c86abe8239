package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/daryltucker/bench-trend/internal/config"
	"github.com/daryltucker/bench-trend/internal/model"
	"github.com/daryltucker/bench-trend/internal/output"
	"github.com/daryltucker/bench-trend/internal/parser"
)

var parseSettings []string

var parseCmd = &cobra.Command{
	Use:   "parse [FILE...]",
	Short: "Parse benchmark logs and print data points as JSON Lines",
	Long: `Parses each FILE (or stdin when none is given) and writes one JSON object
per measurement to stdout. Settings do not carry over between files.`,
	Example: `  bench-trend parse bench_r1200_data | jq 'select(.bench == "rects")'
  ./bench | bench-trend parse --set gpu --set scale=2.0`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		applySettingOverrides(cfg, parseSettings)
		initial := cfg.Settings()

		w := output.NewJSONStream(cmd.OutOrStdout())
		defer w.Close()

		if len(args) == 0 {
			return parseInto(w, initial, cmd.InOrStdin(), "stdin")
		}
		for _, path := range args {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", path, err)
			}
			err = parseInto(w, initial, f, path)
			f.Close()
			if err != nil {
				return err
			}
		}
		return nil
	},
}

func parseInto(w *output.JSONWriter, initial model.Settings, r io.Reader, name string) error {
	points, err := parser.ParseReader(initial, r)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	output.Logger.Debug("Parsed", "source", name, "points", len(points))
	for _, p := range points {
		if err := w.Write(p); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringArrayVar(&parseSettings, "set", nil, "Initial setting key or key=value (repeatable)")
}
