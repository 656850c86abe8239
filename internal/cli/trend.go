/*
PURPOSE:
  Defines the 'trend' subcommand.
  Executes the full log analysis.

REQUIREMENTS:
  User-specified:
  - Fit trends and report regressions.
  - specific flags for overrides.

  Implementation-discovered:
  - Need to load config first.
  - Apply flag overrides to config.
  - CI wants a non-zero exit when a regression is found.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.Run()
  - Uses: internal/config, internal/output

ERROR HANDLING:
  - Returns error if config load fails or engine run fails.

IMPLEMENTATION RULES:
  - Setup flags in init().
  - Logic: Load Config -> Override -> Engine.Run.

USAGE:
  bench-trend trend --log-dir ./logs

SELF-HEALING INSTRUCTIONS:
  - Check flag names match Config struct fields generally.

RELATED FILES:
  - internal/cli/root.go

MAINTENANCE:
  - Update when adding new CLI overrides.
*/

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daryltucker/bench-trend/internal/config"
	"github.com/daryltucker/bench-trend/internal/engine"
	"github.com/daryltucker/bench-trend/internal/output"
)

var (
	logDirOverride         string
	sourcesOverride        []string
	outputOverride         string
	representationOverride string
	benchesOverride        []string
	excludeOverride        []string
	timeTypesOverride      []string
	thresholdOverride      float64
	settingsOverride       []string
	failOnRegression       bool
)

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Fit per-series trends across revisions and flag regressions",
	Long: `Reads one benchmark log per revision and fits a least squares trend per
bench/config/time type. The process follows a strict protocol:
1. Discovery: Finds logs in --log-dir (bench_r<REV>_*) or takes --source REV=LOCATION.
2. Parsing: Extracts measurements, tracking settings and the current bench.
3. Regression: Reduces samples per revision, fits a line and bounds the slope
   by one standard error. A series is regressed when that bound exceeds --threshold.

Results are saved to CSV (trends) and JSON Lines (data points).`,
	Example: `  # Analyse logs in ./logs
  bench-trend trend --log-dir ./logs

  # Use explicit sources, including remote ones
  bench-trend trend --source 1200=http://bots/bench_r1200_data --source 1201=./bench_r1201_data

  # Only watch rect benches, use per-revision minimum, fail CI on regressions
  bench-trend trend --benches rect -r min --threshold 0.01 --fail-on-regression`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Load Config
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		// 2. Overrides
		flags := cmd.Flags()
		if flags.Changed("log-dir") {
			cfg.LogDir = logDirOverride
		}
		if len(sourcesOverride) > 0 {
			cfg.Sources = sourcesOverride
		}
		if outputOverride != "" {
			cfg.OutputDir = outputOverride
		}
		if representationOverride != "" {
			cfg.Representation = representationOverride
		}
		if len(benchesOverride) > 0 {
			cfg.Benches = benchesOverride
		}
		if len(excludeOverride) > 0 {
			cfg.Exclude = excludeOverride
		}
		if len(timeTypesOverride) > 0 {
			cfg.TimeTypes = timeTypesOverride
		}
		if flags.Changed("threshold") {
			cfg.SlopeThreshold = thresholdOverride
		}
		applySettingOverrides(cfg, settingsOverride)

		if err := cfg.Validate(); err != nil {
			return err
		}

		// 3. Execution
		report, err := engine.Run(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), output.RenderTable(report.Trends))

		if n := len(report.Regressed()); n > 0 && failOnRegression {
			return fmt.Errorf("%d series regressed", n)
		}
		return nil
	},
}

func applySettingOverrides(cfg *config.Config, tokens []string) {
	if len(tokens) == 0 {
		return
	}
	if cfg.InitialSettings == nil {
		cfg.InitialSettings = map[string]config.Setting{}
	}
	for _, tok := range tokens {
		k, v := config.ParseSetting(tok)
		cfg.InitialSettings[k] = v
	}
}

func init() {
	rootCmd.AddCommand(trendCmd)

	trendCmd.Flags().StringVar(&logDirOverride, "log-dir", "", "Directory containing bench_r<REV>_* logs")
	trendCmd.Flags().StringArrayVar(&sourcesOverride, "source", nil, "Explicit log source REV=PATH or REV=URL (repeatable)")
	trendCmd.Flags().StringVarP(&outputOverride, "output-dir", "o", "", "Output directory for results (CSV/JSON)")
	trendCmd.Flags().StringVarP(&representationOverride, "representation", "r", "", "Per-revision reduction: avg, min, med or 25th")
	trendCmd.Flags().StringSliceVar(&benchesOverride, "benches", nil, "Comma-separated substrings; only matching benches are analysed")
	trendCmd.Flags().StringSliceVar(&excludeOverride, "exclude", nil, "Comma-separated substrings to exclude from bench names")
	trendCmd.Flags().StringSliceVar(&timeTypesOverride, "time-types", nil, "Comma-separated time labels to keep (- selects unlabelled times)")
	trendCmd.Flags().Float64Var(&thresholdOverride, "threshold", 0, "Min-slope bound (msecs per revision) above which a series is regressed")
	trendCmd.Flags().StringArrayVar(&settingsOverride, "set", nil, "Initial setting key or key=value (repeatable)")
	trendCmd.Flags().BoolVar(&failOnRegression, "fail-on-regression", false, "Exit non-zero when any series regressed")
}
