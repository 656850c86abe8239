/*
PURPOSE:
  High-level runner that orchestrates the trend analysis.
  Loops through Logs -> Data Points -> Series -> Regression.

REQUIREMENTS:
  User-specified:
  - Fit a trend per bench/config/time type across revisions.
  - Flag series whose conservative slope exceeds the threshold.
  - Log results to CSV/JSON.

  Implementation-discovered:
  - Needs to report progress to CLI.
  - A broken log or a short series must not abort the whole run.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Uses: internal/source, internal/parser, internal/series,
    internal/regression, internal/revision, internal/output

ERROR HANDLING:
  - Logs errors but continues (resilience).
  - Returns error only for setup failures (bad config, unwritable output).

IMPLEMENTATION RULES:
  - Collect logs (explicit sources win over directory discovery).
  - For each log: Fetch, Parse, dump points, add to series.
  - For each series: Fit, FindMinSlope, write trend.

USAGE:
  report, err := engine.Run(ctx, cfg)

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/source/source.go
  - internal/series/series.go

MAINTENANCE:
  - Update iteration logic if parallel fetching is introduced.
*/

package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/daryltucker/bench-trend/internal/config"
	"github.com/daryltucker/bench-trend/internal/model"
	"github.com/daryltucker/bench-trend/internal/output"
	"github.com/daryltucker/bench-trend/internal/parser"
	"github.com/daryltucker/bench-trend/internal/regression"
	"github.com/daryltucker/bench-trend/internal/revision"
	"github.com/daryltucker/bench-trend/internal/series"
	"github.com/daryltucker/bench-trend/internal/source"
)

// Report summarises one run.
type Report struct {
	Logs       []source.Log
	FailedLogs int
	// TruncatedLogs counts logs whose scan stopped early; their earlier
	// points are still used.
	TruncatedLogs int
	Points        int
	Trends        []model.Trend
	Skipped       int
}

// Regressed returns the trends flagged as regressions.
func (r *Report) Regressed() []model.Trend {
	var out []model.Trend
	for _, tr := range r.Trends {
		if tr.Regressed {
			out = append(out, tr)
		}
	}
	return out
}

// CollectLogs returns the logs named by cfg.Sources, or the logs found in
// cfg.LogDir when no sources are given.
func CollectLogs(cfg *config.Config) ([]source.Log, error) {
	if len(cfg.Sources) > 0 {
		logs := make([]source.Log, 0, len(cfg.Sources))
		for _, entry := range cfg.Sources {
			l, err := source.ParseEntry(entry)
			if err != nil {
				return nil, err
			}
			logs = append(logs, l)
		}
		source.SortLogs(logs)
		return logs, nil
	}
	return source.Discover(cfg.LogDir, cfg.FilePattern)
}

// Run executes the full analysis.
func Run(ctx context.Context, cfg *config.Config) (*Report, error) {
	rep, err := series.ParseRepresentation(cfg.Representation)
	if err != nil {
		return nil, err
	}

	logs, err := CollectLogs(cfg)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, fmt.Errorf("no benchmark logs found (log_dir=%s, file_pattern=%s)", cfg.LogDir, cfg.FilePattern)
	}
	output.Logger.Info("Found logs", "count", len(logs), "first_revision", logs[0].Revision, "last_revision", logs[len(logs)-1].Revision)

	// Ensure output directory exists
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", cfg.OutputDir, err)
	}

	// Setup Outputs
	csvPath := filepath.Join(cfg.OutputDir, cfg.OutputFile)
	csvWriter, err := output.NewCSVWriter(csvPath)
	if err != nil {
		return nil, fmt.Errorf("failed to init CSV writer at %s: %w", csvPath, err)
	}
	defer csvWriter.Close()

	jsonPath := filepath.Join(cfg.OutputDir, cfg.PointsFile)
	jsonWriter, err := output.NewJSONWriter(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("failed to init JSON writer at %s: %w", jsonPath, err)
	}
	defer jsonWriter.Close()

	report := &Report{Logs: logs}
	fetcher := source.NewFetcher(cfg)
	builder := series.NewBuilder(rep, series.Filter{
		Benches:   cfg.Benches,
		Exclude:   cfg.Exclude,
		TimeTypes: cfg.TimeTypes,
	})
	initial := cfg.Settings()
	output.Logger.Debug("Initial settings", "settings", initial.String())

	// 1. Parse Phase
	for _, l := range logs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := fetcher.Fetch(ctx, l)
		if err != nil {
			output.Logger.Error("Failed to read log", "revision", l.Revision, "location", l.Location, "error", err)
			report.FailedLogs++
			continue
		}

		// Points read before a scan error are kept.
		points, err := parser.ParseReader(initial, bytes.NewReader(data))
		if err != nil {
			output.Logger.Warn("Log truncated, keeping points read so far", "revision", l.Revision, "location", l.Location, "points", len(points), "error", err)
			report.TruncatedLogs++
		}

		for _, p := range points {
			if err := jsonWriter.Write(model.RevisionPoint{Revision: l.Revision, DataPoint: p}); err != nil {
				output.Logger.Error("Failed to write point to JSON", "error", err)
			}
		}

		kept := builder.Add(l.Revision, points)
		report.Points += len(points)
		output.Logger.Debug("Parsed log", "revision", l.Revision, "points", len(points), "kept", kept)
	}

	// 2. Regression Phase
	linker := revision.Linker{Host: cfg.LinkHost}
	for _, s := range builder.Build() {
		tr, err := FitSeries(s, cfg.SlopeThreshold, linker)
		if err != nil {
			output.Logger.Warn("Skipping series", "series", s.Key.String(), "revisions", len(s.Revisions), "error", err)
			report.Skipped++
			continue
		}

		if tr.Regressed {
			output.Logger.Warn("Regression detected",
				"series", s.Key.String(),
				"slope", tr.Slope,
				"min_slope", tr.MinSlope,
				"threshold", cfg.SlopeThreshold,
			)
		}

		if err := csvWriter.Write(tr); err != nil {
			output.Logger.Error("Failed to write trend to CSV", "error", err)
		}
		report.Trends = append(report.Trends, tr)
	}

	output.Logger.Info("Analysis complete",
		"points", report.Points,
		"series", len(report.Trends),
		"skipped", report.Skipped,
		"failed_logs", report.FailedLogs,
		"truncated_logs", report.TruncatedLogs,
		"regressed", len(report.Regressed()),
		"report", csvPath,
	)
	return report, nil
}

// FitSeries fits one series and turns it into a report row.
func FitSeries(s series.Series, threshold float64, linker revision.Linker) (model.Trend, error) {
	res, err := regression.Fit(s.Points)
	if err != nil {
		return model.Trend{}, err
	}
	minSlope, err := res.FindMinSlope()
	if err != nil {
		return model.Trend{}, fmt.Errorf("min slope: %w", err)
	}
	output.Logger.Debug("Fitted series", "series", s.Key.String(), "fit", res.String(), "min_slope", minSlope)

	last := s.Revisions[len(s.Revisions)-1]
	return model.Trend{
		Bench:                  s.Key.Bench,
		Config:                 s.Key.Config,
		TimeType:               s.Key.TimeType,
		HasTimeType:            s.Key.HasTimeType,
		Points:                 res.N,
		MinRevision:            s.Revisions[0],
		MaxRevision:            last,
		Slope:                  res.Slope,
		Intercept:              res.Intercept,
		StandardError:          res.StandardError,
		StandardErrorSlope:     res.StandardErrorSlope,
		StandardErrorIntercept: res.StandardErrorIntercept,
		MinSlope:               minSlope,
		StartY:                 res.Start(),
		EndY:                   res.End(),
		Regressed:              minSlope > threshold,
		Link:                   linker.Link(strconv.Itoa(last)),
	}, nil
}
