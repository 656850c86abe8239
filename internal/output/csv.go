/*
PURPOSE:
  Writes fitted trends to a CSV report.
  Ensures data integrity by flushing writes immediately.

REQUIREMENTS:
  User-specified:
  - Output to CSV.
  - One row per series with the regression and min-slope bound.

  Implementation-discovered:
  - Overwrite on each run; the report is derived data.
  - Spreadsheet users want the trend endpoints to draw the line.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Consumes: internal/model.Trend

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/csv.
  - Flush() after every write (critical for crash resilience).
  - Use Mutex for concurrent writers.

USAGE:
  w, err := output.NewCSVWriter("trends.csv")
  w.Write(trend)
  w.Close()

SELF-HEALING INSTRUCTIONS:
  - If CSV format changes, update header and record conversion.

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Update Write() mapping when Trend struct changes.
*/

package output

import (
	"encoding/csv"
	"os"
	"strconv"
	"sync"

	"github.com/daryltucker/bench-trend/internal/model"
)

// CSVHeader is the first row of every report.
var CSVHeader = []string{
	"bench", "config", "time_type", "points", "min_revision", "max_revision",
	"slope", "intercept", "standard_error", "standard_error_slope", "standard_error_intercept",
	"min_slope", "regressed", "start_y", "end_y", "link",
}

// CSVWriter handles writing trends to a CSV file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter creates a new CSVWriter.
// It overwrites the file if it exists.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)
	if err := w.Write(CSVHeader); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()

	return &CSVWriter{
		file:   f,
		writer: w,
	}, nil
}

// Write writes a single trend to the CSV file.
// It is thread-safe.
func (cw *CSVWriter) Write(tr model.Trend) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if err := cw.writer.Write(TrendRecord(tr)); err != nil {
		return err
	}
	cw.writer.Flush()
	return cw.writer.Error()
}

// Close closes the underlying file.
func (cw *CSVWriter) Close() error {
	cw.writer.Flush()
	return cw.file.Close()
}

// TrendRecord converts tr into a CSV row matching CSVHeader.
func TrendRecord(tr model.Trend) []string {
	return []string{
		tr.Bench,
		tr.Config,
		timeTypeColumn(tr.TimeType, tr.HasTimeType),
		strconv.Itoa(tr.Points),
		strconv.Itoa(tr.MinRevision),
		strconv.Itoa(tr.MaxRevision),
		formatFloat(tr.Slope),
		formatFloat(tr.Intercept),
		formatFloat(tr.StandardError),
		formatFloat(tr.StandardErrorSlope),
		formatFloat(tr.StandardErrorIntercept),
		formatFloat(tr.MinSlope),
		strconv.FormatBool(tr.Regressed),
		formatFloat(tr.StartY),
		formatFloat(tr.EndY),
		tr.Link,
	}
}

// timeTypeColumn renders an absent label as "-" so it stays distinct from "".
func timeTypeColumn(label string, ok bool) string {
	if !ok {
		return "-"
	}
	return label + "msecs"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}
