/*
PURPOSE:
  Provides a structured logger for Bench Trend.
  Wraps slog for consistent output.

REQUIREMENTS:
  User-specified:
  - "Sane" CLI output. Not spammy.

  Implementation-discovered:
  - Needs to support Debug/Info/Warn/Error levels.
  - JSON handler for CI, text handler for humans.
  - Logs go to stderr so stdout stays clean for parse output.

ARCHITECTURE INTEGRATION:
  - Used everywhere.

ERROR HANDLING:
  - Configure rejects unknown formats.

IMPLEMENTATION RULES:
  - Use `log/slog` (Go 1.21+).

USAGE:
  output.Logger.Info("message", "key", "value")

SELF-HEALING INSTRUCTIONS:
  - Ensure Go 1.21+ is used.

RELATED FILES:
  - internal/cli/root.go

MAINTENANCE:
  - None.
*/

package output

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

var Logger *slog.Logger

func init() {
	Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// SetLogger allows overriding the default logger (e.g. for testing or config changes)
func SetLogger(l *slog.Logger) {
	Logger = l
}

// Configure replaces Logger with a "text" or "json" handler writing to w.
func Configure(w io.Writer, level slog.Level, format string) error {
	opts := &slog.HandlerOptions{Level: level}
	switch format {
	case "", "text":
		SetLogger(slog.New(slog.NewTextHandler(w, opts)))
	case "json":
		SetLogger(slog.New(slog.NewJSONHandler(w, opts)))
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", format)
	}
	return nil
}
