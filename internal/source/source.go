/*
PURPOSE:
  Locates benchmark logs and reads their contents, from local files or
  over HTTP.

REQUIREMENTS:
  User-specified:
  - Each log belongs to one revision.
  - Logs come from a directory of "bench_r<REV>_..." files or from
    explicit REV=LOCATION entries.

  Implementation-discovered:
  - Build bots publish logs over HTTP; transient failures need retries.
  - Needs http.Client with timeouts.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine, internal/cli (list-logs)
  - Uses: internal/config, internal/output

ERROR HANDLING:
  - Discover fails on unreadable directories and bad patterns.
  - Fetch retries network and 5xx errors up to MaxRetries; 4xx is final.

IMPLEMENTATION RULES:
  - Use net/http with a context per attempt.
  - Logs are returned sorted by revision.

USAGE:
  logs, err := source.Discover(cfg.LogDir, cfg.FilePattern)
  f := source.NewFetcher(cfg)
  data, err := f.Fetch(ctx, logs[0])

SELF-HEALING INSTRUCTIONS:
  - If a build bot changes its file naming, update file_pattern in config.

RELATED FILES:
  - internal/config/config.go
  - internal/engine/runner.go

MAINTENANCE:
  - Add new schemes in Fetch if logs move to other stores.
*/

package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/daryltucker/bench-trend/internal/config"
	"github.com/daryltucker/bench-trend/internal/output"
)

// Log is one benchmark log and the revision it was produced at.
type Log struct {
	Revision int
	Location string
}

// IsRemote reports whether the log is fetched over HTTP.
func (l Log) IsRemote() bool {
	return strings.HasPrefix(l.Location, "http://") || strings.HasPrefix(l.Location, "https://")
}

// Discover lists the files in dir whose base name matches pattern. The
// first capture group of pattern is the revision number.
func Discover(dir, pattern string) ([]Log, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid file pattern %q: %w", pattern, err)
	}
	if re.NumSubexp() < 1 {
		return nil, fmt.Errorf("file pattern %q has no revision group", pattern)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read log directory %s: %w", dir, err)
	}

	var logs []Log
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := re.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		rev, err := strconv.Atoi(m[1])
		if err != nil {
			output.Logger.Warn("Skipping log with non-numeric revision", "file", entry.Name(), "revision", m[1])
			continue
		}
		logs = append(logs, Log{Revision: rev, Location: filepath.Join(dir, entry.Name())})
	}

	SortLogs(logs)
	return logs, nil
}

// ParseEntry parses a "REV=LOCATION" source entry.
func ParseEntry(entry string) (Log, error) {
	revStr, loc, ok := strings.Cut(entry, "=")
	if !ok || loc == "" {
		return Log{}, fmt.Errorf("source %q: want REV=PATH or REV=URL", entry)
	}
	rev, err := strconv.Atoi(strings.TrimSpace(revStr))
	if err != nil {
		return Log{}, fmt.Errorf("source %q: bad revision: %w", entry, err)
	}
	return Log{Revision: rev, Location: strings.TrimSpace(loc)}, nil
}

// SortLogs orders logs by revision, then location.
func SortLogs(logs []Log) {
	sort.SliceStable(logs, func(i, j int) bool {
		if logs[i].Revision != logs[j].Revision {
			return logs[i].Revision < logs[j].Revision
		}
		return logs[i].Location < logs[j].Location
	})
}

// Fetcher reads log contents.
type Fetcher struct {
	Client     *http.Client
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
}

// NewFetcher creates a Fetcher from the retry and timeout settings in cfg.
func NewFetcher(cfg *config.Config) *Fetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = cfg.FetchTimeout

	return &Fetcher{
		Client:     &http.Client{Transport: transport},
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Timeout:    cfg.FetchTimeout,
	}
}

// errPermanent marks failures that a retry cannot fix.
var errPermanent = errors.New("permanent failure")

// Fetch returns the full contents of l.
func (f *Fetcher) Fetch(ctx context.Context, l Log) ([]byte, error) {
	if !l.IsRemote() {
		data, err := os.ReadFile(l.Location)
		if err != nil {
			return nil, fmt.Errorf("failed to read log %s: %w", l.Location, err)
		}
		return data, nil
	}

	retries := f.MaxRetries
	if retries < 1 {
		retries = 1
	}

	var lastErr error
	for i := 0; i < retries; i++ {
		if i > 0 {
			output.Logger.Info("Retrying log download...", "url", l.Location, "attempt", i+1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.RetryDelay):
			}
		}

		data, err := f.get(ctx, l.Location)
		if err == nil {
			return data, nil
		}
		if errors.Is(err, errPermanent) || ctx.Err() != nil {
			return nil, err
		}
		output.Logger.Warn("Log download failed", "url", l.Location, "attempt", i+1, "error", err)
		lastErr = err
	}
	return nil, lastErr
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errPermanent, err)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network/connection error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("bad status fetching %s: %s", url, resp.Status)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, fmt.Errorf("%w: %v", errPermanent, err)
		}
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, nil
}
