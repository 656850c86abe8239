/*
PURPOSE:
  Reconstructs structured data points from the text log written by the
  benchmark tool.

REQUIREMENTS:
  User-specified:
  - "skia bench:" lines announce settings (key or key=value tokens).
  - "running bench NAME" lines select the current bench.
  - "config: [label msecs = ]NUMBER ..." lines carry the measurements.

  Implementation-discovered:
  - One line may match several patterns; all checks run on every line.
  - Settings are copy-on-write so earlier points keep their snapshot.
  - Lines read with bufio.Scanner have no trailing newline, so the last
    time entry may end at end of line.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine, internal/cli (parse command)
  - Produces: []model.DataPoint

ERROR HANDLING:
  - Best effort. Unrecognised text is dropped, never reported.
  - ParseReader only surfaces I/O errors from the reader.

IMPLEMENTATION RULES:
  - No package-level mutable state; patterns are compiled once.
  - Never hand the running settings map to a DataPoint directly.

USAGE:
  points := parser.Parse(model.Settings{}, lines)
  points, err := parser.ParseReader(initial, file)

SELF-HEALING INSTRUCTIONS:
  - If the tool's output format changes, update the patterns below and
    the fixtures in parser_test.go together.

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Keep the patterns in sync with the benchmark tool's printf formats.
*/

package parser

import (
	"bufio"
	"io"
	"regexp"
	"strconv"

	"github.com/daryltucker/bench-trend/internal/model"
)

const (
	settingPattern  = `([^\s=]+)(?:=(\S+))?`
	settingsPattern = `skia bench:((?:\s+` + settingPattern + `)*)`
	benchPattern    = `running bench (?:\[\d+ \d+\] )?\s*(\S+)`
	timePattern     = `(?:(\w*)msecs = )?\s*(\d+\.\d+)`
	configPattern   = `(\S+): ((?:` + timePattern + `(?:\s+|$))+)`
)

var (
	settingRe  = regexp.MustCompile(settingPattern)
	settingsRe = regexp.MustCompile(settingsPattern)
	benchRe    = regexp.MustCompile(benchPattern)
	timeRe     = regexp.MustCompile(timePattern)
	configRe   = regexp.MustCompile(configPattern)
)

// maxLineSize bounds a single log line read by ParseReader.
const maxLineSize = 1024 * 1024

// Parse walks lines in order and returns every measurement found.
// initial is copied and never modified.
func Parse(initial model.Settings, lines []string) []model.DataPoint {
	p := newState(initial)
	for _, line := range lines {
		p.feed(line)
	}
	return p.points
}

// ParseReader is Parse over the lines of r.
func ParseReader(initial model.Settings, r io.Reader) ([]model.DataPoint, error) {
	p := newState(initial)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		p.feed(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return p.points, err
	}
	return p.points, nil
}

type state struct {
	settings model.Settings
	bench    string
	points   []model.DataPoint
}

func newState(initial model.Settings) *state {
	return &state{settings: initial.Clone()}
}

func (p *state) feed(line string) {
	if m := settingsRe.FindStringSubmatch(line); m != nil {
		p.settings = applySettings(p.settings, m[1])
	}

	if m := benchRe.FindStringSubmatch(line); m != nil {
		p.bench = m[1]
	}

	if p.bench == "" {
		return
	}

	for _, cm := range configRe.FindAllStringSubmatch(line, -1) {
		config, times := cm[1], cm[2]
		for _, tm := range timeRe.FindAllStringSubmatchIndex(times, -1) {
			value, err := strconv.ParseFloat(times[tm[4]:tm[5]], 64)
			if err != nil {
				// unreachable: the pattern only admits decimals
				continue
			}
			dp := model.DataPoint{
				Bench:    p.bench,
				Config:   config,
				Time:     value,
				Settings: p.settings.Clone(),
			}
			if tm[2] >= 0 {
				dp.TimeType = times[tm[2]:tm[3]]
				dp.HasTimeType = true
			}
			p.points = append(p.points, dp)
		}
	}
}

// applySettings returns a fresh copy of prev with the tokens applied left
// to right.
func applySettings(prev model.Settings, tokens string) model.Settings {
	next := prev.Clone()
	for _, sm := range settingRe.FindAllStringSubmatch(tokens, -1) {
		if sm[2] != "" {
			next[sm[1]] = model.String(sm[2])
		} else {
			next[sm[1]] = model.Flag()
		}
	}
	return next
}
