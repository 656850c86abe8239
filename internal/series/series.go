/*
PURPOSE:
  Groups parsed data points from many revisions into per-series inputs
  for the regression engine.

REQUIREMENTS:
  User-specified:
  - A series is identified by bench, config and time type.
  - A missing time type is its own series, distinct from any label.

  Implementation-discovered:
  - A log usually holds several samples per series; they are reduced to a
    single y per revision with a chosen representation (avg, min, med, 25th).
  - Bench and time type filters keep noisy series out of the report.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Produces: regression.Point slices (x = revision, y = representative time)

ERROR HANDLING:
  - ParseRepresentation rejects unknown names.

IMPLEMENTATION RULES:
  - Output order is deterministic: series sorted by key, points by revision.
  - Use gonum for the reductions.

USAGE:
  b := series.NewBuilder(series.Average, series.Filter{})
  b.Add(1234, points)
  for _, s := range b.Build() { ... }

SELF-HEALING INSTRUCTIONS:
  - To add a representation, extend the constants, ParseRepresentation and Reduce.

RELATED FILES:
  - internal/regression/regression.go
  - internal/engine/runner.go

MAINTENANCE:
  - None.
*/

package series

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/daryltucker/bench-trend/internal/model"
	"github.com/daryltucker/bench-trend/internal/regression"
)

// Representation selects how the samples of one revision become one value.
type Representation string

const (
	Average  Representation = "avg"
	Minimum  Representation = "min"
	Median   Representation = "med"
	Quartile Representation = "25th"
)

// ParseRepresentation validates a representation name. Empty means Average.
func ParseRepresentation(s string) (Representation, error) {
	switch r := Representation(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return Average, nil
	case Average, Minimum, Median, Quartile:
		return r, nil
	}
	return "", fmt.Errorf("unknown representation %q (want avg, min, med or 25th)", s)
}

// Reduce collapses values, which must not be empty.
func (r Representation) Reduce(values []float64) float64 {
	switch r {
	case Minimum:
		return floats.Min(values)
	case Median, Quartile:
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)
		p := 0.5
		if r == Quartile {
			p = 0.25
		}
		return stat.Quantile(p, stat.Empirical, sorted, nil)
	default:
		return stat.Mean(values, nil)
	}
}

// Key identifies one series.
type Key struct {
	Bench       string
	Config      string
	TimeType    string
	HasTimeType bool
}

// KeyOf returns the series key of a data point.
func KeyOf(dp model.DataPoint) Key {
	return Key{Bench: dp.Bench, Config: dp.Config, TimeType: dp.TimeType, HasTimeType: dp.HasTimeType}
}

func (k Key) String() string {
	if !k.HasTimeType {
		return k.Bench + "/" + k.Config
	}
	return k.Bench + "/" + k.Config + "/" + k.TimeType + "msecs"
}

func (k Key) less(o Key) bool {
	if k.Bench != o.Bench {
		return k.Bench < o.Bench
	}
	if k.Config != o.Config {
		return k.Config < o.Config
	}
	if k.HasTimeType != o.HasTimeType {
		return !k.HasTimeType
	}
	return k.TimeType < o.TimeType
}

// NoTimeType is the filter token for points without a time label. It
// matches the time_type column of the trend report.
const NoTimeType = "-"

// Filter restricts which data points enter a series. Empty fields match all.
type Filter struct {
	// Benches keeps benches whose name contains any of these substrings.
	Benches []string
	// Exclude drops benches whose name contains any of these substrings.
	Exclude []string
	// TimeTypes keeps only these labels. NoTimeType selects points without
	// a label, "" selects points with an empty "msecs = " label.
	TimeTypes []string
}

// Match reports whether dp passes the filter.
func (f Filter) Match(dp model.DataPoint) bool {
	name := strings.ToLower(dp.Bench)
	for _, ex := range f.Exclude {
		if strings.Contains(name, strings.ToLower(ex)) {
			return false
		}
	}
	if len(f.Benches) > 0 && !containsAny(name, f.Benches) {
		return false
	}
	if len(f.TimeTypes) > 0 {
		label := NoTimeType
		if dp.HasTimeType {
			label = dp.TimeType
		}
		for _, tt := range f.TimeTypes {
			if tt == label {
				return true
			}
		}
		return false
	}
	return true
}

func containsAny(name string, subs []string) bool {
	for _, s := range subs {
		if strings.Contains(name, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

// Series is the regression input for one key.
type Series struct {
	Key       Key
	Revisions []int
	Points    []regression.Point
}

// Builder accumulates samples by key and revision.
type Builder struct {
	rep     Representation
	filter  Filter
	samples map[Key]map[int][]float64
}

func NewBuilder(rep Representation, filter Filter) *Builder {
	return &Builder{
		rep:     rep,
		filter:  filter,
		samples: make(map[Key]map[int][]float64),
	}
}

// Add records the points parsed from the log of one revision and returns
// how many passed the filter.
func (b *Builder) Add(revision int, points []model.DataPoint) int {
	added := 0
	for _, dp := range points {
		if !b.filter.Match(dp) {
			continue
		}
		k := KeyOf(dp)
		byRev, ok := b.samples[k]
		if !ok {
			byRev = make(map[int][]float64)
			b.samples[k] = byRev
		}
		byRev[revision] = append(byRev[revision], dp.Time)
		added++
	}
	return added
}

// Build reduces the samples and returns the series sorted by key.
func (b *Builder) Build() []Series {
	out := make([]Series, 0, len(b.samples))
	for k, byRev := range b.samples {
		revs := make([]int, 0, len(byRev))
		for rev := range byRev {
			revs = append(revs, rev)
		}
		sort.Ints(revs)

		s := Series{Key: k, Revisions: revs, Points: make([]regression.Point, 0, len(revs))}
		for _, rev := range revs {
			s.Points = append(s.Points, regression.Point{X: float64(rev), Y: b.rep.Reduce(byRev[rev])})
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.less(out[j].Key) })
	return out
}
