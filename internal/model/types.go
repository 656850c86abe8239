/*
PURPOSE:
  Defines the core data structures used throughout Bench Trend.
  These models represent parsed benchmark measurements and the
  per-series trend rows derived from them.

REQUIREMENTS:
  User-specified:
  - Record bench name, config, time type, measured time and settings.
  - A settings value is either a string or a bare flag.

  Implementation-discovered:
  - Absent time type must stay distinct from an empty label.
  - Each data point owns its own settings snapshot.
  - Need JSON tags for the JSONL dump.

ARCHITECTURE INTEGRATION:
  - Used by: internal/parser, internal/series, internal/engine, internal/output
  - Shared across boundaries.

ERROR HANDLING:
  - SettingValue.UnmarshalJSON rejects values that are neither a string nor true.

IMPLEMENTATION RULES:
  - Keep structs simple and public.
  - Settings are copied, never shared, when handed to a DataPoint.

USAGE:
  s := model.Settings{"scale": model.String("1.0"), "gpu": model.Flag()}
  dp := model.DataPoint{Bench: "rects", Config: "8888", Time: 1.5, Settings: s.Clone()}

SELF-HEALING INSTRUCTIONS:
  - If new trend columns are needed, add the field here and update the CSV writer.

RELATED FILES:
  - internal/output/csv.go
  - internal/output/json.go

MAINTENANCE:
  - Update when the log format grows new measurement attributes.
*/

package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// SettingValue is the value of one run setting: either a string or a flag
// that was present with no value.
type SettingValue struct {
	value string
	flag  bool
}

// String returns a string-valued setting.
func String(v string) SettingValue {
	return SettingValue{value: v}
}

// Flag returns the "present with no value" setting.
func Flag() SettingValue {
	return SettingValue{flag: true}
}

// IsFlag reports whether the setting was a bare flag.
func (v SettingValue) IsFlag() bool { return v.flag }

// Value returns the string value. It is empty for flags.
func (v SettingValue) Value() string { return v.value }

func (v SettingValue) String() string {
	if v.flag {
		return "true"
	}
	return v.value
}

// MarshalJSON encodes flags as true and strings as JSON strings.
func (v SettingValue) MarshalJSON() ([]byte, error) {
	if v.flag {
		return []byte("true"), nil
	}
	return json.Marshal(v.value)
}

func (v *SettingValue) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case bool:
		if !t {
			return fmt.Errorf("setting value false is not representable")
		}
		*v = Flag()
	case string:
		*v = String(t)
	default:
		return fmt.Errorf("unsupported setting value %s", string(data))
	}
	return nil
}

// Settings is the run configuration in effect when a measurement was taken.
type Settings map[string]SettingValue

// Clone returns an independent copy. Cloning nil yields an empty map.
func (s Settings) Clone() Settings {
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// String renders the settings as sorted "key=value" / "key" tokens,
// the way they appear on a settings announcement line.
func (s Settings) String() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tokens := make([]string, 0, len(keys))
	for _, k := range keys {
		if s[k].IsFlag() {
			tokens = append(tokens, k)
			continue
		}
		tokens = append(tokens, k+"="+s[k].Value())
	}
	return strings.Join(tokens, " ")
}

// DataPoint is a single measurement produced by the benchmark tool.
type DataPoint struct {
	Bench       string   `json:"bench"`
	Config      string   `json:"config"`
	TimeType    string   `json:"time_type,omitempty"`
	HasTimeType bool     `json:"has_time_type"`
	Time        float64  `json:"time"`
	Settings    Settings `json:"settings"`
}

// Label returns the time type, or "" with ok=false when it was absent.
func (d DataPoint) Label() (string, bool) {
	return d.TimeType, d.HasTimeType
}

// RevisionPoint is a DataPoint tagged with the revision whose log produced it.
type RevisionPoint struct {
	Revision int `json:"revision"`
	DataPoint
}

// Trend is one fitted series, as written to the report.
type Trend struct {
	Bench       string `json:"bench"`
	Config      string `json:"config"`
	TimeType    string `json:"time_type,omitempty"`
	HasTimeType bool   `json:"has_time_type"`

	Points      int `json:"points"`
	MinRevision int `json:"min_revision"`
	MaxRevision int `json:"max_revision"`

	Slope                  float64 `json:"slope"`
	Intercept              float64 `json:"intercept"`
	StandardError          float64 `json:"standard_error"`
	StandardErrorSlope     float64 `json:"standard_error_slope"`
	StandardErrorIntercept float64 `json:"standard_error_intercept"`
	MinSlope               float64 `json:"min_slope"`

	// Trend line endpoints over [MinRevision, MaxRevision].
	StartY float64 `json:"start_y"`
	EndY   float64 `json:"end_y"`

	Regressed bool   `json:"regressed"`
	Link      string `json:"link"`
}
