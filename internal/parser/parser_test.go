package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/bench-trend/internal/model"
)

func TestParse_SettingsSnapshotIsNotRetroactive(t *testing.T) {
	lines := []string{
		"skia bench: a=1",
		"running bench X",
		"cfg: 1.0",
		"skia bench: a=2",
		"cfg: 2.0",
	}

	points := Parse(model.Settings{}, lines)

	require.Len(t, points, 2)
	assert.Equal(t, model.Settings{"a": model.String("1")}, points[0].Settings)
	assert.Equal(t, model.Settings{"a": model.String("2")}, points[1].Settings)
	assert.Equal(t, 1.0, points[0].Time)
	assert.Equal(t, 2.0, points[1].Time)
	assert.Equal(t, "X", points[0].Bench)
	assert.Equal(t, "cfg", points[1].Config)
}

func TestParse_SettingsTokens(t *testing.T) {
	initial := model.Settings{"keep": model.String("x"), "a": model.String("0")}
	lines := []string{
		"skia bench: a=1 gpu scale=2.0 a=3",
		"running bench rects",
		"8888: 1.00",
		"skia bench: scale=1.0",
		"8888: 2.00",
	}

	points := Parse(initial, lines)

	require.Len(t, points, 2)
	assert.Equal(t, model.Settings{
		"keep":  model.String("x"),
		"a":     model.String("3"),
		"gpu":   model.Flag(),
		"scale": model.String("2.0"),
	}, points[0].Settings)
	assert.True(t, points[0].Settings["gpu"].IsFlag())

	// unmentioned keys persist, mentioned ones are overridden
	assert.Equal(t, model.Settings{
		"keep":  model.String("x"),
		"a":     model.String("3"),
		"gpu":   model.Flag(),
		"scale": model.String("1.0"),
	}, points[1].Settings)
}

func TestParse_InitialSettingsAreCopied(t *testing.T) {
	initial := model.Settings{"a": model.String("1")}
	points := Parse(initial, []string{"running bench X", "cfg: 1.0 2.0"})
	require.Len(t, points, 2)

	initial["a"] = model.String("changed")
	points[0].Settings["b"] = model.Flag()

	assert.Equal(t, model.Settings{"a": model.String("1")}, points[1].Settings)
	assert.NotContains(t, points[1].Settings, "b")
}

func TestParse_NoBenchNoPoints(t *testing.T) {
	points := Parse(model.Settings{}, []string{
		"skia bench: a=1",
		"cfg: 1.00 2.00",
	})
	assert.Empty(t, points)

	points = Parse(model.Settings{}, []string{
		"cfg: 1.00",
		"running bench X",
	})
	assert.Empty(t, points)
}

func TestParse_MultipleTimesOnOneLine(t *testing.T) {
	points := Parse(model.Settings{}, []string{
		"running bench X",
		"cfg: 1.50 label2msecs = 2.50",
	})

	require.Len(t, points, 2)

	assert.Equal(t, 1.50, points[0].Time)
	_, ok := points[0].Label()
	assert.False(t, ok)

	assert.Equal(t, 2.50, points[1].Time)
	label, ok := points[1].Label()
	assert.True(t, ok)
	assert.Equal(t, "label2", label)

	for _, p := range points {
		assert.Equal(t, "X", p.Bench)
		assert.Equal(t, "cfg", p.Config)
	}
}

func TestParse_ToolOutput(t *testing.T) {
	log := `skia bench: alpha=0xFF scale=1 rotate=0 dither=default filter=0
running bench [640 480]          rects_1
   8888: cmsecs = 0.43  msecs = 1.23  565: cmsecs = 0.50  msecs = 2.34
running bench [640 480]          bitmap_8888
   8888: msecs = 3.00
random noise 99.99 here
`
	points, err := ParseReader(model.Settings{"mode": model.String("normal")}, strings.NewReader(log))
	require.NoError(t, err)
	require.Len(t, points, 5)

	tests := []struct {
		bench, config, label string
		time                 float64
	}{
		{"rects_1", "8888", "c", 0.43},
		{"rects_1", "8888", "", 1.23},
		{"rects_1", "565", "c", 0.50},
		{"rects_1", "565", "", 2.34},
		{"bitmap_8888", "8888", "", 3.00},
	}
	for i, tt := range tests {
		p := points[i]
		assert.Equal(t, tt.bench, p.Bench, "point %d", i)
		assert.Equal(t, tt.config, p.Config, "point %d", i)
		assert.Equal(t, tt.time, p.Time, "point %d", i)
		label, ok := p.Label()
		assert.True(t, ok, "point %d", i)
		assert.Equal(t, tt.label, label, "point %d", i)
		assert.Equal(t, model.String("normal"), p.Settings["mode"])
		assert.Equal(t, model.String("0xFF"), p.Settings["alpha"])
	}
}

func TestParse_BenchAndConfigOnSameLine(t *testing.T) {
	points := Parse(model.Settings{}, []string{"running bench rects 8888: 1.00"})
	require.Len(t, points, 1)
	assert.Equal(t, "rects", points[0].Bench)
	assert.Equal(t, "8888", points[0].Config)
}

func TestParse_BenchPersistsAcrossLines(t *testing.T) {
	points := Parse(model.Settings{}, []string{
		"running bench A",
		"nothing to see",
		"cfg: 1.00",
		"running bench B",
		"cfg: 2.00",
	})
	require.Len(t, points, 2)
	assert.Equal(t, "A", points[0].Bench)
	assert.Equal(t, "B", points[1].Bench)
}

func TestParse_IgnoresMalformedTimes(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "integer", line: "cfg: 12"},
		{name: "missing space", line: "cfg:1.00"},
		{name: "trailing junk", line: "cfg: 1.00x"},
		{name: "empty", line: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := Parse(model.Settings{}, []string{"running bench X", tt.line})
			assert.Empty(t, points)
		})
	}
}

func TestParseReader_Empty(t *testing.T) {
	points, err := ParseReader(nil, strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, points)
}
