package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/bench-trend/internal/model"
)

func sampleTrends() []model.Trend {
	return []model.Trend{
		{
			Bench: "rects", Config: "8888",
			Points: 4, MinRevision: 10, MaxRevision: 40,
			Slope: 0.5, Intercept: 1, StandardError: 0.25, MinSlope: 0.3,
			StartY: 6, EndY: 21, Regressed: true,
			Link: `<a href="http://h/source/detail?r=40">40</a>`,
		},
		{
			Bench: "bitmap", Config: "565", TimeType: "c", HasTimeType: true,
			Points: 2, MinRevision: 10, MaxRevision: 20,
		},
	}
}

func TestCSVWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trends.csv")
	w, err := NewCSVWriter(path)
	require.NoError(t, err)
	for _, tr := range sampleTrends() {
		require.NoError(t, w.Write(tr))
	}
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, CSVHeader, records[0])
	assert.Equal(t, []string{
		"rects", "8888", "-", "4", "10", "40",
		"0.5", "1", "0.25", "0", "0", "0.3", "true", "6", "21",
		`<a href="http://h/source/detail?r=40">40</a>`,
	}, records[1])
	assert.Equal(t, "cmsecs", records[2][2])
	assert.Equal(t, "false", records[2][12])
}

func TestJSONStream(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONStream(&buf)

	p := model.RevisionPoint{
		Revision: 12,
		DataPoint: model.DataPoint{
			Bench: "rects", Config: "8888", Time: 1.5,
			Settings: model.Settings{"gpu": model.Flag(), "scale": model.String("1.0")},
		},
	}
	require.NoError(t, w.Write(p))
	require.NoError(t, w.Close())

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 12.0, got["revision"])
	assert.Equal(t, "rects", got["bench"])
	assert.Equal(t, false, got["has_time_type"])
	assert.NotContains(t, got, "time_type")
	assert.Equal(t, map[string]interface{}{"gpu": true, "scale": "1.0"}, got["settings"])

	var back model.RevisionPoint
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, p, back)
}

func TestJSONWriter_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.jsonl")
	w, err := NewJSONWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(model.DataPoint{Bench: "a"}))
	require.NoError(t, w.Write(model.DataPoint{Bench: "b"}))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, bytes.Count(data, []byte("\n")))
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(sampleTrends())
	assert.Contains(t, out, "rects/8888")
	assert.Contains(t, out, "bitmap/565/cmsecs")
	assert.Contains(t, out, "REGRESSED")
	assert.Contains(t, out, "10-40")
	assert.Contains(t, out, "2 series, 1 regressed")

	assert.Contains(t, RenderTable(nil), "no series")
}

func TestConfigure(t *testing.T) {
	defer SetLogger(Logger)

	var buf bytes.Buffer
	require.NoError(t, Configure(&buf, slog.LevelDebug, "json"))
	Logger.Debug("hello", "k", "v")

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "v", rec["k"])

	assert.Error(t, Configure(&buf, slog.LevelInfo, "xml"))
}
