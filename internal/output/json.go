/*
PURPOSE:
  Writes parsed data points to a JSON Lines file (NDJSON).
  Optimized for machine parsing and jq pipelines.

REQUIREMENTS:
  User-specified:
  - JSON output for easier parsing.

  Implementation-discovered:
  - JSON Lines is better for streaming/logging than a single large array (append-friendly).
  - The parse command writes to stdout, so the writer accepts any io.Writer.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine, internal/cli
  - Consumes: internal/model.RevisionPoint, internal/model.DataPoint

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/json.NewEncoder.
  - Thread-safe.

USAGE:
  w, err := output.NewJSONWriter("points.jsonl")
  w.Write(point)
  w.Close()

SELF-HEALING INSTRUCTIONS:
  - None specific.

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Update if we switch to plain JSON array (not recommended for streaming).
*/

package output

import (
	"encoding/json"
	"io"
	"os"
	"sync"
)

// JSONWriter handles writing records to a JSON Lines stream.
type JSONWriter struct {
	closer  io.Closer
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONWriter creates a new JSONWriter on a fresh file at path.
func NewJSONWriter(path string) (*JSONWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	return &JSONWriter{
		closer:  f,
		encoder: json.NewEncoder(f),
	}, nil
}

// NewJSONStream writes to w. Close does not close w.
func NewJSONStream(w io.Writer) *JSONWriter {
	return &JSONWriter{encoder: json.NewEncoder(w)}
}

// Write writes a single record as a JSON line.
func (jw *JSONWriter) Write(v interface{}) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	return jw.encoder.Encode(v)
}

// Close closes the underlying file.
func (jw *JSONWriter) Close() error {
	if jw.closer == nil {
		return nil
	}
	return jw.closer.Close()
}
