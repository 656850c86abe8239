// Package assets holds files embedded into the binary.
package assets

import "embed"

// Templates contains the starter files written by `bench-trend init`.
//
//go:embed templates
var Templates embed.FS
