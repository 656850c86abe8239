/*
PURPOSE:
  Ordinary least squares trend line over (x, y) points, with standard
  errors and a conservative one-standard-error slope bound.

REQUIREMENTS:
  User-specified:
  - Slope, intercept, standard error, standard error of slope and
    intercept, min/max x.
  - Standard errors are zero with fewer than three points.
  - FindMinSlope shifts the line by one standard error at both domain ends.

  Implementation-discovered:
  - Fewer than two points and zero x spread are reported as typed errors
    instead of producing NaN or Inf.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Fed by: internal/series

ERROR HANDLING:
  - *InsufficientDataError (errors.Is ErrInsufficientData).
  - *DegenerateDomainError (errors.Is ErrDegenerateDomain).

IMPLEMENTATION RULES:
  - Single pass over the points using running sums.
  - Clamp variance estimates at zero before sqrt.
  - FindMinSlope uses the same standard error at both ends. Do not widen
    it into a confidence band; alert thresholds depend on this value.

USAGE:
  res, err := regression.Fit(points)
  bound, err := res.FindMinSlope()

SELF-HEALING INSTRUCTIONS:
  - If results look off, compare against gonum stat.LinearRegression
    (see regression_test.go).

RELATED FILES:
  - internal/series/series.go

MAINTENANCE:
  - None.
*/

package regression

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInsufficientData = errors.New("insufficient data for regression")
	ErrDegenerateDomain = errors.New("degenerate regression domain")
)

// InsufficientDataError is returned when fewer than two points are given.
type InsufficientDataError struct {
	N int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("regression needs at least 2 points, got %d", e.N)
}

func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// DegenerateDomainError is returned when every point has the same x.
type DegenerateDomainError struct {
	X float64
}

func (e *DegenerateDomainError) Error() string {
	return fmt.Sprintf("regression domain has zero width (all x = %g)", e.X)
}

func (e *DegenerateDomainError) Is(target error) bool {
	return target == ErrDegenerateDomain
}

// Point is one (x, y) observation.
type Point struct {
	X float64
	Y float64
}

// Result is a fitted line y = Slope*x + Intercept.
type Result struct {
	Slope                  float64
	Intercept              float64
	StandardError          float64
	StandardErrorSlope     float64
	StandardErrorIntercept float64
	MaxX                   float64
	MinX                   float64
	N                      int
}

// Fit computes the least squares line through points.
func Fit(points []Point) (Result, error) {
	n := len(points)
	if n < 2 {
		return Result{}, &InsufficientDataError{N: n}
	}

	minX, maxX := points[0].X, points[0].X
	var sx, sy, sxx, sxy, syy float64
	for _, p := range points {
		x, y := p.X, p.Y
		if x > maxX {
			maxX = x
		}
		if x < minX {
			minX = x
		}

		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
		syy += y * y
	}
	if maxX == minX {
		return Result{}, &DegenerateDomainError{X: minX}
	}

	fn := float64(n)
	// The conversions keep both products rounded (no fused multiply-add).
	// Large, closely spaced x values can cancel the spread to zero or below.
	spread := float64(fn*sxx) - float64(sx*sx)
	if !(spread > 0) {
		return Result{}, &DegenerateDomainError{X: minX}
	}

	slope := (fn*sxy - sx*sy) / spread
	intercept := (sy - slope*sx) / fn

	var se2, sB2, sa2 float64
	if n >= 3 {
		se2 = (fn*syy - sy*sy - slope*slope*spread) / (fn * (fn - 2))
		sB2 = fn * se2 / spread
		sa2 = sB2 * sxx / fn
	}

	return Result{
		Slope:                  slope,
		Intercept:              intercept,
		StandardError:          math.Sqrt(math.Max(0, se2)),
		StandardErrorSlope:     math.Sqrt(math.Max(0, sB2)),
		StandardErrorIntercept: math.Sqrt(math.Max(0, sa2)),
		MaxX:                   maxX,
		MinX:                   minX,
		N:                      n,
	}, nil
}

// Predict evaluates the fitted line at x.
func (r Result) Predict(x float64) float64 {
	return r.Slope*x + r.Intercept
}

// Start is the fitted value at MinX.
func (r Result) Start() float64 { return r.Predict(r.MinX) }

// End is the fitted value at MaxX.
func (r Result) End() float64 { return r.Predict(r.MaxX) }

// FindMinSlope returns the shallowest slope consistent with the line
// moved by one standard error at each end of the domain. The result
// never crosses zero and is 0 for a flat fit.
func (r Result) FindMinSlope() (float64, error) {
	width := r.MaxX - r.MinX
	if width == 0 {
		return 0, &DegenerateDomainError{X: r.MinX}
	}

	switch {
	case r.Slope < 0:
		lowerLeft := r.Predict(r.MinX) - r.StandardError
		upperRight := r.Predict(r.MaxX) + r.StandardError
		return math.Min(0, (upperRight-lowerLeft)/width), nil
	case r.Slope > 0:
		upperLeft := r.Predict(r.MinX) + r.StandardError
		lowerRight := r.Predict(r.MaxX) - r.StandardError
		return math.Max(0, (lowerRight-upperLeft)/width), nil
	}
	return 0, nil
}

func (r Result) String() string {
	return fmt.Sprintf("Regression(slope=%g, intercept=%g, se=%g, se_slope=%g, se_intercept=%g)",
		r.Slope, r.Intercept, r.StandardError, r.StandardErrorSlope, r.StandardErrorIntercept)
}
