package regression

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func line(slope, intercept float64, xs ...float64) []Point {
	points := make([]Point, 0, len(xs))
	for _, x := range xs {
		points = append(points, Point{X: x, Y: slope*x + intercept})
	}
	return points
}

func TestFit_ExactLine(t *testing.T) {
	res, err := Fit(line(2, 3, 1, 2, 3, 4, 5))
	require.NoError(t, err)

	assert.InDelta(t, 2.0, res.Slope, 1e-9)
	assert.InDelta(t, 3.0, res.Intercept, 1e-9)
	assert.InDelta(t, 0.0, res.StandardError, 1e-9)
	assert.InDelta(t, 0.0, res.StandardErrorSlope, 1e-9)
	assert.InDelta(t, 0.0, res.StandardErrorIntercept, 1e-9)
	assert.Equal(t, 1.0, res.MinX)
	assert.Equal(t, 5.0, res.MaxX)
	assert.Equal(t, 5, res.N)

	minSlope, err := res.FindMinSlope()
	require.NoError(t, err)
	assert.InDelta(t, 2.0, minSlope, 1e-9)
}

func TestFit_TwoPointsHaveNoErrors(t *testing.T) {
	res, err := Fit([]Point{{X: 0, Y: 1}, {X: 2, Y: 5}})
	require.NoError(t, err)

	assert.InDelta(t, 2.0, res.Slope, 1e-12)
	assert.InDelta(t, 1.0, res.Intercept, 1e-12)
	assert.Equal(t, 0.0, res.StandardError)
	assert.Equal(t, 0.0, res.StandardErrorSlope)
	assert.Equal(t, 0.0, res.StandardErrorIntercept)
}

func TestFit_MatchesGonum(t *testing.T) {
	points := []Point{
		{X: 100, Y: 10.2}, {X: 101, Y: 10.9}, {X: 103, Y: 10.4},
		{X: 104, Y: 11.8}, {X: 108, Y: 12.1}, {X: 110, Y: 11.7},
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)

	res, err := Fit(points)
	require.NoError(t, err)
	assert.InDelta(t, beta, res.Slope, 1e-9)
	assert.InDelta(t, alpha, res.Intercept, 1e-7)
	assert.Greater(t, res.StandardError, 0.0)
	assert.Greater(t, res.StandardErrorSlope, 0.0)
	assert.Greater(t, res.StandardErrorIntercept, 0.0)

	// residual standard error: sqrt(SSE / (n-2))
	var sse float64
	for _, p := range points {
		d := p.Y - res.Predict(p.X)
		sse += d * d
	}
	assert.InDelta(t, sse/float64(len(points)-2), res.StandardError*res.StandardError, 1e-9)
}

func TestFit_OrderInvariant(t *testing.T) {
	points := []Point{
		{X: 1, Y: 5.1}, {X: 2, Y: 4.2}, {X: 3, Y: 4.9}, {X: 4, Y: 3.1},
		{X: 5, Y: 2.7}, {X: 6, Y: 2.9}, {X: 7, Y: 1.2},
	}
	want, err := Fit(points)
	require.NoError(t, err)

	shuffled := append([]Point(nil), points...)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got, err := Fit(shuffled)
		require.NoError(t, err)
		assert.InDelta(t, want.Slope, got.Slope, 1e-9)
		assert.InDelta(t, want.Intercept, got.Intercept, 1e-9)
		assert.InDelta(t, want.StandardError, got.StandardError, 1e-9)
		assert.Equal(t, want.MinX, got.MinX)
		assert.Equal(t, want.MaxX, got.MaxX)
	}
}

func TestFit_Errors(t *testing.T) {
	tests := []struct {
		name   string
		points []Point
		is     error
	}{
		{name: "empty", points: nil, is: ErrInsufficientData},
		{name: "single point", points: []Point{{X: 1, Y: 1}}, is: ErrInsufficientData},
		{name: "all x equal", points: []Point{{X: 3, Y: 1}, {X: 3, Y: 2}, {X: 3, Y: 4}}, is: ErrDegenerateDomain},
		{name: "x spread lost to rounding", points: []Point{{X: 1.7e9, Y: 1}, {X: 1.7e9 + 1, Y: 2}, {X: 1.7e9 + 2, Y: 3}}, is: ErrDegenerateDomain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fit(tt.points)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.is))
		})
	}

	_, err := Fit([]Point{{X: 1, Y: 1}})
	var insufficient *InsufficientDataError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 1, insufficient.N)
}

func TestFindMinSlope(t *testing.T) {
	tests := []struct {
		name string
		res  Result
		want float64
	}{
		{
			name: "flat",
			res:  Result{Slope: 0, Intercept: 4, StandardError: 1, MinX: 0, MaxX: 10},
			want: 0,
		},
		{
			name: "rising beyond error",
			// ends at 0 and 20, shrunk by 1 at each end: (19 - 1) / 10
			res:  Result{Slope: 2, Intercept: 0, StandardError: 1, MinX: 0, MaxX: 10},
			want: 1.8,
		},
		{
			name: "rising within error clamps to zero",
			res:  Result{Slope: 0.1, Intercept: 0, StandardError: 5, MinX: 0, MaxX: 10},
			want: 0,
		},
		{
			name: "falling beyond error",
			// ends at 20 and 0: (1 - 19) / 10
			res:  Result{Slope: -2, Intercept: 20, StandardError: 1, MinX: 0, MaxX: 10},
			want: -1.8,
		},
		{
			name: "falling within error clamps to zero",
			res:  Result{Slope: -0.1, Intercept: 20, StandardError: 5, MinX: 0, MaxX: 10},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.res.FindMinSlope()
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestFindMinSlope_ZeroWidth(t *testing.T) {
	_, err := Result{Slope: 1, MinX: 5, MaxX: 5}.FindMinSlope()
	assert.ErrorIs(t, err, ErrDegenerateDomain)
}

func TestFindMinSlope_ZeroSlopeFromFit(t *testing.T) {
	res, err := Fit([]Point{{X: 1, Y: 3}, {X: 2, Y: 5}, {X: 3, Y: 4}, {X: 4, Y: 4}, {X: 5, Y: 5}, {X: 6, Y: 3}})
	require.NoError(t, err)
	require.Equal(t, 0.0, res.Slope)
	assert.Greater(t, res.StandardError, 0.0)

	minSlope, err := res.FindMinSlope()
	require.NoError(t, err)
	assert.Equal(t, 0.0, minSlope)
}

func TestResult_Endpoints(t *testing.T) {
	res, err := Fit(line(-1.5, 10, 2, 4, 6))
	require.NoError(t, err)
	assert.InDelta(t, 7.0, res.Start(), 1e-9)
	assert.InDelta(t, 1.0, res.End(), 1e-9)
}

func TestResult_String(t *testing.T) {
	res, err := Fit(line(2, 3, 1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, "Regression(slope=2, intercept=3, se=0, se_slope=0, se_intercept=0)", res.String())
}
