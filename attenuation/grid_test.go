package attenuation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/geoblast/ppvlaw/errs"
)

func TestLinspace(t *testing.T) {
	t.Run("InclusiveEndpoints", func(t *testing.T) {
		grid := Linspace(0.5, 1.76779, 20)
		require.Len(t, grid, 20)
		require.InDelta(t, 0.5, grid[0], 1e-15)
		require.InDelta(t, 1.76779, grid[19], 1e-12)

		step := (1.76779 - 0.5) / 19
		for i := 1; i < len(grid); i++ {
			require.InDelta(t, step, grid[i]-grid[i-1], 1e-12)
		}
	})

	t.Run("TwoPoints", func(t *testing.T) {
		require.Equal(t, []float64{2, 5}, Linspace(2, 5, 2))
	})

	t.Run("DegenerateCount", func(t *testing.T) {
		require.Equal(t, []float64{3}, Linspace(3, 9, 1))
		require.Equal(t, []float64{3}, Linspace(3, 9, 0))
	})

	t.Run("DescendingRange", func(t *testing.T) {
		grid := Linspace(4, 0, 5)
		require.Equal(t, []float64{4, 3, 2, 1, 0}, grid)
	})
}

func TestQuadratic_At(t *testing.T) {
	q := Quadratic{A0: 2, A1: -3, A2: 0.5}

	require.InDelta(t, 2.0, q.At(0), 1e-15)
	require.InDelta(t, -0.5, q.At(1), 1e-15)
	require.InDelta(t, 0.0, q.At(2), 1e-15)
	require.InDelta(t, 4.5, q.At(5), 1e-15)
}

func TestFitQuadratic(t *testing.T) {
	t.Run("RecoversExactQuadratic", func(t *testing.T) {
		xs := Linspace(0, 4, 9)
		ys := make([]float64, len(xs))
		for i, x := range xs {
			ys[i] = 2 - 3*x + 0.5*x*x
		}

		quad, err := fitQuadratic(xs, ys)
		require.NoError(t, err)
		require.InDelta(t, 2.0, quad.A0, 1e-10)
		require.InDelta(t, -3.0, quad.A1, 1e-10)
		require.InDelta(t, 0.5, quad.A2, 1e-10)
	})

	t.Run("LineHasZeroCurvature", func(t *testing.T) {
		xs := Linspace(-1, 3, 12)
		ys := make([]float64, len(xs))
		for i, x := range xs {
			ys[i] = 1 + 2*x
		}

		quad, err := fitQuadratic(xs, ys)
		require.NoError(t, err)
		require.InDelta(t, 1.0, quad.A0, 1e-10)
		require.InDelta(t, 2.0, quad.A1, 1e-10)
		require.InDelta(t, 0.0, quad.A2, 1e-10)
	})

	t.Run("LeastSquaresResidual", func(t *testing.T) {
		// Four points off any parabola: the fit minimizes, not interpolates.
		xs := []float64{0, 1, 2, 3}
		ys := []float64{0, 1, 0, 1}

		quad, err := fitQuadratic(xs, ys)
		require.NoError(t, err)

		// Perturbing any coefficient must not reduce the sum of squares.
		sumsq := func(q Quadratic) float64 {
			var ss float64
			for i, x := range xs {
				d := ys[i] - q.At(x)
				ss += d * d
			}
			return ss
		}
		best := sumsq(quad)
		for _, eps := range []float64{-1e-3, 1e-3} {
			require.GreaterOrEqual(t, sumsq(Quadratic{A0: quad.A0 + eps, A1: quad.A1, A2: quad.A2}), best)
			require.GreaterOrEqual(t, sumsq(Quadratic{A0: quad.A0, A1: quad.A1 + eps, A2: quad.A2}), best)
			require.GreaterOrEqual(t, sumsq(Quadratic{A0: quad.A0, A1: quad.A1, A2: quad.A2 + eps}), best)
		}
	})

	t.Run("TooFewSamples", func(t *testing.T) {
		_, err := fitQuadratic([]float64{0, 1}, []float64{1, 2})
		require.ErrorIs(t, err, errs.ErrInvalidParameter)
	})

	t.Run("LengthMismatch", func(t *testing.T) {
		_, err := fitQuadratic([]float64{0, 1, 2}, []float64{1, 2})
		require.ErrorIs(t, err, errs.ErrInvalidParameter)
	})
}
