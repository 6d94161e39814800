package nct

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestNoncentralT_CDF(t *testing.T) {
	t.Run("ZeroDeltaMatchesCentralT", func(t *testing.T) {
		ts := []float64{-6, -2.5, -1, -0.3, 0, 0.3, 1, 2.5, 6}
		for _, nu := range []float64{1, 3, 8, 25} {
			d := NoncentralT{Nu: nu, Delta: 0}
			central := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: nu}
			for _, x := range ts {
				require.InDelta(t, central.CDF(x), d.CDF(x), 1e-12, "nu=%v t=%v", nu, x)
			}
		}
	})

	t.Run("SpotValues", func(t *testing.T) {
		cases := []struct {
			t, nu, delta float64
			want         float64
		}{
			{3.0, 3, 2.3, 0.6052932855560675},
			{0.5, 5, 1.0, 0.30212586193611346},
			{1.0, 4, 2.0, 0.15787352467270058},
			{-1.0, 4, 2.0, 0.0025732321748442866},
			{6.0, 3, 4.743416490252569, 0.5961301112217314},
		}
		for _, tc := range cases {
			got := NoncentralT{Nu: tc.nu, Delta: tc.delta}.CDF(tc.t)
			require.InDelta(t, tc.want, got, 1e-10, "t=%v nu=%v delta=%v", tc.t, tc.nu, tc.delta)
		}
	})

	t.Run("AtZeroEqualsNormalTail", func(t *testing.T) {
		// P(T <= 0) = P(Z <= -delta) for every nu.
		for _, nu := range []float64{2, 7, 30} {
			for _, delta := range []float64{-2, -0.5, 0, 1.5, 4} {
				got := NoncentralT{Nu: nu, Delta: delta}.CDF(0)
				require.InDelta(t, distuv.UnitNormal.CDF(-delta), got, 1e-13, "nu=%v delta=%v", nu, delta)
			}
		}
	})

	t.Run("Reflection", func(t *testing.T) {
		for _, tc := range []struct{ t, nu, delta float64 }{
			{1.2, 4, 2}, {-0.7, 6, 1.3}, {3.5, 3, -1.1}, {0.2, 9, 0.4},
		} {
			a := NoncentralT{Nu: tc.nu, Delta: tc.delta}.CDF(tc.t)
			b := NoncentralT{Nu: tc.nu, Delta: -tc.delta}.CDF(-tc.t)
			require.InDelta(t, 1.0, a+b, 1e-12, "t=%v nu=%v delta=%v", tc.t, tc.nu, tc.delta)
		}
	})

	t.Run("MonotonicInT", func(t *testing.T) {
		d := NoncentralT{Nu: 5, Delta: 2.2}
		prev := 0.0
		for x := -4.0; x <= 12; x += 0.5 {
			cur := d.CDF(x)
			require.GreaterOrEqual(t, cur, prev, "t=%v", x)
			require.GreaterOrEqual(t, cur, 0.0)
			require.LessOrEqual(t, cur, 1.0)
			prev = cur
		}
	})

	t.Run("DecreasingInDelta", func(t *testing.T) {
		// Shifting the noncentrality up moves mass right, lowering the CDF
		// at a fixed point.
		prev := 1.0
		for _, delta := range []float64{0, 0.5, 1, 2, 4} {
			cur := NoncentralT{Nu: 6, Delta: delta}.CDF(1.5)
			require.Less(t, cur, prev, "delta=%v", delta)
			prev = cur
		}
	})

	t.Run("Extremes", func(t *testing.T) {
		d := NoncentralT{Nu: 4, Delta: 1}
		require.Equal(t, 1.0, d.CDF(math.Inf(1)))
		require.Equal(t, 0.0, d.CDF(math.Inf(-1)))
		require.True(t, math.IsNaN(d.CDF(math.NaN())))
		require.True(t, math.IsNaN(NoncentralT{Nu: 0, Delta: 1}.CDF(1)))
		require.True(t, math.IsNaN(NoncentralT{Nu: -2, Delta: 1}.CDF(1)))
	})

	t.Run("LargeDeltaFallback", func(t *testing.T) {
		// Past the series regime the normal approximation takes over; it
		// must stay a proper CDF around its center delta.
		d := NoncentralT{Nu: 30, Delta: 80}
		require.Less(t, d.CDF(60), 0.05)
		require.Greater(t, d.CDF(110), 0.95)
		prev := 0.0
		for x := 50.0; x <= 120; x += 2.5 {
			cur := d.CDF(x)
			require.GreaterOrEqual(t, cur, prev)
			prev = cur
		}
	})
}

func TestNoncentralT_Quantile(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		for _, d := range []NoncentralT{
			{Nu: 3, Delta: 0},
			{Nu: 3, Delta: 5.2},
			{Nu: 8, Delta: -1.5},
			{Nu: 18, Delta: 7.36},
			{Nu: 40, Delta: 0.3},
		} {
			for _, p := range []float64{0.01, 0.1, 0.25, 0.5, 0.75, 0.9, 0.95, 0.99} {
				q := d.Quantile(p)
				require.InDelta(t, p, d.CDF(q), 1e-9, "nu=%v delta=%v p=%v", d.Nu, d.Delta, p)
			}
		}
	})

	t.Run("ZeroDeltaMatchesCentralT", func(t *testing.T) {
		central := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: 5}
		d := NoncentralT{Nu: 5, Delta: 0}
		for _, p := range []float64{0.05, 0.5, 0.9, 0.975} {
			require.InDelta(t, central.Quantile(p), d.Quantile(p), 1e-8, "p=%v", p)
		}
		require.InDelta(t, 2.570581835636313, d.Quantile(0.975), 1e-8)
	})

	t.Run("SpotValues", func(t *testing.T) {
		cases := []struct {
			p, nu, delta float64
			want         float64
		}{
			{0.95, 3, 5.202, 15.639192567712552},
			{0.90, 12, 2.0, 3.663464333884539},
			{0.25, 6, 1.0, 0.3361663562109857},
		}
		for _, tc := range cases {
			got := NoncentralT{Nu: tc.nu, Delta: tc.delta}.Quantile(tc.p)
			require.InDelta(t, tc.want, got, 1e-8, "p=%v nu=%v delta=%v", tc.p, tc.nu, tc.delta)
		}
	})

	t.Run("MonotonicInP", func(t *testing.T) {
		d := NoncentralT{Nu: 7, Delta: 3.1}
		prev := math.Inf(-1)
		for _, p := range []float64{0.05, 0.2, 0.5, 0.8, 0.95, 0.999} {
			q := d.Quantile(p)
			require.Greater(t, q, prev, "p=%v", p)
			prev = q
		}
	})

	t.Run("Extremes", func(t *testing.T) {
		d := NoncentralT{Nu: 4, Delta: 2}
		require.True(t, math.IsInf(d.Quantile(0), -1))
		require.True(t, math.IsInf(d.Quantile(1), 1))
	})

	t.Run("PanicsOutsideUnitInterval", func(t *testing.T) {
		d := NoncentralT{Nu: 4, Delta: 2}
		require.Panics(t, func() { d.Quantile(-0.1) })
		require.Panics(t, func() { d.Quantile(1.5) })
		require.Panics(t, func() { d.Quantile(math.NaN()) })
	})
}
