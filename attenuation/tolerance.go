package attenuation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/geoblast/ppvlaw/errs"
	"github.com/geoblast/ppvlaw/nct"
)

// ToleranceFactor computes the one-sided normal tolerance factor k such
// that predict(x) + k*s covers, with confidence nc, at least a fraction p
// of future observations. d is the prediction distance
// sqrt(1/n + (x-xbar)^2/Sxx); at the mean of a plain n-sample it reduces to
// the textbook 1/sqrt(n).
type ToleranceFactor interface {
	Factor(p, nc float64, df int, d float64) (float64, error)
}

// NoncentralTFactor is the exact strategy: k = d * q where q is the nc
// quantile of the noncentral t with df degrees of freedom and
// noncentrality z(p)/d. Its accuracy is that of the underlying quantile
// solver (absolute tolerance 1e-10 on q).
type NoncentralTFactor struct{}

// NewNoncentralTFactor returns the exact noncentral-t strategy.
func NewNoncentralTFactor() *NoncentralTFactor { return &NoncentralTFactor{} }

// Factor inverts the noncentral-t distribution at confidence nc.
func (tf *NoncentralTFactor) Factor(p, nc float64, df int, d float64) (float64, error) {
	if err := checkFactorArgs(df, d); err != nil {
		return 0, err
	}
	delta := distuv.UnitNormal.Quantile(p) / d
	return d * nct.NoncentralT{Nu: float64(df), Delta: delta}.Quantile(nc), nil
}

// ClosedFormFactor is the classical one-sided approximation
//
//	k = (z_p + sqrt(z_p^2 - a*b)) / a
//	a = 1 - z_nc^2 / (2*df)
//	b = z_p^2 - z_nc^2 * d^2
//
// It stays within about 3% of the exact factor for df >= 10 at
// confidence up to 0.95; the gap grows with nc, reaching roughly 8% at
// df = 8 with nc = 0.99. It fails with errs.ErrInvalidParameter when
// a <= 0 (df too small for the requested confidence).
type ClosedFormFactor struct{}

// NewClosedFormFactor returns the approximate strategy.
func NewClosedFormFactor() *ClosedFormFactor { return &ClosedFormFactor{} }

// Factor evaluates the closed-form approximation.
func (tf *ClosedFormFactor) Factor(p, nc float64, df int, d float64) (float64, error) {
	if err := checkFactorArgs(df, d); err != nil {
		return 0, err
	}

	zp := distuv.UnitNormal.Quantile(p)
	znc := distuv.UnitNormal.Quantile(nc)

	a := 1 - znc*znc/(2*float64(df))
	if a <= 0 {
		return 0, fmt.Errorf("%w: closed-form tolerance factor undefined for df=%d at confidence %v", errs.ErrInvalidParameter, df, nc)
	}
	b := zp*zp - znc*znc*d*d

	// zp^2 - a*b = zp^2*(1-a) + a*znc^2*d^2 >= 0 whenever a > 0.
	return (zp + math.Sqrt(zp*zp-a*b)) / a, nil
}

func checkFactorArgs(df int, d float64) error {
	if df < 1 {
		return fmt.Errorf("%w: tolerance factor needs df >= 1, got %d", errs.ErrInvalidParameter, df)
	}
	if d <= 0 || math.IsNaN(d) {
		return fmt.Errorf("%w: non-positive prediction distance %v", errs.ErrInvalidParameter, d)
	}
	return nil
}

// ToleranceInterval is the one-sided upper tolerance bound on log-PPV:
// with confidence nc, at least a fraction p of future observations at x
// fall below Bound(x). For p near 1 it is strictly more conservative than
// the prediction bound, which only covers the single next observation.
// Like the rigorous safety curve it carries a quadratic reporting fit over
// the observed x-range.
type ToleranceInterval struct {
	fit     *LinearFit
	nc      float64
	p       float64
	factor  ToleranceFactor
	grid    []float64
	quad    Quadratic
	quadErr float64
}

// NewToleranceInterval derives the tolerance bound from fit at confidence
// nc and population coverage p. factor selects the strategy, nil meaning
// the exact noncentral-t inversion. gridSize as in NewSafetyCurve.
func NewToleranceInterval(fit *LinearFit, nc, p float64, factor ToleranceFactor, gridSize int) (*ToleranceInterval, error) {
	if nc <= 0.5 || nc >= 1 {
		return nil, fmt.Errorf("%w: confidence %v outside (0.5, 1)", errs.ErrInvalidParameter, nc)
	}
	if p <= 0 || p >= 1 {
		return nil, fmt.Errorf("%w: coverage %v outside (0, 1)", errs.ErrInvalidParameter, p)
	}
	if gridSize <= 0 {
		gridSize = DefaultGridSize
	}
	if gridSize < minGridSize {
		return nil, fmt.Errorf("%w: grid size %d below %d", errs.ErrInvalidParameter, gridSize, minGridSize)
	}
	if factor == nil {
		factor = NewNoncentralTFactor()
	}

	ti := &ToleranceInterval{
		fit:    fit,
		nc:     nc,
		p:      p,
		factor: factor,
	}

	ti.grid = Linspace(fit.XMin(), fit.XMax(), gridSize)
	ys := make([]float64, len(ti.grid))
	for i, x := range ti.grid {
		y, err := ti.boundErr(x)
		if err != nil {
			return nil, err
		}
		ys[i] = y
	}

	quad, err := fitQuadratic(ti.grid, ys)
	if err != nil {
		return nil, err
	}
	ti.quad = quad
	for i, x := range ti.grid {
		if diff := math.Abs(ys[i] - quad.At(x)); diff > ti.quadErr {
			ti.quadErr = diff
		}
	}

	return ti, nil
}

// Confidence returns nc.
func (ti *ToleranceInterval) Confidence() float64 { return ti.nc }

// Coverage returns p.
func (ti *ToleranceInterval) Coverage() float64 { return ti.p }

// Fit returns the underlying linear fit.
func (ti *ToleranceInterval) Fit() *LinearFit { return ti.fit }

// Bound returns the tolerance bound predict(x) + k(x)*s. Strategy errors
// are parameter-dependent and already ruled out at construction, so a
// residual numeric failure surfaces as NaN.
func (ti *ToleranceInterval) Bound(x float64) float64 {
	y, err := ti.boundErr(x)
	if err != nil {
		return math.NaN()
	}
	return y
}

func (ti *ToleranceInterval) boundErr(x float64) (float64, error) {
	d := math.Sqrt(ti.fit.leverage(x))
	k, err := ti.factor.Factor(ti.p, ti.nc, ti.fit.DegreesOfFreedom(), d)
	if err != nil {
		return 0, err
	}
	return ti.fit.Predict(x) + k*ti.fit.ResidualStdErr(), nil
}

// Quadratic returns the reporting coefficients fitted to the bound.
func (ti *ToleranceInterval) Quadratic() Quadratic { return ti.quad }

// QuadFitError returns the largest |bound - quadratic| over the sampling
// grid.
func (ti *ToleranceInterval) QuadFitError() float64 { return ti.quadErr }

// Grid returns a copy of the x sampling grid.
func (ti *ToleranceInterval) Grid() []float64 {
	g := make([]float64, len(ti.grid))
	copy(g, ti.grid)
	return g
}

// Extrapolates reports whether x lies outside the fitted x-range.
func (ti *ToleranceInterval) Extrapolates(x float64) bool { return ti.fit.Extrapolates(x) }
