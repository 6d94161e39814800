package attenuation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/geoblast/ppvlaw/errs"
)

// SafetyCurve bounds future log-PPV from above at a one-sided confidence
// level nc, in two strengths. Approx takes the fitted parameters at face
// value and offsets the line by z(nc)*s. Rigorous pays for their estimation
// uncertainty with the prediction-interval half-width t(nc,df)*SEPred(x),
// which bends the bound away from a straight line; for reporting it is
// least-squares fitted by a quadratic over the observed x-range.
type SafetyCurve struct {
	fit     *LinearFit
	nc      float64
	z       float64
	t       float64
	grid    []float64
	quad    Quadratic
	quadErr float64
}

// NewSafetyCurve derives the safety curve at confidence nc from fit.
// gridSize controls the quadratic sampling grid; 0 selects DefaultGridSize.
// nc outside (0.5, 1) fails with errs.ErrInvalidParameter: at or below 0.5
// the offset would not clear the fitted mean and no safety margin exists.
func NewSafetyCurve(fit *LinearFit, nc float64, gridSize int) (*SafetyCurve, error) {
	if nc <= 0.5 || nc >= 1 {
		return nil, fmt.Errorf("%w: confidence %v outside (0.5, 1)", errs.ErrInvalidParameter, nc)
	}
	if gridSize <= 0 {
		gridSize = DefaultGridSize
	}
	if gridSize < minGridSize {
		return nil, fmt.Errorf("%w: grid size %d below %d", errs.ErrInvalidParameter, gridSize, minGridSize)
	}

	sc := &SafetyCurve{
		fit: fit,
		nc:  nc,
		z:   distuv.UnitNormal.Quantile(nc),
		t:   distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(fit.DegreesOfFreedom())}.Quantile(nc),
	}

	sc.grid = Linspace(fit.XMin(), fit.XMax(), gridSize)
	ys := make([]float64, len(sc.grid))
	for i, x := range sc.grid {
		ys[i] = sc.Rigorous(x)
	}

	quad, err := fitQuadratic(sc.grid, ys)
	if err != nil {
		return nil, err
	}
	sc.quad = quad
	for i, x := range sc.grid {
		if diff := math.Abs(ys[i] - quad.At(x)); diff > sc.quadErr {
			sc.quadErr = diff
		}
	}

	return sc, nil
}

// Confidence returns nc.
func (sc *SafetyCurve) Confidence() float64 { return sc.nc }

// Fit returns the underlying linear fit.
func (sc *SafetyCurve) Fit() *LinearFit { return sc.fit }

// Approx returns the approximate safety value predict(x) + z(nc)*s.
func (sc *SafetyCurve) Approx(x float64) float64 {
	return sc.fit.Predict(x) + sc.z*sc.fit.ResidualStdErr()
}

// ApproxLine returns the (intercept, slope) pair of the approximate safety
// line, which is the fitted line shifted up by z(nc)*s.
func (sc *SafetyCurve) ApproxLine() (intercept, slope float64) {
	return sc.fit.Intercept() + sc.z*sc.fit.ResidualStdErr(), sc.fit.Slope()
}

// Rigorous returns predict(x) + t(nc,df)*SEPred(x), the exact one-sided
// prediction bound. This evaluator is the source of truth; the quadratic
// only approximates it.
func (sc *SafetyCurve) Rigorous(x float64) float64 {
	return sc.fit.Predict(x) + sc.t*sc.fit.SEPred(x)
}

// Quadratic returns the reporting coefficients fitted to the rigorous
// curve.
func (sc *SafetyCurve) Quadratic() Quadratic { return sc.quad }

// QuadFitError returns the largest |rigorous - quadratic| over the sampling
// grid. Outside the observed x-range the deviation keeps growing.
func (sc *SafetyCurve) QuadFitError() float64 { return sc.quadErr }

// Grid returns a copy of the x sampling grid.
func (sc *SafetyCurve) Grid() []float64 {
	g := make([]float64, len(sc.grid))
	copy(g, sc.grid)
	return g
}

// Extrapolates reports whether x lies outside the fitted x-range, where
// both bounds lose reliability.
func (sc *SafetyCurve) Extrapolates(x float64) bool { return sc.fit.Extrapolates(x) }

// SafetyPoint bundles the curve values at one x.
type SafetyPoint struct {
	X            float64 `json:"x"`
	Mean         float64 `json:"mean"`
	Approx       float64 `json:"approx"`
	Rigorous     float64 `json:"rigorous"`
	Extrapolated bool    `json:"extrapolated,omitempty"`
}

// At evaluates the mean prediction and both safety bounds at x.
func (sc *SafetyCurve) At(x float64) SafetyPoint {
	return SafetyPoint{
		X:            x,
		Mean:         sc.fit.Predict(x),
		Approx:       sc.Approx(x),
		Rigorous:     sc.Rigorous(x),
		Extrapolated: sc.Extrapolates(x),
	}
}
