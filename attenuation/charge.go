package attenuation

import (
	"fmt"
	"math"

	"github.com/geoblast/ppvlaw/errs"
)

// Mode selects which bound the charge solver inverts.
type Mode int

const (
	// ModeApproxSafety inverts the approximate safety line.
	ModeApproxSafety Mode = iota
	// ModeRigorousSafety inverts the rigorous prediction bound.
	ModeRigorousSafety
	// ModeTolerance inverts the one-sided tolerance bound.
	ModeTolerance
)

var modeNames = map[Mode]string{
	ModeApproxSafety:   "approx",
	ModeRigorousSafety: "rigorous",
	ModeTolerance:      "tolerance",
}

// String returns the mode name used in configs and flags.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// ModeFromString parses a mode name.
func ModeFromString(s string) (Mode, error) {
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown bound mode %q", errs.ErrInvalidParameter, s)
}

// ChargeQuery carries the parameters of one maximum-charge question: how
// much explosive can be fired at Distance so that PPV stays below MaxPPV
// under the chosen bound.
type ChargeQuery struct {
	Distance   float64 // same length unit as the monitoring data
	MaxPPV     float64 // PPV threshold in linear units, not log10
	Beta       float64 // scaled-distance exponent, typically 0.5 or 1/3
	Mode       Mode
	Confidence float64
	Coverage   float64         // tolerance mode only
	Factor     ToleranceFactor // tolerance mode only, nil = exact
	GridSize   int             // 0 = DefaultGridSize
}

// ChargeSolution is the answer to a ChargeQuery.
type ChargeSolution struct {
	Mode           Mode    `json:"mode"`
	Distance       float64 `json:"distance"`
	Charge         float64 `json:"charge"`
	ScaledDistance float64 `json:"scaled_distance"`
	X              float64 `json:"x"`
	Extrapolated   bool    `json:"extrapolated,omitempty"`
}

// SolveCharge inverts the bound selected by q at log10(MaxPPV) and converts
// the solved scaled distance into the maximum charge at q.Distance:
// Q = 10^((log10 D - x*)/beta). A solved x* outside the fitted x-range is
// flagged Extrapolated but still returned.
func SolveCharge(fit *LinearFit, q ChargeQuery) (*ChargeSolution, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}
	if q.Distance <= 0 {
		return nil, fmt.Errorf("%w: non-positive distance %v", errs.ErrInvalidParameter, q.Distance)
	}

	x, err := solveBoundX(fit, q)
	if err != nil {
		return nil, err
	}

	return newSolution(fit, q, q.Distance, x), nil
}

// ChargeTable answers q for several distances at once. The solved scaled
// distance does not depend on the distance asked about, so the bound is
// inverted a single time and only the charge conversion varies per row.
func ChargeTable(fit *LinearFit, q ChargeQuery, distances []float64) ([]ChargeSolution, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}
	for _, d := range distances {
		if d <= 0 {
			return nil, fmt.Errorf("%w: non-positive distance %v", errs.ErrInvalidParameter, d)
		}
	}

	x, err := solveBoundX(fit, q)
	if err != nil {
		return nil, err
	}

	sols := make([]ChargeSolution, len(distances))
	for i, d := range distances {
		sols[i] = *newSolution(fit, q, d, x)
	}

	return sols, nil
}

func validateQuery(q ChargeQuery) error {
	if q.MaxPPV <= 0 {
		return fmt.Errorf("%w: non-positive PPV threshold %v", errs.ErrInvalidParameter, q.MaxPPV)
	}
	if q.Beta <= 0 {
		return fmt.Errorf("%w: non-positive beta %v", errs.ErrInvalidParameter, q.Beta)
	}
	if _, ok := modeNames[q.Mode]; !ok {
		return fmt.Errorf("%w: unknown bound mode %d", errs.ErrInvalidParameter, int(q.Mode))
	}
	return nil
}

func newSolution(fit *LinearFit, q ChargeQuery, distance, x float64) *ChargeSolution {
	return &ChargeSolution{
		Mode:           q.Mode,
		Distance:       distance,
		Charge:         math.Pow(10, (math.Log10(distance)-x)/q.Beta),
		ScaledDistance: math.Pow(10, x),
		X:              x,
		Extrapolated:   fit.Extrapolates(x),
	}
}

// solveBoundX finds x* with bound(x*) = log10(MaxPPV) on the decreasing
// branch of the chosen bound.
func solveBoundX(fit *LinearFit, q ChargeQuery) (float64, error) {
	if fit.Slope() >= 0 {
		return 0, fmt.Errorf("%w: attenuation law is not decreasing (slope %v)", errs.ErrNoSolution, fit.Slope())
	}
	target := math.Log10(q.MaxPPV)

	switch q.Mode {
	case ModeApproxSafety:
		sc, err := NewSafetyCurve(fit, q.Confidence, q.GridSize)
		if err != nil {
			return 0, err
		}
		intercept, slope := sc.ApproxLine()
		return (target - intercept) / slope, nil

	case ModeRigorousSafety:
		sc, err := NewSafetyCurve(fit, q.Confidence, q.GridSize)
		if err != nil {
			return 0, err
		}
		return invertBound(sc.Quadratic(), target, sc.Rigorous)

	case ModeTolerance:
		ti, err := NewToleranceInterval(fit, q.Confidence, q.Coverage, q.Factor, q.GridSize)
		if err != nil {
			return 0, err
		}
		return invertBound(ti.Quadratic(), target, ti.Bound)
	}

	return 0, fmt.Errorf("%w: unknown bound mode %d", errs.ErrInvalidParameter, int(q.Mode))
}

// invertBound solves exact(x) = target. The quadratic reporting fit yields
// the closed-form seed root on the decreasing branch; a bounded bisection
// against the exact evaluator then removes the quadratic's fit error, so
// re-evaluating the exact bound at the result reproduces the target to
// rootTolerance.
func invertBound(quad Quadratic, target float64, exact func(float64) float64) (float64, error) {
	seed, limit, err := quadRoot(quad, target)
	if err != nil {
		return 0, err
	}
	return refineRoot(exact, target, seed, limit)
}

// quadRoot returns the root of quad(x) = target on the decreasing branch,
// rejecting the spurious root on the rising side, plus the branch end (the
// vertex) past which the quadratic turns back up.
func quadRoot(quad Quadratic, target float64) (root, limit float64, err error) {
	a, b, c := quad.A2, quad.A1, quad.A0-target

	if math.Abs(a) < quadLinearEps {
		if b == 0 {
			return 0, 0, fmt.Errorf("%w: bound is constant, cannot invert", errs.ErrNoSolution)
		}
		return -c / b, math.Inf(1), nil
	}

	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, 0, fmt.Errorf("%w: bound never reaches log10 threshold %v", errs.ErrNoSolution, target)
	}

	// For either sign of a the root on the decreasing branch is the one
	// with the negative square-root term.
	root = (-b - math.Sqrt(disc)) / (2 * a)

	limit = math.Inf(1)
	if a > 0 {
		limit = -b / (2 * a)
	}

	return root, limit, nil
}

// refineRoot bisects exact(x) = target starting from the quadratic seed and
// staying on the decreasing branch (x <= limit), where
// f(x) = exact(x) - target is positive left of the root and negative right
// of it. Bracket growth and bisection both run under fixed iteration caps.
func refineRoot(exact func(float64) float64, target, seed, limit float64) (float64, error) {
	f := func(x float64) float64 { return exact(x) - target }

	lo, hi := seed, seed
	switch fs := f(seed); {
	case fs == 0:
		return seed, nil

	case fs > 0:
		step := rootInitialStep
		for i := 0; ; i++ {
			if i >= maxBracketGrowth {
				return 0, fmt.Errorf("%w: no root right of %v", errs.ErrNoSolution, seed)
			}
			hi += step
			step *= 2
			atLimit := hi >= limit
			if atLimit {
				hi = limit
			}
			if f(hi) <= 0 {
				break
			}
			if atLimit {
				return 0, fmt.Errorf("%w: bound stays above log10 threshold %v on the decreasing branch", errs.ErrNoSolution, target)
			}
		}

	default: // fs < 0
		step := rootInitialStep
		for i := 0; ; i++ {
			if i >= maxBracketGrowth {
				return 0, fmt.Errorf("%w: no root left of %v", errs.ErrNoSolution, seed)
			}
			lo -= step
			step *= 2
			if f(lo) >= 0 {
				break
			}
		}
	}

	for i := 0; i < maxRootIters && hi-lo > rootTolerance; i++ {
		mid := 0.5 * (lo + hi)
		if f(mid) > 0 {
			lo = mid
		} else {
			hi = mid
		}
	}

	return 0.5 * (lo + hi), nil
}
