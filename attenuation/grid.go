package attenuation

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/geoblast/ppvlaw/errs"
)

// Linspace returns num evenly spaced values from start to stop inclusive.
func Linspace(start, stop float64, num int) []float64 {
	if num < 2 {
		return []float64{start}
	}
	step := (stop - start) / float64(num-1)
	grid := make([]float64, num)
	for i := 0; i < num; i++ {
		grid[i] = start + float64(i)*step
	}
	return grid
}

// Quadratic is the closed reporting form a0 + a1*x + a2*x^2 of a sampled
// curve.
type Quadratic struct {
	A0 float64 `json:"a0"`
	A1 float64 `json:"a1"`
	A2 float64 `json:"a2"`
}

// At evaluates the quadratic at x.
func (q Quadratic) At(x float64) float64 {
	return q.A0 + x*(q.A1+x*q.A2)
}

// fitQuadratic least-squares fits ys ~ a0 + a1*x + a2*x^2 by QR on the
// Vandermonde matrix of xs.
func fitQuadratic(xs, ys []float64) (Quadratic, error) {
	if len(xs) != len(ys) || len(xs) < minGridSize {
		return Quadratic{}, fmt.Errorf("%w: quadratic fit needs at least %d samples", errs.ErrInvalidParameter, minGridSize)
	}

	a := mat.NewDense(len(xs), 3, nil)
	for i, x := range xs {
		a.Set(i, 0, 1)
		a.Set(i, 1, x)
		a.Set(i, 2, x*x)
	}

	var qr mat.QR
	qr.Factorize(a)

	var c mat.VecDense
	if err := qr.SolveVecTo(&c, false, mat.NewVecDense(len(ys), ys)); err != nil {
		return Quadratic{}, fmt.Errorf("%w: quadratic fit: %v", errs.ErrDegenerateFit, err)
	}

	return Quadratic{A0: c.AtVec(0), A1: c.AtVec(1), A2: c.AtVec(2)}, nil
}
