package attenuation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/geoblast/ppvlaw/errs"
	"github.com/geoblast/ppvlaw/model"
)

// Dataset is an immutable ordered sequence of transformed observations
// together with the summary statistics the regression consumes. Build it
// once per analysis run; it is never mutated and is safe for concurrent
// reads.
type Dataset struct {
	xs []float64
	ys []float64

	meanX float64
	meanY float64
	sxx   float64
	sxy   float64
	minX  float64
	maxX  float64
}

// NewDataset validates obs and computes the summary statistics in one pass.
// It fails with errs.ErrInvalidInput when fewer than 2 observations are
// given, when any value is NaN or infinite, or when x carries no variance
// (the regression is undefined then).
func NewDataset(obs []model.Observation) (*Dataset, error) {
	if len(obs) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 observations, got %d", errs.ErrInvalidInput, len(obs))
	}

	xs := make([]float64, len(obs))
	ys := make([]float64, len(obs))
	for i, o := range obs {
		if !isFinite(o.X) || !isFinite(o.Y) {
			return nil, fmt.Errorf("%w: non-finite observation at index %d", errs.ErrInvalidInput, i)
		}
		xs[i] = o.X
		ys[i] = o.Y
	}

	n := float64(len(xs))
	ds := &Dataset{
		xs:    xs,
		ys:    ys,
		meanX: stat.Mean(xs, nil),
		meanY: stat.Mean(ys, nil),
		sxx:   stat.Variance(xs, nil) * (n - 1),
		sxy:   stat.Covariance(xs, ys, nil) * (n - 1),
		minX:  floats.Min(xs),
		maxX:  floats.Max(xs),
	}

	// Identical x values can leave a rounding residue in sxx, so compare
	// against a scale-aware floor instead of exact zero.
	if ds.sxx <= sxxRelativeFloor*n*(1+ds.meanX*ds.meanX) {
		return nil, fmt.Errorf("%w: x has zero variance, regression undefined", errs.ErrInvalidInput)
	}

	return ds, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// N returns the number of observations.
func (ds *Dataset) N() int { return len(ds.xs) }

// MeanX returns the mean of x.
func (ds *Dataset) MeanX() float64 { return ds.meanX }

// MeanY returns the mean of y.
func (ds *Dataset) MeanY() float64 { return ds.meanY }

// Sxx returns the sum of squared deviations of x.
func (ds *Dataset) Sxx() float64 { return ds.sxx }

// Sxy returns the sum of cross-products of x and y deviations.
func (ds *Dataset) Sxy() float64 { return ds.sxy }

// MinX returns the smallest observed x.
func (ds *Dataset) MinX() float64 { return ds.minX }

// MaxX returns the largest observed x.
func (ds *Dataset) MaxX() float64 { return ds.maxX }

// Observations returns a copy of the observations in input order.
func (ds *Dataset) Observations() []model.Observation {
	obs := make([]model.Observation, len(ds.xs))
	for i := range ds.xs {
		obs[i] = model.Observation{X: ds.xs[i], Y: ds.ys[i]}
	}
	return obs
}
