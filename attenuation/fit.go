package attenuation

import (
	"fmt"
	"math"

	"github.com/geoblast/ppvlaw/errs"
)

// LinearFit is the ordinary-least-squares fit y = b0 + b1*x of one Dataset,
// carrying the spread quantities needed to propagate estimation uncertainty
// into any later prediction. Read-only after Fit; one fit may serve any
// number of concurrent curve and charge computations.
type LinearFit struct {
	slope     float64
	intercept float64
	s         float64
	rsquared  float64
	df        int
	n         int
	meanX     float64
	sxx       float64
	xmin      float64
	xmax      float64
}

// Fit estimates the attenuation line by ordinary least squares. It fails
// with errs.ErrDegenerateFit when no residual degree of freedom is left
// (n < 3): residual variance, and with it every interval derived here, is
// undefined then.
func Fit(ds *Dataset) (*LinearFit, error) {
	df := ds.N() - 2
	if df <= 0 {
		return nil, fmt.Errorf("%w: need at least 3 observations, got %d", errs.ErrDegenerateFit, ds.N())
	}
	if ds.Sxx() == 0 {
		return nil, fmt.Errorf("%w: x has zero variance", errs.ErrDegenerateFit)
	}

	slope := ds.Sxy() / ds.Sxx()
	intercept := ds.MeanY() - slope*ds.MeanX()

	var sse, syy float64
	for _, o := range ds.Observations() {
		e := o.Y - (intercept + slope*o.X)
		sse += e * e
		dy := o.Y - ds.MeanY()
		syy += dy * dy
	}

	rsq := 0.0
	if syy > 0 {
		rsq = 1 - sse/syy
	}

	return &LinearFit{
		slope:     slope,
		intercept: intercept,
		s:         math.Sqrt(sse / float64(df)),
		rsquared:  rsq,
		df:        df,
		n:         ds.N(),
		meanX:     ds.MeanX(),
		sxx:       ds.Sxx(),
		xmin:      ds.MinX(),
		xmax:      ds.MaxX(),
	}, nil
}

// Slope returns b1; a physically meaningful attenuation law has b1 < 0.
func (f *LinearFit) Slope() float64 { return f.slope }

// Intercept returns b0.
func (f *LinearFit) Intercept() float64 { return f.intercept }

// ResidualStdErr returns s, the residual standard error.
func (f *LinearFit) ResidualStdErr() float64 { return f.s }

// RSquared returns the coefficient of determination.
func (f *LinearFit) RSquared() float64 { return f.rsquared }

// DegreesOfFreedom returns n - 2.
func (f *LinearFit) DegreesOfFreedom() int { return f.df }

// N returns the number of fitted observations.
func (f *LinearFit) N() int { return f.n }

// MeanX returns the mean of the fitted x values.
func (f *LinearFit) MeanX() float64 { return f.meanX }

// Sxx returns the sum of squared x deviations of the fitted data.
func (f *LinearFit) Sxx() float64 { return f.sxx }

// XMin returns the smallest fitted x.
func (f *LinearFit) XMin() float64 { return f.xmin }

// XMax returns the largest fitted x.
func (f *LinearFit) XMax() float64 { return f.xmax }

// Predict returns the point estimate b0 + b1*x of mean log-PPV at x.
func (f *LinearFit) Predict(x float64) float64 {
	return f.intercept + f.slope*x
}

// SEMean returns the standard error of the mean prediction at x,
// s*sqrt(1/n + (x-xbar)^2/Sxx).
func (f *LinearFit) SEMean(x float64) float64 {
	return f.s * math.Sqrt(f.leverage(x))
}

// SEPred returns the standard error of a single future observation at x,
// s*sqrt(1 + 1/n + (x-xbar)^2/Sxx).
func (f *LinearFit) SEPred(x float64) float64 {
	return f.s * math.Sqrt(1+f.leverage(x))
}

// leverage is 1/n + (x-xbar)^2/Sxx, the squared prediction distance shared
// by both standard errors and the tolerance factor.
func (f *LinearFit) leverage(x float64) float64 {
	d := x - f.meanX
	return 1/float64(f.n) + d*d/f.sxx
}

// Extrapolates reports whether x lies outside the fitted x-range.
func (f *LinearFit) Extrapolates(x float64) bool {
	return x < f.xmin || x > f.xmax
}
