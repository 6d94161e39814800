package attenuation

const (
	// DefaultGridSize is the sampling-grid length used to fit the quadratic
	// reporting form of a curve over the observed x-range.
	DefaultGridSize = 20

	// minGridSize is the smallest grid a quadratic fit accepts.
	minGridSize = 3

	// quadLinearEps treats a smaller |a2| as a linear bound.
	quadLinearEps = 1e-12

	// Bounded-iteration budget of the charge-root refinement.
	maxRootIters     = 100
	maxBracketGrowth = 60
	rootTolerance    = 1e-12
	rootInitialStep  = 0.25

	// sxxRelativeFloor scales the variance threshold below which x is
	// treated as constant and the regression as undefined.
	sxxRelativeFloor = 1e-24
)
