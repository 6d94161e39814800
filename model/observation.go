// Package model holds the plain value types shared across ppvlaw packages.
package model

// Observation is one blast-monitoring measurement, already log10-transformed
// by the caller: X = log10(scaled distance), Y = log10(PPV).
//
// All observations in one dataset must use the same scaling exponent beta,
// otherwise their X values are not comparable.
type Observation struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
