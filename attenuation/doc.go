// Package attenuation derives an empirical ground-vibration attenuation law
// from blast-monitoring data and turns it into operational bounds.
//
// The input is a sequence of observations (x, y) with x = log10(scaled
// distance) and y = log10(PPV), already transformed by the caller. In these
// coordinates the usual power attenuation law PPV = K * sd^b is the line
// y = b0 + b1*x, fitted here by ordinary least squares with residual scatter
// modeled as normal noise in y (lognormal in PPV).
//
// From one LinearFit the package derives:
//
//   - SafetyCurve: an upper bound on future y at a one-sided confidence nc,
//     both as the fast line predict(x) + z(nc)*s and as the rigorous
//     prediction bound predict(x) + t(nc,df)*SEPred(x). The rigorous curve
//     is sampled over the observed x-range and least-squares fitted by a
//     quadratic so reports can carry closed-form coefficients.
//   - ToleranceInterval: a one-sided bound covering, with confidence nc, at
//     least a fraction p of the population of future observations, through
//     a pluggable tolerance-factor strategy (exact noncentral-t inversion
//     by default).
//   - SolveCharge / ChargeTable: inversion of a chosen bound at a PPV
//     threshold to obtain the maximum explosive charge operable at a given
//     distance, Q = 10^((log10 D - x*)/beta).
//
// Everything is computed eagerly at construction; all types are read-only
// afterward and safe for concurrent use. Queries outside the observed
// x-range are answered but flagged as extrapolated, since both the
// quadratic reporting fit and the tolerance factor lose reliability there.
package attenuation
