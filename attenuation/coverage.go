package attenuation

// SampleCoverage returns the fraction of the dataset's observations lying
// strictly below the bound evaluated at their own x. It is the empirical
// counterpart of the nominal confidence or coverage, handy for eyeballing a
// fitted bound against its own sample.
func SampleCoverage(ds *Dataset, bound func(x float64) float64) float64 {
	obs := ds.Observations()
	covered := 0
	for _, o := range obs {
		if bound(o.X) > o.Y {
			covered++
		}
	}
	return float64(covered) / float64(len(obs))
}
