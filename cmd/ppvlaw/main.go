// ppvlaw fits a blast-vibration attenuation law from log10-transformed
// (scaled distance, PPV) measurements and reports safety curves, tolerance
// bounds and maximum-charge tables.
//
// Usage:
//
//	ppvlaw -data blasts.txt [-config analysis.yaml] [-nc 0.95] [-p 0.95]
//	       [-beta 0.5] [-vmax 40] [-grid 20] [-distance 120] [-mode rigorous]
//
// The data file is a two-column whitespace table with an "x y" header, both
// columns already log10-transformed. Report tables go to stdout, structured
// logs to stderr.
package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/geoblast/ppvlaw/attenuation"
	"github.com/geoblast/ppvlaw/config"
	"github.com/geoblast/ppvlaw/dataio"
	"github.com/geoblast/ppvlaw/utils"
)

type flags struct {
	configPath string
	dataPath   string
	beta       float64
	confidence float64
	coverage   float64
	gridSize   int
	ppvLimit   float64
	distance   float64
	mode       string
}

func parseFlags() *flags {
	f := &flags{}
	flag.StringVar(&f.configPath, "config", "", "YAML analysis config (optional)")
	flag.StringVar(&f.dataPath, "data", "", "two-column x/y data file (overrides config)")
	flag.Float64Var(&f.beta, "beta", 0, "scaled-distance exponent (overrides config)")
	flag.Float64Var(&f.confidence, "nc", 0, "one-sided confidence level (overrides config)")
	flag.Float64Var(&f.coverage, "p", 0, "population coverage for the tolerance bound (overrides config)")
	flag.IntVar(&f.gridSize, "grid", 0, "curve sampling grid size (overrides config)")
	flag.Float64Var(&f.ppvLimit, "vmax", 0, "PPV threshold for charge solving (overrides config)")
	flag.Float64Var(&f.distance, "distance", 0, "also solve the maximum charge at this distance")
	flag.StringVar(&f.mode, "mode", "rigorous", "bound inverted by -distance: approx, rigorous or tolerance")
	flag.Parse()
	return f
}

func main() {
	f := parseFlags()
	logger := utils.GetLogger()
	defer logger.Sync()

	cfg, err := loadConfig(f)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if cfg.DataFile == "" {
		fmt.Fprintln(os.Stderr, "ppvlaw: no data file; pass -data or set data_file in the config")
		flag.Usage()
		os.Exit(2)
	}

	obs, err := dataio.LoadObservations(cfg.DataFile)
	if err != nil {
		logger.Fatal("load observations", zap.Error(err))
	}
	logger.Info("observations loaded", zap.String("file", cfg.DataFile), zap.Int("count", len(obs)))

	ds, err := attenuation.NewDataset(obs)
	if err != nil {
		logger.Fatal("build dataset", zap.Error(err))
	}
	fit, err := attenuation.Fit(ds)
	if err != nil {
		logger.Fatal("fit attenuation law", zap.Error(err))
	}

	sc, err := attenuation.NewSafetyCurve(fit, cfg.Confidence, cfg.GridSize)
	if err != nil {
		logger.Fatal("safety curve", zap.Error(err))
	}
	ti, err := attenuation.NewToleranceInterval(fit, cfg.Confidence, cfg.Coverage, nil, cfg.GridSize)
	if err != nil {
		logger.Fatal("tolerance interval", zap.Error(err))
	}

	printFit(fit, cfg)
	printCurves(sc, ti)
	printCoverage(ds, sc, ti)
	if err := printChargeTable(fit, cfg, logger); err != nil {
		logger.Fatal("charge table", zap.Error(err))
	}

	if f.distance > 0 {
		solveOne(fit, cfg, f, logger)
	}
}

func loadConfig(f *flags) (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if f.dataPath != "" {
		cfg.DataFile = f.dataPath
	}
	if f.beta > 0 {
		cfg.Beta = f.beta
	}
	if f.confidence > 0 {
		cfg.Confidence = f.confidence
	}
	if f.coverage > 0 {
		cfg.Coverage = f.coverage
	}
	if f.gridSize > 0 {
		cfg.GridSize = f.gridSize
	}
	if f.ppvLimit > 0 {
		cfg.PPVLimit = f.ppvLimit
	}
	return cfg, nil
}

func printFit(fit *attenuation.LinearFit, cfg *config.Config) {
	fmt.Printf("Attenuation law: log10(PPV) = %.6g %+.6g*log10(sd)\n", fit.Intercept(), fit.Slope())
	fmt.Printf("  n=%d  df=%d  s=%.6g  R2=%.4f  x-range=[%.4g, %.4g]  nc=%.3g  p=%.3g\n",
		fit.N(), fit.DegreesOfFreedom(), fit.ResidualStdErr(), fit.RSquared(),
		fit.XMin(), fit.XMax(), cfg.Confidence, cfg.Coverage)
}

func printCurves(sc *attenuation.SafetyCurve, ti *attenuation.ToleranceInterval) {
	fmt.Println("\nBounds over the observed x-range:")
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "x\tmean\tapprox\trigorous\ttolerance")
	for _, x := range sc.Grid() {
		pt := sc.At(x)
		fmt.Fprintf(w, "%.5f\t%.5f\t%.5f\t%.5f\t%.5f\n", x, pt.Mean, pt.Approx, pt.Rigorous, ti.Bound(x))
	}
	w.Flush()

	rq, tq := sc.Quadratic(), ti.Quadratic()
	fmt.Printf("rigorous  quad: %.6g %+.6g*x %+.6g*x^2  (max fit err %.2g)\n", rq.A0, rq.A1, rq.A2, sc.QuadFitError())
	fmt.Printf("tolerance quad: %.6g %+.6g*x %+.6g*x^2  (max fit err %.2g)\n", tq.A0, tq.A1, tq.A2, ti.QuadFitError())
}

func printCoverage(ds *attenuation.Dataset, sc *attenuation.SafetyCurve, ti *attenuation.ToleranceInterval) {
	fmt.Printf("\nSample coverage: approx=%.3f rigorous=%.3f tolerance=%.3f\n",
		attenuation.SampleCoverage(ds, sc.Approx),
		attenuation.SampleCoverage(ds, sc.Rigorous),
		attenuation.SampleCoverage(ds, ti.Bound))
}

func printChargeTable(fit *attenuation.LinearFit, cfg *config.Config, logger *zap.Logger) error {
	distances := attenuation.Linspace(cfg.Distances.Min, cfg.Distances.Max, cfg.Distances.Count)

	base := attenuation.ChargeQuery{
		MaxPPV:     cfg.PPVLimit,
		Beta:       cfg.Beta,
		Confidence: cfg.Confidence,
		Coverage:   cfg.Coverage,
		GridSize:   cfg.GridSize,
	}

	modes := []attenuation.Mode{attenuation.ModeApproxSafety, attenuation.ModeRigorousSafety, attenuation.ModeTolerance}
	tables := make(map[attenuation.Mode][]attenuation.ChargeSolution, len(modes))
	for _, m := range modes {
		q := base
		q.Mode = m
		sols, err := attenuation.ChargeTable(fit, q, distances)
		if err != nil {
			return err
		}
		if len(sols) > 0 && sols[0].Extrapolated {
			logger.Warn("charge table extrapolates beyond the fitted range",
				zap.Stringer("mode", m), zap.Float64("x", sols[0].X))
		}
		tables[m] = sols
	}

	fmt.Printf("\nMax charge by distance (vmax=%.6g, beta=%.4g):\n", cfg.PPVLimit, cfg.Beta)
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "distance\tQ approx\tQ rigorous\tQ tolerance")
	for i, d := range distances {
		fmt.Fprintf(w, "%.4g\t%.6g\t%.6g\t%.6g\n", d,
			tables[attenuation.ModeApproxSafety][i].Charge,
			tables[attenuation.ModeRigorousSafety][i].Charge,
			tables[attenuation.ModeTolerance][i].Charge)
	}
	return w.Flush()
}

func solveOne(fit *attenuation.LinearFit, cfg *config.Config, f *flags, logger *zap.Logger) {
	mode, err := attenuation.ModeFromString(f.mode)
	if err != nil {
		logger.Fatal("parse mode", zap.Error(err))
	}

	sol, err := attenuation.SolveCharge(fit, attenuation.ChargeQuery{
		Distance:   f.distance,
		MaxPPV:     cfg.PPVLimit,
		Beta:       cfg.Beta,
		Mode:       mode,
		Confidence: cfg.Confidence,
		Coverage:   cfg.Coverage,
		GridSize:   cfg.GridSize,
	})
	if err != nil {
		logger.Fatal("solve charge", zap.Error(err))
	}

	if sol.Extrapolated {
		logger.Warn("charge solution extrapolates beyond the fitted range",
			zap.Float64("x", sol.X),
			zap.Float64("xmin", fit.XMin()),
			zap.Float64("xmax", fit.XMax()))
	}

	fmt.Printf("\nMax charge at D=%.6g (%s, vmax=%.6g, beta=%.4g): Q=%.6g (sd=%.6g)\n",
		sol.Distance, sol.Mode, cfg.PPVLimit, cfg.Beta, sol.Charge, sol.ScaledDistance)
}
