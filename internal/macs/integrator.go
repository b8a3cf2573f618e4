package macs

import (
	"math"

	"gonum.org/v1/gonum/integrate"

	apperrors "github.com/agbru/macscalc/internal/errors"
	"github.com/agbru/macscalc/internal/logging"
	"github.com/agbru/macscalc/internal/xsection"
)

// ─────────────────────────────────────────────────────────────────────────────
// Quadrature Constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	// DefaultNodesPerScale is the number of Simpson sub-intervals per
	// temperature unit kT. The Maxwellian weight E·exp(-E/kT) varies on the
	// scale kT, so the step never exceeds kT/DefaultNodesPerScale.
	DefaultNodesPerScale = 32

	// MinNodesPerScale is the resolution below which results are flagged as
	// CoarseSampling.
	MinNodesPerScale = 4

	// MaxNodesPerScale bounds the per-interval node buffers, which grow to
	// weightCutoff·NodesPerScale entries.
	MaxNodesPerScale = 1 << 16

	// DefaultMinCoverage is the smallest fraction of the Maxwellian weight the
	// curve domain must hold for the integral to be meaningful.
	DefaultMinCoverage = 0.5

	// CoverageWarnThreshold is the coverage below which the truncation of
	// the integral to the curve domain is logged as a warning.
	CoverageWarnThreshold = 0.999

	// weightCutoff is E/kT beyond which exp(-E/kT) is below 1e-304 and the
	// integrand contributes nothing representable.
	weightCutoff = 700.0
)

var twoOverSqrtPi = 2 / math.SqrtPi

// Options configures an Integrator.
type Options struct {
	// AtomicMass is the target mass number A. When positive, lab-frame
	// energies are converted with the reduced-mass factor a = A/(1+A), i.e.
	// the integral is evaluated at kT/a. Zero disables the correction.
	AtomicMass float64
	// NodesPerScale sets the quadrature step to kT/NodesPerScale.
	// Zero selects DefaultNodesPerScale.
	NodesPerScale int
	// MinCoverage is the minimum Maxwellian weight fraction inside the curve
	// domain, in [0, 1]. Zero disables the check.
	MinCoverage float64
}

// DefaultOptions returns the default quadrature settings. AtomicMass is left
// at zero, so the reduced-mass correction is off until a mass is set.
func DefaultOptions() Options {
	return Options{
		NodesPerScale: DefaultNodesPerScale,
		MinCoverage:   DefaultMinCoverage,
	}
}

// Result is the MACS at one temperature.
type Result struct {
	// TemperatureKeV is the requested temperature kT in keV.
	TemperatureKeV float64 `json:"temperature_kev"`
	// MACSMb is the Maxwellian-averaged cross section in millibarns.
	MACSMb float64 `json:"macs_mb"`
	// Coverage is the fraction of the Maxwellian weight inside the curve
	// domain. The omitted 1-Coverage is the truncation error bound relative
	// to a cross section that stays at its boundary values.
	Coverage float64 `json:"coverage"`
	// Nodes is the number of integrand evaluations.
	Nodes int `json:"nodes"`
	// CoarseSampling is set when the quadrature step exceeds
	// kT/MinNodesPerScale.
	CoarseSampling bool `json:"coarse_sampling,omitempty"`
}

// Integrator computes Maxwellian-averaged cross sections:
//
//	MACS(kT) = (2/√π) · ∫ σ(E)·E·exp(-E/kT) dE / ∫ E·exp(-E/kT) dE
//
// The denominator is (kT)² and is never integrated numerically. The
// numerator is integrated over the curve domain only; the missing tails are
// reported through Result.Coverage.
//
// An Integrator holds no mutable state and is safe for concurrent use.
type Integrator struct {
	opts   Options
	logger logging.Logger
}

// NewIntegrator validates opts and returns an Integrator. A nil logger
// discards diagnostics.
func NewIntegrator(opts Options, logger logging.Logger) (*Integrator, error) {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	if !(opts.AtomicMass >= 0) || math.IsInf(opts.AtomicMass, 0) {
		return nil, apperrors.NewInvalidInputError("atomic mass", "must be a non-negative finite number, got %g", opts.AtomicMass)
	}
	if opts.NodesPerScale < 0 || opts.NodesPerScale > MaxNodesPerScale {
		return nil, apperrors.NewInvalidInputError("nodes per scale", "must be within [1, %d], got %d", MaxNodesPerScale, opts.NodesPerScale)
	}
	if opts.NodesPerScale == 0 {
		opts.NodesPerScale = DefaultNodesPerScale
	}
	if !(opts.MinCoverage >= 0 && opts.MinCoverage <= 1) {
		return nil, apperrors.NewInvalidInputError("min coverage", "must be within [0, 1], got %g", opts.MinCoverage)
	}
	if opts.NodesPerScale < MinNodesPerScale {
		logger.Warn("quadrature step is coarser than the Maxwellian weight resolves accurately",
			logging.Int("nodes_per_scale", opts.NodesPerScale),
			logging.Int("recommended_min", MinNodesPerScale))
	}
	return &Integrator{opts: opts, logger: logger}, nil
}

// Options returns the effective options.
func (in *Integrator) Options() Options { return in.opts }

// EffectiveTemperature returns the lab-frame temperature kT/a used in the
// integral, where a = A/(1+A). Without a mass number it returns kT.
func (in *Integrator) EffectiveTemperature(temperatureKeV float64) float64 {
	if in.opts.AtomicMass <= 0 {
		return temperatureKeV
	}
	return temperatureKeV * (1 + in.opts.AtomicMass) / in.opts.AtomicMass
}

// Compute returns the MACS of curve at temperatureKeV.
//
// It fails with apperrors.InvalidInputError when the temperature is not a
// positive finite number, and with apperrors.InsufficientDataError when the
// curve is missing, its domain is empty, or the domain holds less than
// Options.MinCoverage of the Maxwellian weight.
func (in *Integrator) Compute(curve *xsection.Curve, temperatureKeV float64) (Result, error) {
	if !(temperatureKeV > 0) || math.IsInf(temperatureKeV, 0) {
		return Result{}, apperrors.NewInvalidInputError("temperature", "must be a positive finite number of keV, got %g", temperatureKeV)
	}
	if curve == nil || curve.Len() < xsection.MinPoints {
		return Result{}, apperrors.NewInsufficientDataError("cross-section curve has fewer than %d points", xsection.MinPoints)
	}
	lo, hi := curve.Domain()
	if !(hi > lo) {
		return Result{}, apperrors.NewInsufficientDataError("curve domain [%g, %g] keV is empty", lo, hi)
	}

	kT := in.EffectiveTemperature(temperatureKeV)
	coverage := WeightCoverage(lo, hi, kT)
	if coverage < in.opts.MinCoverage {
		return Result{}, apperrors.NewInsufficientDataError(
			"curve domain [%g, %g] keV holds %.3g of the Maxwellian weight at kT=%g keV (minimum %g)",
			lo, hi, coverage, temperatureKeV, in.opts.MinCoverage)
	}
	if coverage < CoverageWarnThreshold {
		in.logger.Warn("curve domain truncates the Maxwellian integral",
			logging.Float64("temperature_kev", temperatureKeV),
			logging.Float64("coverage", coverage),
			logging.Float64("domain_lo_kev", lo),
			logging.Float64("domain_hi_kev", hi))
	}

	numerator, nodes := integrateNumerator(curve, kT, kT/float64(in.opts.NodesPerScale))

	return Result{
		TemperatureKeV: temperatureKeV,
		MACSMb:         twoOverSqrtPi * numerator / Denominator(kT),
		Coverage:       coverage,
		Nodes:          nodes,
		CoarseSampling: in.opts.NodesPerScale < MinNodesPerScale,
	}, nil
}

// Denominator returns ∫₀^∞ E·exp(-E/kT) dE = (kT)².
func Denominator(kT float64) float64 {
	return kT * kT
}

// WeightCoverage returns the fraction of ∫₀^∞ E·exp(-E/kT) dE contributed by
// [lo, hi], using the antiderivative -kT·(E+kT)·exp(-E/kT).
func WeightCoverage(lo, hi, kT float64) float64 {
	tail := func(e float64) float64 {
		if math.IsInf(e, 1) {
			return 0
		}
		return (1 + e/kT) * math.Exp(-e/kT)
	}
	return tail(lo) - tail(hi)
}

// integrateNumerator evaluates ∫ σ(E)·E·exp(-E/kT) dE over the curve domain.
// Each sample interval is integrated separately with composite Simpson on an
// even number of sub-intervals no wider than step, so no parabola straddles a
// kink of the piecewise-linear σ. Integration stops at weightCutoff·kT.
func integrateNumerator(curve *xsection.Curve, kT, step float64) (sum float64, nodes int) {
	cutoff := weightCutoff * kT
	integrand := func(e float64) float64 {
		return curve.Evaluate(e) * e * math.Exp(-e/kT)
	}
	var xs, fs []float64

	for i := 0; i < curve.Len()-1; i++ {
		e0, e1 := curve.Segment(i)
		if e0 >= cutoff {
			break
		}
		upper := math.Min(e1, cutoff)

		n := int(math.Ceil((upper - e0) / step))
		if n < 2 {
			n = 2
		}
		if n%2 == 1 {
			n++
		}

		xs, fs = xs[:0], fs[:0]
		width := upper - e0
		for j := 0; j <= n; j++ {
			e := e0 + width*float64(j)/float64(n)
			if j == n {
				e = upper
			}
			xs = append(xs, e)
			fs = append(fs, integrand(e))
		}
		nodes += len(xs)

		if !strictlyIncreasing(xs) {
			// Interval narrower than float spacing allows subdividing.
			sum += 0.5 * (integrand(e0) + integrand(upper)) * width
			continue
		}
		sum += integrate.Simpsons(xs, fs)
	}
	return sum, nodes
}

func strictlyIncreasing(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return false
		}
	}
	return true
}
