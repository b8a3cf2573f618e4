package xsection

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/interp"

	apperrors "github.com/agbru/macscalc/internal/errors"
)

// MinPoints is the smallest number of distinct energies a curve can be built from.
const MinPoints = 2

// EnergyPoint is one sample of an excitation function.
type EnergyPoint struct {
	// EnergyKeV is the incident neutron energy in keV. Must be positive.
	EnergyKeV float64 `json:"energy_kev"`
	// CrossSectionMb is the cross section in millibarns. Must be non-negative.
	CrossSectionMb float64 `json:"cross_section_mb"`
}

// Curve is a continuous cross-section function built from discrete samples by
// linear interpolation. It is immutable after construction and safe for
// concurrent use.
//
// Samples are sorted by energy; when several samples share an energy the first
// one in input order is kept. Evaluation outside [min energy, max energy]
// returns the nearest boundary sample.
type Curve struct {
	energies []float64
	values   []float64
	pl       interp.PiecewiseLinear
}

// NewCurve validates, sorts and deduplicates points and builds the interpolant.
// The input slice is not modified.
//
// It fails with apperrors.InvalidDataError when an energy is not a positive
// finite number, a cross section is negative or not finite, or fewer than
// MinPoints distinct energies remain.
func NewCurve(points []EnergyPoint) (*Curve, error) {
	for i, p := range points {
		if !(p.EnergyKeV > 0) || math.IsInf(p.EnergyKeV, 0) {
			return nil, apperrors.NewInvalidDataError("point %d: energy %g keV is not a positive finite number", i, p.EnergyKeV)
		}
		if !(p.CrossSectionMb >= 0) || math.IsInf(p.CrossSectionMb, 0) {
			return nil, apperrors.NewInvalidDataError("point %d: cross section %g mb at %g keV is negative or not finite", i, p.CrossSectionMb, p.EnergyKeV)
		}
	}

	sorted := make([]EnergyPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EnergyKeV < sorted[j].EnergyKeV
	})

	energies := make([]float64, 0, len(sorted))
	values := make([]float64, 0, len(sorted))
	for _, p := range sorted {
		if n := len(energies); n > 0 && energies[n-1] == p.EnergyKeV {
			continue
		}
		energies = append(energies, p.EnergyKeV)
		values = append(values, p.CrossSectionMb)
	}

	if len(energies) < MinPoints {
		return nil, apperrors.NewInvalidDataError("%d distinct energies, need at least %d", len(energies), MinPoints)
	}

	c := &Curve{energies: energies, values: values}
	if err := c.pl.Fit(energies, values); err != nil {
		return nil, apperrors.NewInvalidDataError("interpolation: %v", err)
	}
	return c, nil
}

// Evaluate returns the linearly interpolated cross section in millibarns at
// the given energy in keV. At a sampled energy the sample value is returned
// exactly; outside the domain the boundary value is returned.
func (c *Curve) Evaluate(energyKeV float64) float64 {
	return c.pl.Predict(energyKeV)
}

// Domain returns the lowest and highest sampled energies in keV.
func (c *Curve) Domain() (lo, hi float64) {
	return c.energies[0], c.energies[len(c.energies)-1]
}

// Len returns the number of distinct samples.
func (c *Curve) Len() int { return len(c.energies) }

// Energies returns a copy of the sorted sample energies.
func (c *Curve) Energies() []float64 {
	out := make([]float64, len(c.energies))
	copy(out, c.energies)
	return out
}

// Points returns a copy of the sorted, deduplicated samples.
func (c *Curve) Points() []EnergyPoint {
	out := make([]EnergyPoint, len(c.energies))
	for i := range c.energies {
		out[i] = EnergyPoint{EnergyKeV: c.energies[i], CrossSectionMb: c.values[i]}
	}
	return out
}

// Segment returns the energy bounds of the i-th sample interval,
// 0 <= i < Len()-1.
func (c *Curve) Segment(i int) (e0, e1 float64) {
	return c.energies[i], c.energies[i+1]
}
