//go:generate mockgen -source=source.go -destination=mocks/mock_source.go -package=mocks

package exfor

import (
	"context"

	"github.com/agbru/macscalc/internal/xsection"
)

// DefaultQuantity is the EXFOR quantity code for cross sections.
const DefaultQuantity = "SIG"

// Unit conversion factors from the service's units to the curve's units.
const (
	KeVPerEV  = 1e-3
	MbPerBarn = 1e3
)

// KnownLibraries lists evaluated libraries commonly served by the EXFOR/ENDF
// service. It feeds shell completion; the service may offer others.
var KnownLibraries = []string{
	"ENDF-B-VIII.1",
	"ENDF/B-VIII.0",
	"ENDF/B-VII.1",
	"JEFF-4.0",
	"JEFF-3.3",
	"JEFF-3.1",
	"JENDL-5",
	"JENDL-4.0",
	"TENDL-2019",
	"CENDL-3.2",
	"BROND-3.1",
}

// Query selects one evaluated cross section.
type Query struct {
	// Target is the nuclide in canonical form, e.g. "Mo-94".
	Target string
	// Reaction is the reaction code, e.g. "n,g".
	Reaction string
	// Library is the evaluated library name, e.g. "JEFF-3.1".
	Library string
}

// Dataset is one excitation function with its metadata. Points are already
// converted to keV and millibarns.
type Dataset struct {
	ID            string
	Library       string
	Target        string
	Reaction      string
	MAT           int
	MF            int
	MT            int
	TemperatureK  float64
	Interpolation string
	// Origin is the URL or file path the data came from.
	Origin string
	Points []xsection.EnergyPoint
}

// Source provides cross-section datasets.
type Source interface {
	// FetchCrossSection returns the dataset selected by q. It blocks until
	// the dataset is complete or an error occurs.
	FetchCrossSection(ctx context.Context, q Query) (*Dataset, error)
}
