package orchestration

import (
	"io"
	"time"

	"github.com/agbru/macscalc/internal/macs"
	"github.com/agbru/macscalc/internal/xsection"
)

// TemperatureResult encapsulates the outcome of the MACS evaluation at one
// temperature. It serves as the shared domain type between orchestration and
// presentation layers.
type TemperatureResult struct {
	// TemperatureKeV is the requested temperature kT in keV.
	TemperatureKeV float64
	// Result is the computed MACS. It is the zero value if an error occurred.
	Result macs.Result
	// Duration is the time taken by the evaluation.
	Duration time.Duration
	// Err contains any error that occurred during the evaluation.
	Err error
}

// Report is everything a presenter needs to render one run.
type Report struct {
	Library  string
	Target   string
	Reaction string
	// Points is the number of distinct samples in the curve.
	Points  int
	Results []TemperatureResult
}

// Calculator computes the MACS of a curve at one temperature.
// *macs.Integrator satisfies it.
type Calculator interface {
	Compute(curve *xsection.Curve, temperatureKeV float64) (macs.Result, error)
}

// ProgressReporter is notified after each temperature completes. Calls are
// serialized; done counts completed temperatures including this one.
type ProgressReporter interface {
	TemperatureDone(done, total int, res TemperatureResult)
}

// ProgressReporterFunc is a function adapter that implements ProgressReporter.
type ProgressReporterFunc func(done, total int, res TemperatureResult)

// TemperatureDone calls the underlying function.
func (f ProgressReporterFunc) TemperatureDone(done, total int, res TemperatureResult) {
	f(done, total, res)
}

// NullProgressReporter is a no-op implementation of ProgressReporter.
// Useful for quiet mode or testing.
type NullProgressReporter struct{}

// TemperatureDone does nothing.
func (NullProgressReporter) TemperatureDone(int, int, TemperatureResult) {}

// ResultPresenter renders a complete report.
type ResultPresenter interface {
	PresentReport(report Report, out io.Writer) error
}

// ErrorHandler reports errors to the user.
type ErrorHandler interface {
	HandleError(err error, out io.Writer)
}

// MultiProgressReporter fans out notifications to several reporters.
type MultiProgressReporter []ProgressReporter

// TemperatureDone notifies every reporter in order.
func (m MultiProgressReporter) TemperatureDone(done, total int, res TemperatureResult) {
	for _, r := range m {
		r.TemperatureDone(done, total, res)
	}
}
