package cli

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/multierr"

	apperrors "github.com/agbru/macscalc/internal/errors"
	"github.com/agbru/macscalc/internal/format"
	"github.com/agbru/macscalc/internal/orchestration"
	"github.com/agbru/macscalc/internal/ui"
)

// CLIResultPresenter implements orchestration.ResultPresenter for CLI output.
type CLIResultPresenter struct {
	Output OutputConfig
}

// CLIErrorHandler implements orchestration.ErrorHandler with colored,
// one-line-per-failure messages.
type CLIErrorHandler struct{}

// CLIProgressReporter implements orchestration.ProgressReporter by updating
// a spinner suffix. A nil Spinner makes it a no-op.
type CLIProgressReporter struct {
	Spinner Spinner
}

// Verify interface compliance.
var (
	_ orchestration.ResultPresenter  = CLIResultPresenter{}
	_ orchestration.ErrorHandler     = CLIErrorHandler{}
	_ orchestration.ProgressReporter = CLIProgressReporter{}
)

// PresentReport renders the report and saves it when an output file is set.
func (p CLIResultPresenter) PresentReport(report orchestration.Report, out io.Writer) error {
	return DisplayReport(out, report, p.Output)
}

// HandleError prints every error combined in err, each with a label derived
// from its type.
func (CLIErrorHandler) HandleError(err error, out io.Writer) {
	for _, e := range multierr.Errors(err) {
		fmt.Fprintf(out, "%s%s:%s %v\n", ui.ColorRed(), errorLabel(e), ui.ColorReset(), e)
	}
}

// errorLabel names the category of err for display.
func errorLabel(err error) string {
	var (
		timeoutErr apperrors.TimeoutError
		fetchErr   apperrors.FetchError
		inputErr   apperrors.InvalidInputError
		configErr  apperrors.ConfigError
	)
	switch {
	case errors.As(err, &timeoutErr):
		return "Timeout"
	case errors.As(err, &fetchErr):
		return "Fetch error"
	case errors.As(err, &inputErr), errors.As(err, &configErr):
		return "Configuration error"
	}
	switch apperrors.ExitCode(err) {
	case apperrors.ExitErrorTimeout:
		return "Timeout"
	case apperrors.ExitErrorCanceled:
		return "Canceled"
	case apperrors.ExitErrorInvalidData:
		return "Data error"
	}
	return "Error"
}

// TemperatureDone shows which temperature finished and how many remain.
func (r CLIProgressReporter) TemperatureDone(done, total int, res orchestration.TemperatureResult) {
	if r.Spinner == nil {
		return
	}
	r.Spinner.UpdateSuffix(fmt.Sprintf(" Integrating %d/%d (kT=%g keV in %s)",
		done, total, res.TemperatureKeV, format.FormatExecutionDuration(res.Duration)))
}
