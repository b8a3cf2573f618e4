package orchestration

import (
	"context"
	"io"
	"runtime"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/macscalc/internal/errors"
	"github.com/agbru/macscalc/internal/xsection"
)

const tracerName = "github.com/agbru/macscalc/internal/orchestration"

// ExecuteMACS evaluates curve at every temperature, running at most limit
// evaluations at a time (limit <= 0 selects runtime.NumCPU()).
//
// Results are returned in the order of temperatures regardless of completion
// order. A failed evaluation does not stop the others. Once ctx is done no
// further evaluation is started and the remaining entries carry ctx.Err();
// an evaluation already running is not interrupted.
func ExecuteMACS(ctx context.Context, curve *xsection.Curve, temperatures []float64, calc Calculator, limit int, reporter ProgressReporter) []TemperatureResult {
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	if reporter == nil {
		reporter = NullProgressReporter{}
	}

	results := make([]TemperatureResult, len(temperatures))
	var (
		mu   sync.Mutex
		done int
	)
	finish := func(idx int) {
		mu.Lock()
		defer mu.Unlock()
		done++
		reporter.TemperatureDone(done, len(temperatures), results[idx])
	}

	var g errgroup.Group
	g.SetLimit(limit)

	for i, kT := range temperatures {
		idx, temperature := i, kT
		if err := ctx.Err(); err != nil {
			results[idx] = TemperatureResult{TemperatureKeV: temperature, Err: err}
			finish(idx)
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[idx] = TemperatureResult{TemperatureKeV: temperature, Err: err}
				finish(idx)
				return nil
			}
			results[idx] = evaluate(ctx, curve, temperature, calc)
			finish(idx)
			return nil
		})
	}

	_ = g.Wait()
	return results
}

func evaluate(ctx context.Context, curve *xsection.Curve, temperature float64, calc Calculator) TemperatureResult {
	_, span := otel.Tracer(tracerName).Start(ctx, "macs.Compute")
	defer span.End()
	span.SetAttributes(attribute.Float64("macs.temperature_kev", temperature))

	start := time.Now()
	res, err := calc.Compute(curve, temperature)
	tr := TemperatureResult{TemperatureKeV: temperature, Result: res, Duration: time.Since(start)}
	if err != nil {
		tr.Err = apperrors.CalculationError{TemperatureKeV: temperature, Cause: err}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return tr
	}
	span.SetAttributes(
		attribute.Float64("macs.value_mb", res.MACSMb),
		attribute.Float64("macs.coverage", res.Coverage),
		attribute.Int("macs.nodes", res.Nodes),
	)
	return tr
}

// Failures combines the errors of all failed temperatures, in request order.
// It returns nil when every temperature succeeded.
func Failures(results []TemperatureResult) error {
	var combined error
	for _, r := range results {
		if r.Err != nil {
			combined = multierr.Append(combined, r.Err)
		}
	}
	return combined
}

// AnalyzeResults applies the abort-all batch policy. If any temperature
// failed nothing is presented, every failure is passed to handler and the
// exit code of the first failure is returned. Otherwise the report is
// presented and ExitSuccess is returned.
func AnalyzeResults(report Report, presenter ResultPresenter, handler ErrorHandler, out io.Writer) int {
	if err := Failures(report.Results); err != nil {
		handler.HandleError(err, out)
		return apperrors.ExitCode(multierr.Errors(err)[0])
	}
	if err := presenter.PresentReport(report, out); err != nil {
		handler.HandleError(err, out)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}
