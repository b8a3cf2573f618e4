package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/agbru/macscalc/internal/cli"
	apperrors "github.com/agbru/macscalc/internal/errors"
	"github.com/agbru/macscalc/internal/exfor"
	"github.com/agbru/macscalc/internal/logging"
	"github.com/agbru/macscalc/internal/macs"
	"github.com/agbru/macscalc/internal/nucleus"
	"github.com/agbru/macscalc/internal/orchestration"
	"github.com/agbru/macscalc/internal/xsection"
)

// runCalculate fetches the cross section, computes the MACS at every
// requested temperature and reports the table.
func (a *Application) runCalculate(ctx context.Context, out io.Writer) (code int) {
	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	target, mass, err := a.resolveTarget()
	if err != nil {
		return a.fail(err)
	}

	source, closeSource := a.openSource()
	defer func() {
		if err := closeSource(); err != nil {
			a.Logger.Warn("closing data source", logging.Err(err))
		}
	}()

	defer func() {
		if err := a.writeMetrics(); err != nil {
			cli.CLIErrorHandler{}.HandleError(err, a.ErrWriter)
			if code == apperrors.ExitSuccess {
				code = apperrors.ExitErrorGeneric
			}
		}
	}()

	if !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, mass, a.ErrWriter)
	}

	query := exfor.Query{Target: target, Reaction: a.Config.Reaction, Library: a.Config.Library}
	ds, err := a.fetch(ctx, source, query)
	if err != nil {
		return a.fail(a.classify(ctx, "fetch", err))
	}
	if !a.Config.Quiet {
		cli.DisplayFetchSummary(ds, a.ErrWriter)
	}

	curve, err := xsection.NewCurve(ds.Points)
	if err != nil {
		return a.fail(err)
	}
	if dropped := len(ds.Points) - curve.Len(); dropped > 0 {
		a.Logger.Warn("duplicate energies dropped, first value kept", logging.Int("dropped", dropped))
	}

	integrator, err := macs.NewIntegrator(macs.Options{
		AtomicMass:    mass,
		NodesPerScale: a.Config.NodesPerScale,
		MinCoverage:   a.Config.MinCoverage,
	}, a.Logger)
	if err != nil {
		return a.fail(err)
	}

	spin := cli.StartSpinner(a.ErrWriter, "Integrating...", a.Config.Quiet)
	reporter := orchestration.MultiProgressReporter{a.Recorder, cli.CLIProgressReporter{Spinner: spin}}
	results := orchestration.ExecuteMACS(ctx, curve, a.Config.Temperatures, integrator, a.Config.Parallel, reporter)
	spin.Stop()

	for i := range results {
		if results[i].Err != nil && apperrors.IsContextError(results[i].Err) {
			results[i].Err = a.classify(ctx, "integration", results[i].Err)
		}
	}

	report := orchestration.Report{
		Library:  ds.Library,
		Target:   ds.Target,
		Reaction: ds.Reaction,
		Points:   curve.Len(),
		Results:  results,
	}
	presenter := cli.CLIResultPresenter{Output: cli.OutputConfig{
		OutputFile: a.Config.OutputFile,
		Format:     a.Config.Format,
		Quiet:      a.Config.Quiet,
		Verbose:    a.Config.Verbose,
	}}
	return orchestration.AnalyzeResults(report, presenter, errorSink{a.ErrWriter}, out)
}

// resolveTarget canonicalises the target and picks the mass number for the
// reduced-mass correction. An unparsable target is accepted only when the
// data comes from a file and the mass does not have to be derived from it.
func (a *Application) resolveTarget() (target string, mass float64, err error) {
	target = a.Config.Target
	n, perr := nucleus.Parse(target)
	if perr == nil {
		target = n.String()
	}

	switch {
	case a.Config.NoReducedMass:
		mass = 0
	case a.Config.AtomicMass > 0:
		mass = a.Config.AtomicMass
	case perr != nil:
		return "", 0, perr
	default:
		mass = n.Mass()
	}

	if perr != nil && a.Config.DataFile == "" && a.Source == nil {
		return "", 0, perr
	}
	return target, mass, nil
}

// openSource returns the injected source, a FileSource for --data-file or
// an HTTP client, together with its cleanup.
func (a *Application) openSource() (exfor.Source, func() error) {
	src := a.Source
	switch {
	case src != nil:
	case a.Config.DataFile != "":
		src = exfor.NewFileSource(a.Config.DataFile, a.Logger)
	default:
		opts := []exfor.Option{exfor.WithLogger(a.Logger)}
		if a.Config.Endpoint != "" {
			opts = append(opts, exfor.WithBaseURL(a.Config.Endpoint))
		}
		src = exfor.NewClient(opts...)
	}

	return src, func() error {
		if c, ok := src.(io.Closer); ok {
			return c.Close()
		}
		return nil
	}
}

// fetch retrieves the dataset behind a spinner and records the outcome.
func (a *Application) fetch(ctx context.Context, source exfor.Source, q exfor.Query) (*exfor.Dataset, error) {
	spin := cli.StartSpinner(a.ErrWriter,
		fmt.Sprintf("Downloading %s data for %s...", q.Library, cli.FormatReaction(q.Target, q.Reaction)),
		a.Config.Quiet)
	start := time.Now()
	ds, err := source.FetchCrossSection(ctx, q)
	spin.Stop()

	points := 0
	if ds != nil {
		points = len(ds.Points)
	}
	a.Recorder.ObserveFetch(time.Since(start), points, err)
	if err != nil {
		return nil, err
	}
	if ds.Library == "" {
		ds.Library = q.Library
	}
	if ds.Target == "" {
		ds.Target = q.Target
	}
	if ds.Reaction == "" {
		ds.Reaction = q.Reaction
	}
	a.Logger.Debug("dataset ready",
		logging.String("origin", ds.Origin),
		logging.Int("points", len(ds.Points)),
		logging.Duration("elapsed", time.Since(start)))
	return ds, nil
}

// classify turns a deadline expiry into a TimeoutError naming the stage.
func (a *Application) classify(ctx context.Context, op string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.TimeoutError{Operation: op, Limit: a.Config.Timeout}
	}
	return err
}

// writeMetrics saves the Prometheus textfile when --metrics-file is set.
func (a *Application) writeMetrics() error {
	if a.Config.MetricsFile == "" {
		return nil
	}
	a.Recorder.SnapshotMemory()
	if err := a.Recorder.WriteTextfile(a.Config.MetricsFile); err != nil {
		return apperrors.WrapError(err, "writing metrics to %s", a.Config.MetricsFile)
	}
	return nil
}

// fail reports err on the error writer and returns its exit code.
func (a *Application) fail(err error) int {
	cli.CLIErrorHandler{}.HandleError(err, a.ErrWriter)
	return apperrors.ExitCode(err)
}

// errorSink routes batch failures to the error writer while the report goes
// to standard output.
type errorSink struct {
	w io.Writer
}

func (s errorSink) HandleError(err error, _ io.Writer) {
	cli.CLIErrorHandler{}.HandleError(err, s.w)
}
