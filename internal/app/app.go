package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/agbru/macscalc/internal/cli"
	"github.com/agbru/macscalc/internal/config"
	apperrors "github.com/agbru/macscalc/internal/errors"
	"github.com/agbru/macscalc/internal/exfor"
	"github.com/agbru/macscalc/internal/logging"
	"github.com/agbru/macscalc/internal/metrics"
	"github.com/agbru/macscalc/internal/ui"
)

// Application represents the macscalc application instance.
type Application struct {
	Config    config.AppConfig
	ErrWriter io.Writer

	// Source overrides the data source selected from the configuration.
	Source   exfor.Source
	Logger   logging.Logger
	Recorder *metrics.Recorder
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithSource sets the data source, bypassing --data-file and --endpoint.
func WithSource(s exfor.Source) AppOption {
	return func(a *Application) { a.Source = s }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l logging.Logger) AppOption {
	return func(a *Application) { a.Logger = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r *metrics.Recorder) AppOption {
	return func(a *Application) { a.Recorder = r }
}

// New creates a new Application instance by parsing command-line arguments.
// args[0] is the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}

	programName := "macscalc"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	app.Config = cfg

	if app.Logger == nil {
		app.Logger = logging.NewConsoleLogger(errWriter, logLevel(cfg))
	}
	if app.Recorder == nil {
		app.Recorder = metrics.NewRecorder()
	}
	return app, nil
}

// Run executes the application based on the configured mode and returns the
// process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	zerolog.SetGlobalLevel(logLevel(a.Config))
	ui.InitTheme(a.Config.NoColor, terminalOf(out))

	return a.runCalculate(ctx, out)
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion, exfor.KnownLibraries); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// logLevel maps --quiet and --verbose to a zerolog level.
func logLevel(cfg config.AppConfig) zerolog.Level {
	switch {
	case cfg.Quiet:
		return zerolog.ErrorLevel
	case cfg.Verbose:
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}

// terminalOf returns w as a file when it is one, for color detection.
func terminalOf(w io.Writer) *os.File {
	if f, ok := w.(*os.File); ok {
		return f
	}
	return nil
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
