package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/agbru/macscalc/internal/errors"
)

const (
	// EnvPrefix is prepended to every environment variable override.
	EnvPrefix = "MACSCALC_"

	DefaultTarget        = "Mo-94"
	DefaultLibrary       = "JEFF-3.1"
	DefaultReaction      = "n,g"
	DefaultTimeout       = 2 * time.Minute
	DefaultNodesPerScale = 32
	MaxNodesPerScale     = 1 << 16
	DefaultMinCoverage   = 0.5
	DefaultFormat        = "text"
)

// DefaultTemperatures are the thermal energies in keV reported when none are
// requested.
var DefaultTemperatures = []float64{8, 25, 30, 90}

// Formats lists the accepted --format values.
var Formats = []string{"text", "csv", "json"}

// Shells lists the accepted --completion values.
var Shells = []string{"bash", "zsh", "fish", "powershell"}

// AppConfig holds the resolved configuration of one invocation.
type AppConfig struct {
	Target       string
	Library      string
	Reaction     string
	Temperatures []float64

	// AtomicMass overrides the mass number derived from Target. Zero means
	// derive it.
	AtomicMass    float64
	NoReducedMass bool
	NodesPerScale int
	MinCoverage   float64

	DataFile string
	Endpoint string
	Timeout  time.Duration
	Parallel int

	Format      string
	OutputFile  string
	MetricsFile string
	ConfigFile  string

	Quiet      bool
	Verbose    bool
	NoColor    bool
	Completion string
}

// Default returns the configuration used when nothing is overridden.
func Default() AppConfig {
	temps := make([]float64, len(DefaultTemperatures))
	copy(temps, DefaultTemperatures)
	return AppConfig{
		Target:        DefaultTarget,
		Library:       DefaultLibrary,
		Reaction:      DefaultReaction,
		Temperatures:  temps,
		NodesPerScale: DefaultNodesPerScale,
		MinCoverage:   DefaultMinCoverage,
		Timeout:       DefaultTimeout,
		Parallel:      EstimateParallelism(),
		Format:        DefaultFormat,
	}
}

// temperatureList is a flag.Value for comma-separated temperatures.
type temperatureList struct{ dst *[]float64 }

func (t temperatureList) String() string {
	if t.dst == nil {
		return ""
	}
	return FormatTemperatures(*t.dst)
}

func (t temperatureList) Set(s string) error {
	temps, err := ParseTemperatures(s)
	if err != nil {
		return err
	}
	*t.dst = temps
	return nil
}

// ParseConfig parses command-line arguments and resolves the configuration
// with the precedence: flags > MACSCALC_* environment > YAML file > defaults.
// Usage and flag errors are written to errWriter.
func ParseConfig(programName string, args []string, errWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errWriter)
	cfg := Default()

	fs.StringVar(&cfg.Target, "target", cfg.Target, "Target nuclide (e.g. Mo-94, Lu-177m).")
	fs.StringVar(&cfg.Library, "library", cfg.Library, "Evaluated library name (e.g. JEFF-3.1, ENDF/B-VIII.0).")
	fs.StringVar(&cfg.Reaction, "reaction", cfg.Reaction, "Reaction code (e.g. n,g).")
	fs.Var(temperatureList{&cfg.Temperatures}, "temperatures", "Comma-separated temperatures kT in keV.")
	fs.Float64Var(&cfg.AtomicMass, "mass", 0, "Target mass number for the reduced-mass correction (default: from --target).")
	fs.BoolVar(&cfg.NoReducedMass, "no-reduced-mass", false, "Disable the reduced-mass correction.")
	fs.IntVar(&cfg.NodesPerScale, "nodes-per-scale", cfg.NodesPerScale, "Quadrature nodes per kT.")
	fs.Float64Var(&cfg.MinCoverage, "min-coverage", cfg.MinCoverage, "Minimum fraction of the Maxwellian weight the data must cover.")
	fs.StringVar(&cfg.DataFile, "data-file", "", "Read the cross section from a local file (e4sig JSON or two columns E[eV] Sig[b]).")
	fs.StringVar(&cfg.Endpoint, "endpoint", "", "Base URL of the EXFOR web service.")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Maximum time for the whole run.")
	fs.IntVar(&cfg.Parallel, "parallel", cfg.Parallel, "Maximum temperatures evaluated concurrently.")
	fs.StringVar(&cfg.Format, "format", cfg.Format, "Output format: "+strings.Join(Formats, ", ")+".")
	fs.StringVar(&cfg.OutputFile, "output", "", "Also write the report to this file.")
	fs.StringVar(&cfg.OutputFile, "o", "", "Shorthand for --output.")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", "", "Write Prometheus metrics in text format to this file.")
	fs.StringVar(&cfg.ConfigFile, "config", "", "YAML configuration file.")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "Print only the results.")
	fs.BoolVar(&cfg.Quiet, "q", false, "Shorthand for --quiet.")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Show coverage and node counts, and debug logs.")
	fs.BoolVar(&cfg.Verbose, "v", false, "Shorthand for --verbose.")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output.")
	fs.StringVar(&cfg.Completion, "completion", "", "Print a completion script for "+strings.Join(Shells, ", ")+".")
	fs.Bool("version", false, "Print version information and exit.")
	fs.Bool("V", false, "Shorthand for --version.")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return AppConfig{}, err
		}
		return AppConfig{}, apperrors.ConfigError{Message: err.Error()}
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(errWriter, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		return AppConfig{}, apperrors.NewConfigError("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	if !isFlagSet(fs, "config") {
		cfg.ConfigFile = getEnvString("CONFIG", "")
	}
	if cfg.ConfigFile != "" {
		fc, err := LoadFile(cfg.ConfigFile)
		if err != nil {
			fmt.Fprintf(errWriter, "%v\n", err)
			return AppConfig{}, err
		}
		fc.apply(&cfg, fs)
	}

	if err := applyEnvOverrides(&cfg, fs); err != nil {
		fmt.Fprintf(errWriter, "%v\n", err)
		return AppConfig{}, err
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(errWriter, "%v\n", err)
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate checks the resolved configuration.
func (c AppConfig) Validate() error {
	if strings.TrimSpace(c.Target) == "" {
		return apperrors.NewInvalidInputError("target", "must not be empty")
	}
	if strings.TrimSpace(c.Library) == "" {
		return apperrors.NewInvalidInputError("library", "must not be empty")
	}
	if strings.TrimSpace(c.Reaction) == "" {
		return apperrors.NewInvalidInputError("reaction", "must not be empty")
	}
	if len(c.Temperatures) == 0 {
		return apperrors.NewInvalidInputError("temperatures", "at least one temperature is required")
	}
	for _, t := range c.Temperatures {
		if err := checkTemperature(t); err != nil {
			return err
		}
	}
	if !(c.AtomicMass >= 0) || math.IsInf(c.AtomicMass, 0) {
		return apperrors.NewInvalidInputError("mass", "must be a non-negative finite number, got %g", c.AtomicMass)
	}
	if c.NodesPerScale <= 0 || c.NodesPerScale > MaxNodesPerScale {
		return apperrors.NewInvalidInputError("nodes-per-scale", "must be within [1, %d], got %d", MaxNodesPerScale, c.NodesPerScale)
	}
	if !(c.MinCoverage >= 0 && c.MinCoverage <= 1) {
		return apperrors.NewInvalidInputError("min-coverage", "must be within [0, 1], got %g", c.MinCoverage)
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout must be positive, got %s", c.Timeout)
	}
	if c.Parallel < 0 {
		return apperrors.NewConfigError("parallel must not be negative, got %d", c.Parallel)
	}
	if !contains(Formats, c.Format) {
		return apperrors.NewConfigError("unknown format %q (valid: %s)", c.Format, strings.Join(Formats, ", "))
	}
	if c.Completion != "" && !contains(Shells, c.Completion) {
		return apperrors.NewConfigError("unsupported shell %q (valid: %s)", c.Completion, strings.Join(Shells, ", "))
	}
	if c.Quiet && c.Verbose {
		return apperrors.NewConfigError("--quiet and --verbose are mutually exclusive")
	}
	return nil
}

// ParseTemperatures parses a comma-separated list of temperatures in keV.
// Order and duplicates are preserved.
func ParseTemperatures(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	temps := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		t, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, apperrors.NewInvalidInputError("temperatures", "%q is not a number", p)
		}
		if err := checkTemperature(t); err != nil {
			return nil, err
		}
		temps = append(temps, t)
	}
	if len(temps) == 0 {
		return nil, apperrors.NewInvalidInputError("temperatures", "at least one temperature is required")
	}
	return temps, nil
}

// FormatTemperatures renders temperatures in the form ParseTemperatures reads.
func FormatTemperatures(temps []float64) string {
	parts := make([]string, len(temps))
	for i, t := range temps {
		parts[i] = strconv.FormatFloat(t, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

func checkTemperature(t float64) error {
	if !(t > 0) || math.IsInf(t, 0) {
		return apperrors.NewInvalidInputError("temperatures", "%g keV is not a positive finite temperature", t)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
