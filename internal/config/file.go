package config

import (
	"bytes"
	"errors"
	"flag"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/macscalc/internal/errors"
)

// FileConfig is the YAML configuration file. Unset keys leave the
// corresponding setting untouched.
type FileConfig struct {
	Target        *string        `yaml:"target"`
	Library       *string        `yaml:"library"`
	Reaction      *string        `yaml:"reaction"`
	Temperatures  []float64      `yaml:"temperatures"`
	Mass          *float64       `yaml:"mass"`
	NoReducedMass *bool          `yaml:"no_reduced_mass"`
	NodesPerScale *int           `yaml:"nodes_per_scale"`
	MinCoverage   *float64       `yaml:"min_coverage"`
	DataFile      *string        `yaml:"data_file"`
	Endpoint      *string        `yaml:"endpoint"`
	Timeout       *time.Duration `yaml:"timeout"`
	Parallel      *int           `yaml:"parallel"`
	Format        *string        `yaml:"format"`
	Output        *string        `yaml:"output"`
	MetricsFile   *string        `yaml:"metrics_file"`
	Quiet         *bool          `yaml:"quiet"`
	Verbose       *bool          `yaml:"verbose"`
	NoColor       *bool          `yaml:"no_color"`
}

// LoadFile reads a YAML configuration file. Unknown keys are rejected.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewConfigError("reading config file: %v", err)
	}
	return decodeFile(data, path)
}

func decodeFile(data []byte, path string) (*FileConfig, error) {
	// Only fields declared in FileConfig are accepted, so yaml.Unmarshal
	// cannot be used directly.
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var fc FileConfig
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, apperrors.NewConfigError("decoding config file %s: %v", path, err)
	}
	return &fc, nil
}

// apply copies set values into cfg, skipping settings whose flag was given
// explicitly.
func (fc *FileConfig) apply(cfg *AppConfig, fs *flag.FlagSet) {
	setUnlessFlagged(fs, &cfg.Target, fc.Target, "target")
	setUnlessFlagged(fs, &cfg.Library, fc.Library, "library")
	setUnlessFlagged(fs, &cfg.Reaction, fc.Reaction, "reaction")
	if len(fc.Temperatures) > 0 && !isFlagSet(fs, "temperatures") {
		cfg.Temperatures = append([]float64(nil), fc.Temperatures...)
	}
	setUnlessFlagged(fs, &cfg.AtomicMass, fc.Mass, "mass")
	setUnlessFlagged(fs, &cfg.NoReducedMass, fc.NoReducedMass, "no-reduced-mass")
	setUnlessFlagged(fs, &cfg.NodesPerScale, fc.NodesPerScale, "nodes-per-scale")
	setUnlessFlagged(fs, &cfg.MinCoverage, fc.MinCoverage, "min-coverage")
	setUnlessFlagged(fs, &cfg.DataFile, fc.DataFile, "data-file")
	setUnlessFlagged(fs, &cfg.Endpoint, fc.Endpoint, "endpoint")
	setUnlessFlagged(fs, &cfg.Timeout, fc.Timeout, "timeout")
	setUnlessFlagged(fs, &cfg.Parallel, fc.Parallel, "parallel")
	setUnlessFlagged(fs, &cfg.Format, fc.Format, "format")
	setUnlessFlagged(fs, &cfg.OutputFile, fc.Output, "output", "o")
	setUnlessFlagged(fs, &cfg.MetricsFile, fc.MetricsFile, "metrics-file")
	setUnlessFlagged(fs, &cfg.Quiet, fc.Quiet, "quiet", "q")
	setUnlessFlagged(fs, &cfg.Verbose, fc.Verbose, "verbose", "v")
	setUnlessFlagged(fs, &cfg.NoColor, fc.NoColor, "no-color")
}

func setUnlessFlagged[T any](fs *flag.FlagSet, dst *T, v *T, flags ...string) {
	if v != nil && !isFlagSetAny(fs, flags...) {
		*dst = *v
	}
}
