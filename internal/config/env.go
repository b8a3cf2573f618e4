// This file contains environment variable utilities for configuration override.

package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/agbru/macscalc/internal/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Environment Variable Utilities
// ─────────────────────────────────────────────────────────────────────────────

// getEnvString returns the value of the environment variable with the given key
// (prefixed with EnvPrefix), or the default value if not set.
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

// isFlagSet checks if a flag was explicitly set on the command line.
// This is used to determine whether to apply environment variable overrides.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isFlagSetAny checks if any of the specified flags were explicitly set.
// This is useful for aliased flags where either the short or long form may be used.
func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// envOverride declares a single environment variable override.
// Each entry maps an env key (without the MACSCALC_ prefix) to the CLI flag
// name(s) it corresponds to and a function that applies the env value.
type envOverride struct {
	envKey string
	flags  []string
	apply  func(*AppConfig, string) error
}

func parseIntInto(dst *int, v string) error {
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	*dst = parsed
	return nil
}

// envOverrides is the declarative table of all environment variable overrides.
var envOverrides = []envOverride{
	// String overrides
	{"TARGET", []string{"target"}, func(c *AppConfig, v string) error {
		c.Target = v
		return nil
	}},
	{"LIBRARY", []string{"library"}, func(c *AppConfig, v string) error {
		c.Library = v
		return nil
	}},
	{"REACTION", []string{"reaction"}, func(c *AppConfig, v string) error {
		c.Reaction = v
		return nil
	}},
	{"DATA_FILE", []string{"data-file"}, func(c *AppConfig, v string) error {
		c.DataFile = v
		return nil
	}},
	{"ENDPOINT", []string{"endpoint"}, func(c *AppConfig, v string) error {
		c.Endpoint = v
		return nil
	}},
	{"FORMAT", []string{"format"}, func(c *AppConfig, v string) error {
		c.Format = v
		return nil
	}},
	{"OUTPUT", []string{"output", "o"}, func(c *AppConfig, v string) error {
		c.OutputFile = v
		return nil
	}},
	{"METRICS_FILE", []string{"metrics-file"}, func(c *AppConfig, v string) error {
		c.MetricsFile = v
		return nil
	}},

	// Numeric overrides
	{"TEMPERATURES", []string{"temperatures"}, func(c *AppConfig, v string) error {
		temps, err := ParseTemperatures(v)
		if err != nil {
			return err
		}
		c.Temperatures = temps
		return nil
	}},
	{"MASS", []string{"mass"}, func(c *AppConfig, v string) error {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.AtomicMass = parsed
		return nil
	}},
	{"MIN_COVERAGE", []string{"min-coverage"}, func(c *AppConfig, v string) error {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.MinCoverage = parsed
		return nil
	}},
	{"NODES_PER_SCALE", []string{"nodes-per-scale"}, func(c *AppConfig, v string) error {
		return parseIntInto(&c.NodesPerScale, v)
	}},
	{"PARALLEL", []string{"parallel"}, func(c *AppConfig, v string) error {
		return parseIntInto(&c.Parallel, v)
	}},

	// Duration overrides
	{"TIMEOUT", []string{"timeout"}, func(c *AppConfig, v string) error {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		c.Timeout = parsed
		return nil
	}},

	// Boolean overrides
	{"NO_REDUCED_MASS", []string{"no-reduced-mass"}, func(c *AppConfig, v string) error {
		c.NoReducedMass = parseBoolEnv(v, c.NoReducedMass)
		return nil
	}},
	{"QUIET", []string{"quiet", "q"}, func(c *AppConfig, v string) error {
		c.Quiet = parseBoolEnv(v, c.Quiet)
		return nil
	}},
	{"VERBOSE", []string{"verbose", "v"}, func(c *AppConfig, v string) error {
		c.Verbose = parseBoolEnv(v, c.Verbose)
		return nil
	}},
	{"NO_COLOR", []string{"no-color"}, func(c *AppConfig, v string) error {
		c.NoColor = parseBoolEnv(v, c.NoColor)
		return nil
	}},
}

// parseBoolEnv parses a boolean environment variable value.
// Accepts "true", "1", "yes" as true; "false", "0", "no" as false (case-insensitive).
// Returns defaultVal if the value is not recognized.
func parseBoolEnv(val string, defaultVal bool) bool {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultVal
}

// applyEnvOverrides applies environment variable values to the configuration
// for any flags that were not explicitly set on the command line.
// This implements the priority: CLI flags > Environment variables > file > Defaults.
//
// Supported environment variables (all prefixed with MACSCALC_):
//   - TARGET, LIBRARY, REACTION, TEMPERATURES, MASS, NO_REDUCED_MASS,
//     NODES_PER_SCALE, MIN_COVERAGE, DATA_FILE, ENDPOINT, TIMEOUT, PARALLEL,
//     FORMAT, OUTPUT, METRICS_FILE, QUIET, VERBOSE, NO_COLOR, CONFIG
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) error {
	for _, o := range envOverrides {
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.envKey); val != "" {
			if err := o.apply(config, val); err != nil {
				return apperrors.NewConfigError("%s%s=%q: %v", EnvPrefix, o.envKey, val, err)
			}
		}
	}
	return nil
}
