package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/macscalc/internal/config"
	"github.com/agbru/macscalc/internal/exfor"
	"github.com/agbru/macscalc/internal/ui"
)

// PrintExecutionConfig displays the current execution configuration to the user.
// It shows the reaction, the data source, the temperatures and the
// quadrature settings.
//
// Parameters:
//   - cfg: The application configuration.
//   - atomicMass: The mass number used for the reduced-mass correction, 0 if disabled.
//   - out: The writer for diagnostic output.
func PrintExecutionConfig(cfg config.AppConfig, atomicMass float64, out io.Writer) {
	source := cfg.Endpoint
	if cfg.DataFile != "" {
		source = cfg.DataFile
	} else if source == "" {
		source = exfor.DefaultBaseURL
	}

	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Calculating MACS for %s%s %s%s from %s%s%s with a timeout of %s%s%s.\n",
		ui.ColorBlue(), cfg.Library, FormatReaction(cfg.Target, cfg.Reaction), ui.ColorReset(),
		ui.ColorCyan(), source, ui.ColorReset(),
		ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	fmt.Fprintf(out, "Temperatures: %s%s%s keV.\n",
		ui.ColorCyan(), config.FormatTemperatures(cfg.Temperatures), ui.ColorReset())
	if atomicMass > 0 {
		fmt.Fprintf(out, "Reduced mass: %sA = %g%s.\n", ui.ColorCyan(), atomicMass, ui.ColorReset())
	} else {
		fmt.Fprintf(out, "Reduced mass: %sdisabled%s.\n", ui.ColorYellow(), ui.ColorReset())
	}
	fmt.Fprintf(out, "Quadrature: %s%d%s nodes per kT, minimum coverage %s%g%s.\n",
		ui.ColorCyan(), cfg.NodesPerScale, ui.ColorReset(), ui.ColorCyan(), cfg.MinCoverage, ui.ColorReset())
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s, %s%d%s concurrent temperatures.\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(), ui.ColorCyan(), runtime.Version(), ui.ColorReset(),
		ui.ColorCyan(), cfg.Parallel, ui.ColorReset())
}

// DisplayFetchSummary reports the downloaded dataset like the first lines of
// the classic tool output.
//
// Parameters:
//   - ds: The fetched dataset.
//   - out: The writer for diagnostic output.
func DisplayFetchSummary(ds *exfor.Dataset, out io.Writer) {
	fmt.Fprintf(out, "Downloaded %s%d%s data points from %s\n",
		ui.ColorGreen(), len(ds.Points), ui.ColorReset(), ds.Origin)
	if len(ds.Points) > 0 {
		first := ds.Points[0]
		fmt.Fprintf(out, "First point: E = %g keV, σ = %g mb\n", first.EnergyKeV, first.CrossSectionMb)
	}
}
