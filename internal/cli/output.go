// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     They handle presentation logic and colorization.
//     Examples: [DisplayReport], [DisplayFetchSummary].
//
//   - Format* and Render* functions produce the report text without touching
//     the filesystem. Examples: [RenderReport], [FormatReaction].
//
//   - Write* functions write data to files on the filesystem.
//     They handle file creation, directory setup, and error handling.
//     Examples: [WriteReportToFile].

package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/agbru/macscalc/internal/orchestration"
	"github.com/agbru/macscalc/internal/ui"
)

// Report formats.
const (
	FormatText = "text"
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// tableRule is the separator under the text table header.
const tableRule = "--------------------"

// OutputConfig holds configuration for report output.
type OutputConfig struct {
	// OutputFile is the path to save the report (empty for no file output).
	OutputFile string
	// Format is one of FormatText, FormatCSV or FormatJSON.
	Format string
	// Quiet drops the text title and table header.
	Quiet bool
	// Verbose adds coverage and node counts to the text table.
	Verbose bool
}

// jsonReport is the JSON document layout.
type jsonReport struct {
	Library  string       `json:"library"`
	Target   string       `json:"target"`
	Reaction string       `json:"reaction"`
	Points   int          `json:"points"`
	Results  []jsonResult `json:"results"`
}

type jsonResult struct {
	TemperatureKeV float64 `json:"temperature_kev"`
	MACSMb         float64 `json:"macs_mb"`
	Coverage       float64 `json:"coverage"`
	Nodes          int     `json:"nodes"`
	CoarseSampling bool    `json:"coarse_sampling,omitempty"`
}

// FormatReaction renders "Mo-94(n,g)".
func FormatReaction(target, reaction string) string {
	return fmt.Sprintf("%s(%s)", target, reaction)
}

// RenderReport writes report to w in the configured format. Rendering is
// free of color codes so the same output can go to files and pipes.
func RenderReport(w io.Writer, report orchestration.Report, cfg OutputConfig) error {
	switch cfg.Format {
	case FormatText, "":
		return renderText(w, report, cfg)
	case FormatCSV:
		return renderCSV(w, report)
	case FormatJSON:
		return renderJSON(w, report)
	default:
		return fmt.Errorf("unknown report format %q", cfg.Format)
	}
}

func renderText(w io.Writer, report orchestration.Report, cfg OutputConfig) error {
	var b strings.Builder
	if !cfg.Quiet {
		fmt.Fprintf(&b, "=== MACS Calculation for %s %s ===\n\n",
			report.Library, FormatReaction(report.Target, report.Reaction))
		if cfg.Verbose {
			b.WriteString("T(keV)    MACS(mb)        Coverage   Nodes\n")
			b.WriteString(tableRule + strings.Repeat("-", 22) + "\n")
		} else {
			b.WriteString("T(keV)    MACS(mb)\n")
			b.WriteString(tableRule + "\n")
		}
	}
	for _, r := range report.Results {
		fmt.Fprintf(&b, "%6.1f    %12.6f", r.TemperatureKeV, r.Result.MACSMb)
		if cfg.Verbose {
			fmt.Fprintf(&b, "    %8.6f  %6d", r.Result.Coverage, r.Result.Nodes)
			if r.Result.CoarseSampling {
				b.WriteString("  (coarse)")
			}
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func renderCSV(w io.Writer, report orchestration.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"temperature_kev", "macs_mb", "coverage", "nodes"}); err != nil {
		return err
	}
	for _, r := range report.Results {
		record := []string{
			strconv.FormatFloat(r.TemperatureKeV, 'g', -1, 64),
			strconv.FormatFloat(r.Result.MACSMb, 'f', 6, 64),
			strconv.FormatFloat(r.Result.Coverage, 'f', 6, 64),
			strconv.Itoa(r.Result.Nodes),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func renderJSON(w io.Writer, report orchestration.Report) error {
	doc := jsonReport{
		Library:  report.Library,
		Target:   report.Target,
		Reaction: report.Reaction,
		Points:   report.Points,
		Results:  make([]jsonResult, 0, len(report.Results)),
	}
	for _, r := range report.Results {
		doc.Results = append(doc.Results, jsonResult{
			TemperatureKeV: r.TemperatureKeV,
			MACSMb:         r.Result.MACSMb,
			Coverage:       r.Result.Coverage,
			Nodes:          r.Result.Nodes,
			CoarseSampling: r.Result.CoarseSampling,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteReportToFile writes the report to cfg.OutputFile, creating parent
// directories as needed. It does nothing when no file is configured.
//
// Parameters:
//   - report: The computed report.
//   - cfg: Output configuration.
//
// Returns:
//   - error: An error if the file cannot be written.
func WriteReportToFile(report orchestration.Report, cfg OutputConfig) (err error) {
	if cfg.OutputFile == "" {
		return nil
	}

	dir := filepath.Dir(cfg.OutputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(cfg.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	if err := RenderReport(file, report, cfg); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// DisplayReport renders the report to out and, if configured, saves it to
// a file.
//
// Parameters:
//   - out: The output writer.
//   - report: The computed report.
//   - cfg: Output configuration.
//
// Returns:
//   - error: An error if rendering or file output fails.
func DisplayReport(out io.Writer, report orchestration.Report, cfg OutputConfig) error {
	if err := RenderReport(out, report, cfg); err != nil {
		return err
	}
	if cfg.OutputFile == "" {
		return nil
	}
	if err := WriteReportToFile(report, cfg); err != nil {
		return err
	}
	if !cfg.Quiet && cfg.Format == FormatText {
		fmt.Fprintf(out, "\n%s✓ Report saved to: %s%s%s\n",
			ui.ColorGreen(), ui.ColorCyan(), cfg.OutputFile, ui.ColorReset())
	}
	return nil
}
