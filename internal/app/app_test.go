package app

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"

	apperrors "github.com/agbru/macscalc/internal/errors"
	"github.com/agbru/macscalc/internal/exfor"
	"github.com/agbru/macscalc/internal/exfor/mocks"
	"github.com/agbru/macscalc/internal/logging"
	"github.com/agbru/macscalc/internal/xsection"
)

// constantDataset holds a flat 100 mb cross section wide enough to cover the
// whole Maxwellian at every test temperature, so MACS = 200/√π mb.
func constantDataset() *exfor.Dataset {
	return &exfor.Dataset{
		Library:  "JEFF-3.1",
		Target:   "Mo-94",
		Reaction: "n,g",
		Origin:   "mock",
		Points: []xsection.EnergyPoint{
			{EnergyKeV: 1e-6, CrossSectionMb: 100},
			{EnergyKeV: 1, CrossSectionMb: 100},
			{EnergyKeV: 1e4, CrossSectionMb: 100},
		},
	}
}

var constantMACS = 200 / math.SqrtPi

// assertMACS checks a printed MACS value within the quadrature tolerance.
func assertMACS(t *testing.T, printed string, want float64) {
	t.Helper()
	got, err := strconv.ParseFloat(printed, 64)
	if err != nil {
		t.Fatalf("MACS %q is not a number", printed)
	}
	if math.Abs(got-want) > 1e-6*want {
		t.Errorf("MACS = %s, want %.6f", printed, want)
	}
}

func newTestApp(t *testing.T, src exfor.Source, args ...string) (*Application, *bytes.Buffer) {
	t.Helper()
	var errBuf bytes.Buffer
	a, err := New(append([]string{"macscalc"}, args...), &errBuf,
		WithSource(src), WithLogger(logging.NopLogger{}))
	if err != nil {
		t.Fatalf("New(%v): %v\nstderr:\n%s", args, err, errBuf.String())
	}
	return a, &errBuf
}

func TestRun_TextReport(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockSource(ctrl)
	src.EXPECT().
		FetchCrossSection(gomock.Any(), exfor.Query{Target: "Mo-94", Reaction: "n,g", Library: "JEFF-3.1"}).
		Return(constantDataset(), nil)

	a, errBuf := newTestApp(t, src, "--target", "mo-94", "--temperatures", "8,30", "--no-color", "--quiet")
	var out bytes.Buffer
	if code := a.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d, stderr:\n%s", code, errBuf.String())
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), out.String())
	}
	for i, kT := range []string{"8.0", "30.0"} {
		fields := strings.Fields(lines[i])
		if len(fields) != 2 || fields[0] != kT {
			t.Fatalf("line %d = %q", i, lines[i])
		}
		assertMACS(t, fields[1], constantMACS)
	}
}

func TestRun_FullTextReport(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockSource(ctrl)
	src.EXPECT().FetchCrossSection(gomock.Any(), gomock.Any()).Return(constantDataset(), nil)

	a, errBuf := newTestApp(t, src, "--temperatures", "25", "--no-color")
	var out bytes.Buffer
	if code := a.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d, stderr:\n%s", code, errBuf.String())
	}
	if !strings.HasPrefix(out.String(), "=== MACS Calculation for JEFF-3.1 Mo-94(n,g) ===\n\nT(keV)    MACS(mb)\n") {
		t.Errorf("unexpected report:\n%s", out.String())
	}
	for _, s := range []string{"--- Execution Configuration ---", "Downloaded 3 data points", "A = 94"} {
		if !strings.Contains(errBuf.String(), s) {
			t.Errorf("stderr should contain %q:\n%s", s, errBuf.String())
		}
	}
}

func TestRun_ExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		setup    func(src *mocks.MockSource)
		wantCode int
		wantErr  string
	}{
		{
			name: "fetch failure",
			setup: func(src *mocks.MockSource) {
				src.EXPECT().FetchCrossSection(gomock.Any(), gomock.Any()).
					Return(nil, apperrors.FetchError{Op: "e4list", StatusCode: 503})
			},
			wantCode: apperrors.ExitErrorFetch,
			wantErr:  "Fetch error",
		},
		{
			name: "malformed dataset",
			setup: func(src *mocks.MockSource) {
				ds := constantDataset()
				ds.Points = ds.Points[:1]
				src.EXPECT().FetchCrossSection(gomock.Any(), gomock.Any()).Return(ds, nil)
			},
			wantCode: apperrors.ExitErrorInvalidData,
		},
		{
			name: "one temperature outside the data aborts all",
			args: []string{"--temperatures", "8,1e6", "--min-coverage", "0.9"},
			setup: func(src *mocks.MockSource) {
				src.EXPECT().FetchCrossSection(gomock.Any(), gomock.Any()).Return(constantDataset(), nil)
			},
			wantCode: apperrors.ExitErrorInvalidData,
			wantErr:  "Data error",
		},
		{
			name:     "unknown element never reaches the source",
			args:     []string{"--target", "Xx-1"},
			setup:    func(*mocks.MockSource) {},
			wantCode: apperrors.ExitErrorConfig,
			wantErr:  "Configuration error",
		},
		{
			name: "timeout while fetching",
			args: []string{"--timeout", "20ms"},
			setup: func(src *mocks.MockSource) {
				src.EXPECT().FetchCrossSection(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, _ exfor.Query) (*exfor.Dataset, error) {
						<-ctx.Done()
						return nil, apperrors.FetchError{Op: "e4list", Cause: ctx.Err()}
					})
			},
			wantCode: apperrors.ExitErrorTimeout,
			wantErr:  "Timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			src := mocks.NewMockSource(ctrl)
			tt.setup(src)

			a, errBuf := newTestApp(t, src, append([]string{"--no-color", "--quiet"}, tt.args...)...)
			var out bytes.Buffer
			code := a.Run(context.Background(), &out)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d\nstderr:\n%s", code, tt.wantCode, errBuf.String())
			}
			if out.Len() != 0 {
				t.Errorf("no report may be printed on failure, got:\n%s", out.String())
			}
			if tt.wantErr != "" && !strings.Contains(errBuf.String(), tt.wantErr) {
				t.Errorf("stderr should contain %q:\n%s", tt.wantErr, errBuf.String())
			}
		})
	}
}

func TestRun_Canceled(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockSource(ctrl)
	src.EXPECT().FetchCrossSection(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ exfor.Query) (*exfor.Dataset, error) {
			return nil, apperrors.FetchError{Op: "e4list", Cause: ctx.Err()}
		})

	a, _ := newTestApp(t, src, "--quiet")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if code := a.Run(ctx, &bytes.Buffer{}); code != apperrors.ExitErrorCanceled {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorCanceled)
	}
}

func TestRun_WritesReportAndMetrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockSource(ctrl)
	src.EXPECT().FetchCrossSection(gomock.Any(), gomock.Any()).Return(constantDataset(), nil)

	dir := t.TempDir()
	reportPath := filepath.Join(dir, "out", "report.json")
	metricsPath := filepath.Join(dir, "macscalc.prom")

	a, errBuf := newTestApp(t, src, "--quiet", "--format", "json",
		"--temperatures", "8,25,30,90", "--output", reportPath, "--metrics-file", metricsPath)
	var out bytes.Buffer
	if code := a.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d, stderr:\n%s", code, errBuf.String())
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if !bytes.Equal(data, out.Bytes()) {
		t.Error("report file differs from standard output")
	}
	var doc struct {
		Points  int `json:"points"`
		Results []struct {
			TemperatureKeV float64 `json:"temperature_kev"`
			MACSMb         float64 `json:"macs_mb"`
		} `json:"results"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("invalid JSON report: %v", err)
	}
	if doc.Points != 3 || len(doc.Results) != 4 || doc.Results[3].TemperatureKeV != 90 {
		t.Errorf("unexpected report %+v", doc)
	}
	for _, r := range doc.Results {
		if math.Abs(r.MACSMb-constantMACS) > 1e-6*constantMACS {
			t.Errorf("MACS at %g keV = %g, want %g", r.TemperatureKeV, r.MACSMb, constantMACS)
		}
	}

	prom, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatalf("metrics not written: %v", err)
	}
	for _, s := range []string{`macscalc_temperatures_total{status="ok"} 4`, "macscalc_curve_points 3"} {
		if !strings.Contains(string(prom), s) {
			t.Errorf("metrics should contain %q", s)
		}
	}
}

func TestRun_DataFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flat.txt")
	content := "# E[eV] Sig[b]\n1e-3 0.1\n1e3 0.1\n1e7 0.1\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	var errBuf bytes.Buffer
	a, err := New([]string{"macscalc", "--data-file", path, "--temperatures", "30", "--quiet", "--format", "csv"}, &errBuf,
		WithLogger(logging.NopLogger{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var out bytes.Buffer
	if code := a.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d, stderr:\n%s", code, errBuf.String())
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || lines[0] != "temperature_kev,macs_mb,coverage,nodes" {
		t.Fatalf("unexpected CSV report:\n%s", out.String())
	}
	fields := strings.Split(lines[1], ",")
	if fields[0] != "30" {
		t.Errorf("temperature = %s, want 30", fields[0])
	}
	assertMACS(t, fields[1], constantMACS)
}

func TestRun_Completion(t *testing.T) {
	var errBuf bytes.Buffer
	a, err := New([]string{"macscalc", "--completion", "bash"}, &errBuf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var out bytes.Buffer
	if code := a.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out.String(), "complete -F _macscalc_completions macscalc") {
		t.Errorf("unexpected completion script:\n%s", out.String())
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantHelp bool
		wantCode int
	}{
		{name: "help", args: []string{"--help"}, wantHelp: true},
		{name: "unknown flag", args: []string{"--bogus"}, wantCode: apperrors.ExitErrorConfig},
		{name: "bad temperature", args: []string{"--temperatures", "8,-1"}, wantCode: apperrors.ExitErrorConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(append([]string{"macscalc"}, tt.args...), &bytes.Buffer{})
			if err == nil {
				t.Fatal("expected an error")
			}
			if IsHelpError(err) != tt.wantHelp {
				t.Errorf("IsHelpError = %v, want %v (err: %v)", IsHelpError(err), tt.wantHelp, err)
			}
			if !tt.wantHelp && apperrors.ExitCode(err) != tt.wantCode {
				t.Errorf("ExitCode = %d, want %d", apperrors.ExitCode(err), tt.wantCode)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"--version"}, true},
		{[]string{"--target", "Fe-56", "-V"}, true},
		{[]string{"--verbose"}, false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := HasVersionFlag(tt.args); got != tt.want {
			t.Errorf("HasVersionFlag(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}

	var buf bytes.Buffer
	PrintVersion(&buf)
	if !strings.HasPrefix(buf.String(), "macscalc "+Version) {
		t.Errorf("unexpected banner %q", buf.String())
	}
}

// mo94RelTolerance bounds the relative gap to the published values. Both
// those values and Compute integrate the same piecewise-linear σ; the
// published ones apply the trapezoid rule on the raw samples, which misses the
// curvature of E·exp(-E/kT) inside each interval by at most h²/(12·kT²) per
// unit weight. The evaluated Mo-94 grid is finer than 0.1·kT wherever the
// weight matters at 8 and 90 keV, giving under 1e-3.
const mo94RelTolerance = 1e-3

// TestRun_Mo94Reference checks the published JEFF-4.0 Mo-94(n,g) values
// against the live service. Set MACSCALC_NETWORK_TESTS=1 to run it.
func TestRun_Mo94Reference(t *testing.T) {
	if os.Getenv("MACSCALC_NETWORK_TESTS") != "1" {
		t.Skip("set MACSCALC_NETWORK_TESTS=1 to query the EXFOR service")
	}

	var errBuf bytes.Buffer
	a, err := New([]string{"macscalc", "--library", "JEFF-4.0", "--target", "Mo-94",
		"--quiet", "--format", "json", "--temperatures", "8,90", "--timeout", "1m"}, &errBuf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var out bytes.Buffer
	if code := a.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d, stderr:\n%s", code, errBuf.String())
	}
	var doc struct {
		Results []struct {
			MACSMb float64 `json:"macs_mb"`
		} `json:"results"`
	}
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON report: %v", err)
	}
	want := []float64{195.468628, 53.676243}
	if len(doc.Results) != len(want) {
		t.Fatalf("got %d results, want %d", len(doc.Results), len(want))
	}
	for i, w := range want {
		if rel := math.Abs(doc.Results[i].MACSMb-w) / w; rel > mo94RelTolerance {
			t.Errorf("MACS[%d] = %g mb, want %g within %g relative", i, doc.Results[i].MACSMb, w, mo94RelTolerance)
		}
	}
}
