package exfor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/agbru/macscalc/internal/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestFileSource_TwoColumn(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "mo94.txt", `# E[eV]  Sig[b]
1.0e3   0.5

3.0e4   0.1   # comment
1.0e6   0.01  extra
`)
	ds, err := NewFileSource(path, nil).FetchCrossSection(context.Background(), moQuery)
	if err != nil {
		t.Fatalf("FetchCrossSection: %v", err)
	}
	if len(ds.Points) != 3 {
		t.Fatalf("len(Points) = %d, want 3", len(ds.Points))
	}
	if p := ds.Points[1]; p.EnergyKeV != 30 || p.CrossSectionMb != 100 {
		t.Errorf("Points[1] = %+v, want {30 100}", p)
	}
	if ds.Library != "JEFF-3.1" || ds.Target != "Mo-94" || ds.Reaction != "n,g" {
		t.Errorf("metadata not taken from query: %+v", ds)
	}
	if ds.Origin != path {
		t.Errorf("Origin = %q, want %q", ds.Origin, path)
	}
}

func TestFileSource_JSON(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "mo94.json", "\n  "+sigBody)
	ds, err := NewFileSource(path, nil).FetchCrossSection(context.Background(), moQuery)
	if err != nil {
		t.Fatalf("FetchCrossSection: %v", err)
	}
	if ds.ID != "4242" || len(ds.Points) != 3 || ds.Interpolation != "lin-lin" {
		t.Errorf("unexpected dataset: %+v", ds)
	}
}

func TestFileSource_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"single column", "1.0 2.0\n3.0\n", "line 2"},
		{"bad number", "1.0 abc\n", "cross section"},
		{"empty", "# nothing\n\n", "no data points"},
		{"malformed json", "{\"datasets\": [", "malformed JSON"},
		{"json without datasets", `{"datasets": []}`, "no dataset"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := writeFile(t, "data", tt.content)
			_, err := NewFileSource(path, nil).FetchCrossSection(context.Background(), moQuery)
			var dataErr apperrors.InvalidDataError
			if !errors.As(err, &dataErr) {
				t.Fatalf("expected InvalidDataError, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestFileSource_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := NewFileSource(filepath.Join(t.TempDir(), "absent"), nil).FetchCrossSection(context.Background(), moQuery)
	if apperrors.ExitCode(err) != apperrors.ExitErrorConfig {
		t.Errorf("ExitCode = %d, want %d (%v)", apperrors.ExitCode(err), apperrors.ExitErrorConfig, err)
	}
}
