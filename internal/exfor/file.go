package exfor

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/agbru/macscalc/internal/errors"
	"github.com/agbru/macscalc/internal/logging"
	"github.com/agbru/macscalc/internal/xsection"
)

// FileSource reads a dataset from a local file instead of the web service.
//
// Two formats are accepted: an e4sig JSON document as returned by the service,
// or whitespace-separated text with one "energy[eV] cross-section[b]" pair per
// line, where '#' starts a comment.
type FileSource struct {
	path   string
	logger logging.Logger
}

var _ Source = (*FileSource)(nil)

// NewFileSource returns a FileSource for path. A nil logger discards
// diagnostics.
func NewFileSource(path string, logger logging.Logger) *FileSource {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &FileSource{path: path, logger: logger}
}

// FetchCrossSection reads and converts the file. For JSON documents holding
// several datasets the first one evaluated in q.Library is used, falling back
// to the first dataset. Metadata missing from the file is taken from q.
func (f *FileSource) FetchCrossSection(ctx context.Context, q Query) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, apperrors.NewInvalidInputError("data file", "%v", err)
	}

	var ds *Dataset
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		ds, err = decodeSigDocument(bytes.NewReader(trimmed), q.Library, f.path)
	} else {
		var pts []xsection.EnergyPoint
		pts, err = ParseTwoColumn(bytes.NewReader(data))
		ds = &Dataset{Origin: f.path, Points: pts}
	}
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
	f.logger.Debug("cross section read from file",
		logging.String("path", f.path),
		logging.Int("points", len(ds.Points)))
	return ds, nil
}

func decodeSigDocument(r io.Reader, library, origin string) (*Dataset, error) {
	var doc sigResponse
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, apperrors.NewInvalidDataError("%s: malformed JSON: %v", origin, err)
	}
	if len(doc.Datasets) == 0 {
		return nil, apperrors.NewInvalidDataError("%s: document contains no dataset", origin)
	}
	chosen := doc.Datasets[0]
	for _, d := range doc.Datasets {
		if d.Library == library {
			chosen = d
			break
		}
	}
	ds := chosen.toDataset(origin)
	if len(ds.Points) == 0 {
		return nil, apperrors.NewInvalidDataError("%s: dataset contains no points", origin)
	}
	return ds, nil
}

// ParseTwoColumn reads "energy[eV] cross-section[b]" lines and returns the
// points in keV and millibarns. Blank lines and '#' comments are skipped;
// extra columns are ignored.
func ParseTwoColumn(r io.Reader) ([]xsection.EnergyPoint, error) {
	var pts []xsection.EnergyPoint
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, apperrors.NewInvalidDataError("line %d: expected energy and cross section, got %q", line, sc.Text())
		}
		e, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, apperrors.NewInvalidDataError("line %d: energy %q: %v", line, fields[0], err)
		}
		s, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, apperrors.NewInvalidDataError("line %d: cross section %q: %v", line, fields[1], err)
		}
		pts = append(pts, xsection.EnergyPoint{EnergyKeV: e * KeVPerEV, CrossSectionMb: s * MbPerBarn})
	}
	if err := sc.Err(); err != nil {
		return nil, apperrors.NewInvalidDataError("reading points: %v", err)
	}
	if len(pts) == 0 {
		return nil, apperrors.NewInvalidDataError("no data points")
	}
	return pts, nil
}
