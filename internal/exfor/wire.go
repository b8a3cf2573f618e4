package exfor

import (
	"encoding/json"
	"strconv"

	"github.com/agbru/macscalc/internal/xsection"
)

// Section is one entry of the e4list response.
type Section struct {
	Target    string `json:"Targ"`
	Z         int    `json:"ZT"`
	A         int    `json:"AT"`
	NSUB      int    `json:"NSUB"`
	MT        int    `json:"MT"`
	MF        int    `json:"MF"`
	R         string `json:"R"`
	RC        string `json:"RC"`
	EvalID    int    `json:"EvalID"`
	SectID    int    `json:"SectID"`
	PenSectID int    `json:"PenSectID"`
	LibID     int    `json:"LibID"`
	LibName   string `json:"LibName"`
	Date      string `json:"DATE"`
	Auth      string `json:"AUTH"`
}

type listResponse struct {
	Format   string    `json:"format"`
	Now      string    `json:"now"`
	Program  string    `json:"program"`
	Req      int       `json:"req"`
	Sections []Section `json:"sections"`
}

type sigPoint struct {
	E   float64 `json:"E"`
	Sig float64 `json:"Sig"`
}

type sigDataset struct {
	ID            flexString `json:"id"`
	File          string     `json:"FILE"`
	DataType      string     `json:"dataType"`
	Library       string     `json:"LIBRARY"`
	Target        string     `json:"TARGET"`
	Temp          float64    `json:"TEMP"`
	NSUB          int        `json:"NSUB"`
	MAT           int        `json:"MAT"`
	MF            int        `json:"MF"`
	MT            int        `json:"MT"`
	Reaction      string     `json:"REACTION"`
	Columns       []string   `json:"COLUMNS"`
	Interpolation string     `json:"defaultInterpolation"`
	NPts          int        `json:"nPts"`
	Pts           []sigPoint `json:"pts"`
}

type sigResponse struct {
	Format   string       `json:"format"`
	Now      string       `json:"now"`
	Program  string       `json:"program"`
	Datasets []sigDataset `json:"datasets"`
}

// flexString accepts both JSON strings and numbers.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// toDataset converts a wire dataset to keV and millibarns.
func (d sigDataset) toDataset(origin string) *Dataset {
	pts := make([]xsection.EnergyPoint, len(d.Pts))
	for i, p := range d.Pts {
		pts[i] = xsection.EnergyPoint{
			EnergyKeV:      p.E * KeVPerEV,
			CrossSectionMb: p.Sig * MbPerBarn,
		}
	}
	return &Dataset{
		ID:            string(d.ID),
		Library:       d.Library,
		Target:        d.Target,
		Reaction:      d.Reaction,
		MAT:           d.MAT,
		MF:            d.MF,
		MT:            d.MT,
		TemperatureK:  d.Temp,
		Interpolation: d.Interpolation,
		Origin:        origin,
		Points:        pts,
	}
}

func libraryNames(sections []Section) []string {
	seen := make(map[string]bool, len(sections))
	var names []string
	for _, s := range sections {
		if !seen[s.LibName] {
			seen[s.LibName] = true
			names = append(names, s.LibName)
		}
	}
	return names
}

func sectionKey(q Query) string {
	return q.Target + "|" + q.Reaction + "|" + DefaultQuantity
}

func itoa(i int) string { return strconv.Itoa(i) }
