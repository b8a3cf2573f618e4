package nucleus

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/agbru/macscalc/internal/errors"
)

// MaxMassNumber bounds the accepted mass number.
const MaxMassNumber = 300

// elements lists the element symbols in order of atomic number, starting at Z=1.
var elements = []string{
	"H", "He", "Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar", "K", "Ca",
	"Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr", "Rb", "Sr", "Y", "Zr",
	"Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd", "In", "Sn",
	"Sb", "Te", "I", "Xe", "Cs", "Ba", "La", "Ce", "Pr", "Nd",
	"Pm", "Sm", "Eu", "Gd", "Tb", "Dy", "Ho", "Er", "Tm", "Yb",
	"Lu", "Hf", "Ta", "W", "Re", "Os", "Ir", "Pt", "Au", "Hg",
	"Tl", "Pb", "Bi", "Po", "At", "Rn", "Fr", "Ra", "Ac", "Th",
	"Pa", "U", "Np", "Pu", "Am", "Cm", "Bk", "Cf", "Es", "Fm",
	"Md", "No", "Lr", "Rf", "Db", "Sg", "Bh", "Hs", "Mt", "Ds",
	"Rg", "Cn", "Nh", "Fl", "Mc", "Lv", "Ts", "Og",
}

var atomicNumbers = func() map[string]int {
	m := make(map[string]int, len(elements))
	for i, s := range elements {
		m[s] = i + 1
	}
	return m
}()

// Nucleus identifies a target nuclide.
type Nucleus struct {
	Symbol     string
	Z          int
	MassNumber int
	Metastable bool
}

// Parse reads a target identifier of the form "Sym-A" such as "Mo-94",
// "u-235" or "Lu-177m". The element symbol is case-insensitive and is
// normalised to its conventional capitalisation.
func Parse(s string) (Nucleus, error) {
	raw := strings.TrimSpace(s)
	sym, mass, ok := strings.Cut(raw, "-")
	if !ok || sym == "" || mass == "" {
		return Nucleus{}, apperrors.NewInvalidInputError("target", "%q is not of the form Symbol-A (e.g. Mo-94)", s)
	}

	symbol := normaliseSymbol(sym)
	z, known := atomicNumbers[symbol]
	if !known {
		return Nucleus{}, apperrors.NewInvalidInputError("target", "unknown element symbol %q", sym)
	}

	n := Nucleus{Symbol: symbol, Z: z}
	if strings.HasSuffix(mass, "m") || strings.HasSuffix(mass, "M") {
		n.Metastable = true
		mass = mass[:len(mass)-1]
	}
	a, err := strconv.Atoi(mass)
	if err != nil || a < z || a > MaxMassNumber {
		return Nucleus{}, apperrors.NewInvalidInputError("target", "mass number in %q must be an integer between Z=%d and %d", s, z, MaxMassNumber)
	}
	n.MassNumber = a
	return n, nil
}

// String renders the canonical form used in EXFOR queries, e.g. "Mo-94".
func (n Nucleus) String() string {
	if n.Metastable {
		return fmt.Sprintf("%s-%dm", n.Symbol, n.MassNumber)
	}
	return fmt.Sprintf("%s-%d", n.Symbol, n.MassNumber)
}

// Mass returns the mass number as used by the reduced-mass correction.
func (n Nucleus) Mass() float64 { return float64(n.MassNumber) }

func normaliseSymbol(s string) string {
	s = strings.ToLower(s)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
