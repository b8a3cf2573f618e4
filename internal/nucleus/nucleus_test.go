package nucleus

import (
	"errors"
	"testing"

	apperrors "github.com/agbru/macscalc/internal/errors"
)

func TestParse(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want Nucleus
	}{
		{"Mo-94", Nucleus{Symbol: "Mo", Z: 42, MassNumber: 94}},
		{"mo-94", Nucleus{Symbol: "Mo", Z: 42, MassNumber: 94}},
		{"  MO-94 ", Nucleus{Symbol: "Mo", Z: 42, MassNumber: 94}},
		{"U-235", Nucleus{Symbol: "U", Z: 92, MassNumber: 235}},
		{"Lu-177m", Nucleus{Symbol: "Lu", Z: 71, MassNumber: 177, Metastable: true}},
		{"H-1", Nucleus{Symbol: "H", Z: 1, MassNumber: 1}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"", "Mo", "Mo94", "-94", "Mo-", "Xx-94", "Mo-abc", "Mo-0", "Mo-10", "Mo-1000", "Mo-94x"} {
		in := in
		t.Run(in, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(in)
			var inputErr apperrors.InvalidInputError
			if !errors.As(err, &inputErr) {
				t.Errorf("Parse(%q): expected InvalidInputError, got %v", in, err)
			}
		})
	}
}

func TestString_RoundTrip(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"Mo-94", "Lu-177m", "Au-197"} {
		n, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if got := n.String(); got != in {
			t.Errorf("String() = %q, want %q", got, in)
		}
	}
	n, _ := Parse("fe-56")
	if n.String() != "Fe-56" {
		t.Errorf("String() = %q, want Fe-56", n.String())
	}
	if n.Mass() != 56 {
		t.Errorf("Mass() = %g, want 56", n.Mass())
	}
}
