package dedup

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"simple binomial", "Mentha spicata", "mentha spicata"},
		{"author citation", "Mentha spicata L.", "mentha spicata"},
		{"abbreviated author", "Lavandula angustifolia Mill.", "lavandula angustifolia"},
		{"compound author", "Thymus serpyllum C.A.Mey.", "thymus serpyllum"},
		{"parenthesized author", "Salvia rosmarinus (Spenn.) Schleid.", "salvia rosmarinus"},
		{"variety suffix", "Mentha spicata var. crispa", "mentha spicata"},
		{"subspecies suffix", "Origanum vulgare subsp. hirtum", "origanum vulgare"},
		{"ssp suffix", "Origanum vulgare ssp. hirtum", "origanum vulgare"},
		{"cultivar suffix", "Ocimum basilicum cv. Genovese", "ocimum basilicum"},
		{"forma suffix", "Mentha aquatica f. citrata", "mentha aquatica"},
		{"mixed case", "MENTHA Spicata", "mentha spicata"},
		{"extra spaces", "  Mentha   spicata  ", "mentha spicata"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Mentha spicata L.",
		"Origanum vulgare subsp. hirtum",
		"Salvia rosmarinus (Spenn.) Schleid.",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"identical", "Mentha spicata", "Mentha spicata", true},
		{"case differs", "Mentha spicata", "mentha SPICATA", true},
		{"author citation differs", "Mentha spicata L.", "Mentha spicata", true},
		{"variety vs plain", "Mentha spicata var. crispa", "Mentha spicata", true},
		{"extra epithet", "Mentha spicata crispa", "Mentha spicata", true},
		{"different species", "Mentha spicata", "Mentha piperita", false},
		{"different genus", "Mentha spicata", "Ocimum spicata", false},
		{"empty left", "", "Mentha spicata", false},
		{"empty right", "Mentha spicata", "", false},
		{"both empty", "", "", false},
		{"single token vs binomial", "Mentha", "Mentha spicata", false},
		{"matching single tokens", "Mentha", "Mentha", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.a, tt.b); got != tt.want {
				t.Errorf("Matches(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
