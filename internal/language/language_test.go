package language

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		bcp47 string
		iso2  string
	}{
		{"en-US", "en-US", "en"},
		{"en-us", "en-US", "en"},
		{"pt_BR", "pt-BR", "pt"},
		{" de ", "de", "de"},
		{"fr-CA", "fr-CA", "fr"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tag, err := Normalize(tt.input)
			if err != nil {
				t.Fatalf("Normalize(%q): %v", tt.input, err)
			}
			if tag.BCP47 != tt.bcp47 {
				t.Fatalf("BCP47 = %q, want %q", tag.BCP47, tt.bcp47)
			}
			if tag.ISO2 != tt.iso2 {
				t.Fatalf("ISO2 = %q, want %q", tag.ISO2, tt.iso2)
			}
		})
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "   ", "not a language!"} {
		if _, err := Normalize(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestToISO2(t *testing.T) {
	if got := ToISO2("es-MX"); got != "es" {
		t.Fatalf("ToISO2(es-MX) = %q", got)
	}
	if got := ToISO2("???"); got != "" {
		t.Fatalf("expected empty ISO2 for garbage, got %q", got)
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName(""); got != "Unknown" {
		t.Fatalf("DisplayName(\"\") = %q", got)
	}
	if got := DisplayName("de"); got != "German" {
		t.Fatalf("DisplayName(de) = %q", got)
	}
	if got := DisplayName("???"); got != "???" {
		t.Fatalf("DisplayName(???) = %q", got)
	}
}
