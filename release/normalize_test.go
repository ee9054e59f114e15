package release

import "testing"

func TestTokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"scene dots", "Hades.II-TENOKE", []string{"hades", "ii", "tenoke"}},
		{"accents fold", "Amélie's Café", []string{"amelies", "cafe"}},
		{"ligatures", "Ragnarøk Sæga", []string{"ragnarok", "saega"}},
		{"brackets and colon", "Divinity: Original Sin (GOTY) [v1]", []string{"divinity", "original", "sin", "goty", "v1"}},
		{"ampersand", "His & Hers", []string{"his", "and", "hers"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokens(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d tokens %v, want %d", len(got), got, len(tt.want))
			}
			for _, tok := range tt.want {
				if _, ok := got[tok]; !ok {
					t.Errorf("missing token %q in %v", tok, got)
				}
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name      string
		title     string
		candidate string
		min, max  float64
	}{
		{"exact scene name", "Hades II", "Hades.II-TENOKE", 1.0, 1.0},
		{"edition tokens ignored", "Cyberpunk 2077", "Cyberpunk.2077.Ultimate.Edition-RUNE", 1.0, 1.0},
		{"unrelated", "Hollow Knight Silksong", "Tomb.Raider-CODEX", 0.0, 0.0},
		{"partial", "The Witcher 3 Wild Hunt", "Witcher.3-GOG", 0.4, 0.7},
		{"empty candidate", "Hades II", "", 0.0, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.title, tt.candidate)
			if got < tt.min || got > tt.max {
				t.Errorf("Similarity(%q, %q) = %v, want in [%v, %v]", tt.title, tt.candidate, got, tt.min, tt.max)
			}
		})
	}
}

func TestNumeralGuard(t *testing.T) {
	tests := []struct {
		name      string
		title     string
		candidate string
		want      bool
	}{
		{"same numeral", "Dragon Quest II", "Dragon.Quest.II.Definitive.Edition-GROUP", true},
		{"wrong sequel", "Dragon Quest II", "Dragon.Quest.III.Remake-GROUP", false},
		{"numeral missing", "Dragon Quest II", "Dragon.Quest-GROUP", false},
		{"unnumbered title", "Stardew Valley", "Stardew.Valley.v1.6-GOG", true},
		{"version marker is not a numeral", "Hades II", "Hades.II.v1.0-TENOKE", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NumeralGuard(tt.title, tt.candidate); got != tt.want {
				t.Errorf("NumeralGuard(%q, %q) = %v, want %v", tt.title, tt.candidate, got, tt.want)
			}
		})
	}
}
