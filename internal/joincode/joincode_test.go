package joincode

import (
	"math/rand"
	"regexp"
	"testing"
)

var codePattern = regexp.MustCompile(`^[A-Z]{3}\d{2}-[A-Z0-9]{3}$`)

func TestGenerator_Generate(t *testing.T) {
	tests := []struct {
		name       string
		courseName string
		year       string
		wantPrefix string
	}{
		{
			name:       "bachelor of science",
			courseName: "BSc Computer Science",
			year:       "2025",
			wantPrefix: "BSC25-",
		},
		{
			name:       "whitespace stripped",
			courseName: "  B I T ",
			year:       "2024",
			wantPrefix: "BIT24-",
		},
		{
			name:       "digits in name skipped",
			courseName: "101 Data Structures",
			year:       "2026",
			wantPrefix: "DAT26-",
		},
		{
			name:       "short name padded",
			courseName: "AI",
			year:       "2025",
			wantPrefix: "AIX25-",
		},
		{
			name:       "accented letters skipped",
			courseName: "Ökonomie",
			year:       "2025",
			wantPrefix: "KON25-",
		},
		{
			name:       "non-latin name padded",
			courseName: "数学",
			year:       "2025",
			wantPrefix: "XXX25-",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(rand.NewSource(1))
			code := g.Generate(tt.courseName, tt.year)
			if !codePattern.MatchString(code) {
				t.Errorf("Generate() = %q, want match for %s", code, codePattern)
			}
			if got := code[:len(tt.wantPrefix)]; got != tt.wantPrefix {
				t.Errorf("Generate() prefix = %q, want %q", got, tt.wantPrefix)
			}
		})
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	a := NewGenerator(rand.NewSource(42)).Generate("BSc Computer Science", "2025")
	b := NewGenerator(rand.NewSource(42)).Generate("BSc Computer Science", "2025")
	if a != b {
		t.Errorf("same seed produced %q and %q", a, b)
	}

	c := NewGenerator(rand.NewSource(43)).Generate("BSc Computer Science", "2025")
	if a == c {
		t.Errorf("different seeds produced identical code %q", a)
	}
}
