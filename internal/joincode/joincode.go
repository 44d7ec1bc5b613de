// Package joincode produces the human-shareable codes students use to join a
// course server. Codes look like BSC25-ABC: a prefix derived from the course
// name and year plus a short random suffix. Codes are probabilistic, not
// guaranteed unique; callers re-check against storage before persisting.
package joincode

import (
	"math/rand"
	"strings"
	"time"
	"unicode"
)

const (
	prefixLen = 3
	suffixLen = 3
	base36    = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Generator creates join codes from an injected random source so tests can
// seed it deterministically.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator backed by the given source.
func NewGenerator(src rand.Source) *Generator {
	return &Generator{rng: rand.New(src)}
}

// NewDefaultGenerator creates a time-seeded generator for production use.
func NewDefaultGenerator() *Generator {
	return NewGenerator(rand.NewSource(time.Now().UnixNano()))
}

// Generate builds a code of the shape XXXYY-RRR where XXX are the first three
// A-Z letters of the course name uppercased (accented and non-Latin letters
// are skipped, keeping the code ASCII), YY are the last two characters of the
// year and RRR are three random base-36 characters uppercased.
func (g *Generator) Generate(name, year string) string {
	var b strings.Builder
	b.Grow(prefixLen + 2 + 1 + suffixLen)

	letters := 0
	for _, r := range name {
		if letters == prefixLen {
			break
		}
		r = unicode.ToUpper(r)
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
			letters++
		}
	}
	// Course names shorter than the prefix are padded so the code shape stays
	// stable for downstream pattern checks.
	for ; letters < prefixLen; letters++ {
		b.WriteByte('X')
	}

	if len(year) >= 2 {
		b.WriteString(year[len(year)-2:])
	} else {
		b.WriteString(year)
	}

	b.WriteByte('-')
	for i := 0; i < suffixLen; i++ {
		b.WriteByte(base36[g.rng.Intn(len(base36))])
	}

	return b.String()
}
