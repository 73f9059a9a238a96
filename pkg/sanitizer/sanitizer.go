package sanitizer

import (
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func trimSpace(s string) string {
	return strings.TrimSpace(s)
}

func upper(s string) string {
	return strings.ToUpper(s)
}

func lower(s string) string {
	return strings.ToLower(s)
}

func collapseWhitespace(s string) string {
	var b strings.Builder
	lastWasSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				b.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			b.WriteRune(r)
			lastWasSpace = false
		}
	}
	return b.String()
}

// NormalizeCouponCode produces the canonical stored form of a coupon code:
// trimmed, upper-cased. Lookup and storage both go through this.
func NormalizeCouponCode(code string) string {
	p := Pipeline{trimSpace, upper}
	return p.Apply(code)
}

// NormalizeName collapses internal whitespace and trims. Accents and
// punctuation are preserved.
func NormalizeName(name string) string {
	p := Pipeline{trimSpace, collapseWhitespace}
	return p.Apply(name)
}

// NormalizeEmail trims and lower-cases. Format validation is the
// validator's job, not ours.
func NormalizeEmail(email string) string {
	p := Pipeline{trimSpace, lower}
	return p.Apply(email)
}

// NormalizeGuideNote collapses whitespace in free-form vendor-facing notes.
func NormalizeGuideNote(note string) string {
	p := Pipeline{trimSpace, collapseWhitespace}
	return p.Apply(note)
}
