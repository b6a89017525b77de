package treatment

import "strings"

// SlideSeparator marks page boundaries in extracted deck text. Hyphens
// survive normalization, so the marker stays intact all the way into the
// vectorized corpus.
const SlideSeparator = "---slide---"

// Normalize lowercases deck text and reduces it to the corpus alphabet:
// a-z, digits, the accented vowels used in French deck names, hyphen and
// space. Every other rune becomes a space, runs of whitespace collapse to
// one space, and leading/trailing whitespace is dropped.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	pendingSpace := false
	for _, r := range strings.ToLower(text) {
		if !keepRune(r) {
			r = ' '
		}
		if r == ' ' {
			pendingSpace = b.Len() > 0
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func keepRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '-':
		return true
	}
	switch r {
	case 'à', 'â', 'é', 'è', 'ê', 'ô', 'ù', 'ç':
		return true
	}
	return false
}
