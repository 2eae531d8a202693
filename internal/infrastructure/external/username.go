package external

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Username deriva un nombre de usuario ASCII a partir del nombre completo:
// "José Peña Álvarez" → "jose.pena.alvarez". Si no queda nada usa la parte local del email.
func Username(fullName, email string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(fullName)))
	if err != nil {
		folded = strings.ToLower(fullName)
	}

	var b strings.Builder
	lastDot := true
	for _, r := range folded {
		switch {
		case r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			lastDot = false
		case !lastDot:
			b.WriteByte('.')
			lastDot = true
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		if i := strings.IndexByte(email, '@'); i > 0 {
			return strings.ToLower(email[:i])
		}
		return strings.ToLower(email)
	}
	return out
}
