// internal/codepage/encoder.go
package codepage

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Result is the outcome of encoding text for one profile
type Result struct {
	Bytes []byte
	// Profile is the code page Bytes are expressed in. It equals
	// Requested unless the text had to be transliterated to ASCII.
	Profile   Profile
	Requested Profile
	Degraded  bool
}

var transliterations = strings.NewReplacer(
	"€", "EUR",
	"£", "GBP",
	"¿", "?",
	"¡", "!",
	"ñ", "n",
	"Ñ", "N",
	"ç", "c",
	"Ç", "C",
	"°", "o",
	"º", "o",
	"ª", "a",
	"ß", "ss",
	"æ", "ae",
	"Æ", "AE",
	"ø", "o",
	"Ø", "O",
)

// Encode normalizes text and encodes it with profile's charmap. When the
// charmap cannot represent some rune, the whole text is transliterated to
// 7-bit ASCII instead and the result is marked Degraded. Encode never
// fails: the worst case is '?' in place of a character.
func Encode(text string, profile Profile) Result {
	normalized := Normalize(text)

	if profile.charmap != nil {
		out, err := profile.charmap.NewEncoder().Bytes([]byte(normalized))
		if err == nil {
			return Result{Bytes: out, Profile: profile, Requested: profile}
		}
	} else if isASCII(normalized) {
		return Result{Bytes: []byte(normalized), Profile: ASCII, Requested: profile}
	}

	return Result{
		Bytes:     []byte(Transliterate(normalized)),
		Profile:   ASCII,
		Requested: profile,
		Degraded:  true,
	}
}

// Transliterate reduces text to 7-bit ASCII
func Transliterate(text string) string {
	text = transliterations.Replace(text)

	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(stripMarks, text); err == nil {
		text = stripped
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('?')
	}
	return b.String()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
