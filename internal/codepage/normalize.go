// internal/codepage/normalize.go
package codepage

import "strings"

// Variation selectors only pick text or emoji presentation of the
// previous character and are dropped wherever they appear.
var variationSelectors = []string{"\uFE0F", "\uFE0E"}

// glyphs maps decorative characters that no single-byte code page carries
// to ASCII stand-ins.
var glyphs = []struct {
	from string
	to   string
}{
	// box drawing
	{"─═━", "="},
	{"│║┃", "|"},
	{"┌┐└┘├┤┬┴┼╔╗╚╝╠╣╦╩╬┏┓┗┛", "+"},
	// bullets
	{"•●∙◦", "*"},
	{"▪▫■□", "-"},
	// checks and crosses
	{"✓✔", "OK"},
	{"✅", "[OK]"},
	{"✗✘", "X"},
	{"❌", "[X]"},
	// pictographs
	{"🧪", "[TEST]"},
	{"✨", "*"},
	{"🎉", "!"},
	{"⚠", "!"},
	{"🔧", "[CONFIG]"},
	{"📄", "[DOC]"},
	// typography
	{"“”„«»", `"`},
	{"‘’‚", "'"},
	{"…", "..."},
	{"—–", "-"},
	// arrows
	{"→⇒➜➔", "->"},
	{"←⇐", "<-"},
	{"↑", "^"},
	{"↓", "v"},
}

var normalizer = buildNormalizer()

func buildNormalizer() *strings.Replacer {
	var withSelector, bare []string
	for _, g := range glyphs {
		for _, r := range g.from {
			for _, vs := range variationSelectors {
				withSelector = append(withSelector, string(r)+vs, g.to)
			}
			bare = append(bare, string(r), g.to)
		}
	}
	for _, vs := range variationSelectors {
		bare = append(bare, vs, "")
	}
	// Replacer tries old strings in argument order at each position, so
	// the glyph+selector pairs must come before the bare glyphs.
	return strings.NewReplacer(append(withSelector, bare...)...)
}

// Normalize rewrites decorative glyphs into printable ASCII stand-ins.
// Characters without a mapping are left alone. Every replacement is
// plain ASCII, so Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	return normalizer.Replace(text)
}
