package codepage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "box drawing", in: "═══ ║ ┌┐", want: "=== | ++"},
		{name: "bullets", in: "• uno ▪ dos", want: "* uno - dos"},
		{name: "checks", in: "✓ ok ✅ ✗ ❌", want: "OK ok [OK] X [X]"},
		{name: "warning with variation selector", in: "⚠️ cuidado", want: "! cuidado"},
		{name: "bare warning", in: "⚠ cuidado", want: "! cuidado"},
		{name: "selector after printable character", in: "©\uFE0F 5€", want: "© 5€"},
		{name: "text presentation selector", in: "✓\uFE0E ©\uFE0E", want: "OK ©"},
		{name: "lone selectors", in: "\uFE0Fa\uFE0Eb\uFE0F", want: "ab"},
		{name: "pictographs", in: "🧪🔧📄🎉✨", want: "[TEST][CONFIG][DOC]!*"},
		{name: "quotes", in: "“hola” ‘x’ «y»", want: `"hola" 'x' "y"`},
		{name: "dashes and ellipsis", in: "a—b–c…", want: "a-b-c..."},
		{name: "arrows", in: "→ ⇒ ← ↑ ↓", want: "-> -> <- ^ v"},
		{name: "unmapped passes through", in: "Año café 5€ 漢", want: "Año café 5€ 漢"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"═══ TICKET ═══\n• Café ✓\n⚠️ “Total” → 5€…",
		"plain ascii",
		"✅✅❌🧪",
		"️ lone selector",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}
