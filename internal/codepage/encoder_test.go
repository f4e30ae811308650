package codepage

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		profile      Profile
		want         []byte
		wantDegraded bool
		wantProfile  Profile
	}{
		{
			name:        "ISO-8859-15 euro",
			text:        "5€",
			profile:     ISO885915,
			want:        []byte{'5', 0xA4},
			wantProfile: ISO885915,
		},
		{
			name:        "CP858 euro and accents",
			text:        "é€",
			profile:     CP858,
			want:        []byte{0x82, 0xD5},
			wantProfile: CP858,
		},
		{
			name:        "Windows-1252 euro",
			text:        "€",
			profile:     Windows1252,
			want:        []byte{0x80},
			wantProfile: Windows1252,
		},
		{
			name:        "CP850 without euro keeps accents",
			text:        "Olé",
			profile:     CP850,
			want:        []byte{'O', 'l', 0x82},
			wantProfile: CP850,
		},
		{
			name:         "CP850 euro degrades",
			text:         "Precio: 5€",
			profile:      CP850,
			want:         []byte("Precio: 5EUR"),
			wantDegraded: true,
			wantProfile:  ASCII,
		},
		{
			name:         "degraded output strips diacritics",
			text:         "¿Año café? ¡Sí! 20° 5€",
			profile:      CP850,
			want:         []byte("?Ano cafe? !Si! 20o 5EUR"),
			wantDegraded: true,
			wantProfile:  ASCII,
		},
		{
			name:         "unrepresentable script becomes question marks",
			text:         "a漢b",
			profile:      CP858,
			want:         []byte("a?b"),
			wantDegraded: true,
			wantProfile:  ASCII,
		},
		{
			name:        "normalized before encoding",
			text:        "✓ “ok”",
			profile:     CP858,
			want:        []byte(`OK "ok"`),
			wantProfile: CP858,
		},
		{
			name:        "variation selector does not degrade",
			text:        "©\uFE0F 5€ café",
			profile:     CP858,
			want:        []byte{0xB8, ' ', '5', 0xD5, ' ', 'c', 'a', 'f', 0x82},
			wantProfile: CP858,
		},
		{
			name:        "ASCII profile with ASCII text",
			text:        "hello",
			profile:     ASCII,
			want:        []byte("hello"),
			wantProfile: ASCII,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Encode(tt.text, tt.profile)
			assert.Equal(t, tt.want, res.Bytes)
			assert.Equal(t, tt.wantDegraded, res.Degraded)
			assert.Equal(t, tt.wantProfile.Name, res.Profile.Name)
			assert.Equal(t, tt.profile.Name, res.Requested.Name)
		})
	}
}

func TestEncode_NeverFails(t *testing.T) {
	inputs := []string{
		"",
		"\xff\xfe invalid utf-8",
		strings.Repeat("🧾", 100),
		"mixed ∑ ∫ ≈ ☃ 日本",
		"\x00\x1b@ control bytes",
	}
	for _, profile := range append(DefaultProfiles(), ASCII) {
		for _, in := range inputs {
			res := Encode(in, profile)
			if res.Degraded {
				for _, b := range res.Bytes {
					require.Less(t, b, byte(utf8.RuneSelf), "degraded output must be 7-bit for %q", in)
				}
			}
			assert.Equal(t, res.Bytes, Encode(in, profile).Bytes, "deterministic for %q", in)
		}
	}
}

func TestTransliterate(t *testing.T) {
	assert.Equal(t, "Canon 5EUR - n N c C", Transliterate("Cañón 5€ - ñ Ñ ç Ç"))
	assert.Equal(t, "aeiou AEIOU", Transliterate("áéíóú ÁÉÍÓÚ"))
	assert.Equal(t, "?", Transliterate("☃"))
}

func TestLookup(t *testing.T) {
	p, err := Lookup("cp1252")
	require.NoError(t, err)
	assert.Equal(t, Windows1252.Name, p.Name)

	p, err = Lookup(" latin9 ")
	require.NoError(t, err)
	assert.Equal(t, byte(40), p.SelectByte)

	_, err = Lookup("EBCDIC")
	assert.Error(t, err)

	profiles, err := LookupAll([]string{"CP858", "CP850"})
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "CP850", profiles[1].Name)
}

func TestDefaultProfiles_Order(t *testing.T) {
	names := []string{}
	for _, p := range DefaultProfiles() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"CP858", "WINDOWS-1252", "ISO-8859-15", "CP850"}, names)
}
