package escpos

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"thermal-print-service/internal/codepage"
)

func concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

var trailer = []byte{0x0A, 0x0A, 0x1B, 0x64, 0x03, 0x1D, 0x56, 0x41, 0x03}

func TestBuild_Framing(t *testing.T) {
	out := NewBuilder().Build([]byte("hola"), codepage.CP858, BuildOptions{})

	want := concat(
		[]byte{0x1B, 0x40},
		[]byte{0x1B, 0x74, 19},
		[]byte("hola\n"),
		trailer,
	)
	assert.Equal(t, want, out)
}

func TestBuild_Title(t *testing.T) {
	out := NewBuilder().Build([]byte("x"), codepage.ISO885915, BuildOptions{Title: []byte("=== TICKET ===")})

	want := concat(
		[]byte{0x1B, 0x40},
		[]byte{0x1B, 0x74, 40},
		[]byte{0x1B, 0x61, 0x01, 0x1B, 0x45, 0x01},
		[]byte("=== TICKET ===\n"),
		[]byte{0x1B, 0x45, 0x00, 0x1B, 0x61, 0x00, 0x0A},
		[]byte("x\n"),
		trailer,
	)
	assert.Equal(t, want, out)
}

func TestBuild_Markers(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []byte
	}{
		{
			name: "bold",
			line: "[BOLD]TOTAL[/BOLD]",
			want: concat([]byte{0x1B, 0x45, 0x01}, []byte("TOTAL"), []byte{0x1B, 0x45, 0x00, 0x0A}),
		},
		{
			name: "large",
			line: "[LARGE]42[/LARGE]",
			want: concat([]byte{0x1D, 0x21, 0x11}, []byte("42"), []byte{0x1D, 0x21, 0x00, 0x0A}),
		},
		{
			name: "bold and large",
			line: "[BOLD][LARGE]A[/LARGE][/BOLD]",
			want: concat([]byte{0x1B, 0x45, 0x01, 0x1D, 0x21, 0x11}, []byte("A"), []byte{0x1D, 0x21, 0x00, 0x1B, 0x45, 0x00, 0x0A}),
		},
		{
			name: "close without open prints plain",
			line: "x[/BOLD]y",
			want: []byte("xy\n"),
		},
		{
			name: "unclosed open still bolds the line",
			line: "[BOLD]abc",
			want: concat([]byte{0x1B, 0x45, 0x01}, []byte("abc"), []byte{0x1B, 0x45, 0x00, 0x0A}),
		},
		{
			name: "whitespace only",
			line: "   \t",
			want: []byte{0x0A},
		},
		{
			name: "markers only",
			line: "[BOLD][/BOLD]",
			want: []byte{0x0A},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := NewBuilder().Build([]byte(tt.line), codepage.CP858, BuildOptions{})
			body := out[5 : len(out)-len(trailer)]
			assert.Equal(t, tt.want, body)
		})
	}
}

func TestBuild_NoMarkerReachesOutput(t *testing.T) {
	body := []byte("[BO[BOLD]LD]x\n[LAR[/LARGE]GE]y[/LA[LARGE]RGE]\r\n[/BOLD]")
	out := NewBuilder().Build(body, codepage.CP858, BuildOptions{})

	for _, marker := range []string{"[BOLD]", "[/BOLD]", "[LARGE]", "[/LARGE]"} {
		assert.NotContains(t, string(out), marker)
	}
}

func TestBuild_LinesAndCRLF(t *testing.T) {
	out := NewBuilder().Build([]byte("a\r\n\r\nb\n"), codepage.CP850, BuildOptions{})

	assert.Equal(t, []byte{0x1B, 0x74, 0x02}, out[2:5])
	assert.Equal(t, []byte("a\n\nb\n"), out[5:len(out)-len(trailer)])
	assert.True(t, bytes.HasSuffix(out, trailer))
}

func TestBuild_EncodedBytesPassThrough(t *testing.T) {
	enc := codepage.Encode("[BOLD]5€[/BOLD]", codepage.ISO885915)
	out := NewBuilder().Build(enc.Bytes, enc.Profile, BuildOptions{})

	assert.Contains(t, string(out), string([]byte{0x1B, 0x45, 0x01, '5', 0xA4, 0x1B, 0x45, 0x00}))
}
