// internal/driver/escpos/builder.go
package escpos

import (
	"bytes"

	"thermal-print-service/internal/codepage"
)

var (
	markerBoldOpen   = []byte("[BOLD]")
	markerBoldClose  = []byte("[/BOLD]")
	markerLargeOpen  = []byte("[LARGE]")
	markerLargeClose = []byte("[/LARGE]")
)

// BuildOptions controls the optional parts of a ticket
type BuildOptions struct {
	// Title is printed centered and bold above the body. It must already
	// be encoded in the same profile as the body.
	Title []byte
}

// Builder renders encoded ticket text into a complete ESC/POS stream
type Builder struct{}

// NewBuilder creates a new builder
func NewBuilder() *Builder {
	return &Builder{}
}

// Build returns reset, code page selection, optional title, the body with
// inline markers expanded, and the feed-and-cut trailer. body must be
// encoded with profile; Build never inspects its characters beyond the
// ASCII marker tokens and line breaks.
func (b *Builder) Build(body []byte, profile codepage.Profile, opts BuildOptions) []byte {
	cmd := ESC_POS_COMMANDS
	var buf bytes.Buffer
	buf.Grow(len(body) + len(opts.Title) + 64)

	buf.Write(cmd.INITIALIZE)
	buf.Write(SelectCodePage(profile.SelectByte))

	if len(opts.Title) > 0 {
		buf.Write(cmd.ALIGN_CENTER)
		buf.Write(cmd.TEXT_BOLD_ON)
		buf.Write(opts.Title)
		buf.Write(cmd.LINE_FEED)
		buf.Write(cmd.TEXT_BOLD_OFF)
		buf.Write(cmd.ALIGN_LEFT)
		buf.Write(cmd.LINE_FEED)
	}

	for _, line := range splitLines(body) {
		b.writeLine(&buf, line)
	}

	buf.Write(cmd.LINE_FEED)
	buf.Write(cmd.LINE_FEED)
	buf.Write(FeedLines(trailerFeedLines))
	buf.Write(CutPartial(trailerCutFeed))

	return buf.Bytes()
}

func (b *Builder) writeLine(buf *bytes.Buffer, line []byte) {
	cmd := ESC_POS_COMMANDS

	bold := bytes.Contains(line, markerBoldOpen)
	large := bytes.Contains(line, markerLargeOpen)
	text := stripMarkers(line)

	if len(bytes.TrimSpace(text)) == 0 {
		buf.Write(cmd.LINE_FEED)
		return
	}

	if bold {
		buf.Write(cmd.TEXT_BOLD_ON)
	}
	if large {
		buf.Write(cmd.TEXT_SIZE_DOUBLE_BOTH)
	}
	buf.Write(text)
	if large {
		buf.Write(cmd.TEXT_SIZE_NORMAL)
	}
	if bold {
		buf.Write(cmd.TEXT_BOLD_OFF)
	}
	buf.Write(cmd.LINE_FEED)
}

// splitLines splits on LF, drops a trailing CR per line and ignores the
// empty remainder after a final newline.
func splitLines(body []byte) [][]byte {
	if len(body) == 0 {
		return nil
	}
	body = bytes.TrimSuffix(body, []byte("\n"))
	lines := bytes.Split(body, []byte("\n"))
	for i, line := range lines {
		lines[i] = bytes.TrimSuffix(line, []byte("\r"))
	}
	return lines
}

// stripMarkers removes marker tokens until none remain, so nested
// fragments such as "[BO[BOLD]LD]" cannot reassemble into a token.
func stripMarkers(line []byte) []byte {
	for {
		before := len(line)
		for _, m := range [][]byte{markerBoldOpen, markerBoldClose, markerLargeOpen, markerLargeClose} {
			line = bytes.ReplaceAll(line, m, nil)
		}
		if len(line) == before {
			return line
		}
	}
}
