// internal/driver/escpos/command.go
package escpos

// ESC_POS_COMMANDS holds the ESC/POS sequences used to frame a ticket
var ESC_POS_COMMANDS = struct {
	INITIALIZE []byte

	TEXT_BOLD_ON  []byte
	TEXT_BOLD_OFF []byte

	TEXT_SIZE_NORMAL      []byte
	TEXT_SIZE_DOUBLE_BOTH []byte

	ALIGN_LEFT   []byte
	ALIGN_CENTER []byte

	SELECT_CODE_PAGE []byte // + code page number

	LINE_FEED  []byte
	FEED_LINES []byte // + line count

	CUT_PARTIAL_FEED []byte // + feed units
}{
	INITIALIZE: []byte{0x1B, 0x40}, // ESC @

	TEXT_BOLD_ON:  []byte{0x1B, 0x45, 0x01}, // ESC E 1
	TEXT_BOLD_OFF: []byte{0x1B, 0x45, 0x00}, // ESC E 0

	TEXT_SIZE_NORMAL:      []byte{0x1D, 0x21, 0x00}, // GS ! 0
	TEXT_SIZE_DOUBLE_BOTH: []byte{0x1D, 0x21, 0x11}, // GS ! 17, double width and height

	ALIGN_LEFT:   []byte{0x1B, 0x61, 0x00}, // ESC a 0
	ALIGN_CENTER: []byte{0x1B, 0x61, 0x01}, // ESC a 1

	SELECT_CODE_PAGE: []byte{0x1B, 0x74}, // ESC t n

	LINE_FEED:  []byte{0x0A},       // LF
	FEED_LINES: []byte{0x1B, 0x64}, // ESC d n

	CUT_PARTIAL_FEED: []byte{0x1D, 0x56, 0x41}, // GS V A n
}

const (
	trailerFeedLines = 3
	trailerCutFeed   = 3
)

// SelectCodePage returns ESC t n
func SelectCodePage(n byte) []byte {
	return withArg(ESC_POS_COMMANDS.SELECT_CODE_PAGE, n)
}

// FeedLines returns ESC d n
func FeedLines(n byte) []byte {
	return withArg(ESC_POS_COMMANDS.FEED_LINES, n)
}

// CutPartial returns GS V A n: feed n units then partial cut
func CutPartial(feed byte) []byte {
	return withArg(ESC_POS_COMMANDS.CUT_PARTIAL_FEED, feed)
}

func withArg(cmd []byte, arg byte) []byte {
	out := make([]byte, 0, len(cmd)+1)
	out = append(out, cmd...)
	return append(out, arg)
}
