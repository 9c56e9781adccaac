package printer

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

const (
	esc = 0x1B
	gs  = 0x1D
	lf  = 0x0A
)

// Alignment values for ESC a
const (
	Left   byte = 0
	Center byte = 1
	Right  byte = 2
)

// Ticket builds an ESC/POS byte stream. Width is in characters:
// 32 for 58mm paper, 48 for 80mm.
type Ticket struct {
	buf   bytes.Buffer
	width int
}

// NewTicket starts a ticket and resets the printer state
func NewTicket(width int) *Ticket {
	if width <= 0 {
		width = 32
	}
	t := &Ticket{width: width}
	t.buf.Write([]byte{esc, '@'})
	return t
}

func (t *Ticket) Align(a byte) *Ticket {
	t.buf.Write([]byte{esc, 'a', a})
	return t
}

func (t *Ticket) Bold(on bool) *Ticket {
	var b byte
	if on {
		b = 1
	}
	t.buf.Write([]byte{esc, 'E', b})
	return t
}

// Large switches double width and height on or off
func (t *Ticket) Large(on bool) *Ticket {
	var size byte
	if on {
		size = 0x11
	}
	t.buf.Write([]byte{gs, '!', size})
	return t
}

func (t *Ticket) Line(s string) *Ticket {
	t.buf.WriteString(s)
	t.buf.WriteByte(lf)
	return t
}

func (t *Ticket) Rule() *Ticket {
	return t.Line(strings.Repeat("-", t.width))
}

// Columns prints left and right on one line, padded to the ticket width
func (t *Ticket) Columns(left, right string) *Ticket {
	gap := t.width - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if gap < 1 {
		gap = 1
	}
	return t.Line(left + strings.Repeat(" ", gap) + right)
}

func (t *Ticket) Feed(n int) *Ticket {
	for i := 0; i < n; i++ {
		t.buf.WriteByte(lf)
	}
	return t
}

// Cut feeds past the tear bar and performs a partial cut
func (t *Ticket) Cut() *Ticket {
	t.Feed(3)
	t.buf.Write([]byte{gs, 'V', 0x01})
	return t
}

func (t *Ticket) Bytes() []byte {
	return t.buf.Bytes()
}
