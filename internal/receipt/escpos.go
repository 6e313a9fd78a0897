package receipt

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"westernpos/m/internal/money"
)

// ESC/POS command bytes
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

const (
	AlignLeft   = 0
	AlignCenter = 1
	AlignRight  = 2
)

const (
	FontNormal = 0x00
	FontDouble = 0x11
)

// Document builds an ESC/POS byte stream. Widths are in characters: 32 for
// 58mm paper, 48 for 80mm.
type Document struct {
	buf   bytes.Buffer
	width int
}

func NewDocument(width int) *Document {
	if width <= 0 {
		width = 32
	}
	d := &Document{width: width}
	d.buf.Write([]byte{ESC, '@'})
	return d
}

func (d *Document) FeedLines(n int) *Document {
	for i := 0; i < n; i++ {
		d.buf.WriteByte(LF)
	}
	return d
}

func (d *Document) SetAlign(align int) *Document {
	d.buf.Write([]byte{ESC, 'a', byte(align)})
	return d
}

func (d *Document) SetBold(on bool) *Document {
	b := byte(0)
	if on {
		b = 1
	}
	d.buf.Write([]byte{ESC, 'E', b})
	return d
}

func (d *Document) SetFontSize(size byte) *Document {
	d.buf.Write([]byte{GS, '!', size})
	return d
}

func (d *Document) Text(s string) *Document {
	d.buf.WriteString(printable(s))
	d.buf.WriteByte(LF)
	return d
}

func (d *Document) Separator(char byte) *Document {
	d.buf.WriteString(strings.Repeat(string(char), d.width))
	d.buf.WriteByte(LF)
	return d
}

// KeyValue prints key on the left and value flush right.
func (d *Document) KeyValue(key, value string) *Document {
	return d.row(key, value)
}

// ItemLine prints "2x Panadol" with the line total flush right.
func (d *Document) ItemLine(qty int64, name, total string) *Document {
	return d.row(fmt.Sprintf("%dx %s", qty, name), total)
}

func (d *Document) row(left, right string) *Document {
	left, right = printable(left), printable(right)
	// Widths count runes so the currency sign takes one column.
	spaces := d.width - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if spaces < 1 {
		spaces = 1
	}
	d.buf.WriteString(left)
	d.buf.WriteString(strings.Repeat(" ", spaces))
	d.buf.WriteString(right)
	d.buf.WriteByte(LF)
	return d
}

func (d *Document) PartialCut() *Document {
	d.buf.Write([]byte{GS, 'V', 0x01})
	return d
}

func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

// Thermal printers run a single-byte code page with no naira sign.
var printerText = strings.NewReplacer(money.Symbol, "N")

func printable(s string) string {
	return printerText.Replace(s)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
