// Package escpos renders receipt text into the thermal printer's binary
// command stream.
//
// Everything in this package is pure: the same input always produces the
// same bytes. I/O belongs to the printer transports.
package escpos

import "bytes"

// Command prefix bytes. Input text must never be allowed to carry these
// (see sanitizeRune), or payload bytes would be interpreted as commands.
const (
	esc byte = 0x1b
	gs  byte = 0x1d
)

// Fixed command sequences.
var (
	Init = []byte{esc, '@'} // ESC @  initialize printer

	AlignLeft   = []byte{esc, 'a', 0x00} // ESC a 0
	AlignCenter = []byte{esc, 'a', 0x01} // ESC a 1
	AlignRight  = []byte{esc, 'a', 0x02} // ESC a 2

	BoldOn  = []byte{esc, 'E', 0x01} // ESC E 1
	BoldOff = []byte{esc, 'E', 0x00} // ESC E 0

	CutFull    = []byte{gs, 'V', 0x00} // GS V 0
	CutPartial = []byte{gs, 'V', 0x01} // GS V 1
)

// Feed returns the command to feed n blank lines. n is clamped to 0..255 to
// fit the single payload byte.
func Feed(n int) []byte {
	if n < 0 {
		n = 0
	}
	if n > 255 {
		n = 255
	}
	return []byte{esc, 'd', byte(n)}
}

// Document accumulates an ESC/POS command stream.
type Document struct {
	buf bytes.Buffer
}

// Raw appends a command sequence verbatim.
func (d *Document) Raw(cmd []byte) {
	d.buf.Write(cmd)
}

// Line appends one "print text line" command: the sanitized, device-encoded
// payload followed by LF.
func (d *Document) Line(s string) {
	d.buf.Write(EncodeLine(s))
	d.buf.WriteByte('\n')
}

// BlankLine appends an empty print-line command.
func (d *Document) BlankLine() {
	d.buf.WriteByte('\n')
}

// Bytes returns the accumulated command stream.
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

// EncodeLine converts a text line to the device encoding (CP437). The policy
// is total over every possible rune: printable ASCII passes through, a small
// set of common non-ASCII characters maps to its CP437 code point, and
// everything else — including all control bytes, which could otherwise
// collide with the ESC/GS command prefixes — becomes '?'.
func EncodeLine(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		out = append(out, sanitizeRune(r))
	}
	return out
}

func sanitizeRune(r rune) byte {
	if r >= 0x20 && r <= 0x7e {
		return byte(r)
	}
	if b, ok := cp437[r]; ok {
		return b
	}
	return '?'
}

// cp437 maps the non-ASCII characters we care to print to their IBM code
// page 437 bytes. Anything absent here is substituted, never passed raw.
var cp437 = map[rune]byte{
	'Ç': 0x80, 'ü': 0x81, 'é': 0x82, 'â': 0x83, 'ä': 0x84, 'à': 0x85,
	'å': 0x86, 'ç': 0x87, 'ê': 0x88, 'ë': 0x89, 'è': 0x8a, 'ï': 0x8b,
	'î': 0x8c, 'ì': 0x8d, 'Ä': 0x8e, 'Å': 0x8f, 'É': 0x90, 'æ': 0x91,
	'Æ': 0x92, 'ô': 0x93, 'ö': 0x94, 'ò': 0x95, 'û': 0x96, 'ù': 0x97,
	'ÿ': 0x98, 'Ö': 0x99, 'Ü': 0x9a, '¢': 0x9b, '£': 0x9c, '¥': 0x9d,
	'á': 0xa0, 'í': 0xa1, 'ó': 0xa2, 'ú': 0xa3, 'ñ': 0xa4, 'Ñ': 0xa5,
	'¿': 0xa8, '¡': 0xad, '°': 0xf8, '·': 0xfa,
}
