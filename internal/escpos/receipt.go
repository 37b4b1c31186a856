package escpos

import "strings"

// CutType selects how the receipt is separated from the roll.
type CutType string

const (
	CutTypeFull    CutType = "full"
	CutTypePartial CutType = "partial"
	CutTypeNone    CutType = "none"
)

// Profile describes the attached printer's geometry and cut behavior.
type Profile struct {
	CharsPerLine       int
	FeedLinesBeforeCut int
	Cut                CutType
}

// DefaultProfile matches the 58mm printers this agent was built around.
func DefaultProfile() Profile {
	return Profile{
		CharsPerLine:       30,
		FeedLinesBeforeCut: 4,
		Cut:                CutTypeFull,
	}
}

// Render produces the minimal framed document for one print: init, an
// optional ID header line, one print-line command per wrapped text line,
// feed, cut. Deterministic over (text, ideaID).
func Render(text, ideaID string, p Profile) []byte {
	var doc Document
	doc.Raw(Init)
	if ideaID != "" {
		doc.Line("ID: " + ideaID)
	}
	for _, line := range Wrap(text, p.CharsPerLine) {
		doc.Line(line)
	}
	doc.Raw(Feed(p.FeedLinesBeforeCut))
	appendCut(&doc, p.Cut)
	return doc.Bytes()
}

// Lightbulb header art. The narrow variant is used below 42 columns.
const headerArt = `     .-""-.
    /      \
   |  O  O  |
   |   __   |
    \ \__/ /
     '-..-'
       ||
      /__\`

const headerArtNarrow = `    .---.
   /     \
  | O   O |
  |  ___  |
   \_____/
     | |
    /___\`

// BuildReceipt produces the full receipt: centered lightbulb header, bold
// title, optional ID line, dividers around the wrapped idea text, footer,
// feed and cut.
//
// Deliberately deterministic: there is no timestamp or other hidden input in
// the body, so identical (ideaText, ideaID) always yields identical bytes.
func BuildReceipt(ideaText, ideaID string, p Profile) []byte {
	var doc Document
	doc.Raw(Init)

	doc.Raw(AlignCenter)
	art := headerArt
	if p.CharsPerLine < 42 {
		art = headerArtNarrow
	}
	for _, line := range strings.Split(art, "\n") {
		doc.Line(line)
	}
	doc.BlankLine()

	doc.Raw(BoldOn)
	doc.Line("NEW IDEA")
	doc.Raw(BoldOff)
	if ideaID != "" {
		doc.Line("ID: " + ideaID)
	}
	doc.BlankLine()

	doc.Raw(AlignLeft)
	doc.Line(strings.Repeat("=", p.CharsPerLine))
	for _, line := range Wrap(ideaText, p.CharsPerLine) {
		doc.Line(line)
	}
	doc.Line(strings.Repeat("=", p.CharsPerLine))

	doc.Raw(AlignCenter)
	doc.BlankLine()
	doc.Line("* * *")

	doc.Raw(Feed(p.FeedLinesBeforeCut))
	appendCut(&doc, p.Cut)
	return doc.Bytes()
}

// BuildTestReceipt renders a fixed verification receipt for printer setup.
func BuildTestReceipt(p Profile) []byte {
	return BuildReceipt(
		"This is a test print to verify your thermal printer is working correctly. "+
			"If you can read this message, the printer is configured properly!",
		"TEST-001",
		p,
	)
}

func appendCut(doc *Document, cut CutType) {
	switch cut {
	case CutTypeFull:
		doc.Raw(CutFull)
	case CutTypePartial:
		doc.Raw(CutPartial)
	}
}
