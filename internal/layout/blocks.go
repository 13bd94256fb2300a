package layout

import "strings"

// Block is one renderable unit of a résumé page, consumed in order by the PDF builder.
type Block interface {
	block()
}

// Paragraph is a run of text in a named style.
type Paragraph struct {
	Style string
	Text  string
}

// SectionHeader is a section title followed by a horizontal rule.
type SectionHeader struct {
	Title string
}

// HeaderTable is the two-column heading of an education or experience entry:
// a bold title and a meta line on the left, right-aligned lines on the right.
type HeaderTable struct {
	Title string
	Meta  string
	Right []string
}

// SkillLine renders "Category: item, item" with the category in the Skills style.
type SkillLine struct {
	Category string
	Items    []string
}

// Bullet is a single bulleted line in the Body style.
type Bullet struct {
	Text string
}

// Spacer is vertical whitespace, in points.
type Spacer struct {
	Height float64
}

func (Paragraph) block()     {}
func (SectionHeader) block() {}
func (HeaderTable) block()   {}
func (SkillLine) block()     {}
func (Bullet) block()        {}
func (Spacer) block()        {}

// ItemsText joins the skill items with ", ".
func (s SkillLine) ItemsText() string {
	return strings.Join(s.Items, ", ")
}

// Text flattens the blocks into newline separated text, mostly for logs and tests.
func Text(blocks []Block) string {
	var b strings.Builder
	for _, blk := range blocks {
		switch v := blk.(type) {
		case Paragraph:
			b.WriteString(v.Text)
		case SectionHeader:
			b.WriteString(v.Title)
		case HeaderTable:
			b.WriteString(v.Title)
			b.WriteString(" / ")
			b.WriteString(v.Meta)
			b.WriteString(" / ")
			b.WriteString(strings.Join(v.Right, " / "))
		case SkillLine:
			b.WriteString(v.Category)
			b.WriteString(": ")
			b.WriteString(v.ItemsText())
		case Bullet:
			b.WriteString("- ")
			b.WriteString(v.Text)
		case Spacer:
			continue
		}
		b.WriteByte('\n')
	}
	return b.String()
}
