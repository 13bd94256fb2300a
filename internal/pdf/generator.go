package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"time"
	"unicode"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"

	"github.com/sheasmith19/ezapp/internal/layout"
	"github.com/sheasmith19/ezapp/internal/resume"
)

// ErrRenderFailure means the layout step could not produce a PDF.
var ErrRenderFailure = errors.New("render failure")

const (
	pointsPerInch = 72.0
	pageWidth     = 8.5 * pointsPerInch
	pageHeight    = 11 * pointsPerInch

	dateColumnWidth = 1.25 * pointsPerInch
	bulletIndent    = 12.0
	bulletFont      = "Helvetica"
	bulletSize      = 10.0
	tableBottomPad  = 2.0
)

// foldedRunes covers letters that have no decomposition to a WinAnsi base letter.
var foldedRunes = map[rune]string{
	'Ł': "L", 'ł': "l",
	'Đ': "D", 'đ': "d",
	'Ħ': "H", 'ħ': "h",
	'Ŧ': "T", 'ŧ': "t",
	'Ŋ': "N", 'ŋ': "n",
	'ı': "i", 'ĸ': "k",
	'‐': "-", '‑': "-", '−': "-",
}

// replacementGlyph stands in for characters the core fonts cannot draw.
const replacementGlyph = '?'

// documentDate is stamped into every PDF so identical input yields identical bytes.
var documentDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// ContentArea returns the usable width and height of a US Letter page, in points.
func ContentArea(m resume.Margins) (width, height float64) {
	return pageWidth - (m.Left+m.Right)*pointsPerInch, pageHeight - (m.Top+m.Bottom)*pointsPerInch
}

// Output is a rendered document plus the characters that had to be substituted.
type Output struct {
	PDF         []byte
	Substituted []rune
}

// Generate lays the blocks out on US Letter pages with the given margins and returns the PDF bytes.
func Generate(blocks []layout.Block, margins resume.Margins) ([]byte, error) {
	out, err := Render(blocks, margins)
	if err != nil {
		return nil, err
	}
	return out.PDF, nil
}

// Render is Generate that also reports text the core fonts could not draw as written.
// Such characters are folded to their base letter when one exists, otherwise replaced with '?'.
func Render(blocks []layout.Block, margins resume.Margins) (Output, error) {
	if err := margins.Validate(); err != nil {
		return Output{}, err
	}

	doc := newDocument(margins)
	doc.AddPage()

	width, height := ContentArea(margins)
	g := &generator{
		doc:    doc,
		left:   margins.Left * pointsPerInch,
		width:  width,
		height: height,
	}
	for _, b := range blocks {
		if g.err != nil || doc.Err() {
			break
		}
		g.block(b)
	}
	return g.finish()
}

// newDocument returns an empty US Letter document with deterministic metadata.
func newDocument(margins resume.Margins) *fpdf.Fpdf {
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetCatalogSort(true)
	doc.SetCreationDate(documentDate)
	doc.SetModificationDate(documentDate)
	doc.SetCreator("ezapp", false)
	doc.SetCellMargin(0)
	doc.SetMargins(margins.Left*pointsPerInch, margins.Top*pointsPerInch, margins.Right*pointsPerInch)
	doc.SetAutoPageBreak(true, margins.Bottom*pointsPerInch)
	return doc
}

func (g *generator) finish() (Output, error) {
	if g.err != nil {
		return Output{}, g.err
	}
	if g.doc.Err() {
		return Output{}, fmt.Errorf("%w: %v", ErrRenderFailure, g.doc.Error())
	}

	var buf bytes.Buffer
	if err := g.doc.Output(&buf); err != nil {
		return Output{}, fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}
	return Output{PDF: buf.Bytes(), Substituted: g.substituted}, nil
}

type generator struct {
	doc         *fpdf.Fpdf
	left        float64
	width       float64
	height      float64
	substituted []rune
	seen        map[rune]bool
	err         error
}

func (g *generator) block(b layout.Block) {
	switch v := b.(type) {
	case layout.Paragraph:
		style, ok := layout.Style(v.Style)
		if !ok {
			g.err = fmt.Errorf("%w: unknown style %q", ErrRenderFailure, v.Style)
			return
		}
		g.paragraph(style, v.Text)
	case layout.SectionHeader:
		g.sectionHeader(v)
	case layout.HeaderTable:
		g.headerTable(v)
	case layout.SkillLine:
		g.skillLine(v)
	case layout.Bullet:
		g.bullet(v)
	case layout.Spacer:
		g.doc.Ln(v.Height)
	default:
		g.err = fmt.Errorf("%w: unsupported block %T", ErrRenderFailure, b)
	}
}

// encode converts UTF-8 text to the WinAnsi code page used by the core fonts.
func (g *generator) encode(text string) []byte {
	out := make([]byte, 0, len(text))
	for _, r := range text {
		if b, ok := winAnsi(r); ok {
			out = append(out, b)
			continue
		}
		g.substitute(r)
		out = append(out, fold(r)...)
	}
	return out
}

func (g *generator) substitute(r rune) {
	if g.seen == nil {
		g.seen = map[rune]bool{}
	}
	if !g.seen[r] {
		g.seen[r] = true
		g.substituted = append(g.substituted, r)
	}
}

func winAnsi(r rune) (byte, bool) {
	if r < 0x80 {
		return byte(r), true
	}
	return charmap.Windows1252.EncodeRune(r)
}

// fold maps r to WinAnsi bytes by dropping diacritics, or to the replacement glyph.
func fold(r rune) []byte {
	if s, ok := foldedRunes[r]; ok {
		return []byte(s)
	}
	var out []byte
	for _, d := range norm.NFKD.String(string(r)) {
		if unicode.Is(unicode.Mn, d) {
			continue
		}
		b, ok := winAnsi(d)
		if !ok {
			return []byte{replacementGlyph}
		}
		out = append(out, b)
	}
	if len(out) == 0 {
		return []byte{replacementGlyph}
	}
	return out
}

func (g *generator) useStyle(s layout.TextStyle) {
	g.doc.SetFont(s.Family, s.FontStyle, s.Size)
	g.doc.SetTextColor(s.Color.R, s.Color.G, s.Color.B)
}

// lines wraps text to width using the current font. Empty text yields one empty line.
func (g *generator) lines(text string, width float64) []string {
	encoded := g.encode(text)
	split := g.doc.SplitLines(encoded, width)
	if len(split) == 0 {
		return []string{""}
	}
	out := make([]string, len(split))
	for i, l := range split {
		out[i] = string(l)
	}
	return out
}

// ensureSpace starts a new page when height points do not fit above the bottom margin.
func (g *generator) ensureSpace(height float64) {
	_, pageH := g.doc.GetPageSize()
	_, _, _, bottom := g.doc.GetMargins()
	if g.doc.GetY()+height > pageH-bottom {
		g.doc.AddPage()
	}
}

func alignOf(s layout.TextStyle) string {
	if s.Align == layout.AlignRight {
		return "R"
	}
	return "L"
}

func (g *generator) paragraph(s layout.TextStyle, text string) {
	if s.SpaceBefore > 0 {
		g.doc.Ln(s.SpaceBefore)
	}
	g.useStyle(s)
	for _, line := range g.lines(text, g.width) {
		g.doc.SetX(g.left)
		g.doc.CellFormat(g.width, s.Leading, line, "", 1, alignOf(s), false, 0, "")
	}
	if s.SpaceAfter > 0 {
		g.doc.Ln(s.SpaceAfter)
	}
}

func (g *generator) sectionHeader(h layout.SectionHeader) {
	s := layout.MustStyle(layout.StyleSectionHeader)
	rule := layout.SectionRule()
	g.ensureSpace(s.SpaceBefore + s.Leading + s.SpaceAfter + rule.Thickness)
	g.paragraph(s, h.Title)

	y := g.doc.GetY()
	g.doc.SetDrawColor(rule.Color.R, rule.Color.G, rule.Color.B)
	g.doc.SetLineWidth(rule.Thickness)
	g.doc.Line(g.left, y, g.left+g.width, y)
	g.doc.Ln(rule.Thickness)
}

func (g *generator) headerTable(t layout.HeaderTable) {
	title := layout.MustStyle(layout.StyleJobTitle)
	meta := layout.MustStyle(layout.StyleJobMeta)
	date := layout.MustStyle(layout.StyleDateLocation)
	leftWidth := g.width - dateColumnWidth

	g.useStyle(title)
	titleLines := g.lines(t.Title, leftWidth)
	g.useStyle(meta)
	metaLines := g.lines(t.Meta, leftWidth)
	g.useStyle(date)
	var rightLines []string
	for _, r := range t.Right {
		rightLines = append(rightLines, g.lines(r, dateColumnWidth)...)
	}
	if g.err != nil {
		return
	}

	leftHeight := float64(len(titleLines))*title.Leading + float64(len(metaLines))*meta.Leading + meta.SpaceAfter
	rightHeight := float64(len(rightLines)) * date.Leading
	rowHeight := max(leftHeight, rightHeight) + tableBottomPad
	if rowHeight > g.height {
		// Taller than a page: the columns cannot share a top edge, so stack them.
		g.flow(title, titleLines, leftWidth, "L")
		g.flow(meta, metaLines, leftWidth, "L")
		g.flow(date, rightLines, g.width, "R")
		g.doc.Ln(meta.SpaceAfter + tableBottomPad)
		return
	}
	g.ensureSpace(rowHeight)

	top := g.doc.GetY()
	g.doc.SetXY(g.left, top)
	g.useStyle(title)
	for _, line := range titleLines {
		g.doc.CellFormat(leftWidth, title.Leading, line, "", 2, "L", false, 0, "")
	}
	g.useStyle(meta)
	for _, line := range metaLines {
		g.doc.CellFormat(leftWidth, meta.Leading, line, "", 2, "L", false, 0, "")
	}

	g.doc.SetXY(g.left+leftWidth, top)
	g.useStyle(date)
	for _, line := range rightLines {
		g.doc.CellFormat(dateColumnWidth, date.Leading, line, "", 2, "R", false, 0, "")
	}

	g.doc.SetXY(g.left, top+rowHeight)
}

// flow writes pre-wrapped lines one per row, letting the page break between them.
func (g *generator) flow(s layout.TextStyle, lines []string, width float64, align string) {
	g.useStyle(s)
	for _, line := range lines {
		g.doc.SetX(g.left)
		g.doc.CellFormat(width, s.Leading, line, "", 1, align, false, 0, "")
	}
}

func (g *generator) skillLine(l layout.SkillLine) {
	body := layout.MustStyle(layout.StyleBody)
	skills := layout.MustStyle(layout.StyleSkills)
	category := g.encode(l.Category)
	items := g.encode(l.ItemsText())
	if g.err != nil {
		return
	}

	g.ensureSpace(body.Leading)
	g.doc.SetX(g.left)
	if len(category) > 0 {
		g.useStyle(skills)
		g.doc.Write(body.Leading, string(category)+":")
		if len(items) > 0 {
			g.useStyle(body)
			g.doc.Write(body.Leading, " ")
		}
	}
	if len(items) > 0 {
		g.useStyle(body)
		g.doc.Write(body.Leading, string(items))
	}
	g.doc.Ln(body.Leading)
}

func (g *generator) bullet(b layout.Bullet) {
	body := layout.MustStyle(layout.StyleBody)
	textWidth := g.width - bulletIndent

	g.useStyle(body)
	lines := g.lines(b.Text, textWidth)
	if g.err != nil {
		return
	}
	g.ensureSpace(body.Leading)

	g.doc.SetX(g.left)
	g.doc.SetFont(bulletFont, "", bulletSize)
	g.doc.SetTextColor(body.Color.R, body.Color.G, body.Color.B)
	g.doc.CellFormat(bulletIndent, body.Leading, "\x95", "", 0, "L", false, 0, "")

	g.useStyle(body)
	for _, line := range lines {
		g.doc.SetX(g.left + bulletIndent)
		g.doc.CellFormat(textWidth, body.Leading, line, "", 1, "L", false, 0, "")
	}
}
