package pdf

import (
	"fmt"
	"io"
	"strings"

	pdfread "github.com/ledongthuc/pdf"

	"github.com/sheasmith19/ezapp/internal/resume"
)

const (
	plainFont    = "Helvetica"
	plainSize    = 11.0
	plainLeading = 13.2
)

// ExtractPages returns the plain text of every page in order. Pages without content yield "".
func ExtractPages(r io.ReaderAt, size int64) ([]string, error) {
	reader, err := pdfread.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// RebuildPages sets each page's text on its own Letter page in 11pt Helvetica,
// one input line per row, starting one inch from the top-left corner.
// A page whose text runs past the bottom margin continues on the next page.
func RebuildPages(pages []string) (Output, error) {
	inch := resume.Margins{Top: 1, Bottom: 1, Left: 1, Right: 1}
	width, height := ContentArea(inch)
	g := &generator{
		doc:    newDocument(inch),
		left:   pointsPerInch,
		width:  width,
		height: height,
	}
	if len(pages) == 0 {
		g.doc.AddPage()
	}
	for _, page := range pages {
		g.doc.AddPage()
		g.doc.SetFont(plainFont, "", plainSize)
		for _, line := range strings.Split(strings.ReplaceAll(page, "\r\n", "\n"), "\n") {
			g.doc.SetX(g.left)
			g.doc.CellFormat(g.width, plainLeading, string(g.encode(line)), "", 1, "L", false, 0, "")
		}
	}
	return g.finish()
}
