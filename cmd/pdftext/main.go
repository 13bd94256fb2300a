package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/sheasmith19/ezapp/internal/pdf"
	"github.com/sheasmith19/ezapp/internal/storage"
)

// pageSeparator sits between pages in the extracted text.
const pageSeparator = "\f\n"

func main() {
	var (
		inPath   = flag.String("in", "", "PDF to read (required)")
		textPath = flag.String("text", "", "write the extracted text here instead of stdout")
		outPath  = flag.String("out", "", "rebuild a plain-text PDF from the extracted pages")
	)
	flag.Parse()

	in := strings.TrimSpace(*inPath)
	if in == "" {
		log.Fatal("missing required flag: --in")
	}

	pages, err := extract(in)
	if err != nil {
		log.Fatalf("extract %s: %v", in, err)
	}

	if p := strings.TrimSpace(*textPath); p != "" {
		if err := storage.WriteFileAtomic(p, []byte(joinPages(pages))); err != nil {
			log.Fatalf("write text: %v", err)
		}
	} else if err := writeText(os.Stdout, pages); err != nil {
		log.Fatalf("write text: %v", err)
	}

	if out := strings.TrimSpace(*outPath); out != "" {
		if err := rebuild(pages, out); err != nil {
			log.Fatalf("rebuild %s: %v", out, err)
		}
		fmt.Fprintf(os.Stderr, "rebuilt %d page(s) -> %s\n", len(pages), out)
	}
}

func extract(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return pdf.ExtractPages(bytes.NewReader(data), int64(len(data)))
}

func joinPages(pages []string) string {
	return strings.Join(pages, pageSeparator)
}

func writeText(w io.Writer, pages []string) error {
	_, err := io.WriteString(w, joinPages(pages)+"\n")
	return err
}

func rebuild(pages []string, out string) error {
	rendered, err := pdf.RebuildPages(pages)
	if err != nil {
		return err
	}
	if len(rendered.Substituted) > 0 {
		log.Printf("warning: substituted characters the PDF fonts cannot draw: %s", string(rendered.Substituted))
	}
	return storage.WriteFileAtomic(out, rendered.PDF)
}
