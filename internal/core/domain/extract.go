package domain

import (
	"strconv"
	"strings"
)

// Span is a run of text rendered with a single font size.
type Span struct {
	// Text is the span content, possibly with surrounding whitespace.
	Text string

	// FontSize is the rendered size in points.
	FontSize float64
}

// Block is one layout block of a page, made up of spans.
type Block struct {
	Spans []Span
}

// Text joins the block's trimmed spans with single spaces.
// Whitespace-only spans are dropped. The result is trimmed and may be
// empty for blocks without extractable text.
func (b Block) Text() string {
	parts := make([]string, 0, len(b.Spans))
	for _, s := range b.Spans {
		t := strings.TrimSpace(s.Text)
		if t == "" {
			continue
		}
		parts = append(parts, t)
	}
	return strings.Join(parts, " ")
}

// HasFontAbove reports whether any non-empty span exceeds the given
// font size. Used to classify heading blocks.
func (b Block) HasFontAbove(size float64) bool {
	for _, s := range b.Spans {
		if strings.TrimSpace(s.Text) == "" {
			continue
		}
		if s.FontSize > size {
			return true
		}
	}
	return false
}

// Page is one extracted source page.
type Page struct {
	// Number is 1-based.
	Number int

	Blocks []Block
}

// ImageBlob is a raw image pulled out of a source document, before
// description and naming.
type ImageBlob struct {
	// Page is the 1-based page the image appeared on.
	Page int

	// Ext is the image format extension without dot, e.g. "png".
	Ext string

	Data []byte
}

// ExtractedDocument is the full output of text extraction for one
// source file.
type ExtractedDocument struct {
	// Title is the document title from source metadata; may be empty.
	Title string

	Pages  []Page
	Images []ImageBlob
}

// Fulltext renders all pages with "--- PAGE N ---" markers, the plain
// text companion written next to the vector store.
func (d *ExtractedDocument) Fulltext() string {
	var sb strings.Builder
	for i, page := range d.Pages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString("--- PAGE ")
		sb.WriteString(strconv.Itoa(page.Number))
		sb.WriteString(" ---\n")
		for _, block := range page.Blocks {
			if t := block.Text(); t != "" {
				sb.WriteString(t)
				sb.WriteString("\n")
			}
		}
	}
	return sb.String()
}
