// Package fitz extracts page-annotated text and images from PDF (and
// other MuPDF-supported) documents.
package fitz

import (
	"context"
	"fmt"
	"strings"

	gofitz "github.com/gen2brain/go-fitz"

	"github.com/hardwick-labs/paperbase/internal/core/domain"
	"github.com/hardwick-labs/paperbase/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.DocumentExtractor = (*Extractor)(nil)

// Extractor reads documents through MuPDF. Each page is rendered to
// structured HTML, which carries per-span font sizes and embedded
// images, and then parsed back into layout blocks. Rendering the same
// bytes always yields the same blocks, which segmentation depends on.
type Extractor struct{}

// NewExtractor creates a MuPDF-backed extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path. A document with no extractable text
// is returned with empty pages, not an error.
func (e *Extractor) Extract(ctx context.Context, path string) (*domain.ExtractedDocument, error) {
	doc, err := gofitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening document: %w", err)
	}
	defer doc.Close()

	extracted := &domain.ExtractedDocument{
		Title: strings.TrimSpace(doc.Metadata()["title"]),
	}

	for n := 0; n < doc.NumPage(); n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		markup, err := doc.HTML(n, false)
		if err != nil {
			return nil, fmt.Errorf("rendering page %d: %w", n+1, err)
		}
		page, images, err := parsePage(n+1, markup)
		if err != nil {
			return nil, fmt.Errorf("parsing page %d: %w", n+1, err)
		}
		extracted.Pages = append(extracted.Pages, page)
		extracted.Images = append(extracted.Images, images...)
	}
	return extracted, nil
}
