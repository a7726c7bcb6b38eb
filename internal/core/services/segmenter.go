package services

import (
	"strings"

	"github.com/hardwick-labs/paperbase/internal/core/domain"
)

// DefaultHeadingFontSize is the font size in points above which a span
// marks its block as a heading.
const DefaultHeadingFontSize = 14.0

// DefaultMinPassageWords is the minimum accumulated word count before a
// heading is allowed to close a passage.
const DefaultMinPassageWords = 50

// DefaultMaxPassageWords is the word count at which a passage is closed
// regardless of headings.
const DefaultMaxPassageWords = 400

// Segmenter turns extracted, page-annotated text blocks into an ordered
// sequence of bounded-length passages.
//
// The heuristic is intentionally simple and deterministic: identical
// input always yields identical passage boundaries, which retrieval
// reproducibility and the tests rely on.
type Segmenter struct {
	headingFontSize float64
	minWords        int
	maxWords        int
}

// SegmenterOption configures a Segmenter.
type SegmenterOption func(*Segmenter)

// WithHeadingFontSize sets the heading classification threshold in points.
func WithHeadingFontSize(size float64) SegmenterOption {
	return func(s *Segmenter) {
		if size > 0 {
			s.headingFontSize = size
		}
	}
}

// WithMinPassageWords sets the minimum words accumulated before a
// heading may close a passage.
func WithMinPassageWords(n int) SegmenterOption {
	return func(s *Segmenter) {
		if n > 0 {
			s.minWords = n
		}
	}
}

// WithMaxPassageWords sets the word count that forces a passage close.
func WithMaxPassageWords(n int) SegmenterOption {
	return func(s *Segmenter) {
		if n > 0 {
			s.maxWords = n
		}
	}
}

// NewSegmenter creates a segmenter with the given options.
func NewSegmenter(opts ...SegmenterOption) *Segmenter {
	s := &Segmenter{
		headingFontSize: DefaultHeadingFontSize,
		minWords:        DefaultMinPassageWords,
		maxWords:        DefaultMaxPassageWords,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Segment walks pages in order and closes passages on two triggers:
//
//   - Heading: a block containing a span larger than the heading font
//     size closes the accumulated text, provided more than minWords have
//     accumulated. The heading's own text starts the next passage.
//   - Length: accumulated text reaching maxWords (whitespace-delimited)
//     closes immediately; the next passage starts at the next block.
//
// Each passage records the page active when it started accumulating and
// the running non-empty block count at that moment. Blocks without
// extractable text are skipped entirely. Remaining text after the last
// block is flushed regardless of word count. Zero extractable blocks
// yield zero passages.
func (s *Segmenter) Segment(pages []domain.Page) []domain.Passage {
	var passages []domain.Passage

	var current strings.Builder
	currentPage := 1
	currentBlockIdx := 0
	blockCounter := 0

	cut := func(page, blockIdx int) {
		passages = append(passages, domain.Passage{
			Text:       strings.TrimSpace(current.String()),
			Page:       currentPage,
			BlockIndex: currentBlockIdx,
		})
		current.Reset()
		currentPage = page
		currentBlockIdx = blockIdx
	}

	for _, page := range pages {
		for _, block := range page.Blocks {
			text := block.Text()
			if text == "" {
				continue
			}
			blockCounter++

			if block.HasFontAbove(s.headingFontSize) &&
				strings.TrimSpace(current.String()) != "" &&
				wordCount(current.String()) > s.minWords {
				// Close before the heading; the heading text opens
				// the next passage at this block.
				cut(page.Number, blockCounter)
			}

			current.WriteString(text)
			current.WriteString("\n\n")

			if wordCount(current.String()) >= s.maxWords {
				cut(page.Number, blockCounter+1)
			}
		}
	}

	if strings.TrimSpace(current.String()) != "" {
		passages = append(passages, domain.Passage{
			Text:       strings.TrimSpace(current.String()),
			Page:       currentPage,
			BlockIndex: currentBlockIdx,
		})
	}

	return passages
}

// wordCount counts whitespace-delimited tokens.
func wordCount(text string) int {
	return len(strings.Fields(text))
}
