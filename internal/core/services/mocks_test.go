package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/hardwick-labs/paperbase/internal/core/domain"
)

// stubEmbedder is a deterministic in-process embedding service. Vectors
// come from the fixed map when the text is known, otherwise from a
// length-derived fill, so tests can pin exact neighbours where needed.
type stubEmbedder struct {
	dims    int
	fixed   map[string][]float32
	batches [][]string
	failOn  int // 1-based batch call that fails, 0 = never
	short   bool
}

func newStubEmbedder(dims int) *stubEmbedder {
	return &stubEmbedder{dims: dims, fixed: map[string][]float32{}}
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	s.batches = append(s.batches, texts)
	if s.failOn > 0 && len(s.batches) == s.failOn {
		return nil, errors.New("provider unavailable")
	}

	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		if v, ok := s.fixed[text]; ok {
			vectors = append(vectors, v)
			continue
		}
		v := make([]float32, s.dims)
		for i := range v {
			v[i] = float32(len(text))
		}
		vectors = append(vectors, v)
	}
	if s.short && len(vectors) > 0 {
		vectors = vectors[:len(vectors)-1]
	}
	return vectors, nil
}

func (s *stubEmbedder) Dimensions() int   { return s.dims }
func (s *stubEmbedder) ModelName() string { return "stub-embedder" }
func (s *stubEmbedder) Close() error      { return nil }

// stubExtractor returns a canned document or error for any path. The
// optional hook runs at the start of each Extract call, letting tests
// observe pipeline state while extraction is in flight.
type stubExtractor struct {
	doc       *domain.ExtractedDocument
	err       error
	onExtract func()
}

func (s *stubExtractor) Extract(context.Context, string) (*domain.ExtractedDocument, error) {
	if s.onExtract != nil {
		s.onExtract()
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.doc, nil
}

// stubDescriber answers with a fixed description, optionally failing on
// selected calls.
type stubDescriber struct {
	description string
	calls       int
	failOn      int // 1-based call that fails, 0 = never
}

func (s *stubDescriber) Describe(context.Context, []byte, string) (string, error) {
	s.calls++
	if s.failOn > 0 && s.calls == s.failOn {
		return "", errors.New("vision model error")
	}
	return s.description, nil
}

func (s *stubDescriber) Close() error { return nil }

// wordsBlock builds a single-span block of n distinct words at the
// given font size.
func wordsBlock(n int, fontSize float64) domain.Block {
	text := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			text += " "
		}
		text += fmt.Sprintf("w%d", i)
	}
	return domain.Block{Spans: []domain.Span{{Text: text, FontSize: fontSize}}}
}
