package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hardwick-labs/paperbase/internal/core/domain"
	"github.com/hardwick-labs/paperbase/internal/core/ports/driven"
)

// Ensure Library implements the interface.
var _ driven.Library = (*Library)(nil)

// Filenames inside a document directory.
const (
	documentFilename = "document.pdf"
	storeFilename    = "chunks.db"
	fulltextFilename = "fulltext.txt"
	manifestFilename = "images.json"
	imageDirname     = "img"
)

// Library lays documents out as one directory per slug under a root:
//
//	<root>/<slug>/document.pdf
//	<root>/<slug>/meta.json
//	<root>/<slug>/fulltext.txt
//	<root>/<slug>/chunks.db
//	<root>/<slug>/img/fig1-....png
//	<root>/<slug>/images.json
type Library struct {
	root string
}

// NewLibrary creates a library rooted at dir, creating it if needed.
func NewLibrary(dir string) (*Library, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating library root: %w", err)
	}
	return &Library{root: dir}, nil
}

// Root returns the library root directory.
func (l *Library) Root() string {
	return l.root
}

// Add stores a new source document under a unique slug derived from
// originalName. On slug collision a numeric suffix is appended; a new
// document therefore never reuses an existing directory, which is what
// rules out two concurrent ingestions of the same slug.
func (l *Library) Add(_ context.Context, originalName string, content io.Reader) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	slug := domain.Slugify(stem)
	if slug == "" {
		slug = "document"
	}

	base := slug
	for n := 1; l.Exists(slug); n++ {
		slug = fmt.Sprintf("%s-%d", base, n)
	}

	dir := filepath.Join(l.root, slug)
	if err := os.MkdirAll(filepath.Join(dir, imageDirname), 0o700); err != nil {
		return "", fmt.Errorf("creating document directory: %w", err)
	}

	f, err := os.Create(l.DocumentPath(slug))
	if err != nil {
		return "", fmt.Errorf("creating document file: %w", err)
	}
	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		return "", fmt.Errorf("writing document file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing document file: %w", err)
	}
	return slug, nil
}

// Exists reports whether a document directory exists for slug.
func (l *Library) Exists(slug string) bool {
	info, err := os.Stat(filepath.Join(l.root, slug))
	return err == nil && info.IsDir()
}

// List returns the slugs of all stored documents, sorted.
func (l *Library) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, fmt.Errorf("reading library root: %w", err)
	}

	var slugs []string
	for _, entry := range entries {
		if entry.IsDir() {
			slugs = append(slugs, entry.Name())
		}
	}
	sort.Strings(slugs)
	return slugs, nil
}

// DocumentPath returns the path of the stored source file.
func (l *Library) DocumentPath(slug string) string {
	return filepath.Join(l.root, slug, documentFilename)
}

// StorePath returns the path of the document's vector store.
func (l *Library) StorePath(slug string) string {
	return filepath.Join(l.root, slug, storeFilename)
}

// WriteFulltext stores the page-marked plain text companion.
func (l *Library) WriteFulltext(slug string, text string) error {
	path := filepath.Join(l.root, slug, fulltextFilename)
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		return fmt.Errorf("writing fulltext: %w", err)
	}
	return nil
}

// SaveImage stores an extracted figure under the img/ directory.
func (l *Library) SaveImage(slug string, filename string, data []byte) error {
	dir := filepath.Join(l.root, slug, imageDirname)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating image directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0o600); err != nil {
		return fmt.Errorf("writing image: %w", err)
	}
	return nil
}

// WriteManifest stores the figure manifest next to the images.
func (l *Library) WriteManifest(slug string, images []domain.ImageRecord) error {
	if images == nil {
		images = []domain.ImageRecord{}
	}
	data, err := json.MarshalIndent(images, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding image manifest: %w", err)
	}
	path := filepath.Join(l.root, slug, manifestFilename)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing image manifest: %w", err)
	}
	return nil
}
