// Package file implements the filesystem-backed storage ports: the
// per-document directory layout and the status record store.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hardwick-labs/paperbase/internal/core/domain"
	"github.com/hardwick-labs/paperbase/internal/core/ports/driven"
)

// Ensure StatusStore implements the interface.
var _ driven.StatusStore = (*StatusStore)(nil)

// metaFilename is the status record file inside a document directory.
const metaFilename = "meta.json"

// StatusStore persists one meta.json per document directory. Every
// update rewrites the whole file atomically (temp file + rename), so a
// concurrent reader sees either the previous or the new snapshot, never
// a torn one.
type StatusStore struct {
	root string
}

// NewStatusStore creates a status store over the documents root
// directory (the same root the Library manages).
func NewStatusStore(root string) *StatusStore {
	return &StatusStore{root: root}
}

func (s *StatusStore) path(slug string) string {
	return filepath.Join(s.root, slug, metaFilename)
}

// Create writes the initial record for a new document. Fails if a
// record already exists for the slug.
func (s *StatusStore) Create(_ context.Context, rec domain.StatusRecord) error {
	if rec.Slug == "" {
		return fmt.Errorf("%w: empty slug", domain.ErrInvalidInput)
	}
	if _, err := os.Stat(s.path(rec.Slug)); err == nil {
		return fmt.Errorf("status record for %q: %w", rec.Slug, domain.ErrAlreadyExists)
	}
	return s.write(rec)
}

// Read returns the current record for slug.
func (s *StatusStore) Read(_ context.Context, slug string) (*domain.StatusRecord, error) {
	data, err := os.ReadFile(s.path(slug))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("status record for %q: %w", slug, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading status record: %w", err)
	}

	var rec domain.StatusRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding status record: %w", err)
	}
	return &rec, nil
}

// Update applies mutate under read-merge-write semantics. The record is
// re-read, mutated in place and rewritten whole, so fields set by
// earlier stages survive. A status change that is not a permitted
// transition is rejected before anything is written.
func (s *StatusStore) Update(ctx context.Context, slug string, mutate func(*domain.StatusRecord)) error {
	rec, err := s.Read(ctx, slug)
	if err != nil {
		return err
	}

	previous := rec.Status
	mutate(rec)
	rec.Slug = slug

	if !previous.CanTransitionTo(rec.Status) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, previous, rec.Status)
	}
	return s.write(*rec)
}

// write replaces the record file atomically.
func (s *StatusStore) write(rec domain.StatusRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding status record: %w", err)
	}

	path := s.path(rec.Slug)
	tmp, err := os.CreateTemp(filepath.Dir(path), metaFilename+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp record: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing temp record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp record: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing record: %w", err)
	}
	return nil
}
