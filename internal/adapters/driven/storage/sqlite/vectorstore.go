// Package sqlite implements the vector store on a per-document SQLite
// database: a text table and a vector table sharing the same keys, plus
// a metadata row describing the index so mismatched reuse is detected.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/hardwick-labs/paperbase/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/hardwick-labs/paperbase/internal/core/domain"
	"github.com/hardwick-labs/paperbase/internal/core/ports/driven"
)

// Ensure the store implements the port.
var _ driven.VectorStore = (*Store)(nil)
var _ driven.VectorStoreOpener = (*Opener)(nil)

// MetricSquaredEuclidean is the only distance metric this build writes
// and searches with. It is recorded in index_meta when a store is
// created and verified whenever one is reopened.
const MetricSquaredEuclidean = "l2sq"

// formatVersion is the on-disk layout version recorded in index_meta.
const formatVersion = 1

// Opener creates or reopens per-document vector stores with a fixed
// embedding dimension.
type Opener struct {
	dimension int
}

// NewOpener creates an opener for stores of the given dimension.
func NewOpener(dimension int) *Opener {
	return &Opener{dimension: dimension}
}

// Open opens the store at path, creating tables if absent. Safe to call
// repeatedly on the same path. Reopening a store written with another
// dimension or metric fails with the corresponding domain error.
func (o *Opener) Open(path string) (driven.VectorStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, path: path, dimension: o.dimension}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	if err := s.checkMeta(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Store is one document's passage and vector persistence.
type Store struct {
	db        *sql.DB
	path      string
	dimension int
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// InsertBatch stores passages and their vectors in one transaction and
// returns the assigned identifiers in input order. The text row is
// written first so its generated id keys the vector row; committing
// both together makes an orphaned row impossible.
func (s *Store) InsertBatch(ctx context.Context, passages []domain.Passage, vectors [][]float32) ([]int64, error) {
	if len(passages) != len(vectors) {
		return nil, fmt.Errorf("%w: %d passages, %d vectors", domain.ErrInvalidInput, len(passages), len(vectors))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	insertText, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (text, page, block_idx) VALUES (?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("preparing text insert: %w", err)
	}
	defer insertText.Close()

	insertVector, err := tx.PrepareContext(ctx,
		`INSERT INTO chunk_vectors (chunk_id, embedding) VALUES (?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("preparing vector insert: %w", err)
	}
	defer insertVector.Close()

	ids := make([]int64, 0, len(passages))
	for i, passage := range passages {
		if len(vectors[i]) != s.dimension {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, store has %d",
				domain.ErrDimensionMismatch, i, len(vectors[i]), s.dimension)
		}
		res, err := insertText.ExecContext(ctx, passage.Text, passage.Page, passage.BlockIndex)
		if err != nil {
			return nil, fmt.Errorf("inserting passage %d: %w", i, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("reading passage %d id: %w", i, err)
		}
		if _, err := insertVector.ExecContext(ctx, id, encodeVector(vectors[i])); err != nil {
			return nil, fmt.Errorf("inserting vector %d: %w", i, err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return ids, nil
}

// Search scans all stored vectors, computes the squared Euclidean
// distance to query and returns the topK closest passages joined back
// to their text rows, ascending by distance.
func (s *Store) Search(ctx context.Context, query []float32, topK int) ([]domain.SearchHit, error) {
	if topK < 1 {
		return nil, fmt.Errorf("%w: topK must be positive, got %d", domain.ErrInvalidInput, topK)
	}
	if len(query) != s.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, store has %d",
			domain.ErrDimensionMismatch, len(query), s.dimension)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.text, c.page, c.block_idx, v.embedding
		FROM chunk_vectors v
		JOIN chunks c ON c.id = v.chunk_id
	`)
	if err != nil {
		return nil, fmt.Errorf("scanning vectors: %w", err)
	}
	defer rows.Close()

	var hits []domain.SearchHit
	for rows.Next() {
		var hit domain.SearchHit
		var blob []byte
		if err := rows.Scan(&hit.ID, &hit.Text, &hit.Page, &hit.BlockIndex, &blob); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		vector := decodeVector(blob)
		if len(vector) != s.dimension {
			return nil, fmt.Errorf("%w: stored vector %d has %d dimensions",
				domain.ErrDimensionMismatch, hit.ID, len(vector))
		}
		hit.Distance = squaredDistance(query, vector)
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// Count returns the number of stored passages.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting passages: %w", err)
	}
	return n, nil
}

// checkMeta writes the index description on first open and verifies it
// on every subsequent open.
func (s *Store) checkMeta() error {
	var dimension, version int
	var metric string
	err := s.db.QueryRow(`SELECT dimension, metric, format_version FROM index_meta WHERE id = 1`).
		Scan(&dimension, &metric, &version)
	switch {
	case err == sql.ErrNoRows:
		_, err = s.db.Exec(
			`INSERT INTO index_meta (id, dimension, metric, format_version) VALUES (1, ?, ?, ?)`,
			s.dimension, MetricSquaredEuclidean, formatVersion)
		if err != nil {
			return fmt.Errorf("writing index meta: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("reading index meta: %w", err)
	}

	if dimension != s.dimension {
		return fmt.Errorf("%w: store has dimension %d, expected %d",
			domain.ErrDimensionMismatch, dimension, s.dimension)
	}
	if metric != MetricSquaredEuclidean {
		return fmt.Errorf("%w: store uses metric %q, this build searches with %q",
			domain.ErrMetricMismatch, metric, MetricSquaredEuclidean)
	}
	return nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// encodeVector packs a vector as fixed-width little-endian float32
// bytes with no length prefix; the dimension is implicit.
func encodeVector(vector []float32) []byte {
	buf := make([]byte, len(vector)*4)
	for i, f := range vector {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeVector is the inverse of encodeVector.
func decodeVector(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	vector := make([]float32, len(data)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vector
}

// squaredDistance computes the squared Euclidean distance between two
// vectors of equal length. Squaring preserves nearest-neighbour order
// and skips the square root.
func squaredDistance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
