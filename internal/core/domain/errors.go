package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested document or passage does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a document already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidTransition indicates an out-of-order status update.
	// Ingestion stages are strictly ordered; a stage may never be skipped
	// and terminal states may never be left.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrDimensionMismatch indicates a vector's length does not match the
	// dimension the store was initialised with.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrMetricMismatch indicates a store was created with a different
	// distance metric than the one this build searches with. Reusing such
	// a store would silently return wrong rankings.
	ErrMetricMismatch = errors.New("distance metric mismatch")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Ingestion and retrieval both require it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
