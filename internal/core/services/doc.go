// Package services implements the core application logic: the
// segmentation heuristic, embedding batching, the ingestion pipeline
// coordinator and the retrieval service.
//
// Services depend only on domain types and ports; all infrastructure
// (PDF parsing, the embedding API, SQLite, the filesystem layout) is
// injected through driven ports.
package services
