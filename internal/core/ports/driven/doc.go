// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentExtractor: Pulls text, layout and images out of a source file
//   - EmbeddingService: Generates vector embeddings
//   - VectorStore / VectorStoreOpener: Passage and vector persistence, search
//   - StatusStore: Ingestion status persistence
//   - Library: The per-document directory layout on disk
//
// # Optional Interfaces
//
//   - ImageDescriber: Names extracted figures. When nil, figures get
//     generic page-based labels and ingestion proceeds without it.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
