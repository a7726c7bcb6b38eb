// Package domain defines the core business entities for Paperbase.
//
// This package is part of the hexagonal architecture's innermost layer.
// It defines the fundamental types:
//
//   - StatusRecord: The externally observable ingestion state of a document
//   - Passage: A bounded, page-located span of document text (the retrieval unit)
//   - Page/Block/Span: The extracted text model consumed by the segmenter
//   - ImageRecord: A described figure extracted from a document
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. All other packages depend on
// domain, never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library and golang.org/x/text (slug normalisation)
//   - Cannot Import: Any internal/ package
package domain
