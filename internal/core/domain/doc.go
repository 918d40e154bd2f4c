// Package domain defines the core business entities for adam.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested file with its extracted text and metadata
//   - Chunk: A bounded slice of a document's text
//   - RawDocument: Bytes read from disk, before extraction
//   - ToolCall / ToolResult: One request and response on the tool protocol
//   - ProjectCandidate: A folder discovered by the watcher
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
