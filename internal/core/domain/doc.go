// Package domain defines the core business entities for the RFP analyst.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An uploaded RFP, addressed by its content hash
//   - Chunk: A retrievable span of a document's text
//   - AnalysisTask / AnalysisResult: Units of concurrent analysis
//   - Report: The aggregated, slot-per-kind response
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
