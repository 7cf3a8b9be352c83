// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Extractor / ExtractorRegistry: Turns uploaded bytes into page text
//   - Chunker: Splits pages into retrievable chunks
//   - Embedder: Generates vector embeddings
//   - VectorIndex: Stores vectors and answers nearest-neighbour queries
//   - BlobStore: Keeps original uploads under content-addressed keys
//   - DocumentStore: Document registry and chunk persistence
//   - Synthesizer: Language model used for structured analysis
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - PromptStore: Without it, built-in prompt templates are used.
//   - ProfileStore: Without it, compliance checks assume no certifications.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
