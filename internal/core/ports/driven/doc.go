// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - EmbeddingService: the local embedding path (builtin hashing or Ollama)
//   - VectorIndex: in-memory inner-product search over one session's vectors
//   - IndexStore: durable, atomically replaced index artifacts per session
//   - SessionStore: sessions, document descriptors and raw chunk lists
//   - ConfigStore: application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService (remote): without it builds always use the local path.
//   - TextExtractor: without it PDF ingestion is unavailable.
//   - Transcriber: without it audio ingestion is unavailable.
//   - LLMService: without it answer generation is unavailable.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
