package domain

import "errors"

// Domain errors represent pipeline failures.
// These are distinct from infrastructure errors, which are wrapped around them.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown document type or provider.
	ErrUnsupportedType = errors.New("unsupported type")

	// Pipeline Errors.

	// ErrIngestion indicates malformed or empty source content.
	// The caller may skip or retry with different input; session state is untouched.
	ErrIngestion = errors.New("ingestion failed")

	// ErrEmbeddingUnavailable indicates no embedding path could produce vectors.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrEmbeddingMismatch indicates a query was embedded with a different model
	// or dimension than the index it is searched against.
	ErrEmbeddingMismatch = errors.New("embedding model mismatch")

	// ErrIndexNotFound indicates a session has no index artifacts.
	// The retrieval path treats it as an empty result.
	ErrIndexNotFound = errors.New("index not found")

	// ErrIndexCorruption indicates the vector count disagrees with the chunk
	// metadata, or the artifacts cannot be decoded. Callers should rebuild.
	ErrIndexCorruption = errors.New("index corrupted")

	// Collaborator Errors.

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrTranscriptionUnavailable indicates no transcription service is configured.
	ErrTranscriptionUnavailable = errors.New("transcription service unavailable")

	// ErrGeneration indicates the LLM reply held no usable structured content.
	ErrGeneration = errors.New("generation failed")
)
