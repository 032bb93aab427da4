package indexer

import "errors"

var (
	// ErrStoreRequired is returned when an artifact store is not provided.
	ErrStoreRequired = errors.New("artifact store required")

	// ErrEncoderRequired is returned when a text encoder is not provided.
	ErrEncoderRequired = errors.New("text encoder required")

	// ErrDatasetRequired is returned when Build is called without a dataset.
	ErrDatasetRequired = errors.New("dataset required")

	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)
