package types

import "errors"

// Domain errors shared by the indexer, searcher and tool layer
var (
	// ErrIndexNotBuilt is returned by queries issued before the first successful build
	ErrIndexNotBuilt = errors.New("index not built")
	// ErrRepositoryUnavailable is returned when the source repository cannot be made available
	ErrRepositoryUnavailable = errors.New("repository unavailable")
	// ErrNotFound is returned when a named component does not exist
	ErrNotFound = errors.New("not found")
)
