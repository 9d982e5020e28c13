package zcore

import "errors"

var (
	// ErrMemoryOutOfBounds is returned for any read or write outside
	// the story image.
	ErrMemoryOutOfBounds = errors.New("memory: address out of bounds")

	// ErrMemoryWriteProtected is returned for a write at or above the
	// static memory boundary.
	ErrMemoryWriteProtected = errors.New("memory: write to protected region")
)
