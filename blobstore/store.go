package blobstore

import (
	"context"
	"errors"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// ErrConflict is returned by a conditional write when the blob already exists.
var ErrConflict = errors.New("blobstore: blob already exists")

// Store reads and writes whole blobs.
type Store interface {
	// Put writes a blob atomically, replacing any previous content.
	Put(ctx context.Context, name string, data []byte) error
	// Get returns the full content of a blob.
	Get(ctx context.Context, name string) ([]byte, error)
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the names of all blobs with the prefix in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
}

// ConditionalStore is implemented by stores that can create a blob only if it
// does not exist yet.
type ConditionalStore interface {
	Store
	// PutIfAbsent writes a blob unless one with the name exists, in which
	// case it returns ErrConflict.
	PutIfAbsent(ctx context.Context, name string, data []byte) error
}

// PutIfAbsent uses the store's conditional write when it has one. Otherwise it
// falls back to a read followed by a write, which does not exclude a racing
// writer.
func PutIfAbsent(ctx context.Context, s Store, name string, data []byte) error {
	if cs, ok := s.(ConditionalStore); ok {
		return cs.PutIfAbsent(ctx, name, data)
	}

	_, err := s.Get(ctx, name)

	switch {
	case err == nil:
		return ErrConflict
	case !errors.Is(err, ErrNotFound):
		return err
	}

	return s.Put(ctx, name, data)
}
