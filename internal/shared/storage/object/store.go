package object

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a storage key has no backing object.
var ErrNotFound = errors.New("object not found")

// StoredObject describes where a put landed.
type StoredObject struct {
	Bucket   string
	Key      string
	Location string
}

// ObjectStore is a capability over a key-addressed blob store. Put streams
// the reader to storage under the literal key given; callers own the key
// uniqueness policy. Open returns a stream the caller must close. Delete
// reports ErrNotFound for keys with no backing object.
type ObjectStore interface {
	Put(ctx context.Context, key string, contentType string, r io.Reader) (StoredObject, int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
