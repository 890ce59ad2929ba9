package storage

import (
	"errors"
	"io"
)

var ErrNotFound = errors.New("storage: object not found")

// BlobStore holds versioned configuration artifacts such as rubric files.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	List(prefix string) ([]string, error) // keys under prefix, sorted
}
