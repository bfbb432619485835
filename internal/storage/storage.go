// Package storage provides object storage abstractions for persisting
// array definitions.
package storage

import (
	"context"
	"errors"
)

// Common errors for storage operations.
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrObjectExists   = errors.New("object already exists")
	ErrUploadFailed   = errors.New("upload failed")
	ErrDownloadFailed = errors.New("download failed")
	ErrDeleteFailed   = errors.New("delete failed")
)

// ObjectStore abstracts object storage for small immutable blobs such as
// persisted schema documents. Implementations include S3 and the local
// filesystem.
type ObjectStore interface {
	// Put writes an object, replacing any existing object at the path.
	Put(ctx context.Context, objectPath string, data []byte) error

	// PutIfAbsent writes an object only if nothing exists at the path.
	// Returns ErrObjectExists otherwise. This is the primitive behind
	// create-exclusive array registration.
	PutIfAbsent(ctx context.Context, objectPath string, data []byte) error

	// Get reads an object in full. Returns ErrObjectNotFound if the
	// object does not exist.
	Get(ctx context.Context, objectPath string) ([]byte, error)

	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, objectPath string) error

	// Exists checks whether an object exists at the path.
	Exists(ctx context.Context, objectPath string) (bool, error)

	// List returns all object paths under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}
