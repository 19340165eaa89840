package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// Package storage holds the blob store for uploaded document bytes.
// Objects are addressed by a caller-chosen key; callers make keys unique.

// MetaOriginalFilename is the metadata key holding the uploader's file name.
const MetaOriginalFilename = "original-filename"

var (
	// ErrNotFound is returned by Get when no object exists under the key.
	ErrNotFound = errors.New("object not found")
	// ErrAlreadyExists is returned by Put when a backend refuses to overwrite a key.
	ErrAlreadyExists = errors.New("object already exists")
	// ErrInvalidKey is returned for keys that would escape the store namespace.
	ErrInvalidKey = errors.New("invalid object key")
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the implementation
// will buffer/chunk as supported by the backend.
// ContentType and Metadata are optional.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the durable byte store behind document uploads.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	// Returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// ReadAll fetches the full content stored under key.
func ReadAll(ctx context.Context, s Storage, key string) ([]byte, error) {
	rc, _, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
