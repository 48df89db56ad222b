package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound      = errors.New("document not found")
	ErrInvalidParent = errors.New("parent must be an existing folder in the same company")
	ErrCyclicMove    = errors.New("cannot move a folder into its own subtree")

	// ErrMissingBlob means the metadata row exists but its blob does not.
	// That is the documented crash window of UploadFile (blob written,
	// insert failed would be the reverse) or an out-of-band deletion;
	// callers should offer re-upload rather than retry.
	ErrMissingBlob = errors.New("file content is missing from storage")
)

// StorageWriteError wraps a blob-store failure during UploadFile. The
// metadata insert was skipped, so no record exists for the attempt.
type StorageWriteError struct {
	Err error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("storage write failed: %v", e.Err)
}

func (e *StorageWriteError) Unwrap() error {
	return e.Err
}

// MetadataWriteError wraps a metadata insert failure after the blob was
// already written. The blob at Path is deliberately left in place for the
// out-of-band reconciliation sweep instead of being rolled back.
type MetadataWriteError struct {
	Path string
	Err  error
}

func (e *MetadataWriteError) Error() string {
	return fmt.Sprintf("metadata write failed (blob kept at %s): %v", e.Path, e.Err)
}

func (e *MetadataWriteError) Unwrap() error {
	return e.Err
}

// PartialStorageDeleteError lists blobs that survived a recursive delete.
// It is warning-level: the metadata rows are gone and the listed paths
// are leaked until swept, but the delete itself succeeded.
type PartialStorageDeleteError struct {
	Failures map[string]error
}

func (e *PartialStorageDeleteError) Error() string {
	return fmt.Sprintf("failed deleting %d blob(s): %s", len(e.Failures), strings.Join(e.Paths(), ", "))
}

func (e *PartialStorageDeleteError) Paths() []string {
	paths := make([]string, 0, len(e.Failures))
	for path := range e.Failures {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
