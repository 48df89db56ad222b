package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned by Download when the referenced object
// does not exist in the backing store.
var ErrObjectNotFound = errors.New("object not found in storage")

type ObjectInfo struct {
	Size        int64
	ContentType string
}

// Backend is the blob side of the document store. Upload and Download
// are bounded by the supplied context. DeleteMany is best-effort: it
// attempts every object and returns the failures keyed by object name
// (an empty map means everything was removed).
type Backend interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	Download(ctx context.Context, objectName string) (io.ReadCloser, ObjectInfo, error)
	DeleteMany(ctx context.Context, objectNames []string) map[string]error
}
