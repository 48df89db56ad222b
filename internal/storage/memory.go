package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryBackend keeps objects in a map. It backs tests and local
// development; failures can be injected per call site to exercise the
// document store's partial-failure paths.
type MemoryBackend struct {
	mu      sync.RWMutex
	objects map[string]memoryObject

	uploadErr  error
	deleteErrs map[string]error
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		objects:    make(map[string]memoryObject),
		deleteErrs: make(map[string]error),
	}
}

// FailUploads makes every subsequent Upload return err. Pass nil to
// restore normal behavior.
func (b *MemoryBackend) FailUploads(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uploadErr = err
}

// FailDelete makes DeleteMany report err for objectName while still
// deleting the rest of the batch.
func (b *MemoryBackend) FailDelete(objectName string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleteErrs[objectName] = err
}

func (b *MemoryBackend) Has(objectName string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.objects[objectName]
	return ok
}

func (b *MemoryBackend) Remove(objectName string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, objectName)
}

func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}

func (b *MemoryBackend) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.uploadErr != nil {
		return b.uploadErr
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	b.objects[objectName] = memoryObject{data: data, contentType: contentType}
	return nil
}

func (b *MemoryBackend) Download(ctx context.Context, objectName string) (io.ReadCloser, ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, ObjectInfo{}, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, ok := b.objects[objectName]
	if !ok {
		return nil, ObjectInfo{}, ErrObjectNotFound
	}

	info := ObjectInfo{Size: int64(len(obj.data)), ContentType: obj.contentType}
	return io.NopCloser(bytes.NewReader(obj.data)), info, nil
}

func (b *MemoryBackend) DeleteMany(ctx context.Context, objectNames []string) map[string]error {
	b.mu.Lock()
	defer b.mu.Unlock()

	failures := make(map[string]error)
	for _, name := range objectNames {
		if err := b.deleteErrs[name]; err != nil {
			failures[name] = err
			continue
		}
		delete(b.objects, name)
	}
	return failures
}
