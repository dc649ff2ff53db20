package images

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Jeomhps/formation-admin/internal/apperr"
)

// Memory is a process-local Store used when MONGO_URI is unset and in tests.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string]memBlob
	now   func() time.Time
}

type memBlob struct {
	obj  Object
	data []byte
}

func NewMemory() *Memory {
	return &Memory{blobs: map[string]memBlob{}, now: time.Now}
}

func (m *Memory) Put(ctx context.Context, filename, contentType string, r io.Reader) (Object, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Object{}, apperr.Internal(err, "store image")
	}
	obj := Object{
		ID:          uuid.NewString(),
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		UploadedAt:  m.now().UTC(),
	}
	m.mu.Lock()
	m.blobs[obj.ID] = memBlob{obj: obj, data: data}
	m.mu.Unlock()
	return obj, nil
}

func (m *Memory) Open(ctx context.Context, id string) (io.ReadCloser, Object, error) {
	m.mu.RLock()
	b, ok := m.blobs[id]
	m.mu.RUnlock()
	if !ok {
		return nil, Object{}, apperr.NotFound("Image not found")
	}
	return io.NopCloser(bytes.NewReader(b.data)), b.obj, nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[id]; !ok {
		return apperr.NotFound("Image not found")
	}
	delete(m.blobs, id)
	return nil
}

func (m *Memory) List(ctx context.Context) ([]Object, error) {
	m.mu.RLock()
	out := make([]Object, 0, len(m.blobs))
	for _, b := range m.blobs {
		out = append(out, b.obj)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.Before(out[j].UploadedAt) })
	return out, nil
}
