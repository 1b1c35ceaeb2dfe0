package staging

import (
	"sync"

	"github.com/google/uuid"
)

// Previewer hands out revocable preview handles for local image files.
type Previewer interface {
	Acquire(path string) (string, error)
	Release(handle string) error
}

// MemoryPreviews is an in-process Previewer. Handles look like
// "preview:<uuid>" and resolve back to the file path until released.
type MemoryPreviews struct {
	mu      sync.Mutex
	handles map[string]string
}

func NewMemoryPreviews() *MemoryPreviews {
	return &MemoryPreviews{handles: make(map[string]string)}
}

func (m *MemoryPreviews) Acquire(path string) (string, error) {
	h := "preview:" + uuid.NewString()

	m.mu.Lock()
	m.handles[h] = path
	m.mu.Unlock()

	return h, nil
}

// Release revokes h. Releasing an unknown or already released handle
// returns ErrUnknownPreview.
func (m *MemoryPreviews) Release(h string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.handles[h]; !ok {
		return ErrUnknownPreview
	}
	delete(m.handles, h)
	return nil
}

// Resolve returns the path behind a live handle.
func (m *MemoryPreviews) Resolve(h string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.handles[h]
	return p, ok
}

// Outstanding is the number of handles not yet released.
func (m *MemoryPreviews) Outstanding() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handles)
}
