package archive

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/tempcast/internal/domain/outlook"
)

type object struct {
	data        []byte
	contentType string
}

// MemoryArchive keeps archived objects in memory. Useful for tests and local dev.
type MemoryArchive struct {
	mu      sync.RWMutex
	objects map[string]object
}

// NewMemoryArchive constructs an empty archive.
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{objects: make(map[string]object)}
}

func (a *MemoryArchive) Put(_ context.Context, key string, data []byte, contentType string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.objects[key] = object{data: append([]byte(nil), data...), contentType: contentType}
	return key, nil
}

// Get returns a stored object and its content type.
func (a *MemoryArchive) Get(key string) ([]byte, string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	obj, ok := a.objects[key]
	return obj.data, obj.contentType, ok
}

// Keys lists stored keys in order.
func (a *MemoryArchive) Keys() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	keys := make([]string, 0, len(a.objects))
	for k := range a.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var _ outlook.CurveArchive = (*MemoryArchive)(nil)
