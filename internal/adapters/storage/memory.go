package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-process DocumentStore for tests and ephemeral runs
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]*memoryObject
}

type memoryObject struct {
	data []byte
	info ObjectInfo
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]*memoryObject)}
}

// Put implements DocumentStore
func (m *MemoryStore) Put(ctx context.Context, key string, data []byte, opts *PutOptions) error {
	if err := validateKey(key); err != nil {
		return NewStorageError("Put", key, err, false)
	}
	if opts == nil {
		opts = &PutOptions{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.objects[key]; exists && !opts.Overwrite {
		return NewStorageError("Put", key, ErrObjectExists, false)
	}

	contentType := opts.ContentType
	if contentType == "" {
		contentType = contentTypeFor(key)
	}

	var metadata map[string]string
	if len(opts.Metadata) > 0 {
		metadata = make(map[string]string, len(opts.Metadata))
		for k, v := range opts.Metadata {
			metadata[k] = v
		}
	}

	now := time.Now().UTC()
	m.objects[key] = &memoryObject{
		data: append([]byte(nil), data...),
		info: ObjectInfo{
			Key:          key,
			Size:         int64(len(data)),
			ContentType:  contentType,
			LastModified: now,
			ETag:         fmt.Sprintf("%d-%d", len(data), now.UnixNano()),
			Metadata:     metadata,
		},
	}

	return nil
}

// Get implements DocumentStore
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return nil, NewStorageError("Get", key, ErrObjectNotFound, false)
	}
	return append([]byte(nil), obj.data...), nil
}

// Stat implements DocumentStore
func (m *MemoryStore) Stat(ctx context.Context, key string) (*ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return nil, NewStorageError("Stat", key, ErrObjectNotFound, false)
	}
	info := obj.info
	return &info, nil
}

// List implements DocumentStore
func (m *MemoryStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	objects := []ObjectInfo{}
	for key, obj := range m.objects {
		if strings.HasPrefix(key, prefix) {
			objects = append(objects, obj.info)
		}
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// Delete implements DocumentStore
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.objects[key]; !ok {
		return NewStorageError("Delete", key, ErrObjectNotFound, false)
	}
	delete(m.objects, key)
	return nil
}

// Close implements DocumentStore
func (m *MemoryStore) Close() error {
	return nil
}

// Len returns the number of stored documents
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
