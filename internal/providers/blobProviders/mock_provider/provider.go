package mock_provider

import (
	"sync"
)

// MockBlobProvider is an in-memory object store for tests.
type MockBlobProvider struct {
	mu      sync.RWMutex
	objects map[string]StoredObject

	// FailPutObject, when set, is returned by PutObject without storing anything.
	FailPutObject error
}

type StoredObject struct {
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

func Open() *MockBlobProvider {
	return &MockBlobProvider{
		objects: map[string]StoredObject{},
	}
}

func (m *MockBlobProvider) Name() string {
	return "mockblob"
}

func (m *MockBlobProvider) PutObject(key string, data []byte, contentType string, metadata map[string]string) error {
	if m.FailPutObject != nil {
		return m.FailPutObject
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	m.objects[key] = StoredObject{
		Data:        stored,
		ContentType: contentType,
		Metadata:    metadata,
	}
	return nil
}

// GetObject returns a stored object for test verification.
func (m *MockBlobProvider) GetObject(key string) (StoredObject, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj, ok
}

// ObjectCount returns the number of stored objects.
func (m *MockBlobProvider) ObjectCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
