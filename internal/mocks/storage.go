package mocks

import (
	"context"
	"io"
	"sync"

	"tourbook/pkg/storage"
)

// Storage implements storage.StorageProvider in memory.
type Storage struct {
	mu      sync.Mutex
	Files   map[string][]byte
	Deleted []string
	Err     error
}

var _ storage.StorageProvider = (*Storage)(nil)

func NewStorage() *Storage {
	return &Storage{Files: make(map[string][]byte)}
}

func (m *Storage) Upload(ctx context.Context, request *storage.UploadRequest) (*storage.UploadResponse, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	data, err := io.ReadAll(request.Reader)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Files[request.Key] = data
	return &storage.UploadResponse{
		Key:  request.Key,
		URL:  m.URL(request.Key),
		Size: int64(len(data)),
	}, nil
}

func (m *Storage) Delete(ctx context.Context, key string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Files, key)
	m.Deleted = append(m.Deleted, key)
	return nil
}

func (m *Storage) FileExists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Files[key]
	return ok, m.Err
}

func (m *Storage) URL(key string) string {
	return "/img/" + key
}
