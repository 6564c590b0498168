package mocks

import (
	"context"
	"encoding/json"
	"path"
	"sync"
	"time"

	"tourbook/pkg/cache"
)

// CacheStore is an in-memory stand-in for pkg/cache.RedisCache. Values are
// JSON encoded like the real store; expirations are recorded, not enforced.
type CacheStore struct {
	mu   sync.Mutex
	Data map[string][]byte
	TTLs map[string]time.Duration
	Err  error
	Gets int
	Hits int
}

func NewCacheStore() *CacheStore {
	return &CacheStore{
		Data: make(map[string][]byte),
		TTLs: make(map[string]time.Duration),
	}
}

func (m *CacheStore) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gets++

	if m.Err != nil {
		return m.Err
	}
	data, ok := m.Data[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	m.Hits++
	return json.Unmarshal(data, dest)
}

func (m *CacheStore) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.Err != nil {
		return m.Err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = data
	m.TTLs[key] = expiration
	return nil
}

func (m *CacheStore) Delete(ctx context.Context, keys ...string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.Data, k)
		delete(m.TTLs, k)
	}
	return nil
}

// DeletePattern matches keys with path.Match, which agrees with Redis glob
// syntax for the patterns used here.
func (m *CacheStore) DeletePattern(ctx context.Context, pattern string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.Data {
		if ok, _ := path.Match(pattern, k); ok {
			delete(m.Data, k)
			delete(m.TTLs, k)
		}
	}
	return nil
}

// Has reports whether key is present.
func (m *CacheStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Data[key]
	return ok
}
