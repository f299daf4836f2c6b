package repository

import (
	"context"
	"path"
	"sync"

	"github.com/noah-isme/school-gateway/internal/models"
	appErrors "github.com/noah-isme/school-gateway/pkg/errors"
)

// MemoryPayloadRepository keeps payloads in process memory. It is the default store and is lost
// on restart.
type MemoryPayloadRepository struct {
	mu      sync.RWMutex
	entries map[string]models.CachedPayload
}

// NewMemoryPayloadRepository constructs an empty store.
func NewMemoryPayloadRepository() *MemoryPayloadRepository {
	return &MemoryPayloadRepository{entries: make(map[string]models.CachedPayload)}
}

func (r *MemoryPayloadRepository) Get(ctx context.Context, fingerprint string) (*models.CachedPayload, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	payload, ok := r.entries[fingerprint]
	if !ok {
		return nil, appErrors.ErrCacheMiss
	}
	payload.Payload = append([]byte(nil), payload.Payload...)
	return &payload, nil
}

func (r *MemoryPayloadRepository) Put(ctx context.Context, payload models.CachedPayload) error {
	payload.Payload = append([]byte(nil), payload.Payload...)
	r.mu.Lock()
	r.entries[payload.Fingerprint] = payload
	r.mu.Unlock()
	return nil
}

func (r *MemoryPayloadRepository) DeleteByPattern(ctx context.Context, pattern string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.entries {
		if ok, err := path.Match(pattern, key); err != nil {
			return err
		} else if ok {
			delete(r.entries, key)
		}
	}
	return nil
}

// Len reports the number of stored payloads.
func (r *MemoryPayloadRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
