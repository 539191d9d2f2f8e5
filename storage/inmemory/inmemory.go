// Package inmemory provides a mutex-guarded in-memory record store,
// used for local runs and tests.
package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/tokenpay/metrics-service/model"
)

type MemStorage struct {
	mu      sync.RWMutex
	records []*model.Record
	window  time.Duration

	// Now supplies timestamps; tests replace it to move the dedup
	// window boundary.
	Now func() time.Time
}

func NewMemStorage(ctx context.Context, window time.Duration) *MemStorage {
	return &MemStorage{
		window: window,
		Now:    time.Now,
	}
}

func (store *MemStorage) FindRecent(ctx context.Context, fingerprint string, m *model.Metric) (bool, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	cutoff := store.Now().Add(-store.window)
	for _, rec := range store.records {
		if rec.Fingerprint == fingerprint && sameIdentity(&rec.Metric, m) && !rec.CreatedAt.Before(cutoff) {
			return true, nil
		}
	}
	return false, nil
}

func (store *MemStorage) Insert(ctx context.Context, rec *model.Record) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	rec.CreatedAt = store.Now()
	store.records = append(store.records, rec)
	return nil
}

func (store *MemStorage) MarkForwarded(ctx context.Context, recs []*model.Record, response string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, rec := range recs {
		for _, stored := range store.records {
			if stored.Forwarded {
				continue
			}
			if stored.Fingerprint == rec.Fingerprint && sameIdentity(&stored.Metric, &rec.Metric) {
				resp := response
				stored.Forwarded = true
				stored.ForwardResponse = &resp
			}
		}
		rec.Forwarded = true
	}
	return nil
}

// GetAll returns a snapshot of the stored records, newest last.
func (store *MemStorage) GetAll(ctx context.Context) ([]*model.Record, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	result := make([]*model.Record, len(store.records))
	copy(result, store.records)
	return result, nil
}

func (store *MemStorage) Ping(ctx context.Context) error {
	return nil
}

// sameIdentity compares the dedup identity tuple: name, page path, type
// and value. Tags are covered by the fingerprint.
func sameIdentity(a, b *model.Metric) bool {
	if a.Name != b.Name || a.Type != b.Type || a.Value != b.Value {
		return false
	}
	switch {
	case a.PagePath == nil && b.PagePath == nil:
		return true
	case a.PagePath == nil || b.PagePath == nil:
		return false
	default:
		return *a.PagePath == *b.PagePath
	}
}
