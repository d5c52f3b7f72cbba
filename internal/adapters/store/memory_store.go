// Package store provides EmailStore implementations backed by memory,
// SQLite and MySQL.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mikey/resend-relay/internal/core"
	"go.uber.org/zap"
)

// MemoryStore is an in-memory implementation of the EmailStore interface.
type MemoryStore struct {
	records map[string]*core.EmailRecord
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewMemoryStore creates a new in-memory email store.
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*core.EmailRecord),
		logger:  logger,
	}
}

// Get retrieves a record by id.
func (s *MemoryStore) Get(ctx context.Context, id string) (*core.EmailRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	copied := *rec
	return &copied, nil
}

// Save upserts a record by id. On update, HTML and Text are only replaced
// when the incoming record carries a fetched value.
func (s *MemoryStore) Save(ctx context.Context, record *core.EmailRecord) error {
	if record.ID == "" {
		return &core.ValidationError{Field: "id"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	saved := *record
	saved.CreatedAt = core.NormalizeTimestamp(record.CreatedAt)
	saved.CachedAt = time.Now().UTC()

	if existing, ok := s.records[record.ID]; ok {
		if !record.HTML.Fetched {
			saved.HTML = existing.HTML
		}
		if !record.Text.Fetched {
			saved.Text = existing.Text
		}
	}

	s.records[record.ID] = &saved
	return nil
}

// List returns a page of records ordered newest created_at first, plus the
// total count.
func (s *MemoryStore) List(ctx context.Context, limit, offset int) ([]*core.EmailRecord, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*core.EmailRecord, 0, len(s.records))
	for _, rec := range s.records {
		copied := *rec
		all = append(all, &copied)
	}

	// Normalized timestamps sort correctly as strings.
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt > all[j].CreatedAt
	})

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// HasFullDetails reports whether the record's body has been hydrated.
func (s *MemoryStore) HasFullDetails(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return false, nil
	}
	return rec.HasFullDetails(), nil
}

// BulkSave applies Save per record; one failure does not abort the batch.
func (s *MemoryStore) BulkSave(ctx context.Context, records []*core.EmailRecord) int {
	saved := 0
	for _, rec := range records {
		if err := s.Save(ctx, rec); err != nil {
			s.logger.Warn("Skipping record in bulk save", zap.Error(err))
			continue
		}
		saved++
	}
	return saved
}

// Cleanup removes records cached more than ageDays ago.
func (s *MemoryStore) Cleanup(ctx context.Context, ageDays int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().AddDate(0, 0, -ageDays)
	var removed int64
	for id, rec := range s.records {
		if rec.CachedAt.Before(cutoff) {
			delete(s.records, id)
			removed++
		}
	}
	return removed, nil
}
