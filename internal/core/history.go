package core

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// maxImportLimit caps how many messages one bulk import may request.
const maxImportLimit = 100

// HistoryService reconciles the local email cache with the provider's list
// and get endpoints. Bulk import stores metadata only; body content is
// hydrated lazily the first time a record is viewed.
type HistoryService struct {
	provider ProviderClient
	store    EmailStore
	logger   *zap.Logger
}

// NewHistoryService creates a new history synchronizer.
func NewHistoryService(provider ProviderClient, store EmailStore, logger *zap.Logger) *HistoryService {
	return &HistoryService{
		provider: provider,
		store:    store,
		logger:   logger,
	}
}

// ImportRecent fetches up to limit recent messages from the provider and
// upserts their metadata into the cache. HTML and text are left unfetched
// on purpose. Returns how many records were saved; zero results is not an
// error.
func (s *HistoryService) ImportRecent(ctx context.Context, limit int) (int, error) {
	if limit <= 0 || limit > maxImportLimit {
		limit = maxImportLimit
	}

	if s.provider == nil {
		return 0, &ConfigError{Reason: "api key is not configured"}
	}
	records, hasMore, err := s.provider.ListEmails(ctx, limit)
	if err != nil {
		return 0, &ProviderError{Op: "list", Message: err.Error(), Err: err}
	}
	if len(records) == 0 {
		return 0, nil
	}

	// Records without an id cannot be keyed locally.
	toSave := records[:0]
	for _, rec := range records {
		if rec.ID != "" {
			toSave = append(toSave, rec)
		}
	}

	imported := s.store.BulkSave(ctx, toSave)
	s.logger.Info("Imported recent emails",
		zap.Int("imported", imported),
		zap.Int("fetched", len(toSave)),
		zap.Bool("has_more", hasMore))
	return imported, nil
}

// EmailPage is one page of cached records.
type EmailPage struct {
	Emails  []*EmailRecord
	Total   int
	HasMore bool
}

// ListCached returns a page of cached records, newest first, straight from
// the local store with no provider call.
func (s *HistoryService) ListCached(ctx context.Context, limit, offset int) (*EmailPage, error) {
	if limit <= 0 {
		limit = 20
	}
	records, total, err := s.store.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return &EmailPage{
		Emails:  records,
		Total:   total,
		HasMore: offset+limit < total,
	}, nil
}

// DetailResult carries a fully hydrated record and whether it came straight
// from the cache.
type DetailResult struct {
	Email  *EmailRecord
	Cached bool
}

// GetDetails returns the full record for one email. A cached record with
// hydrated body content is returned immediately; otherwise the provider is
// queried, the response merged over any partial cached record, persisted,
// and re-read so the caller observes exactly what the store normalized.
func (s *HistoryService) GetDetails(ctx context.Context, id string) (*DetailResult, error) {
	cached, err := s.store.Get(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if cached != nil && cached.HasFullDetails() {
		s.logger.Debug("Email detail cache hit", zap.String("id", id))
		return &DetailResult{Email: cached, Cached: true}, nil
	}

	if s.provider == nil {
		return nil, &ConfigError{Reason: "api key is not configured"}
	}
	fetched, err := s.provider.GetEmail(ctx, id)
	if err != nil {
		return nil, &ProviderError{Op: "get", Message: err.Error(), Err: err}
	}

	merged := mergeRecords(cached, fetched)
	if err := s.store.Save(ctx, merged); err != nil {
		return nil, err
	}

	// Re-read so the caller sees the persisted form, including any
	// store-level normalization.
	saved, err := s.store.Get(ctx, id)
	if err != nil {
		return &DetailResult{Email: merged}, nil
	}
	return &DetailResult{Email: saved}, nil
}

// Cleanup removes cached records older than the retention window.
func (s *HistoryService) Cleanup(ctx context.Context, ageDays int) (int64, error) {
	removed, err := s.store.Cleanup(ctx, ageDays)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("Removed expired cached emails", zap.Int64("removed", removed))
	}
	return removed, nil
}

// StartRetention runs Cleanup on a fixed frequency until the returned stop
// function is called.
func (s *HistoryService) StartRetention(ageDays int, frequency time.Duration) func() {
	stopCh := make(chan struct{})
	go func() {
		ticker := time.NewTicker(frequency)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := s.Cleanup(context.Background(), ageDays); err != nil {
					s.logger.Error("Failed to clean up email cache", zap.Error(err))
				}
			case <-stopCh:
				return
			}
		}
	}()
	return func() { close(stopCh) }
}

// mergeRecords lays a freshly fetched record over a partial cached one.
// Fetched values win; cached values only survive where the provider
// returned nothing for a metadata field. HTML/Text always come from the
// fetch, which marks them hydrated even when empty.
func mergeRecords(cached, fetched *EmailRecord) *EmailRecord {
	if cached == nil {
		return fetched
	}
	merged := *fetched
	if len(merged.To) == 0 {
		merged.To = cached.To
	}
	if merged.From == "" {
		merged.From = cached.From
	}
	if merged.Subject == "" {
		merged.Subject = cached.Subject
	}
	if len(merged.CC) == 0 {
		merged.CC = cached.CC
	}
	if len(merged.BCC) == 0 {
		merged.BCC = cached.BCC
	}
	if len(merged.ReplyTo) == 0 {
		merged.ReplyTo = cached.ReplyTo
	}
	if merged.CreatedAt == "" {
		merged.CreatedAt = cached.CreatedAt
	}
	if merged.LastEvent == "" {
		merged.LastEvent = cached.LastEvent
	}
	if merged.ScheduledAt == "" {
		merged.ScheduledAt = cached.ScheduledAt
	}
	return &merged
}
