package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/resend-relay/internal/core"
	"go.uber.org/zap"
)

// SQLiteStore is a SQLite implementation of the EmailStore interface.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore creates a new SQLite email store.
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS email_cache (
			id TEXT PRIMARY KEY,
			email_to TEXT,
			email_from TEXT,
			subject TEXT,
			html_content TEXT,
			text_content TEXT,
			cc TEXT,
			bcc TEXT,
			reply_to TEXT,
			created_at TEXT,
			last_event TEXT,
			scheduled_at TEXT,
			cached_at TEXT
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	for _, ddl := range []string{
		`CREATE INDEX IF NOT EXISTS idx_email_cache_created_at ON email_cache(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_email_cache_cached_at ON email_cache(cached_at)`,
	} {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create index: %w", err)
		}
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// Get retrieves a record by id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*core.EmailRecord, error) {
	var row emailRow
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email_to, email_from, subject, html_content, text_content,
			cc, bcc, reply_to, created_at, last_event, scheduled_at, cached_at
		FROM email_cache
		WHERE id = ?
	`, id).Scan(&row.id, &row.to, &row.from, &row.subject, &row.html, &row.text,
		&row.cc, &row.bcc, &row.replyTo, &row.createdAt, &row.lastEvent,
		&row.scheduledAt, &row.cachedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query email cache: %w", err)
	}
	return row.toRecord(), nil
}

// Save upserts a record by id. COALESCE keeps the stored body content when
// the incoming row carries NULL, so a metadata-only update never erases a
// previously fetched body.
func (s *SQLiteStore) Save(ctx context.Context, record *core.EmailRecord) error {
	if record.ID == "" {
		return &core.ValidationError{Field: "id"}
	}
	row := toRow(record)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO email_cache (id, email_to, email_from, subject,
			html_content, text_content, cc, bcc, reply_to,
			created_at, last_event, scheduled_at, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email_to = excluded.email_to,
			email_from = excluded.email_from,
			subject = excluded.subject,
			html_content = COALESCE(excluded.html_content, email_cache.html_content),
			text_content = COALESCE(excluded.text_content, email_cache.text_content),
			cc = excluded.cc,
			bcc = excluded.bcc,
			reply_to = excluded.reply_to,
			created_at = excluded.created_at,
			last_event = excluded.last_event,
			scheduled_at = excluded.scheduled_at,
			cached_at = excluded.cached_at
	`, row.id, row.to, row.from, row.subject, row.html, row.text,
		row.cc, row.bcc, row.replyTo, row.createdAt, row.lastEvent,
		row.scheduledAt, row.cachedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert email record: %w", err)
	}
	return nil
}

// List returns a page of records ordered newest created_at first, plus the
// total count.
func (s *SQLiteStore) List(ctx context.Context, limit, offset int) ([]*core.EmailRecord, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM email_cache`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count email records: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email_to, email_from, subject, html_content, text_content,
			cc, bcc, reply_to, created_at, last_event, scheduled_at, cached_at
		FROM email_cache
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list email records: %w", err)
	}
	defer rows.Close()

	var records []*core.EmailRecord
	for rows.Next() {
		var row emailRow
		if err := rows.Scan(&row.id, &row.to, &row.from, &row.subject, &row.html,
			&row.text, &row.cc, &row.bcc, &row.replyTo, &row.createdAt,
			&row.lastEvent, &row.scheduledAt, &row.cachedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan email record: %w", err)
		}
		records = append(records, row.toRecord())
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate email records: %w", err)
	}
	return records, total, nil
}

// HasFullDetails reports whether the record's body has been hydrated.
// NULL means never fetched; an empty string still counts as hydrated.
func (s *SQLiteStore) HasFullDetails(ctx context.Context, id string) (bool, error) {
	var hasDetails bool
	err := s.db.QueryRowContext(ctx, `
		SELECT html_content IS NOT NULL FROM email_cache WHERE id = ?
	`, id).Scan(&hasDetails)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to query email cache: %w", err)
	}
	return hasDetails, nil
}

// BulkSave applies Save per record; one failure does not abort the batch.
func (s *SQLiteStore) BulkSave(ctx context.Context, records []*core.EmailRecord) int {
	saved := 0
	for _, rec := range records {
		if err := s.Save(ctx, rec); err != nil {
			s.logger.Warn("Skipping record in bulk save",
				zap.String("id", rec.ID),
				zap.Error(err))
			continue
		}
		saved++
	}
	return saved
}

// Cleanup removes records cached more than ageDays ago.
func (s *SQLiteStore) Cleanup(ctx context.Context, ageDays int) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM email_cache
		WHERE cached_at < datetime('now', ?)
	`, fmt.Sprintf("-%d days", ageDays))
	if err != nil {
		return 0, fmt.Errorf("failed to clean up email cache: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		s.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
		return 0, nil
	}
	return removed, nil
}

// Stop closes the database connection.
func (s *SQLiteStore) Stop() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}
