package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mikey/resend-relay/internal/core"
	"go.uber.org/zap"
)

// MySQLStore is a MySQL implementation of the EmailStore interface.
type MySQLStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLStore creates a new MySQL email store.
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS email_cache (
			id VARCHAR(36) NOT NULL,
			email_to TEXT,
			email_from VARCHAR(255),
			subject TEXT,
			html_content LONGTEXT,
			text_content LONGTEXT,
			cc TEXT,
			bcc TEXT,
			reply_to TEXT,
			created_at VARCHAR(32),
			last_event VARCHAR(50),
			scheduled_at VARCHAR(32) NULL,
			cached_at VARCHAR(32),
			PRIMARY KEY (id),
			INDEX idx_created_at (created_at),
			INDEX idx_cached_at (cached_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLStore{db: db, logger: logger}, nil
}

// Get retrieves a record by id.
func (s *MySQLStore) Get(ctx context.Context, id string) (*core.EmailRecord, error) {
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

// Save upserts a record by id with the same partial-update semantics as the
// SQLite store: NULL body content in the incoming row never erases a
// previously fetched body.
func (s *MySQLStore) Save(ctx context.Context, record *core.EmailRecord) error {
	if record.ID == "" {
		return &core.ValidationError{Field: "id"}
	}
	row := toRow(record)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO email_cache (id, email_to, email_from, subject,
			html_content, text_content, cc, bcc, reply_to,
			created_at, last_event, scheduled_at, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			email_to = VALUES(email_to),
			email_from = VALUES(email_from),
			subject = VALUES(subject),
			html_content = COALESCE(VALUES(html_content), html_content),
			text_content = COALESCE(VALUES(text_content), text_content),
			cc = VALUES(cc),
			bcc = VALUES(bcc),
			reply_to = VALUES(reply_to),
			created_at = VALUES(created_at),
			last_event = VALUES(last_event),
			scheduled_at = VALUES(scheduled_at),
			cached_at = VALUES(cached_at)
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
func (s *MySQLStore) List(ctx context.Context, limit, offset int) ([]*core.EmailRecord, int, error) {
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
func (s *MySQLStore) HasFullDetails(ctx context.Context, id string) (bool, error) {
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
func (s *MySQLStore) BulkSave(ctx context.Context, records []*core.EmailRecord) int {
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
func (s *MySQLStore) Cleanup(ctx context.Context, ageDays int) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM email_cache
		WHERE cached_at < DATE_FORMAT(DATE_SUB(UTC_TIMESTAMP(), INTERVAL ? DAY), '%Y-%m-%d %H:%i:%s')
	`, ageDays)
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
func (s *MySQLStore) Stop() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close MySQL database", zap.Error(err))
	}
}
