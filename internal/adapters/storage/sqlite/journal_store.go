// Package sqlite stores the exchange journal in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/PabloGalante/gemini-relay/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS exchanges (
	id              TEXT PRIMARY KEY,
	prompt          TEXT NOT NULL,
	response        TEXT NOT NULL,
	model           TEXT NOT NULL,
	created_at      INTEGER NOT NULL,
	duration_ms     INTEGER NOT NULL,
	attachment_name TEXT NOT NULL DEFAULT '',
	attachment_mime TEXT NOT NULL DEFAULT '',
	attachment_size INTEGER NOT NULL DEFAULT 0,
	attachment_uri  TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_exchanges_created_at ON exchanges(created_at);
`

type JournalStore struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*JournalStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &JournalStore{db: db}, nil
}

func (s *JournalStore) Close() error {
	return s.db.Close()
}

func (s *JournalStore) AppendExchange(ctx context.Context, rec *domain.ExchangeRecord) error {
	if rec.ID == "" {
		rec.ID = domain.ExchangeID(uuid.NewString())
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exchanges (id, prompt, response, model, created_at, duration_ms,
			attachment_name, attachment_mime, attachment_size, attachment_uri)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(rec.ID), rec.Prompt, rec.Response, rec.Model, rec.CreatedAt.UnixNano(), rec.DurationMS,
		rec.AttachmentName, rec.AttachmentMIME, rec.AttachmentSize, rec.AttachmentURI,
	)
	if err != nil {
		return fmt.Errorf("sqlite AppendExchange: %w", err)
	}
	return nil
}

// ListExchanges returns the newest records first. limit <= 0 means all.
func (s *JournalStore) ListExchanges(ctx context.Context, limit int) ([]*domain.ExchangeRecord, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, prompt, response, model, created_at, duration_ms,
			attachment_name, attachment_mime, attachment_size, attachment_uri
		FROM exchanges
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite ListExchanges: %w", err)
	}
	defer rows.Close()

	out := []*domain.ExchangeRecord{}
	for rows.Next() {
		var (
			rec       domain.ExchangeRecord
			id        string
			createdAt int64
		)
		if err := rows.Scan(&id, &rec.Prompt, &rec.Response, &rec.Model, &createdAt, &rec.DurationMS,
			&rec.AttachmentName, &rec.AttachmentMIME, &rec.AttachmentSize, &rec.AttachmentURI); err != nil {
			return nil, fmt.Errorf("scan exchange: %w", err)
		}
		rec.ID = domain.ExchangeID(id)
		rec.CreatedAt = time.Unix(0, createdAt).UTC()
		out = append(out, &rec)
	}
	return out, rows.Err()
}
