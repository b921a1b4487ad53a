// Package transcript persists chat exchanges and prompt generations to SQLite.
// The request path never writes here directly: Recorder drains the event bus.
package transcript

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/matiasleandrokruk/promptforge/pkg/uuid"
)

// timeLayout is fixed-width, so created_at sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 500
)

// Store appends and reads transcript entries.
type Store struct {
	db *sql.DB
}

// NewStore returns a Store over a migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts e, assigning an ID and timestamp when missing.
func (s *Store) Append(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transcript_entry (id, kind, route, provider, mode, input, output, failed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Kind), e.Route, e.Provider, e.Mode, e.Input, e.Output, boolToInt(e.Failed),
		e.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("transcript: append: %w", err)
	}
	return e, nil
}

// Recent returns up to limit entries, newest first. limit <= 0 means 50;
// values above 500 are capped.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	switch {
	case limit <= 0:
		limit = defaultRecentLimit
	case limit > maxRecentLimit:
		limit = maxRecentLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, route, provider, mode, input, output, failed, created_at
		FROM transcript_entry
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("transcript: recent: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			kind    string
			failed  int
			created string
		)
		if err := rows.Scan(&e.ID, &kind, &e.Route, &e.Provider, &e.Mode, &e.Input, &e.Output, &failed, &created); err != nil {
			return nil, fmt.Errorf("transcript: scan: %w", err)
		}
		e.Kind = Kind(kind)
		e.Failed = failed != 0
		e.CreatedAt, _ = time.Parse(timeLayout, created)
		out = append(out, e)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
