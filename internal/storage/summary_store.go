package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lifelens/lifelens/internal/core"
)

// SummaryStore persists generated daily summaries beyond the cache TTL
type SummaryStore struct {
	db *DB
}

// NewSummaryStore creates a new summary store
func NewSummaryStore(db *DB) *SummaryStore {
	return &SummaryStore{db: db}
}

// SaveDailySummary upserts the summary for its date.
func (s *SummaryStore) SaveDailySummary(ctx context.Context, sum *core.DailySummary) error {
	payload, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	_, err = s.db.conn.ExecContext(ctx, `
		INSERT INTO daily_summaries (date, payload, generated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
		    payload = excluded.payload,
		    generated_at = excluded.generated_at
	`, sum.Date, string(payload), sum.GeneratedAt.UTC())
	return err
}

// GetDailySummary loads the stored summary for a date.
func (s *SummaryStore) GetDailySummary(ctx context.Context, date string) (*core.DailySummary, error) {
	var payload string
	err := s.db.conn.QueryRowContext(ctx, `
		SELECT payload FROM daily_summaries WHERE date = ?
	`, date).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, core.ErrSummaryNotFound
	}
	if err != nil {
		return nil, err
	}

	var sum core.DailySummary
	if err := json.Unmarshal([]byte(payload), &sum); err != nil {
		return nil, fmt.Errorf("failed to decode summary: %w", err)
	}
	return &sum, nil
}

// ListDates returns the dates with a stored summary, ascending.
func (s *SummaryStore) ListDates(ctx context.Context) ([]string, error) {
	rows, err := s.db.conn.QueryContext(ctx, `
		SELECT date FROM daily_summaries ORDER BY date ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}
