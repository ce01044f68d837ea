package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/lifelens/lifelens/internal/core"
)

// RecordStore handles raw source-record persistence
type RecordStore struct {
	db *DB
}

// NewRecordStore creates a new record store
func NewRecordStore(db *DB) *RecordStore {
	return &RecordStore{db: db}
}

// Insert stores one record and returns its generated id.
func (s *RecordStore) Insert(ctx context.Context, r core.SourceRecord) (string, error) {
	if r.Timestamp <= 0 {
		return "", fmt.Errorf("record timestamp must be positive, got %d", r.Timestamp)
	}

	id := uuid.New().String()
	fields, err := json.Marshal(r.Fields)
	if err != nil {
		return "", fmt.Errorf("failed to encode fields: %w", err)
	}

	_, err = s.db.conn.ExecContext(ctx, `
		INSERT INTO records (id, source, timestamp, fields)
		VALUES (?, ?, ?, ?)
	`, id, r.Source, r.Timestamp, string(fields))
	if err != nil {
		return "", err
	}
	return id, nil
}

// InsertBatch stores a set of records in one transaction.
func (s *RecordStore) InsertBatch(ctx context.Context, records []core.SourceRecord) error {
	return s.db.Transaction(func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO records (id, source, timestamp, fields)
			VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, r := range records {
			if r.Timestamp <= 0 {
				return fmt.Errorf("record timestamp must be positive, got %d", r.Timestamp)
			}
			fields, err := json.Marshal(r.Fields)
			if err != nil {
				return fmt.Errorf("failed to encode fields: %w", err)
			}
			if _, err := stmt.ExecContext(ctx, uuid.New().String(), r.Source, r.Timestamp, string(fields)); err != nil {
				return err
			}
		}
		return nil
	})
}

// QueryRange returns the records of one source within [startMS, endMS),
// ordered by timestamp ascending.
func (s *RecordStore) QueryRange(ctx context.Context, source string, startMS, endMS int64) ([]core.SourceRecord, error) {
	rows, err := s.db.conn.QueryContext(ctx, `
		SELECT source, timestamp, fields
		FROM records
		WHERE source = ? AND timestamp >= ? AND timestamp < ?
		ORDER BY timestamp ASC
	`, source, startMS, endMS)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []core.SourceRecord
	for rows.Next() {
		var r core.SourceRecord
		var fields string
		if err := rows.Scan(&r.Source, &r.Timestamp, &fields); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(fields), &r.Fields); err != nil {
			return nil, fmt.Errorf("failed to decode fields: %w", err)
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// CountBySource returns the number of stored records per source.
func (s *RecordStore) CountBySource(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.conn.QueryContext(ctx, `
		SELECT source, COUNT(*) FROM records GROUP BY source
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var source string
		var n int
		if err := rows.Scan(&source, &n); err != nil {
			return nil, err
		}
		counts[source] = n
	}
	return counts, rows.Err()
}
