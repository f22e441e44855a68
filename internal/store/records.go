package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// Record is one saved revision of a raw form record.
type Record struct {
	FormID    string
	Revision  int
	Data      map[string]any
	CreatedAt time.Time
}

// FormSummary describes the latest revision of one form id.
type FormSummary struct {
	FormID    string
	Revision  int
	UpdatedAt time.Time
}

// SaveRecord appends a revision for formID and returns it.
func (s *Store) SaveRecord(ctx context.Context, formID string, data map[string]any) (Record, error) {
	if formID == "" {
		return Record{}, fmt.Errorf("save record: empty form id")
	}
	if data == nil {
		data = map[string]any{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Record{}, fmt.Errorf("save record: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, fmt.Errorf("save record: begin: %w", err)
	}
	defer tx.Rollback()

	query, args, err := builder.Select("COALESCE(MAX(revision), 0)").
		From("records").
		Where(sq.Eq{"form_id": formID}).
		ToSql()
	if err != nil {
		return Record{}, fmt.Errorf("save record: build select: %w", err)
	}
	var last int
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&last); err != nil {
		return Record{}, fmt.Errorf("save record: read revision: %w", err)
	}

	created := s.timestamp()
	query, args, err = builder.Insert("records").
		Columns("form_id", "revision", "data", "created_at").
		Values(formID, last+1, string(raw), created).
		ToSql()
	if err != nil {
		return Record{}, fmt.Errorf("save record: build insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return Record{}, fmt.Errorf("save record: insert: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Record{}, fmt.Errorf("save record: commit: %w", err)
	}

	createdAt, err := parseTimestamp(created)
	if err != nil {
		return Record{}, err
	}
	return Record{FormID: formID, Revision: last + 1, Data: data, CreatedAt: createdAt}, nil
}

// LatestRecord returns the newest revision of formID.
func (s *Store) LatestRecord(ctx context.Context, formID string) (Record, error) {
	return s.readRecord(ctx, builder.Select("form_id", "revision", "data", "created_at").
		From("records").
		Where(sq.Eq{"form_id": formID}).
		OrderBy("revision DESC").
		Limit(1))
}

// RecordAt returns one specific revision of formID.
func (s *Store) RecordAt(ctx context.Context, formID string, revision int) (Record, error) {
	return s.readRecord(ctx, builder.Select("form_id", "revision", "data", "created_at").
		From("records").
		Where(sq.Eq{"form_id": formID, "revision": revision}))
}

func (s *Store) readRecord(ctx context.Context, q sq.SelectBuilder) (Record, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return Record{}, fmt.Errorf("read record: build query: %w", err)
	}

	var rec Record
	var data, created string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&rec.FormID, &rec.Revision, &data, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("read record: %w", err)
	}
	if err := json.Unmarshal([]byte(data), &rec.Data); err != nil {
		return Record{}, fmt.Errorf("read record %s@%d: %w", rec.FormID, rec.Revision, err)
	}
	if rec.CreatedAt, err = parseTimestamp(created); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// ListForms returns every form id with its latest revision, ordered by id.
// Returns an empty slice (not nil) when nothing is stored.
func (s *Store) ListForms(ctx context.Context) ([]FormSummary, error) {
	query, args, err := builder.Select("form_id", "MAX(revision)", "MAX(created_at)").
		From("records").
		GroupBy("form_id").
		OrderBy("form_id COLLATE BINARY ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("list forms: build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	defer rows.Close()

	forms := []FormSummary{}
	for rows.Next() {
		var f FormSummary
		var updated string
		if err := rows.Scan(&f.FormID, &f.Revision, &updated); err != nil {
			return nil, fmt.Errorf("list forms: scan: %w", err)
		}
		if f.UpdatedAt, err = parseTimestamp(updated); err != nil {
			return nil, err
		}
		forms = append(forms, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list forms: iterate: %w", err)
	}
	return forms, nil
}
