package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

// Publication records one artifact written for a form.
type Publication struct {
	ID         string
	FormID     string
	Seq        int64
	Revision   int
	Hash       string
	Dir        string
	CreatedAt  time.Time
	Superseded bool
}

// RecordPublication stores p with a fresh id and the next seq for its form.
// It returns the stored publication and the one it supersedes, if any.
func (s *Store) RecordPublication(ctx context.Context, p Publication) (Publication, *Publication, error) {
	if p.FormID == "" || p.Hash == "" {
		return Publication{}, nil, fmt.Errorf("record publication: form id and hash are required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Publication{}, nil, fmt.Errorf("record publication: begin: %w", err)
	}
	defer tx.Rollback()

	prev, err := latestPublication(ctx, tx, p.FormID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Publication{}, nil, err
	}

	p.ID = uuid.NewString()
	p.Seq = 1
	if prev != nil {
		p.Seq = prev.Seq + 1
	}
	created := s.timestamp()

	query, args, err := builder.Insert("publications").
		Columns("id", "form_id", "seq", "revision", "hash", "dir", "created_at").
		Values(p.ID, p.FormID, p.Seq, p.Revision, p.Hash, p.Dir, created).
		ToSql()
	if err != nil {
		return Publication{}, nil, fmt.Errorf("record publication: build insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return Publication{}, nil, fmt.Errorf("record publication: insert: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Publication{}, nil, fmt.Errorf("record publication: commit: %w", err)
	}

	if p.CreatedAt, err = parseTimestamp(created); err != nil {
		return Publication{}, nil, err
	}
	p.Superseded = false
	if prev != nil {
		prev.Superseded = true
	}
	return p, prev, nil
}

// LatestPublication returns the live publication of formID.
func (s *Store) LatestPublication(ctx context.Context, formID string) (Publication, error) {
	p, err := latestPublication(ctx, s.db, formID)
	if err != nil {
		return Publication{}, err
	}
	return *p, nil
}

// Publications lists the history of formID ordered by seq.
// Returns an empty slice (not nil) when the form was never published.
func (s *Store) Publications(ctx context.Context, formID string) ([]Publication, error) {
	query, args, err := publicationColumns().
		Where(sq.Eq{"form_id": formID}).
		OrderBy("seq ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("list publications: build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list publications: %w", err)
	}
	defer rows.Close()

	out := []Publication{}
	for rows.Next() {
		p, err := scanPublication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list publications: iterate: %w", err)
	}
	for i := range out {
		out[i].Superseded = i < len(out)-1
	}
	return out, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func publicationColumns() sq.SelectBuilder {
	return builder.Select("id", "form_id", "seq", "revision", "hash", "dir", "created_at").From("publications")
}

func latestPublication(ctx context.Context, db queryRower, formID string) (*Publication, error) {
	query, args, err := publicationColumns().
		Where(sq.Eq{"form_id": formID}).
		OrderBy("seq DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("latest publication: build query: %w", err)
	}
	p, err := scanPublication(db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPublication(row scanner) (Publication, error) {
	var p Publication
	var created string
	if err := row.Scan(&p.ID, &p.FormID, &p.Seq, &p.Revision, &p.Hash, &p.Dir, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Publication{}, err
		}
		return Publication{}, fmt.Errorf("scan publication: %w", err)
	}
	t, err := parseTimestamp(created)
	if err != nil {
		return Publication{}, err
	}
	p.CreatedAt = t
	return p, nil
}
