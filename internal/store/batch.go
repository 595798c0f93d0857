package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Kind is the kind of DDL run a batch records.
type Kind string

const (
	KindCreate Kind = "create"
	KindDrop   Kind = "drop"
)

// ParseKind parses a batch kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindCreate, KindDrop:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown batch kind %q", s)
	}
}

// Batch is one recorded run of DDL statements.
type Batch struct {
	ID          string    `json:"id"`
	Seq         int64     `json:"seq"`
	Kind        Kind      `json:"kind"`
	Fingerprint string    `json:"fingerprint"`
	Statements  []string  `json:"statements"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// ErrEmptyBatch is returned when recording a batch without statements.
var ErrEmptyBatch = errors.New("batch has no statements")

// RecordBatch appends a batch to the journal. ID, Seq and RecordedAt are
// assigned by the store; any values set by the caller are ignored.
// Returns the batch as stored.
func (s *Store) RecordBatch(ctx context.Context, b Batch) (Batch, error) {
	if _, err := ParseKind(string(b.Kind)); err != nil {
		return Batch{}, fmt.Errorf("record batch: %w", err)
	}
	if b.Fingerprint == "" {
		return Batch{}, fmt.Errorf("record batch: fingerprint is required")
	}
	if len(b.Statements) == 0 {
		return Batch{}, fmt.Errorf("record batch: %w", ErrEmptyBatch)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Batch{}, fmt.Errorf("record batch: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM batches`).Scan(&seq); err != nil {
		return Batch{}, fmt.Errorf("record batch: next seq: %w", err)
	}

	stored := Batch{
		ID:          s.ids.Generate(),
		Seq:         seq,
		Kind:        b.Kind,
		Fingerprint: b.Fingerprint,
		Statements:  append([]string(nil), b.Statements...),
		RecordedAt:  s.now().UTC(),
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO batches (id, seq, kind, fingerprint, recorded_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		stored.ID,
		stored.Seq,
		string(stored.Kind),
		stored.Fingerprint,
		stored.RecordedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Batch{}, fmt.Errorf("record batch: insert batch: %w", err)
	}

	for i, stmt := range stored.Statements {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO statements (batch_id, position, sql)
			VALUES (?, ?, ?)
		`, stored.ID, i, stmt)
		if err != nil {
			return Batch{}, fmt.Errorf("record batch: insert statement %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Batch{}, fmt.Errorf("record batch: commit: %w", err)
	}

	s.logger.Debug("recorded batch",
		"id", stored.ID,
		"seq", stored.Seq,
		"kind", stored.Kind,
		"statements", len(stored.Statements))
	return stored, nil
}

// Batches returns every batch in seq order, statements included.
// Returns an empty slice (not nil) if the journal is empty.
func (s *Store) Batches(ctx context.Context) ([]Batch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, kind, fingerprint, recorded_at
		FROM batches
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	batches := []Batch{}
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batches: %w", err)
	}
	// Close before loading statements; the pool has a single connection
	rows.Close()

	for i := range batches {
		stmts, err := s.statements(ctx, batches[i].ID)
		if err != nil {
			return nil, err
		}
		batches[i].Statements = stmts
	}
	return batches, nil
}

// LatestBatch returns the batch of the given kind with the highest seq.
// Returns found=false if no batch of that kind exists.
func (s *Store) LatestBatch(ctx context.Context, kind Kind) (Batch, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, kind, fingerprint, recorded_at
		FROM batches
		WHERE kind = ?
		ORDER BY seq DESC
		LIMIT 1
	`, string(kind))

	b, err := scanBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Batch{}, false, nil
	}
	if err != nil {
		return Batch{}, false, err
	}

	b.Statements, err = s.statements(ctx, b.ID)
	if err != nil {
		return Batch{}, false, err
	}
	return b, true, nil
}

func (s *Store) statements(ctx context.Context, batchID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sql FROM statements
		WHERE batch_id = ?
		ORDER BY position ASC
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("query statements: %w", err)
	}
	defer rows.Close()

	var stmts []string
	for rows.Next() {
		var stmt string
		if err := rows.Scan(&stmt); err != nil {
			return nil, fmt.Errorf("scan statement: %w", err)
		}
		stmts = append(stmts, stmt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate statements: %w", err)
	}
	return stmts, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanBatch(sc scanner) (Batch, error) {
	var (
		b          Batch
		kind       string
		recordedAt string
	)
	if err := sc.Scan(&b.ID, &b.Seq, &kind, &b.Fingerprint, &recordedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Batch{}, err
		}
		return Batch{}, fmt.Errorf("scan batch: %w", err)
	}
	b.Kind = Kind(kind)

	t, err := time.Parse(time.RFC3339Nano, recordedAt)
	if err != nil {
		return Batch{}, fmt.Errorf("parse recorded_at %q: %w", recordedAt, err)
	}
	b.RecordedAt = t
	return b, nil
}
