package chunkstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"relseg/internal/models"
)

// SQLiteStore persists chunks in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS chunks (
            id TEXT NOT NULL,
            doc_id TEXT NOT NULL,
            ord INTEGER NOT NULL,
            header TEXT NOT NULL DEFAULT '',
            text TEXT NOT NULL,
            PRIMARY KEY(doc_id, ord)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_doc ON chunks(doc_id);`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("chunkstore migrate: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Put(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, c := range chunks {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO chunks(id, doc_id, ord, header, text) VALUES(?,?,?,?,?)
             ON CONFLICT(doc_id, ord) DO UPDATE SET id=excluded.id, header=excluded.header, text=excluded.text`,
			c.ID, c.DocID, c.Index, c.Header, c.Text,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Get(ctx context.Context, docID string, index int) (models.Chunk, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, header, text FROM chunks WHERE doc_id=? AND ord=?`, docID, index)
	c := models.Chunk{DocID: docID, Index: index}
	if err := row.Scan(&c.ID, &c.Header, &c.Text); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Chunk{}, fmt.Errorf("%w: %s[%d]", ErrNotFound, docID, index)
		}
		return models.Chunk{}, err
	}
	return c, nil
}

func (s *SQLiteStore) GetRange(ctx context.Context, docID string, start, end int) ([]models.Chunk, error) {
	if start > end {
		return nil, fmt.Errorf("chunkstore: invalid range [%d,%d]", start, end)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ord, header, text FROM chunks WHERE doc_id=? AND ord BETWEEN ? AND ? ORDER BY ord`,
		docID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]models.Chunk, 0, end-start+1)
	for rows.Next() {
		c := models.Chunk{DocID: docID}
		if err := rows.Scan(&c.ID, &c.Index, &c.Header, &c.Text); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) != end-start+1 {
		return nil, fmt.Errorf("%w: %s has gap in [%d,%d]", ErrNotFound, docID, start, end)
	}
	return out, nil
}

func (s *SQLiteStore) DocLen(ctx context.Context, docID string) (int, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(ord)+1, 0) FROM chunks WHERE doc_id=?`, docID)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *SQLiteStore) DeleteDoc(ctx context.Context, docID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE doc_id=?`, docID)
	return err
}
