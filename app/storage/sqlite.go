package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const timeLayout = "2006-01-02 15:04:05"

var _ Interface = &SQLiteStorage{}

type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db at %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS ingestions (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            source TEXT NOT NULL,
            content_hash TEXT NOT NULL,
            collection TEXT NOT NULL,
            segments INTEGER NOT NULL DEFAULT 0,
            status TEXT NOT NULL,
            error TEXT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_content_hash ON ingestions (content_hash);
    `)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create ingestions table: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func (s *SQLiteStorage) SaveIngestion(ctx context.Context, in Ingestion) (int64, error) {
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO ingestions (source, content_hash, collection, segments, status, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, datetime(?))`,
		in.Source, in.ContentHash, in.Collection, in.Segments, in.Status, in.Error,
		in.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("save ingestion for %s: %w", in.Source, err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStorage) FindByHash(ctx context.Context, contentHash string) ([]Ingestion, error) {
	return s.query(ctx,
		`SELECT id, source, content_hash, collection, segments, status, error, created_at
		 FROM ingestions
		 WHERE content_hash = ? AND status = ?
		 ORDER BY id ASC`,
		contentHash, StatusIngested,
	)
}

func (s *SQLiteStorage) ListIngestions(ctx context.Context, limit int) ([]Ingestion, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.query(ctx,
		`SELECT id, source, content_hash, collection, segments, status, error, created_at
		 FROM ingestions
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
}

func (s *SQLiteStorage) query(ctx context.Context, q string, args ...any) ([]Ingestion, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Ingestion
	for rows.Next() {
		var in Ingestion
		var errText sql.NullString
		var createdAt any
		if err = rows.Scan(&in.ID, &in.Source, &in.ContentHash, &in.Collection, &in.Segments,
			&in.Status, &errText, &createdAt); err != nil {
			return nil, fmt.Errorf("scan ingestion: %w", err)
		}
		in.Error = errText.String
		in.CreatedAt = parseTime(createdAt)
		out = append(out, in)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// parseTime accepts both shapes the driver hands back for TIMESTAMP columns.
func parseTime(v any) time.Time {
	var text string
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case string:
		text = t
	case []byte:
		text = string(t)
	default:
		return time.Time{}
	}
	for _, layout := range []string{timeLayout, time.RFC3339Nano} {
		if parsed, err := time.Parse(layout, text); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
