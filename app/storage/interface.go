package storage

import (
	"context"
	"time"
)

const (
	StatusIngested = "ingested"
	StatusFailed   = "failed"
)

// Interface records ingestion attempts. It never gates ingestion: duplicate
// content is recorded again.
type Interface interface {
	SaveIngestion(ctx context.Context, ingestion Ingestion) (int64, error)
	FindByHash(ctx context.Context, contentHash string) ([]Ingestion, error)
	ListIngestions(ctx context.Context, limit int) ([]Ingestion, error)
	Close() error
}

type Ingestion struct {
	ID          int64     `json:"id"`
	Source      string    `json:"source"`
	ContentHash string    `json:"content_hash"`
	Collection  string    `json:"collection"`
	Segments    int       `json:"segments"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
