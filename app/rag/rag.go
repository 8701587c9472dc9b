package rag

import "context"

const (
	MetaFilename = "filename"
	MetaIndex    = "index"
	MetaOffset   = "offset"
	MetaText     = "text"
)

// Document is loaded once and never mutated.
type Document struct {
	Source string
	Text   string
}

type Segment struct {
	Text   string
	Source string
	Index  int
	Offset int
}

func (s Segment) Metadata() map[string]any {
	return map[string]any{
		MetaFilename: s.Source,
		MetaIndex:    s.Index,
		MetaOffset:   s.Offset,
	}
}

type Record struct {
	Segment Segment
	Vector  []float32
}

type ScoredSegment struct {
	ID string
	Segment
	Score float32
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorStore is scoped to a single collection.
type VectorStore interface {
	EnsureCollection(ctx context.Context, dimension int) (bool, error)
	Upsert(ctx context.Context, records []Record) error
	Query(ctx context.Context, vector []float32, k int) ([]ScoredSegment, error)
	Collection() string
	Close() error
}
