package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"go.uber.org/zap"

	"GoRAGWorkshop/app/faults"
	"GoRAGWorkshop/app/parsers"
	"GoRAGWorkshop/app/rag"
	"GoRAGWorkshop/app/storage"
	"GoRAGWorkshop/app/utils"
)

type Pipeline struct {
	embedder rag.Embedder
	store    rag.VectorStore
	ledger   storage.Interface
	logger   *zap.Logger
}

// FileResult is the outcome for one file of a batch.
type FileResult struct {
	Filename string `json:"filename"`
	Segments int    `json:"segments"`
	Error    string `json:"error,omitempty"`
}

type Report struct {
	Files []FileResult `json:"files"`
}

func (r Report) Failed() int {
	n := 0
	for _, f := range r.Files {
		if f.Error != "" {
			n++
		}
	}
	return n
}

// NewPipeline wires the stages. ledger may be nil.
func NewPipeline(embedder rag.Embedder, store rag.VectorStore, ledger storage.Interface, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		embedder: embedder,
		store:    store,
		ledger:   ledger,
		logger:   logger,
	}
}

// Ingest splits, embeds and stores one document. Any stage failure aborts the
// rest for this document. Re-ingesting the same text adds new records.
func (p *Pipeline) Ingest(ctx context.Context, splitter *rag.Splitter, doc rag.Document) (int, error) {
	hash := utils.HashText(doc.Text)
	p.warnIfSeen(ctx, doc.Source, hash)

	n, err := p.ingest(ctx, splitter, doc)
	p.record(ctx, doc.Source, hash, n, err)
	return n, err
}

func (p *Pipeline) ingest(ctx context.Context, splitter *rag.Splitter, doc rag.Document) (int, error) {
	log := p.logger.With(zap.String("source", doc.Source))
	log.Debug("document loaded", zap.Int("length", len(doc.Text)))

	log.Info("splitting document",
		zap.Int("segment_size", splitter.Size()), zap.Int("overlap", splitter.Overlap()))
	segments := splitter.Split(doc)
	if len(segments) == 0 {
		log.Warn("document has no text, nothing to store")
		return 0, nil
	}
	texts := make([]string, len(segments))
	for i, s := range segments {
		texts[i] = s.Text
	}
	log.Debug("document split", zap.Int("segments", len(segments)))

	log.Info("embedding segments")
	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed %s: %w", doc.Source, err)
	}
	if len(vectors) != len(segments) {
		return 0, faults.Unavailable("embed "+doc.Source,
			fmt.Errorf("expected %d vectors, got %d", len(segments), len(vectors)))
	}
	log.Debug("segments embedded", zap.Int("vectors", len(vectors)), zap.Int("dimension", len(vectors[0])))

	records := make([]rag.Record, len(segments))
	for i := range segments {
		records[i] = rag.Record{Segment: segments[i], Vector: vectors[i]}
	}

	log.Info("storing embeddings", zap.String("collection", p.store.Collection()))
	if err = p.store.Upsert(ctx, records); err != nil {
		return 0, fmt.Errorf("store %s: %w", doc.Source, err)
	}
	return len(records), nil
}

// IngestReader parses body with the parser for name and ingests the result.
// Unknown extensions fall back to fallback; nil fallback rejects them.
func (p *Pipeline) IngestReader(ctx context.Context, splitter *rag.Splitter, name string, body io.Reader,
	fallback parsers.Parser) (int, error) {
	parser, ok := parsers.ForFile(name)
	if !ok {
		if fallback == nil {
			return 0, faults.Parse("parse "+name, errors.New("unsupported file type"))
		}
		parser = fallback
	}
	text, err := parser.Parse(body)
	if err != nil {
		p.record(ctx, name, "", 0, err)
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return p.Ingest(ctx, splitter, rag.Document{Source: name, Text: text})
}

// IngestDir walks dir and ingests every supported, non-hidden file in
// sequence. A file that fails to parse is logged and skipped. Any other
// failure stops the walk and is returned with the partial report.
func (p *Pipeline) IngestDir(ctx context.Context, splitter *rag.Splitter, dir string) (Report, error) {
	var report Report
	p.logger.Info("ingesting directory", zap.String("dir", dir))
	if tree, err := utils.BuildTree(dir, nil); err == nil {
		p.logger.Debug("directory contents\n" + tree)
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == dir {
				return walkErr
			}
			p.logger.Error("ingesting failed", zap.String("path", path), zap.Error(walkErr))
			report.Files = append(report.Files, FileResult{Filename: path, Error: walkErr.Error()})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path != dir && utils.IsHidden(d.Name()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := parsers.ForFile(d.Name()); !ok {
			p.logger.Debug("skipping unsupported file", zap.String("path", path))
			return nil
		}

		p.logger.Info("ingesting file", zap.String("path", path))
		n, err := p.ingestFile(ctx, splitter, path, d.Name())
		result := FileResult{Filename: d.Name(), Segments: n}
		if err != nil {
			p.logger.Error("ingesting failed", zap.String("path", path), zap.Error(err))
			result.Error = err.Error()
		}
		report.Files = append(report.Files, result)
		if err != nil && !Skippable(err) {
			return err
		}
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("walk %s: %w", dir, err)
	}

	p.logger.Info("directory ingested",
		zap.Int("files", len(report.Files)), zap.Int("failed", report.Failed()))
	return report, nil
}

// Skippable reports whether err concerns only the document at hand, so a batch
// may continue with the next one.
func Skippable(err error) bool {
	return faults.KindOf(err) == faults.KindParse
}

func (p *Pipeline) warnIfSeen(ctx context.Context, source, hash string) {
	if p.ledger == nil {
		return
	}
	prior, err := p.ledger.FindByHash(ctx, hash)
	if err != nil {
		p.logger.Warn("ledger lookup failed", zap.String("source", source), zap.Error(err))
		return
	}
	if len(prior) > 0 {
		p.logger.Warn("content already ingested, storing duplicate records",
			zap.String("source", source), zap.String("first_source", prior[0].Source),
			zap.Int("times", len(prior)))
	}
}

func (p *Pipeline) record(ctx context.Context, source, hash string, segments int, ingestErr error) {
	if p.ledger == nil {
		return
	}
	in := storage.Ingestion{
		Source:      source,
		ContentHash: hash,
		Collection:  p.store.Collection(),
		Segments:    segments,
		Status:      storage.StatusIngested,
	}
	if ingestErr != nil {
		in.Status = storage.StatusFailed
		in.Error = ingestErr.Error()
	}
	if _, err := p.ledger.SaveIngestion(ctx, in); err != nil {
		p.logger.Warn("ledger write failed", zap.String("source", source), zap.Error(err))
	}
}
