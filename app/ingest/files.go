package ingest

import (
	"context"
	"os"

	"GoRAGWorkshop/app/faults"
	"GoRAGWorkshop/app/rag"
)

func (p *Pipeline) ingestFile(ctx context.Context, splitter *rag.Splitter, path, name string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, faults.Parse("open "+name, err)
	}
	defer f.Close()
	return p.IngestReader(ctx, splitter, name, f, nil)
}
