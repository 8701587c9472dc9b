package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"go.uber.org/zap"

	"GoRAGWorkshop/app/faults"
)

func (mc *LLMClient) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := mc.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch returns one vector per input, in input order. Inputs larger than
// the batch size are sent as consecutive requests.
func (mc *LLMClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if mc.embeddingsModel == "" {
		return nil, faults.Configuration("embed", errors.New("embeddings model is empty"))
	}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += mc.batchSize {
		end := min(start+mc.batchSize, len(texts))
		vectors, err := mc.sendEmbeddings(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}
	if len(out) > 0 {
		mc.logger.Debug("embedded texts", zap.Int("count", len(out)), zap.Int("dimension", len(out[0])))
	}
	return out, nil
}

func (mc *LLMClient) sendEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	payload := embeddingRequestPayload{
		Model: mc.embeddingsModel,
		Input: texts,
	}
	body, status, err := mc.restClient.Post(ctx, embeddingEndpoint, payload, nil)
	if err != nil {
		return nil, faults.Unavailable("embeddings", err)
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, faults.Unavailable("embeddings", fmt.Errorf("http %d: %s", status, truncate(body, 512)))
	}

	var resp embeddingResponse
	if err = json.Unmarshal(body, &resp); err != nil {
		return nil, faults.Unavailable("embeddings", fmt.Errorf("parse embeddings json: %w", err))
	}
	if len(resp.Data) != len(texts) {
		return nil, faults.Unavailable("embeddings",
			fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data)))
	}

	sort.SliceStable(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })
	vectors := make([][]float32, len(resp.Data))
	for i, item := range resp.Data {
		if item.Index != i {
			return nil, faults.Unavailable("embeddings", fmt.Errorf("missing embedding for input %d", i))
		}
		vectors[i] = item.Embedding
	}
	return vectors, nil
}
