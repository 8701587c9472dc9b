package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"GoRAGWorkshop/app/faults"
	"GoRAGWorkshop/app/memory"
	"GoRAGWorkshop/app/models"
	"GoRAGWorkshop/app/rag"
	"GoRAGWorkshop/app/tools"
)

type Options struct {
	Mode       Mode
	TopK       int
	MinScore   float32
	MemorySize int
}

// Handler answers questions from retrieved segments. It keeps no state between
// calls; history comes from the caller.
type Handler struct {
	embedder rag.Embedder
	store    rag.VectorStore
	model    models.ChatModel
	toolkit  *tools.Registry
	opts     Options
	logger   *zap.Logger
}

func NewHandler(embedder rag.Embedder, store rag.VectorStore, model models.ChatModel,
	toolkit *tools.Registry, opts Options, logger *zap.Logger) *Handler {
	if opts.TopK <= 0 {
		opts.TopK = 4
	}
	if opts.MemorySize <= 0 {
		opts.MemorySize = 10
	}
	if _, ok := templates[opts.Mode]; !ok {
		opts.Mode = ModeStrict
	}
	return &Handler{
		embedder: embedder,
		store:    store,
		model:    model,
		toolkit:  toolkit,
		opts:     opts,
		logger:   logger,
	}
}

func (h *Handler) Mode() Mode {
	return h.opts.Mode
}

// Answer uses the latest user turn as the question. Earlier turns are sent as
// history, bounded by the memory size together with the rendered prompt.
func (h *Handler) Answer(ctx context.Context, turns []memory.Turn) (memory.Turn, error) {
	last := -1
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == memory.RoleUser {
			last = i
			break
		}
	}
	if last < 0 {
		return memory.Turn{}, faults.InvalidInput("chat", errors.New("no user message"))
	}
	question := strings.TrimSpace(turns[last].Content)
	if question == "" {
		return memory.Turn{}, faults.InvalidInput("chat", errors.New("empty user message"))
	}
	h.logger.Info("receiving message", zap.String("question", question), zap.Int("turns", len(turns)))

	hits, err := h.retrieve(ctx, question)
	if err != nil {
		return memory.Turn{}, err
	}

	prompt := Render(h.opts.Mode, question, hits)
	window := memory.FromTurns(h.opts.MemorySize, turns[:last])
	window.Append(memory.Turn{Role: memory.RoleUser, Content: prompt})

	answer, err := h.model.Complete(ctx, toMessages(window.Turns()), h.toolkit)
	if err != nil {
		return memory.Turn{}, fmt.Errorf("complete chat: %w", err)
	}

	answer = guardCitations(answer, sources(hits), h.opts.Mode == ModeStrict)
	return memory.Turn{Role: memory.RoleAssistant, Content: answer}, nil
}

func (h *Handler) retrieve(ctx context.Context, question string) ([]rag.ScoredSegment, error) {
	h.logger.Info("embedding the question")
	vector, err := h.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	h.logger.Debug("question embedded", zap.Int("dimension", len(vector)))

	hits, err := h.store.Query(ctx, vector, h.opts.TopK)
	if err != nil {
		return nil, fmt.Errorf("retrieve segments: %w", err)
	}

	kept := hits[:0]
	for _, hit := range hits {
		if hit.Score >= h.opts.MinScore {
			kept = append(kept, hit)
		}
	}
	h.logger.Debug("segments retrieved", zap.Int("hits", len(hits)), zap.Int("kept", len(kept)))
	return kept, nil
}

func sources(hits []rag.ScoredSegment) map[string]bool {
	out := make(map[string]bool, len(hits))
	for _, h := range hits {
		out[h.Source] = true
	}
	return out
}

func toMessages(turns []memory.Turn) []models.Message {
	out := make([]models.Message, len(turns))
	for i, t := range turns {
		out[i] = models.Message{Role: t.Role, Content: t.Content}
	}
	return out
}
