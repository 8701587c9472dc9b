package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"GoRAGWorkshop/app/faults"
	"GoRAGWorkshop/app/memory"
	"GoRAGWorkshop/app/models"
	"GoRAGWorkshop/app/rag"
	"GoRAGWorkshop/app/tools"
)

type mockChatModel struct {
	mock.Mock
}

func (m *mockChatModel) Complete(ctx context.Context, messages []models.Message, toolkit *tools.Registry) (string, error) {
	args := m.Called(ctx, messages, toolkit)
	return args.String(0), args.Error(1)
}

// fixedEmbedder returns the vector registered for a text, or fallback.
type fixedEmbedder struct {
	vectors  map[string][]float32
	fallback []float32
	err      error
}

func (e fixedEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return e.fallback, nil
}

func (e fixedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = e.Embed(ctx, t)
	}
	return out, e.err
}

const question = "What is the minimum holding period?"

func seededStore(t *testing.T) *rag.MemoryStore {
	t.Helper()
	store := rag.NewMemoryStore("kbindex")
	require.NoError(t, store.Upsert(context.Background(), []rag.Record{
		{Segment: rag.Segment{Source: "tos.pdf", Text: "The minimum holding period is 30 days."}, Vector: []float32{1, 0.1, 0}},
		{Segment: rag.Segment{Source: "policy.pdf", Text: "Units are locked for 30 days after purchase."}, Vector: []float32{1, 0, 0.1}},
		{Segment: rag.Segment{Source: "privacy.pdf", Text: "We store your email address."}, Vector: []float32{0, 0, 1}},
	}))
	return store
}

func lastContent(messages []models.Message) string {
	return messages[len(messages)-1].Content
}

func TestAnswerCitesEachSourceSeparately(t *testing.T) {
	toolkit, err := tools.NewRegistry(tools.InstrumentTool())
	require.NoError(t, err)
	model := &mockChatModel{}
	model.On("Complete", mock.Anything, mock.MatchedBy(func(msgs []models.Message) bool {
		prompt := lastContent(msgs)
		return msgs[len(msgs)-1].Role == memory.RoleUser &&
			strings.Contains(prompt, "Here is the question: "+question) &&
			strings.Contains(prompt, "tos.pdf: The minimum holding period is 30 days.") &&
			strings.Contains(prompt, "policy.pdf: Units are locked for 30 days after purchase.") &&
			!strings.Contains(prompt, "privacy.pdf")
	}), toolkit).Return("The minimum holding period is 30 days [tos.pdf, policy.pdf].", nil)

	h := NewHandler(fixedEmbedder{fallback: []float32{1, 0.05, 0.05}}, seededStore(t), model, toolkit,
		Options{Mode: ModeStrict, TopK: 4, MinScore: 0.5}, zap.NewNop())

	reply, err := h.Answer(context.Background(), []memory.Turn{{Role: memory.RoleUser, Content: question}})
	require.NoError(t, err)
	assert.Equal(t, memory.RoleAssistant, reply.Role)
	assert.Contains(t, reply.Content, "30 days")
	assert.Contains(t, reply.Content, "[tos.pdf]")
	assert.Contains(t, reply.Content, "[policy.pdf]")
	assert.NotContains(t, reply.Content, "tos.pdf,")
	model.AssertExpectations(t)
}

func TestAnswerStrictWithoutRetrievalHasNoCitations(t *testing.T) {
	model := &mockChatModel{}
	model.On("Complete", mock.Anything, mock.MatchedBy(func(msgs []models.Message) bool {
		return strings.Contains(lastContent(msgs), "say you don't know") &&
			strings.HasSuffix(lastContent(msgs), "Answer using the following information:\n\n")
	}), mock.Anything).Return("I don't know [tos.pdf].", nil)

	h := NewHandler(fixedEmbedder{fallback: []float32{1, 0, 0}}, rag.NewMemoryStore("kbindex"), model, nil,
		Options{Mode: ModeStrict}, zap.NewNop())

	reply, err := h.Answer(context.Background(), []memory.Turn{{Role: memory.RoleUser, Content: question}})
	require.NoError(t, err)
	assert.Equal(t, "I don't know.", reply.Content)
	assert.NotContains(t, reply.Content, "[")
}

func TestAnswerFlexiblePrompt(t *testing.T) {
	model := &mockChatModel{}
	model.On("Complete", mock.Anything, mock.MatchedBy(func(msgs []models.Message) bool {
		p := lastContent(msgs)
		return strings.Contains(p, "Answer with the help of this information:") &&
			!strings.Contains(p, "Answer ONLY with the facts")
	}), mock.Anything).Return("Usually 30 days [general.pdf].", nil)

	h := NewHandler(fixedEmbedder{fallback: []float32{1, 0, 0}}, seededStore(t), model, nil,
		Options{Mode: ModeFlexible}, zap.NewNop())
	assert.Equal(t, ModeFlexible, h.Mode())

	reply, err := h.Answer(context.Background(), []memory.Turn{{Role: memory.RoleUser, Content: question}})
	require.NoError(t, err)
	assert.Equal(t, "Usually 30 days [general.pdf].", reply.Content)
}

func TestAnswerBoundsHistory(t *testing.T) {
	var turns []memory.Turn
	for i := 0; i < 12; i++ {
		role := memory.RoleUser
		if i%2 == 1 {
			role = memory.RoleAssistant
		}
		turns = append(turns, memory.Turn{Role: role, Content: fmt.Sprintf("turn %d", i)})
	}
	turns = append(turns, memory.Turn{Role: memory.RoleUser, Content: question})

	var sent []models.Message
	model := &mockChatModel{}
	model.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).([]models.Message) }).
		Return("ok", nil)

	h := NewHandler(fixedEmbedder{fallback: []float32{1, 0, 0}}, seededStore(t), model, nil,
		Options{Mode: ModeStrict, MemorySize: 4}, zap.NewNop())
	_, err := h.Answer(context.Background(), turns)
	require.NoError(t, err)

	require.Len(t, sent, 4)
	assert.Equal(t, "turn 9", sent[0].Content)
	assert.Equal(t, "turn 11", sent[2].Content)
	assert.Contains(t, sent[3].Content, question)
}

func TestAnswerErrors(t *testing.T) {
	down := faults.Unavailable("embed", errors.New("connection refused"))

	t.Run("no user turn", func(t *testing.T) {
		h := NewHandler(fixedEmbedder{}, seededStore(t), &mockChatModel{}, nil, Options{}, zap.NewNop())
		_, err := h.Answer(context.Background(), []memory.Turn{{Role: memory.RoleAssistant, Content: "hi"}})
		assert.ErrorIs(t, err, faults.ErrInvalidInput)
	})
	t.Run("blank question", func(t *testing.T) {
		h := NewHandler(fixedEmbedder{}, seededStore(t), &mockChatModel{}, nil, Options{}, zap.NewNop())
		_, err := h.Answer(context.Background(), []memory.Turn{{Role: memory.RoleUser, Content: "  "}})
		assert.ErrorIs(t, err, faults.ErrInvalidInput)
	})
	t.Run("embedding down", func(t *testing.T) {
		h := NewHandler(fixedEmbedder{err: down}, seededStore(t), &mockChatModel{}, nil, Options{}, zap.NewNop())
		_, err := h.Answer(context.Background(), []memory.Turn{{Role: memory.RoleUser, Content: question}})
		assert.ErrorIs(t, err, faults.ErrServiceUnavailable)
	})
	t.Run("dimension mismatch", func(t *testing.T) {
		h := NewHandler(fixedEmbedder{fallback: []float32{1, 0}}, seededStore(t), &mockChatModel{}, nil,
			Options{}, zap.NewNop())
		_, err := h.Answer(context.Background(), []memory.Turn{{Role: memory.RoleUser, Content: question}})
		assert.ErrorIs(t, err, faults.ErrDimensionMismatch)
	})
	t.Run("model down", func(t *testing.T) {
		model := &mockChatModel{}
		model.On("Complete", mock.Anything, mock.Anything, mock.Anything).
			Return("", faults.Unavailable("chat completion", errors.New("http 503")))
		h := NewHandler(fixedEmbedder{fallback: []float32{1, 0, 0}}, seededStore(t), model, nil,
			Options{}, zap.NewNop())
		_, err := h.Answer(context.Background(), []memory.Turn{{Role: memory.RoleUser, Content: question}})
		assert.ErrorIs(t, err, faults.ErrServiceUnavailable)
	})
}

func TestParseMode(t *testing.T) {
	m, ok := ParseMode(" Strict ")
	assert.True(t, ok)
	assert.Equal(t, ModeStrict, m)
	_, ok = ParseMode("loose")
	assert.False(t, ok)
}
