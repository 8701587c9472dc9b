package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"GoRAGWorkshop/app/faults"
	"GoRAGWorkshop/app/restclient"
	"GoRAGWorkshop/app/tools"
)

const (
	endpoint          = "/chat/completions"
	embeddingEndpoint = "/embeddings"

	maxToolRounds = 5
)

var _ ChatModel = &LLMClient{}

type Config struct {
	ChatModel      string
	EmbeddingModel string
	Temperature    float64
	MaxTokens      int
	BatchSize      int
}

// LLMClient speaks the OpenAI-compatible chat and embeddings protocol. It holds
// no per-request state.
type LLMClient struct {
	restClient      restclient.Interface
	logger          *zap.Logger
	model           string
	embeddingsModel string
	temperature     float64
	maxTokens       int
	batchSize       int
}

func NewLLMClient(rc restclient.Interface, cfg Config, logger *zap.Logger) *LLMClient {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}
	return &LLMClient{
		restClient:      rc,
		logger:          logger,
		model:           cfg.ChatModel,
		embeddingsModel: cfg.EmbeddingModel,
		temperature:     cfg.Temperature,
		maxTokens:       cfg.MaxTokens,
		batchSize:       cfg.BatchSize,
	}
}

func (mc *LLMClient) Complete(ctx context.Context, messages []Message, toolkit *tools.Registry) (string, error) {
	response, err := mc.generateResponse(ctx, messages, toolkit)
	if err != nil {
		return "", err
	}

	message := response.Choices[0].Message
	for i := 0; i < maxToolRounds && len(message.ToolCalls) > 0; i++ {
		messages = append(messages, mc.handleToolCalls(toolkit, message.ToolCalls)...)
		if response, err = mc.generateResponse(ctx, messages, toolkit); err != nil {
			return "", err
		}
		message = response.Choices[0].Message
	}
	if len(message.ToolCalls) > 0 {
		mc.logger.Warn("tool rounds exhausted", zap.Int("rounds", maxToolRounds))
	}

	return message.Content, nil
}

func (mc *LLMClient) handleToolCalls(toolkit *tools.Registry, calls []toolCall) (messages []Message) {
	messages = append(messages, Message{Role: "assistant", ToolCalls: calls})

	for _, call := range calls {
		mc.logger.Info("executing tool call",
			zap.String("tool", call.Function.Name), zap.String("arguments", call.Function.Arguments))

		var result string
		var err error
		if toolkit == nil {
			err = fmt.Errorf("unknown tool: %s", call.Function.Name)
		} else {
			result, err = toolkit.Execute(call.Function.Name, call.Function.Arguments)
		}
		if err != nil {
			mc.logger.Warn("tool call failed", zap.String("tool", call.Function.Name), zap.Error(err))
			result = err.Error()
		}

		messages = append(messages, Message{
			Role:       "tool",
			Content:    result,
			ToolCallID: call.ID,
		})
	}
	return messages
}

func (mc *LLMClient) generateResponse(ctx context.Context, messages []Message, toolkit *tools.Registry) (*ResponseLLM, error) {
	payload := requestPayload{
		Model:       mc.model,
		Tools:       functionsToPayload(toolkit),
		Messages:    messages,
		Temperature: mc.temperature,
		MaxTokens:   mc.maxTokens,
	}

	body, status, err := mc.restClient.Post(ctx, endpoint, payload, nil)
	if err != nil {
		return nil, faults.Unavailable("chat completion", err)
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, faults.Unavailable("chat completion", fmt.Errorf("http %d: %s", status, truncate(body, 512)))
	}

	var generated ResponseLLM
	if err = json.Unmarshal(body, &generated); err != nil {
		return nil, faults.Unavailable("chat completion", fmt.Errorf("parse response: %w", err))
	}
	if len(generated.Choices) == 0 {
		return nil, faults.Unavailable("chat completion", errors.New("no choices returned"))
	}
	mc.logger.Debug("chat completion",
		zap.String("model", generated.Model), zap.Int("total_tokens", generated.Usage.TotalTokens))
	return &generated, nil
}

func functionsToPayload(toolkit *tools.Registry) (payload []functionPayload) {
	for _, t := range toolkit.All() {
		payload = append(payload, functionPayload{Type: "function", Function: t})
	}
	return payload
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
