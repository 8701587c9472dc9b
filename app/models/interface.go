package models

import (
	"context"

	"GoRAGWorkshop/app/tools"
)

// ChatModel completes a conversation, running any tools the model asks for.
type ChatModel interface {
	Complete(ctx context.Context, messages []Message, toolkit *tools.Registry) (string, error)
}

type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []toolCall `json:"tool_calls,omitempty"`
}
