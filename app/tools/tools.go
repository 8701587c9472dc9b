package tools

import (
	"errors"
	"fmt"

	"GoRAGWorkshop/app/utils"
)

type Tool struct {
	Name        string                         `json:"name"`
	Description string                         `json:"description"`
	Parameters  Parameter                      `json:"parameters"`
	HandlerFunc func(ToolTask) (string, error) `json:"-"`
}

type Parameter struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Required   []string       `json:"required"`
}

type ToolTask struct {
	Key        string         `json:"key"`
	Parameters map[string]any `json:"parameters"`
}

func withParsed[T any](params any, op string, f func(T) (string, error)) (string, error) {
	v, err := utils.CastAny[T](params)
	if err != nil {
		return "", fmt.Errorf("parse %s arguments: %w", op, err)
	}
	if v == nil {
		return "", errors.New("arguments are nil")
	}
	return f(*v)
}
