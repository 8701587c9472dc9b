package tools

import (
	"strings"

	"GoRAGWorkshop/app/utils"
)

func parseArguments(arguments string) (map[string]any, error) {
	if strings.TrimSpace(arguments) == "" {
		return map[string]any{}, nil
	}
	return utils.ParseArguments(arguments)
}
