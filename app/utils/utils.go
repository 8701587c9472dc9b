package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xlab/treeprint"
)

// BuildTree renders dir as an indented tree, skipping hidden entries.
func BuildTree(dir string, tree treeprint.Tree) (string, error) {
	if tree == nil {
		tree = treeprint.New()
		tree.SetValue(filepath.Base(dir))
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if IsHidden(entry.Name()) {
			continue
		}
		if entry.IsDir() {
			branch := tree.AddBranch(entry.Name())
			if _, err = BuildTree(filepath.Join(dir, entry.Name()), branch); err != nil {
				return "", err
			}
		} else {
			tree.AddNode(entry.Name())
		}
	}
	return tree.String(), nil
}

func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func ParseArguments(arguments string) (map[string]any, error) {
	var result map[string]any
	err := json.Unmarshal([]byte(arguments), &result)
	if err != nil {
		return nil, fmt.Errorf("error parsing arguments: %w", err)
	}
	return result, nil
}

func CastAny[T any](v any) (*T, error) {
	var result T
	jsonData, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("error serializing input to JSON: %w", err)
	}

	err = json.Unmarshal(jsonData, &result)
	if err != nil {
		return nil, fmt.Errorf("error parsing JSON: %w", err)
	}

	return &result, nil
}
