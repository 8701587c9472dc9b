package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTree(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "policies"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tos.pdf"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "policies", "privacy.pdf"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".DS_Store"), []byte("x"), 0o644))

	out, err := BuildTree(dir, nil)
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Base(dir))
	assert.Contains(t, out, "tos.pdf")
	assert.Contains(t, out, "policies")
	assert.Contains(t, out, "privacy.pdf")
	assert.NotContains(t, out, ".DS_Store")

	_, err = BuildTree(filepath.Join(dir, "missing"), nil)
	assert.Error(t, err)
}

func TestHashText(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", HashText(""))
	assert.NotEqual(t, HashText("a"), HashText("b"))
}

func TestCastAny(t *testing.T) {
	type lookup struct {
		Name string `json:"name"`
	}
	v, err := CastAny[lookup](map[string]any{"name": "ING Fund"})
	require.NoError(t, err)
	assert.Equal(t, "ING Fund", v.Name)

	_, err = CastAny[lookup](func() {})
	assert.Error(t, err)
}

func TestParseArguments(t *testing.T) {
	got, err := ParseArguments(`{"name":"x","n":2}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "x", "n": float64(2)}, got)

	_, err = ParseArguments(`nope`)
	assert.Error(t, err)
}
