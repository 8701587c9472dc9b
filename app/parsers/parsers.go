package parsers

import (
	"io"
	"path/filepath"
	"strings"
)

// Parser extracts plain text from a document body.
type Parser interface {
	Parse(r io.Reader) (string, error)
}

var byExtension = map[string]Parser{
	".pdf":      PDF{},
	".txt":      Text{},
	".md":       Text{},
	".markdown": Text{},
	".html":     HTML{},
	".htm":      HTML{},
}

// ForFile picks a parser from the file extension.
func ForFile(name string) (Parser, bool) {
	p, ok := byExtension[strings.ToLower(filepath.Ext(name))]
	return p, ok
}
