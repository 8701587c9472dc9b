package parsers

import (
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"GoRAGWorkshop/app/faults"
)

type Text struct{}

func (Text) Parse(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", faults.Parse("read text", err)
	}
	if !utf8.Valid(data) {
		return "", faults.Parse("parse text", errors.New("content is not valid UTF-8"))
	}
	return strings.TrimSpace(string(data)), nil
}
