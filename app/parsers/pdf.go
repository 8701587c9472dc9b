package parsers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"GoRAGWorkshop/app/faults"
)

type PDF struct{}

func (PDF) Parse(r io.Reader) (text string, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", faults.Parse("read pdf", err)
	}
	if len(data) == 0 {
		return "", faults.Parse("parse pdf", errors.New("empty file"))
	}

	// the pdf reader panics on some malformed inputs
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", faults.Parse("parse pdf", fmt.Errorf("malformed document: %v", rec))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", faults.Parse("parse pdf", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", faults.Parse("extract pdf text", err)
	}
	var buf strings.Builder
	if _, err = io.Copy(&buf, plain); err != nil {
		return "", faults.Parse("extract pdf text", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
