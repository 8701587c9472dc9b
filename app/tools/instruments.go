package tools

import (
	"encoding/json"
	"errors"
	"strings"
)

const GetInstrument = "get_instrument"

// Instrument is the record returned by the reference-data lookup.
type Instrument struct {
	ISIN          string `json:"isin"`
	Name          string `json:"name"`
	IsSustainable bool   `json:"isSustainable"`
}

type instrumentLookup struct {
	Name string `json:"name"`
}

// InstrumentTool is a stand-in for an external reference-data system: every
// name resolves to the same ISIN and a sustainable flag.
func InstrumentTool() Tool {
	return Tool{
		Name:        GetInstrument,
		Description: "Get the instrument details for a name",
		Parameters: Parameter{
			Type: "object",
			Properties: map[string]any{
				"name": map[string]any{
					"type":        "string",
					"description": "Instrument name to look up for",
				},
			},
			Required: []string{"name"},
		},
		HandlerFunc: func(task ToolTask) (string, error) {
			return withParsed[instrumentLookup](task.Parameters, GetInstrument, lookupInstrument)
		},
	}
}

func lookupInstrument(p instrumentLookup) (string, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return "", errors.New("invalid parameters: 'name' is required")
	}
	out, err := json.Marshal(Instrument{ISIN: "NL1212121", Name: name, IsSustainable: true})
	if err != nil {
		return "", err
	}
	return string(out), nil
}
