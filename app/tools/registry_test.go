package tools

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoTool(name string) Tool {
	return Tool{
		Name:        name,
		Description: "echo",
		Parameters:  Parameter{Type: "object"},
		HandlerFunc: func(task ToolTask) (string, error) { return task.Key, nil },
	}
}

func TestRegistryRegister(t *testing.T) {
	r, err := NewRegistry(echoTool("b"), echoTool("a"))
	require.NoError(t, err)

	assert.Error(t, r.Register(echoTool("a")), "duplicate name")
	assert.Error(t, r.Register(Tool{Name: "", HandlerFunc: echoTool("x").HandlerFunc}))
	assert.Error(t, r.Register(Tool{Name: "nohandler"}))

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Name)
	assert.Equal(t, "b", all[1].Name)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = r.Register(echoTool(string(rune('a' + i))))
			r.All()
		}(i)
	}
	wg.Wait()
	assert.Len(t, r.All(), 20)
}

func TestRegistryExecuteInstrument(t *testing.T) {
	r, err := NewRegistry(InstrumentTool())
	require.NoError(t, err)

	out, err := r.Execute(GetInstrument, `{"name":"Green Bond Fund"}`)
	require.NoError(t, err)

	var inst Instrument
	require.NoError(t, json.Unmarshal([]byte(out), &inst))
	assert.Equal(t, Instrument{ISIN: "NL1212121", Name: "Green Bond Fund", IsSustainable: true}, inst)
}

func TestRegistryExecuteErrors(t *testing.T) {
	r, err := NewRegistry(InstrumentTool())
	require.NoError(t, err)

	_, err = r.Execute("missing", `{}`)
	assert.ErrorContains(t, err, "unknown tool")

	_, err = r.Execute(GetInstrument, `{not json`)
	assert.Error(t, err)

	_, err = r.Execute(GetInstrument, ``)
	assert.ErrorContains(t, err, "'name' is required")
}

func TestInstrumentToolSchema(t *testing.T) {
	b, err := json.Marshal(InstrumentTool())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "get_instrument",
		"description": "Get the instrument details for a name",
		"parameters": {
			"type": "object",
			"properties": {"name": {"type": "string", "description": "Instrument name to look up for"}},
			"required": ["name"]
		}
	}`, string(b))
}
