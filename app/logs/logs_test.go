package logs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	cases := []struct {
		name    string
		level   string
		format  string
		want    zapcore.Level
		wantErr bool
	}{
		{"json_info", "info", "json", zapcore.InfoLevel, false},
		{"console_debug", "DEBUG", "console", zapcore.DebugLevel, false},
		{"default_format", "warn", "", zapcore.WarnLevel, false},
		{"bad_level", "loud", "json", 0, true},
		{"bad_format", "info", "xml", 0, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			logger, err := New(c.level, c.format)
			if c.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(c.want))
			assert.False(t, logger.Core().Enabled(c.want-1))
		})
	}
}
