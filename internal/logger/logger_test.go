package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		" WARN ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew_FiltersAndTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	log := Component(New(Config{Level: "warn", Out: &buf}), "collector")

	log.Info().Msg("hidden")
	log.Warn().Str("symbol", "AAPL").Msg("price unavailable")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "collector", entry["component"])
	assert.Equal(t, "AAPL", entry["symbol"])
	assert.Equal(t, "price unavailable", entry["message"])
}
