package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := Component(New(&buf, "debug", "json"), "pipeline")

	log.Info().Str("stage", "loading").Msg("Pipeline transition")

	var event map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "pipeline", event["component"])
	assert.Equal(t, "loading", event["stage"])
	assert.Equal(t, "info", event[zerolog.LevelFieldName])
	assert.Contains(t, event, zerolog.CallerFieldName)
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "loud", "json")

	log.Debug().Msg("hidden")
	assert.Empty(t, buf.String())
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}
