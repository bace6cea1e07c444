package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInitJSONOutput tests that JSON mode emits parseable structured lines
func TestInitJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: DebugLevel, JSONOutput: true, Output: &buf})

	Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "info", entry["level"])
}

// TestLevelFiltering tests that messages below the configured level are dropped
func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: WarnLevel, JSONOutput: true, Output: &buf})

	Debug("dropped")
	Info("dropped too")
	assert.Empty(t, buf.Bytes())

	Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

// TestChildLoggers tests contextual field attachment
func TestChildLoggers(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: DebugLevel, JSONOutput: true, Output: &buf})

	componentLogger := WithComponent("ingest")
	componentLogger.Info().Msg("tick")
	assert.Contains(t, buf.String(), `"component":"ingest"`)

	buf.Reset()
	signalLogger := WithSignalID("sig-3")
	signalLogger.Info().Msg("reading")
	assert.Contains(t, buf.String(), `"signal_id":"sig-3"`)

	buf.Reset()
	requestLogger := WithRequestID("req-1")
	requestLogger.Info().Msg("query")
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
}
