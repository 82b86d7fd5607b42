package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New("info", "json", &buf)

	logger.Debug("hidden")
	logger.Info("recipe imported", "source_site", "AllRecipes", "ingredients", 3)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "recipe imported", entry["msg"])
	assert.Equal(t, "AllRecipes", entry["source_site"])
}

func TestNewTextLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New("DEBUG", "text", &buf)
	logger.Debug("transcript unavailable", "video_id", "abc")
	assert.Contains(t, buf.String(), "transcript unavailable")
	assert.Contains(t, buf.String(), "video_id=abc")

	buf.Reset()
	logger = New("nonsense", "text", &buf)
	logger.Debug("dropped")
	logger.Warn("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}
