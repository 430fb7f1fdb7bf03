package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/platform/config"
)

func TestNewWithWriter(t *testing.T) {
	t.Run("json handler by default", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, config.LogConfig{Format: "json", Level: "info"})
		log.Info("search completed", "candidates", 2)

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "search completed", line["msg"])
		assert.EqualValues(t, 2, line["candidates"])
	})

	t.Run("level filters debug", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, config.LogConfig{Format: "text", Level: "warn"})
		log.Debug("noise")
		log.Info("noise")
		assert.Empty(t, buf.String())
		log.Warn("fetch degraded")
		assert.Contains(t, buf.String(), "fetch degraded")
	})
}
