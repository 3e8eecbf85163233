package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 100, cfg.Editor.WindowSize)
	assert.Equal(t, 2, cfg.Editor.Overlap)
	assert.Equal(t, []string{"end_of_change", "end_of_edit"}, cfg.Editor.Sentinels)
	assert.True(t, cfg.Editor.WatchFile)

	assert.False(t, cfg.Lint.Enabled)
	assert.Equal(t, "text", cfg.Lint.Format)
	assert.Equal(t, 30, cfg.Lint.Timeout)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "127.0.0.1", cfg.Gateway.Host)

	assert.NoError(t, Validate(cfg))
}
