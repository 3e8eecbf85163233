package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{
			"zero window size",
			func(c *Config) { c.Editor.WindowSize = 0 },
			"window_size",
		},
		{
			"negative overlap",
			func(c *Config) { c.Editor.Overlap = -1 },
			"overlap",
		},
		{
			"overlap not smaller than window",
			func(c *Config) { c.Editor.WindowSize = 10; c.Editor.Overlap = 10 },
			"overlap",
		},
		{
			"empty sentinel",
			func(c *Config) { c.Editor.Sentinels = []string{"end_of_change", ""} },
			"sentinels",
		},
		{
			"lint enabled without command",
			func(c *Config) { c.Lint.Enabled = true },
			"lint.command",
		},
		{
			"unknown lint format",
			func(c *Config) {
				c.Lint.Enabled = true
				c.Lint.Command = []string{"flake8"}
				c.Lint.Format = "xml"
			},
			"lint.format",
		},
		{
			"negative lint timeout",
			func(c *Config) {
				c.Lint.Enabled = true
				c.Lint.Command = []string{"flake8"}
				c.Lint.Timeout = -1
			},
			"lint.timeout",
		},
		{
			"bad gateway port",
			func(c *Config) { c.Gateway.Port = 70000 },
			"gateway.port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}
