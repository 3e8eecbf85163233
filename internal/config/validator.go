package config

import (
	"fmt"

	"github.com/arnvidr/lined/pkg/lint"
)

// Validate checks the configuration for values the editor cannot run with.
func Validate(cfg *Config) error {
	if cfg.Editor.WindowSize <= 0 {
		return fmt.Errorf("editor.window_size must be positive, got %d", cfg.Editor.WindowSize)
	}
	if cfg.Editor.Overlap < 0 {
		return fmt.Errorf("editor.overlap must not be negative, got %d", cfg.Editor.Overlap)
	}
	if cfg.Editor.Overlap >= cfg.Editor.WindowSize {
		return fmt.Errorf("editor.overlap (%d) must be smaller than editor.window_size (%d)",
			cfg.Editor.Overlap, cfg.Editor.WindowSize)
	}
	for _, s := range cfg.Editor.Sentinels {
		if s == "" {
			return fmt.Errorf("editor.sentinels must not contain empty strings")
		}
	}

	if cfg.Lint.Enabled {
		if len(cfg.Lint.Command) == 0 {
			return fmt.Errorf("lint.command is required when lint.enabled is true")
		}
		switch lint.Format(cfg.Lint.Format) {
		case lint.FormatText, lint.FormatJSON, "":
		default:
			return fmt.Errorf("lint.format must be %q or %q, got %q",
				lint.FormatText, lint.FormatJSON, cfg.Lint.Format)
		}
		if cfg.Lint.Timeout < 0 {
			return fmt.Errorf("lint.timeout must not be negative, got %d", cfg.Lint.Timeout)
		}
	}

	if cfg.Gateway.Port < 0 || cfg.Gateway.Port > 65535 {
		return fmt.Errorf("gateway.port must be in 0-65535, got %d", cfg.Gateway.Port)
	}

	return nil
}
