// Package config defines and loads the lined configuration.
package config

import (
	"github.com/arnvidr/lined/pkg/adapter"
	"github.com/arnvidr/lined/pkg/lint"
	"github.com/arnvidr/lined/pkg/session"
)

// Config represents the main lined configuration
type Config struct {
	// Editor window geometry and payload sentinels
	Editor EditorConfig `json:"editor" mapstructure:"editor"`

	// Lint gate
	Lint LintConfig `json:"lint" mapstructure:"lint"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Gateway server
	Gateway GatewayConfig `json:"gateway" mapstructure:"gateway"`
}

// EditorConfig holds window geometry and payload sentinels
type EditorConfig struct {
	WindowSize int      `json:"window_size" mapstructure:"window_size"`
	Overlap    int      `json:"overlap" mapstructure:"overlap"`
	Sentinels  []string `json:"sentinels" mapstructure:"sentinels"`
	WatchFile  bool     `json:"watch_file" mapstructure:"watch_file"`
}

// LintConfig holds the optional validation gate configuration
type LintConfig struct {
	Enabled bool     `json:"enabled" mapstructure:"enabled"`
	Command []string `json:"command" mapstructure:"command"`
	Format  string   `json:"format" mapstructure:"format"` // text, json
	Timeout int      `json:"timeout" mapstructure:"timeout"` // seconds
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `json:"level" mapstructure:"level"`
	File    string `json:"file" mapstructure:"file"`
	Console bool   `json:"console" mapstructure:"console"`
	Pretty  bool   `json:"pretty" mapstructure:"pretty"`
}

// GatewayConfig holds gateway server configuration
type GatewayConfig struct {
	Host         string `json:"host" mapstructure:"host"`
	Port         int    `json:"port" mapstructure:"port"`
	SharedSecret string `json:"shared_secret" mapstructure:"shared_secret"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Editor: EditorConfig{
			WindowSize: session.DefaultWindowSize,
			Overlap:    session.DefaultOverlap,
			Sentinels:  adapter.DefaultSentinels,
			WatchFile:  true,
		},
		Lint: LintConfig{
			Enabled: false,
			Format:  string(lint.FormatText),
			Timeout: 30,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: false,
		},
		Gateway: GatewayConfig{
			Host: "127.0.0.1",
			Port: 8643,
		},
	}
}
