// Package config loads environment variables into a typed Config. Defaults
// let the bridge run against a local ircd with no setup; a missing or
// placeholder OpenAI credential switches the reply engine to fallback-only
// mode instead of failing.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// placeholderKeys are credential values that mean "no credential".
var placeholderKeys = map[string]bool{
	"":                         true,
	"your_openai_api_key_here": true,
}

type Config struct {
	// IRC
	IRCServer   string   `env:"IRC_SERVER" envDefault:"localhost"`
	IRCPort     int      `env:"IRC_PORT" envDefault:"6667"`
	IRCChannels []string `env:"IRC_CHANNELS" envSeparator:"," envDefault:"#philosophy"`
	// IRCNick overrides the persona display name as the IRC nickname.
	IRCNick string `env:"IRC_NICK"`

	// HTTP / WebSocket
	HTTPPort int `env:"PORT" envDefault:"3000"`

	// Remote completion
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo"`

	// Personas
	PersonasFile string `env:"PERSONAS_FILE"`

	// Ambient channel announcements; 0 disables.
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL" envDefault:"0"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment into a Config and normalizes the channel list.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	channels := make([]string, 0, len(cfg.IRCChannels))
	for _, ch := range cfg.IRCChannels {
		ch = strings.TrimSpace(ch)
		if ch == "" {
			continue
		}
		if !strings.HasPrefix(ch, "#") {
			ch = "#" + ch
		}
		channels = append(channels, ch)
	}
	if len(channels) == 0 {
		return nil, fmt.Errorf("IRC_CHANNELS resolved to an empty list")
	}
	cfg.IRCChannels = channels

	return cfg, nil
}

// CompletionEnabled reports whether a usable remote-completion credential is
// configured. Placeholder values count as absent.
func (c *Config) CompletionEnabled() bool {
	return !placeholderKeys[strings.TrimSpace(c.OpenAIAPIKey)]
}
