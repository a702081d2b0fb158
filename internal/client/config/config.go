package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime settings for notesctl.
//
// Fields:
//   - ServerEndpointAddr: host:port of the credential service.
//   - Timeout: deadline applied to every RPC.
//   - Token: session token sent as a bearer credential on admin calls.
type Config struct {
	ServerEndpointAddr string        `env:"NOTES_AUTH_SERVER_ADDR"`
	Timeout            time.Duration `env:"NOTES_AUTH_TIMEOUT"`
	Token              string        `env:"NOTES_AUTH_TOKEN"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.Timeout = 10 * time.Second
}

// LoadConfig applies defaults, then overlays environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
