package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/notesauth/internal/flagx"
	"github.com/dmitrijs2005/notesauth/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrGRPC string         `json:"endpoint_addr_grpc"`
	DatabaseDSN      string         `json:"database_dsn"`
	SecretKey        string         `json:"secret_key"`
	IntegrationKey   string         `json:"integration_key"`
	SessionTokenTTL  timex.Duration `json:"session_token_ttl"`
	ResetTokenTTL    timex.Duration `json:"reset_token_ttl"`
	CleanupInterval  timex.Duration `json:"cleanup_interval"`
	StoreTimeout     timex.Duration `json:"store_timeout"`
	FrontendURL      string         `json:"frontend_url"`
	DefaultRole      string         `json:"default_role"`
	LogLevel         string         `json:"log_level"`
}

// parseJson loads the file named by -c/-config (or $NOTES_AUTH_CONFIG) and
// copies every field present in it into config. No path means no change.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.IntegrationKey, c.IntegrationKey)
	setString(&config.FrontendURL, c.FrontendURL)
	setString(&config.DefaultRole, c.DefaultRole)
	setString(&config.LogLevel, c.LogLevel)

	if c.SessionTokenTTL.Duration != 0 {
		config.SessionTokenTTL = c.SessionTokenTTL.Duration
	}
	if c.ResetTokenTTL.Duration != 0 {
		config.ResetTokenTTL = c.ResetTokenTTL.Duration
	}
	if c.CleanupInterval.Duration != 0 {
		config.CleanupInterval = c.CleanupInterval.Duration
	}
	if c.StoreTimeout.Duration != 0 {
		config.StoreTimeout = c.StoreTimeout.Duration
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
