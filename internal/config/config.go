// Package config provides YAML-based server configuration loading for the
// Roundhold server.
package config

import (
	"fmt"
	"time"
)

// Config is the full server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Round   RoundConfig   `yaml:"round"`
	Storage StorageConfig `yaml:"storage"`
}

// ServerConfig holds network settings.
type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	MaxSessions int    `yaml:"max_sessions"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RoundConfig holds round pacing settings.
type RoundConfig struct {
	PrepSeconds       int `yaml:"prep_seconds"`
	AckTimeoutSeconds int `yaml:"ack_timeout_seconds"`
	TickRate          int `yaml:"tick_rate"`
}

// PrepDuration returns the preparation window as a duration.
func (r RoundConfig) PrepDuration() time.Duration {
	return time.Duration(r.PrepSeconds) * time.Second
}

// AckTimeout returns the round-ack wait bound as a duration.
func (r RoundConfig) AckTimeout() time.Duration {
	return time.Duration(r.AckTimeoutSeconds) * time.Second
}

// StorageConfig holds persistence settings. An empty path disables the
// match-result ledger.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Server.Port)
	}
	if c.Round.TickRate <= 0 {
		return fmt.Errorf("config: tick_rate must be positive, got %d", c.Round.TickRate)
	}
	if c.Round.PrepSeconds <= 0 {
		return fmt.Errorf("config: prep_seconds must be positive, got %d", c.Round.PrepSeconds)
	}
	if c.Round.AckTimeoutSeconds <= 0 {
		return fmt.Errorf("config: ack_timeout_seconds must be positive, got %d", c.Round.AckTimeoutSeconds)
	}
	return nil
}
