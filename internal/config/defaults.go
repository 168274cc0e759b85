package config

import (
	_ "embed"

	"github.com/roundhold/roundhold/internal/balance"
)

//go:embed defaults/roundhold.yaml
var defaultYAML []byte

// Default returns the built-in server configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        42069,
			MaxSessions: 10,
		},
		Round: RoundConfig{
			PrepSeconds:       balance.PrepSeconds,
			AckTimeoutSeconds: balance.RoundAckTimeoutSeconds,
			TickRate:          balance.DefaultTickRate,
		},
		Storage: StorageConfig{
			DBPath: "",
		},
	}
}
