// Package config loads the client configuration from a TOML file. CLI flags
// override file values; the file only supplies defaults for one machine.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

var (
	ErrHostRequired   = errors.New("config: host required")
	ErrInvalidPort    = errors.New("config: port must be in 1..65535")
	ErrInvalidTimeout = errors.New("config: timeout must be positive")
)

// ClientConfig is the persisted client configuration.
type ClientConfig struct {
	Host           string  `toml:"host"`
	Port           int     `toml:"port"`
	TimeoutSeconds float64 `toml:"timeout_seconds"`
	Record         bool    `toml:"record"`
	SessionsDir    string  `toml:"sessions_dir"`
	LogLevel       string  `toml:"log_level"`
}

func Default() ClientConfig {
	return ClientConfig{
		TimeoutSeconds: 2.0,
		SessionsDir:    "sessions",
	}
}

// Load reads path into a ClientConfig on top of Default. Validation is left
// to the caller because flags may still override loaded values.
func Load(path string) (ClientConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return ClientConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return cfg, nil
}

func (c ClientConfig) Validate() error {
	if c.Host == "" {
		return ErrHostRequired
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: got %d", ErrInvalidPort, c.Port)
	}
	if c.TimeoutSeconds <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// Address returns the host:port dial target.
func (c ClientConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Timeout converts the configured seconds into a duration.
func (c ClientConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds * float64(time.Second))
}
