package server

import (
	"errors"
	"time"
)

const (
	DefaultAddr    = "127.0.0.1:3000"
	DefaultTimeout = 60 * time.Second

	// shutdownTimeout bounds graceful shutdown of in-flight requests
	shutdownTimeout = 5 * time.Second
)

// Config controls the HTTP server.
type Config struct {
	// Addr is the listen address
	Addr string `mapstructure:"addr" yaml:"addr"`

	// Timeout bounds one synthesis request, taken from tts.timeout
	Timeout time.Duration `mapstructure:"-" yaml:"-"`
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:    DefaultAddr,
		Timeout: DefaultTimeout,
	}
}

// Validate checks the server configuration.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("server address is required")
	}
	if c.Timeout <= 0 {
		return errors.New("server timeout must be positive")
	}
	return nil
}
