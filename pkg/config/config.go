// Package config provides configuration management for the CacheMir server.
//
// Configuration is loaded from, in order of precedence:
//  1. Environment variables (highest priority; they override flags)
//  2. Command-line flags
//  3. Default values (lowest priority)
//
// Example usage:
//
//	cfg := config.LoadServerConfig()
//	if err := cfg.Validate(); err != nil {
//		log.Fatal(err)
//	}
//	srv := server.New(cfg, cache.New())
//
// Environment variables are prefixed with "CACHEMIR_" and use uppercase
// names. For example, the server port can be set with CACHEMIR_PORT=31337.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
)

// Default server configuration constants, matching spec.md's external
// interface (§6): default bind 127.0.0.1:31337.
const (
	DefaultServerPort       = 31337
	DefaultServerHost       = "127.0.0.1"
	DefaultMaxConnections   = 1000
	DefaultReadTimeoutSecs  = 30
	DefaultWriteTimeoutSecs = 10
)

// ServerConfig holds all configuration options for a CacheMir server
// instance.
//
// Example:
//
//	cfg := &ServerConfig{Host: "0.0.0.0", Port: 31337, MaxConns: 1000}
//	if err := cfg.Validate(); err != nil {
//		log.Fatal(err)
//	}
type ServerConfig struct {
	Host         string // Host address to bind to (default: "127.0.0.1")
	LogLevel     string // Log level: debug, info, warn, error (default: "info")
	Port         int    // TCP port to listen on (default: 31337)
	MaxConns     int    // Connection limit setting (default: 1000); Validate requires it positive, the server does not enforce it
	ReadTimeout  int    // Read timeout in seconds (default: 30)
	WriteTimeout int    // Write timeout in seconds (default: 10)
}

// LoadServerConfig builds a ServerConfig from command-line flags and
// environment variables, with sensible defaults.
//
// Command-line flags:
//
//	-port, -host, -max-conns, -read-timeout, -write-timeout, -log-level
//
// Environment variables:
//
//	CACHEMIR_PORT, CACHEMIR_HOST, CACHEMIR_MAX_CONNS
//
// Returns:
//   - ServerConfig with values loaded from flags, environment, and defaults
func LoadServerConfig() *ServerConfig {
	cfg := &ServerConfig{
		Port:         DefaultServerPort,
		Host:         DefaultServerHost,
		MaxConns:     DefaultMaxConnections,
		ReadTimeout:  DefaultReadTimeoutSecs,
		WriteTimeout: DefaultWriteTimeoutSecs,
		LogLevel:     "info",
	}

	flag.IntVar(&cfg.Port, "port", cfg.Port, "Server port")
	flag.StringVar(&cfg.Host, "host", cfg.Host, "Server host")
	flag.IntVar(&cfg.MaxConns, "max-conns", cfg.MaxConns, "Maximum concurrent connections")
	flag.IntVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "Read timeout in seconds")
	flag.IntVar(&cfg.WriteTimeout, "write-timeout", cfg.WriteTimeout, "Write timeout in seconds")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flag.Parse()

	if port := os.Getenv("CACHEMIR_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	}

	if host := os.Getenv("CACHEMIR_HOST"); host != "" {
		cfg.Host = host
	}

	if maxConns := os.Getenv("CACHEMIR_MAX_CONNS"); maxConns != "" {
		if mc, err := strconv.Atoi(maxConns); err == nil {
			cfg.MaxConns = mc
		}
	}

	return cfg
}

// Address returns the full address string for the server to bind to,
// suitable for net.Listen.
//
// Example:
//
//	cfg := &ServerConfig{Host: "0.0.0.0", Port: 31337}
//	addr := cfg.Address() // Returns "0.0.0.0:31337"
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks that ServerConfig's values are within acceptable ranges.
//
// Validation rules:
//   - Port must be between 1 and 65535
//   - MaxConns must be positive
//   - ReadTimeout and WriteTimeout must be positive
//   - LogLevel must be one of: debug, info, warn, error
func (c *ServerConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	if c.MaxConns < 1 {
		return fmt.Errorf("max connections must be positive: %d", c.MaxConns)
	}

	if c.ReadTimeout < 1 {
		return fmt.Errorf("read timeout must be positive: %d", c.ReadTimeout)
	}

	if c.WriteTimeout < 1 {
		return fmt.Errorf("write timeout must be positive: %d", c.WriteTimeout)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	return nil
}
