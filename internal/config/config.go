// Waymark - Real-Time Location Sharing Backend
// Copyright 2026 Waymark Contributors
// SPDX-License-Identifier: MIT
// https://github.com/waymark-app/waymark

// Package config loads Waymark configuration from defaults, an optional
// YAML file, and environment variables, in that order of precedence.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the Waymark server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Media    MediaConfig    `koanf:"media"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port    int           `koanf:"port"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`
}

// DatabaseConfig holds the document store location.
type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// MediaConfig holds upload storage settings.
type MediaConfig struct {
	Dir         string `koanf:"dir"`
	MaxUploadMB int    `koanf:"max_upload_mb"`
	MaxPhotos   int    `koanf:"max_photos"`
	MaxVideos   int    `koanf:"max_videos"`
}

// SecurityConfig holds CORS settings.
type SecurityConfig struct {
	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path must not be empty")
	}
	if c.Media.Dir == "" {
		return fmt.Errorf("media dir must not be empty")
	}
	if c.Media.MaxUploadMB < 1 {
		return fmt.Errorf("max upload size must be at least 1 MB, got %d", c.Media.MaxUploadMB)
	}
	if c.Media.MaxPhotos < 0 || c.Media.MaxVideos < 0 {
		return fmt.Errorf("media caps must not be negative")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}
	return nil
}
