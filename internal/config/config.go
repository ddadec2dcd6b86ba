// Package config defines service configuration structures and loading hooks.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/mapty/internal/adapters/kv"
	"github.com/okian/mapty/internal/adapters/repository"
)

// Geolocation sources.
const (
	GeolocationStatic = "static"
	GeolocationClient = "client"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StorageBackend selects the persistence slot backend: memory, badger or redis.
	StorageBackend string `koanf:"storage_backend"`

	// StorageKey names the slot holding the serialized workouts.
	StorageKey string `koanf:"storage_key"`

	// BadgerDir is the badger data directory. Empty keeps badger in memory.
	BadgerDir string `koanf:"badger_dir"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	RedisPrefix   string `koanf:"redis_prefix"`

	// MapZoom is the zoom used for the initial view and for select.
	MapZoom int `koanf:"map_zoom"`

	// HomeLat and HomeLng are the position answered by the static provider.
	HomeLat float64 `koanf:"home_lat"`
	HomeLng float64 `koanf:"home_lng"`

	// Geolocation selects who answers position requests: static or client.
	Geolocation string `koanf:"geolocation"`

	// GeolocationTimeoutMS fails a client position request after this long. Zero waits forever.
	GeolocationTimeoutMS int `koanf:"geolocation_timeout_ms"`

	// FormResetDelayMS is the delay before a hidden form is usable again.
	FormResetDelayMS int `koanf:"form_reset_delay_ms"`

	// StrictMode makes startup fail on a corrupt or unreadable slot and
	// rejects non-positive cycling elevation gain.
	StrictMode bool `koanf:"strict_mode"`

	// QueueSize bounds the session command queue.
	QueueSize int `koanf:"queue_size"`

	// OpenBrowser opens the page in the default browser once listening.
	OpenBrowser bool `koanf:"open_browser"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		StorageBackend:   kv.BackendBadger,
		StorageKey:       repository.DefaultKey,
		BadgerDir:        "data",
		RedisAddr:        "localhost:6379",
		RedisPrefix:      "mapty:",
		MapZoom:          13,
		HomeLat:          50.0755,
		HomeLng:          14.4378,
		Geolocation:      GeolocationClient,
		FormResetDelayMS: 1000,
		QueueSize:        256,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.StorageKey) == "":
		return fmt.Errorf("%w: storage_key must not be empty", ErrInvalidConfig)
	case c.MapZoom < 0 || c.MapZoom > 20:
		return fmt.Errorf("%w: map_zoom %d out of range 0..20", ErrInvalidConfig, c.MapZoom)
	case c.HomeLat < -90 || c.HomeLat > 90 || c.HomeLng < -180 || c.HomeLng > 180:
		return fmt.Errorf("%w: home position out of range", ErrInvalidConfig)
	case c.GeolocationTimeoutMS < 0 || c.FormResetDelayMS < 0:
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	}
	switch c.StorageBackend {
	case kv.BackendMemory, kv.BackendBadger, kv.BackendRedis:
	default:
		return fmt.Errorf("%w: storage_backend %q", ErrInvalidConfig, c.StorageBackend)
	}
	switch c.Geolocation {
	case GeolocationStatic, GeolocationClient:
	default:
		return fmt.Errorf("%w: geolocation %q", ErrInvalidConfig, c.Geolocation)
	}
	return nil
}

// Storage returns the kv backend settings.
func (c *Config) Storage() kv.Config {
	return kv.Config{
		Backend:       c.StorageBackend,
		BadgerDir:     c.BadgerDir,
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisDB:       c.RedisDB,
		RedisPrefix:   c.RedisPrefix,
	}
}

// GeolocationTimeout returns the client position timeout.
func (c *Config) GeolocationTimeout() time.Duration {
	return time.Duration(c.GeolocationTimeoutMS) * time.Millisecond
}

// FormResetDelay returns the form re-enable delay.
func (c *Config) FormResetDelay() time.Duration {
	return time.Duration(c.FormResetDelayMS) * time.Millisecond
}
