package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent binder configuration stored as config.toml
// in the .binder/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version int           `toml:"version"`
	Backend BackendConfig `toml:"backend"`
	Chat    ChatConfig    `toml:"chat"`
	Serve   ServeConfig   `toml:"serve"`
	Storage StorageConfig `toml:"storage"`
	Events  EventsConfig  `toml:"events"`
}

// BackendConfig holds settings for reaching the portfolio backend.
// BaseURL is a full URL (scheme + host + port).
type BackendConfig struct {
	BaseURL        string `toml:"base_url,omitempty"`
	OrganizationID string `toml:"organization_id,omitempty"`
	MaxRetries     int    `toml:"max_retries,omitempty"`
}

// ChatConfig holds the default scope applied to chat requests.
type ChatConfig struct {
	PropertyID   string `toml:"property_id,omitempty"`
	DocumentType string `toml:"document_type,omitempty"`
}

// ServeConfig holds mock backend server settings.
type ServeConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// StorageConfig selects where chat transcripts are recorded.
type StorageConfig struct {
	Provider    string `toml:"provider,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// EventsConfig selects where chat completion events are published.
type EventsConfig struct {
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"backend.base_url": {
		get: func(c *Config) string { return c.Backend.BaseURL },
		set: func(c *Config, v string) error { c.Backend.BaseURL = v; return nil },
	},
	"backend.organization_id": {
		get: func(c *Config) string { return c.Backend.OrganizationID },
		set: func(c *Config, v string) error { c.Backend.OrganizationID = v; return nil },
	},
	"backend.max_retries": {
		get: func(c *Config) string { return strconv.Itoa(c.Backend.MaxRetries) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for backend.max_retries: %w", err)
			}
			if n < 0 {
				return fmt.Errorf("invalid value for backend.max_retries: %d is negative", n)
			}
			c.Backend.MaxRetries = n
			return nil
		},
	},
	"chat.property_id": {
		get: func(c *Config) string { return c.Chat.PropertyID },
		set: func(c *Config, v string) error { c.Chat.PropertyID = v; return nil },
	},
	"chat.document_type": {
		get: func(c *Config) string { return c.Chat.DocumentType },
		set: func(c *Config, v string) error { c.Chat.DocumentType = v; return nil },
	},
	"serve.listen": {
		get: func(c *Config) string { return c.Serve.Listen },
		set: func(c *Config, v string) error { c.Serve.Listen = v; return nil },
	},
	"storage.provider": {
		get: func(c *Config) string { return c.Storage.Provider },
		set: func(c *Config, v string) error {
			switch v {
			case StorageMemory, StorageSQLite, StoragePostgres:
				c.Storage.Provider = v
				return nil
			default:
				return fmt.Errorf("invalid value for storage.provider: %q (available: %s, %s, %s)",
					v, StorageMemory, StorageSQLite, StoragePostgres)
			}
		},
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_dsn": {
		get: func(c *Config) string { return c.Storage.PostgresDSN },
		set: func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
	},
	"events.provider": {
		get: func(c *Config) string { return c.Events.Provider },
		set: func(c *Config, v string) error {
			switch v {
			case EventsNop, EventsKafka:
				c.Events.Provider = v
				return nil
			default:
				return fmt.Errorf("invalid value for events.provider: %q (available: %s, %s)",
					v, EventsNop, EventsKafka)
			}
		},
	},
	"events.brokers": {
		get: func(c *Config) string { return strings.Join(c.Events.Brokers, ",") },
		set: func(c *Config, v string) error {
			c.Events.Brokers = splitList(v)
			return nil
		},
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
}

// splitList parses a comma separated value, dropping empty entries.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
