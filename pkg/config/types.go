package config

// Config represents the persistent plume configuration stored as config.toml
// in the .plume/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version int           `toml:"version"`
	Gateway GatewayConfig `toml:"gateway"`
	Client  ClientConfig  `toml:"client"`
}

// GatewayConfig holds gateway server settings.
type GatewayConfig struct {
	Provider string `toml:"provider,omitempty"`
	Upstream string `toml:"upstream,omitempty"`
	Listen   string `toml:"listen,omitempty"`
	APIKey   string `toml:"api_key,omitempty"`
}

// ClientConfig holds settings for CLI commands that connect to the running
// gateway server (e.g. plume chat). Target is a full URL (scheme + host + port).
type ClientConfig struct {
	Target string `toml:"target,omitempty"`
	Model  string `toml:"model,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"gateway.provider": {
		get: func(c *Config) string { return c.Gateway.Provider },
		set: func(c *Config, v string) error { c.Gateway.Provider = v; return nil },
	},
	"gateway.upstream": {
		get: func(c *Config) string { return c.Gateway.Upstream },
		set: func(c *Config, v string) error { c.Gateway.Upstream = v; return nil },
	},
	"gateway.listen": {
		get: func(c *Config) string { return c.Gateway.Listen },
		set: func(c *Config, v string) error { c.Gateway.Listen = v; return nil },
	},
	"gateway.api_key": {
		get: func(c *Config) string { return c.Gateway.APIKey },
		set: func(c *Config, v string) error { c.Gateway.APIKey = v; return nil },
	},
	"client.target": {
		get: func(c *Config) string { return c.Client.Target },
		set: func(c *Config, v string) error { c.Client.Target = v; return nil },
	},
	"client.model": {
		get: func(c *Config) string { return c.Client.Model },
		set: func(c *Config, v string) error { c.Client.Model = v; return nil },
	},
}
