package config

const (
	defaultProvider = "ollama"
	defaultUpstream = "http://localhost:11434"
	defaultListen   = ":8080"

	defaultClientTarget = "http://localhost:8080"
	defaultClientModel  = "llama3.2"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Gateway: GatewayConfig{
			Provider: defaultProvider,
			Upstream: defaultUpstream,
			Listen:   defaultListen,
		},
		Client: ClientConfig{
			Target: defaultClientTarget,
			Model:  defaultClientModel,
		},
	}
}
