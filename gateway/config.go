package gateway

// Config holds the gateway server configuration.
type Config struct {
	// ListenAddr is the address the gateway listens on (e.g. ":8080")
	ListenAddr string

	// Provider selects the upstream backend type ("ollama" or "openai")
	Provider string

	// UpstreamURL is the base URL of the upstream provider
	UpstreamURL string

	// APIKey authenticates against the cloud gateway. Ignored by the local
	// inference server.
	APIKey string
}
