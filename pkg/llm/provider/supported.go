package provider

import (
	"fmt"

	"github.com/plumechat/plume/pkg/llm/provider/ollama"
	"github.com/plumechat/plume/pkg/llm/provider/openai"
)

// Supported provider type constants
const (
	Ollama = "ollama"
	OpenAI = "openai"
)

// Options carries provider construction settings.
type Options struct {
	// APIKey is sent as a bearer token by providers that require
	// authentication. The local inference server ignores it.
	APIKey string
}

// SupportedProviders returns the list of all supported provider type names.
func SupportedProviders() []string {
	return []string{Ollama, OpenAI}
}

// New creates a new Provider instance for the given provider type.
// Returns an error if the provider type is not recognized.
func New(providerType string, opts Options) (Provider, error) {
	switch providerType {
	case Ollama:
		return ollama.New(), nil
	case OpenAI:
		return openai.New(opts.APIKey), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %q (supported: %v)", providerType, SupportedProviders())
	}
}
