package provider

import (
	"net/http"

	"github.com/plumechat/plume/pkg/llm"
)

// Provider adapts the gateway's internal chat types to one upstream LLM
// backend's wire format. The streaming normalization layer is deliberately
// not part of this interface: streamed chunks from every provider flow
// through the same shape-driven extractor, so providers only describe how to
// reach their endpoints, how to marshal a request, and how to parse a
// complete non-streaming response.
type Provider interface {
	// Name returns the canonical provider name (e.g., "ollama", "openai")
	Name() string

	// ChatURL returns the chat completion endpoint for the given base URL.
	ChatURL(base string) string

	// ModelsURL returns the model discovery endpoint for the given base URL.
	ModelsURL(base string) string

	// MarshalChatRequest converts the internal request into the provider's
	// wire format.
	MarshalChatRequest(req *llm.ChatRequest) ([]byte, error)

	// ApplyHeaders sets provider-specific headers (content type,
	// authorization) on an upstream request.
	ApplyHeaders(req *http.Request)

	// ParseResponse converts a complete non-streaming response body into the
	// internal format.
	ParseResponse(payload []byte) (*llm.ChatResponse, error)

	// ParseModels extracts the available model names from the model
	// discovery response body.
	ParseModels(payload []byte) ([]string, error)
}
