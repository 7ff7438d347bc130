package llm

// ChatRequest is the inbound chat request from the browser client.
// This is the provider-agnostic representation; each provider adapter
// marshals it into its own wire format.
type ChatRequest struct {
	// Conversation messages in order, oldest first
	Messages []Message `json:"messages"`

	// Model identifier (e.g., "llama3.2", "gpt-4o-mini").
	// Passed through to the provider unvalidated.
	Model string `json:"model"`

	// Sampling temperature, 0–2
	Temperature *float64 `json:"temperature,omitempty"`

	// Context window token budget. Maps to Ollama's num_ctx option;
	// the OpenAI-compatible gateway has no equivalent and ignores it.
	ContextWindow *int `json:"contextWindow,omitempty"`

	// Optional system prompt, prepended as a system message before the
	// request is handed to the provider
	SystemPrompt string `json:"systemPrompt,omitempty"`

	// Whether to stream the response
	Stream *bool `json:"stream,omitempty"`
}

// IsStreaming reports whether the request asks for a streamed response.
// A missing stream field defaults to non-streaming.
func (r *ChatRequest) IsStreaming() bool {
	return r.Stream != nil && *r.Stream
}

// EffectiveMessages returns the conversation with the system prompt, if any,
// prepended as a system message. The original slice is not modified.
func (r *ChatRequest) EffectiveMessages() []Message {
	if r.SystemPrompt == "" {
		return r.Messages
	}

	messages := make([]Message, 0, len(r.Messages)+1)
	messages = append(messages, Message{Role: "system", Content: r.SystemPrompt})
	messages = append(messages, r.Messages...)
	return messages
}
