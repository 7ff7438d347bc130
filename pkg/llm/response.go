package llm

import "time"

// ChatResponse represents a provider-agnostic non-streaming chat completion.
// This is the internal representation after parsing provider-specific
// response formats.
type ChatResponse struct {
	// Model that generated the response
	Model string `json:"model"`

	// Response timestamp
	CreatedAt time.Time `json:"created_at,omitzero"`

	// The assistant's complete reply text
	Content string `json:"content"`

	// Stop reason (e.g., "stop", "length")
	StopReason string `json:"stop_reason,omitempty"`

	// Token usage metrics, when the provider reports them
	Usage *Usage `json:"usage,omitempty"`
}

// Usage contains normalized token counts.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}
