package ollama

import (
	"encoding/json"
	"net/http"

	"github.com/plumechat/plume/pkg/llm"
)

// provider implements the Provider interface for the local Ollama-style
// inference server.
type provider struct{}

func New() *provider { return &provider{} }

func (o *provider) Name() string {
	return "ollama"
}

func (o *provider) ChatURL(base string) string {
	return base + "/api/chat"
}

func (o *provider) ModelsURL(base string) string {
	return base + "/api/tags"
}

// MarshalChatRequest converts the internal request into Ollama's wire format.
// The stream field is always set explicitly: Ollama streams by default when
// it is omitted, and the gateway decides streaming, not the upstream.
func (o *provider) MarshalChatRequest(req *llm.ChatRequest) ([]byte, error) {
	messages := req.EffectiveMessages()

	converted := make([]chatMessage, 0, len(messages))
	for _, msg := range messages {
		converted = append(converted, chatMessage{Role: msg.Role, Content: msg.Content})
	}

	out := chatRequest{
		Model:    req.Model,
		Messages: converted,
		Stream:   req.IsStreaming(),
	}

	// The context window budget maps to num_ctx
	if req.Temperature != nil || req.ContextWindow != nil {
		out.Options = &modelOptions{
			Temperature: req.Temperature,
			NumCtx:      req.ContextWindow,
		}
	}

	return json.Marshal(out)
}

func (o *provider) ApplyHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
}

// ParseResponse parses a complete non-streaming response. The chat shape
// (message.content) is preferred; the flat response field is the fallback.
func (o *provider) ParseResponse(payload []byte) (*llm.ChatResponse, error) {
	var resp chatResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, err
	}

	content := resp.Message.Content
	if content == "" {
		content = resp.Response
	}

	var usage *llm.Usage
	if resp.PromptEvalCount > 0 || resp.EvalCount > 0 {
		usage = &llm.Usage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
		}
	}

	stopReason := resp.DoneReason
	if stopReason == "" && resp.Done {
		stopReason = "stop"
	}

	return &llm.ChatResponse{
		Model:      resp.Model,
		CreatedAt:  resp.CreatedAt,
		Content:    content,
		StopReason: stopReason,
		Usage:      usage,
	}, nil
}

func (o *provider) ParseModels(payload []byte) ([]string, error) {
	var resp tagsResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		names = append(names, m.Name)
	}

	return names, nil
}
