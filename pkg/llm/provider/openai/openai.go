package openai

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/plumechat/plume/pkg/llm"
)

// provider implements the Provider interface for the OpenAI-compatible
// managed cloud gateway.
type provider struct {
	apiKey string
}

func New(apiKey string) *provider {
	return &provider{apiKey: apiKey}
}

func (o *provider) Name() string {
	return "openai"
}

func (o *provider) ChatURL(base string) string {
	return base + "/v1/chat/completions"
}

func (o *provider) ModelsURL(base string) string {
	return base + "/v1/models"
}

// MarshalChatRequest converts the internal request into the chat completions
// wire format. The context window budget has no equivalent here and is not
// forwarded.
func (o *provider) MarshalChatRequest(req *llm.ChatRequest) ([]byte, error) {
	messages := req.EffectiveMessages()

	converted := make([]chatMessage, 0, len(messages))
	for _, msg := range messages {
		converted = append(converted, chatMessage{Role: msg.Role, Content: msg.Content})
	}

	return json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    converted,
		Temperature: req.Temperature,
		Stream:      req.IsStreaming(),
	})
}

func (o *provider) ApplyHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}
}

func (o *provider) ParseResponse(payload []byte) (*llm.ChatResponse, error) {
	var resp chatResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("response contains no choices")
	}

	var usage *llm.Usage
	if resp.Usage != nil {
		usage = &llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}

	var createdAt time.Time
	if resp.Created > 0 {
		createdAt = time.Unix(resp.Created, 0).UTC()
	}

	return &llm.ChatResponse{
		Model:      resp.Model,
		CreatedAt:  createdAt,
		Content:    resp.Choices[0].Message.Content,
		StopReason: resp.Choices[0].FinishReason,
		Usage:      usage,
	}, nil
}

func (o *provider) ParseModels(payload []byte) ([]string, error) {
	var resp modelsResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(resp.Data))
	for _, m := range resp.Data {
		names = append(names, m.ID)
	}

	return names, nil
}
