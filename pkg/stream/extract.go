package stream

import "encoding/json"

// deltaPayload probes the streaming chunk shapes of both backends: the
// OpenAI-compatible cloud gateway (choices[].delta.content), the local
// inference server's chat shape (message.content), and its alternate flat
// shape (response).
type deltaPayload struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Response string `json:"response"`
}

// ExtractDelta parses a frame payload and returns its incremental content
// text. Extraction is shape-driven, not provider-driven: the first non-empty
// field in fallback order wins, so a provider drifting slightly in shape
// degrades to the next strategy instead of failing.
//
// A non-nil error marks a malformed payload; the caller logs and skips it,
// and the stream continues. An empty delta with a nil error marks a frame
// with no content (role-only or metadata frames), absorbed silently.
func ExtractDelta(payload []byte) (string, error) {
	var p deltaPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}

	if len(p.Choices) > 0 && p.Choices[0].Delta.Content != "" {
		return p.Choices[0].Delta.Content, nil
	}

	if p.Message.Content != "" {
		return p.Message.Content, nil
	}

	return p.Response, nil
}
