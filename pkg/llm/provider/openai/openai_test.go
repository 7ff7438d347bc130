package openai_test

import (
	"encoding/json"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/plumechat/plume/pkg/llm"
	"github.com/plumechat/plume/pkg/llm/provider"
	"github.com/plumechat/plume/pkg/llm/provider/openai"
)

var _ = Describe("OpenAI Provider", func() {
	var p provider.Provider

	BeforeEach(func() {
		p = openai.New("sk-test")
	})

	Describe("Name", func() {
		It("returns 'openai'", func() {
			Expect(p.Name()).To(Equal("openai"))
		})
	})

	Describe("URLs", func() {
		It("builds the chat completions URL", func() {
			Expect(p.ChatURL("https://api.openai.com")).To(Equal("https://api.openai.com/v1/chat/completions"))
		})

		It("builds the models URL", func() {
			Expect(p.ModelsURL("https://api.openai.com")).To(Equal("https://api.openai.com/v1/models"))
		})
	})

	Describe("MarshalChatRequest", func() {
		It("marshals model, messages, and stream", func() {
			streaming := true
			req := &llm.ChatRequest{
				Model:    "gpt-4o-mini",
				Messages: []llm.Message{{Role: "user", Content: "Hello"}},
				Stream:   &streaming,
			}

			body, err := p.MarshalChatRequest(req)
			Expect(err).NotTo(HaveOccurred())

			var out map[string]any
			Expect(json.Unmarshal(body, &out)).To(Succeed())
			Expect(out["model"]).To(Equal("gpt-4o-mini"))
			Expect(out["stream"]).To(BeTrue())

			messages, ok := out["messages"].([]any)
			Expect(ok).To(BeTrue())
			Expect(messages).To(HaveLen(1))
		})

		It("prepends the system prompt as a system message", func() {
			req := &llm.ChatRequest{
				Model:        "gpt-4o-mini",
				Messages:     []llm.Message{{Role: "user", Content: "Hello"}},
				SystemPrompt: "You are terse.",
			}

			body, err := p.MarshalChatRequest(req)
			Expect(err).NotTo(HaveOccurred())

			var out struct {
				Messages []llm.Message `json:"messages"`
			}
			Expect(json.Unmarshal(body, &out)).To(Succeed())
			Expect(out.Messages).To(HaveLen(2))
			Expect(out.Messages[0].Role).To(Equal("system"))
			Expect(out.Messages[0].Content).To(Equal("You are terse."))
			Expect(out.Messages[1].Role).To(Equal("user"))
		})

		It("forwards the temperature when set", func() {
			temp := 0.7
			req := &llm.ChatRequest{
				Model:       "gpt-4o-mini",
				Messages:    []llm.Message{{Role: "user", Content: "Hello"}},
				Temperature: &temp,
			}

			body, err := p.MarshalChatRequest(req)
			Expect(err).NotTo(HaveOccurred())

			var out map[string]any
			Expect(json.Unmarshal(body, &out)).To(Succeed())
			Expect(out["temperature"]).To(BeNumerically("~", 0.7))
		})

		It("does not forward the context window", func() {
			window := 4096
			req := &llm.ChatRequest{
				Model:         "gpt-4o-mini",
				Messages:      []llm.Message{{Role: "user", Content: "Hello"}},
				ContextWindow: &window,
			}

			body, err := p.MarshalChatRequest(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).NotTo(ContainSubstring("num_ctx"))
			Expect(string(body)).NotTo(ContainSubstring("contextWindow"))
		})
	})

	Describe("ApplyHeaders", func() {
		It("sets content type and bearer token", func() {
			httpReq, err := http.NewRequest(http.MethodPost, "http://example.com", nil)
			Expect(err).NotTo(HaveOccurred())

			p.ApplyHeaders(httpReq)
			Expect(httpReq.Header.Get("Content-Type")).To(Equal("application/json"))
			Expect(httpReq.Header.Get("Authorization")).To(Equal("Bearer sk-test"))
		})

		It("omits the authorization header without an API key", func() {
			noKey := openai.New("")
			httpReq, err := http.NewRequest(http.MethodPost, "http://example.com", nil)
			Expect(err).NotTo(HaveOccurred())

			noKey.ApplyHeaders(httpReq)
			Expect(httpReq.Header.Get("Authorization")).To(BeEmpty())
		})
	})

	Describe("ParseResponse", func() {
		It("parses a complete chat completion", func() {
			payload := []byte(`{
				"id": "chatcmpl-123",
				"model": "gpt-4o-mini",
				"created": 1700000000,
				"choices": [{"message": {"role": "assistant", "content": "Hi there"}, "finish_reason": "stop"}],
				"usage": {"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15}
			}`)

			resp, err := p.ParseResponse(payload)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Model).To(Equal("gpt-4o-mini"))
			Expect(resp.Content).To(Equal("Hi there"))
			Expect(resp.StopReason).To(Equal("stop"))
			Expect(resp.CreatedAt).To(Equal(time.Unix(1700000000, 0).UTC()))
			Expect(resp.Usage).NotTo(BeNil())
			Expect(resp.Usage.PromptTokens).To(Equal(12))
			Expect(resp.Usage.CompletionTokens).To(Equal(3))
			Expect(resp.Usage.TotalTokens).To(Equal(15))
		})

		It("returns an error when choices is empty", func() {
			_, err := p.ParseResponse([]byte(`{"model": "gpt-4o-mini", "choices": []}`))
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("no choices"))
		})

		It("returns an error for invalid JSON", func() {
			_, err := p.ParseResponse([]byte(`not json`))
			Expect(err).To(HaveOccurred())
		})

		It("leaves usage nil when absent", func() {
			payload := []byte(`{"model": "gpt-4o-mini", "choices": [{"message": {"content": "Hi"}}]}`)

			resp, err := p.ParseResponse(payload)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Usage).To(BeNil())
		})
	})

	Describe("ParseModels", func() {
		It("lists model IDs", func() {
			payload := []byte(`{"data": [{"id": "gpt-4o"}, {"id": "gpt-4o-mini"}]}`)

			models, err := p.ParseModels(payload)
			Expect(err).NotTo(HaveOccurred())
			Expect(models).To(Equal([]string{"gpt-4o", "gpt-4o-mini"}))
		})

		It("returns an empty list for an empty data array", func() {
			models, err := p.ParseModels([]byte(`{"data": []}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(models).To(BeEmpty())
		})
	})
})
