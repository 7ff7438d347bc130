package stream

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ExtractDelta", func() {
	Context("with OpenAI-style chunks", func() {
		It("extracts choices[0].delta.content", func() {
			delta, err := ExtractDelta([]byte(`{"id":"chatcmpl-1","choices":[{"delta":{"content":"Hello"}}]}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(delta).To(Equal("Hello"))
		})

		It("absorbs role-only delta frames", func() {
			delta, err := ExtractDelta([]byte(`{"choices":[{"delta":{"role":"assistant"}}]}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(delta).To(BeEmpty())
		})

		It("absorbs finish frames with an empty delta", func() {
			delta, err := ExtractDelta([]byte(`{"choices":[{"delta":{},"finish_reason":"stop"}]}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(delta).To(BeEmpty())
		})
	})

	Context("with local inference server chunks", func() {
		It("extracts message.content", func() {
			delta, err := ExtractDelta([]byte(`{"model":"llama3.2","message":{"role":"assistant","content":"Hi"},"done":false}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(delta).To(Equal("Hi"))
		})

		It("extracts the flat response field", func() {
			delta, err := ExtractDelta([]byte(`{"model":"llama3.2","response":"Hi","done":false}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(delta).To(Equal("Hi"))
		})

		It("absorbs terminal frames with empty content", func() {
			delta, err := ExtractDelta([]byte(`{"model":"llama3.2","message":{"role":"assistant","content":""},"done":true,"done_reason":"stop"}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(delta).To(BeEmpty())
		})
	})

	Context("fallback order", func() {
		It("prefers choices[0].delta.content over message.content", func() {
			delta, err := ExtractDelta([]byte(`{"choices":[{"delta":{"content":"from-choices"}}],"message":{"content":"from-message"}}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(delta).To(Equal("from-choices"))
		})

		It("prefers message.content over response", func() {
			delta, err := ExtractDelta([]byte(`{"message":{"content":"from-message"},"response":"from-response"}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(delta).To(Equal("from-message"))
		})

		It("falls through an empty choices delta to message.content", func() {
			delta, err := ExtractDelta([]byte(`{"choices":[{"delta":{"content":""}}],"message":{"content":"fallback"}}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(delta).To(Equal("fallback"))
		})
	})

	Context("with malformed payloads", func() {
		It("returns an error for truncated JSON", func() {
			_, err := ExtractDelta([]byte(`{"message":{"content":"Hi"`))
			Expect(err).To(HaveOccurred())
		})

		It("returns an error for non-JSON payloads", func() {
			_, err := ExtractDelta([]byte(`not json at all`))
			Expect(err).To(HaveOccurred())
		})
	})

	Context("with unknown shapes", func() {
		It("absorbs JSON objects with none of the probed fields", func() {
			delta, err := ExtractDelta([]byte(`{"type":"ping","ts":12345}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(delta).To(BeEmpty())
		})
	})
})
