package stream

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// feedAll feeds the input to the session in chunks of the given size and
// collects every delta, including those produced by the final Flush.
func feedAll(s *Session, input []byte, chunkSize int) []string {
	var deltas []string
	for i := 0; i < len(input); i += chunkSize {
		end := i + chunkSize
		if end > len(input) {
			end = len(input)
		}
		deltas = append(deltas, s.Feed(input[i:end])...)
	}
	return append(deltas, s.Flush()...)
}

var _ = Describe("Session", func() {
	Describe("NewSession", func() {
		It("assigns a unique ID", func() {
			s1 := NewSession()
			s2 := NewSession()
			Expect(s1.ID()).NotTo(BeEmpty())
			Expect(s1.ID()).NotTo(Equal(s2.ID()))
		})
	})

	Describe("Feed", func() {
		It("emits deltas in upstream order", func() {
			s := NewSession()
			input := `{"message":{"content":"one"},"done":false}` + "\n" +
				`{"message":{"content":"two"},"done":false}` + "\n" +
				`{"message":{"content":"three"},"done":true}` + "\n"

			deltas := s.Feed([]byte(input))
			Expect(deltas).To(Equal([]string{"one", "two", "three"}))
		})

		It("handles SSE framing from the cloud gateway", func() {
			s := NewSession()
			input := "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n" +
				"data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n\n" +
				"data: [DONE]\n\n"

			deltas := s.Feed([]byte(input))
			Expect(deltas).To(Equal([]string{"Hel", "lo"}))
			Expect(s.Terminated()).To(BeTrue())
		})

		It("retains an incomplete line until its newline arrives", func() {
			s := NewSession()

			deltas := s.Feed([]byte(`{"response":"par`))
			Expect(deltas).To(BeEmpty())

			deltas = s.Feed([]byte("tial\"}\n"))
			Expect(deltas).To(Equal([]string{"partial"}))
		})

		It("skips malformed payloads and continues", func() {
			s := NewSession()
			input := `{"message":{"content":"good"},"done":false}` + "\n" +
				`{"message":{"content":"broken` + "\n" +
				`{"message":{"content":"also good"},"done":false}` + "\n"

			deltas := s.Feed([]byte(input))
			Expect(deltas).To(Equal([]string{"good", "also good"}))
		})

		It("stops processing after the terminal sentinel", func() {
			s := NewSession()
			input := "data: {\"response\":\"before\"}\n" +
				"data: [DONE]\n" +
				"data: {\"response\":\"after\"}\n"

			deltas := s.Feed([]byte(input))
			Expect(deltas).To(Equal([]string{"before"}))
			Expect(s.Terminated()).To(BeTrue())

			deltas = s.Feed([]byte("data: {\"response\":\"more\"}\n"))
			Expect(deltas).To(BeEmpty())
		})

		It("absorbs interleaved keep-alive comments and event fields", func() {
			s := NewSession()
			input := ": keep-alive\n" +
				"event: delta\n" +
				"data: {\"response\":\"hi\"}\n\n"

			deltas := s.Feed([]byte(input))
			Expect(deltas).To(Equal([]string{"hi"}))
		})
	})

	Describe("chunk boundary invariance", func() {
		input := []byte("data: {\"choices\":[{\"delta\":{\"content\":\"The qu\"}}]}\n\n" +
			"data: {\"choices\":[{\"delta\":{\"content\":\"ick brown fox\"}}]}\n\n" +
			"data: {\"choices\":[{\"delta\":{\"role\":\"assistant\"}}]}\n\n" +
			"data: [DONE]\n\n")
		want := []string{"The qu", "ick brown fox"}

		It("yields the same deltas fed as one chunk", func() {
			Expect(feedAll(NewSession(), input, len(input))).To(Equal(want))
		})

		It("yields the same deltas fed byte by byte", func() {
			Expect(feedAll(NewSession(), input, 1)).To(Equal(want))
		})

		It("yields the same deltas at every odd chunk size", func() {
			for size := 3; size < 17; size += 2 {
				Expect(feedAll(NewSession(), input, size)).To(Equal(want), "chunk size %d", size)
			}
		})
	})

	Describe("multi-byte rune handling", func() {
		It("reassembles a rune split across two chunks", func() {
			s := NewSession()
			line := []byte(`{"response":"héllo"}` + "\n")

			// Split inside the two-byte é sequence.
			splitAt := -1
			for i, b := range line {
				if b == 0xc3 {
					splitAt = i + 1
					break
				}
			}
			Expect(splitAt).To(BeNumerically(">", 0))

			deltas := s.Feed(line[:splitAt])
			Expect(deltas).To(BeEmpty())

			deltas = s.Feed(line[splitAt:])
			Expect(deltas).To(Equal([]string{"héllo"}))
		})

		It("reassembles a four-byte emoji split across chunks", func() {
			line := []byte(`{"response":"ok 🎉"}` + "\n")
			for size := 1; size < len(line); size++ {
				Expect(feedAll(NewSession(), line, size)).To(Equal([]string{"ok 🎉"}), "chunk size %d", size)
			}
		})
	})

	Describe("Flush", func() {
		It("processes a final line missing its trailing newline", func() {
			s := NewSession()

			deltas := s.Feed([]byte(`{"response":"last"}`))
			Expect(deltas).To(BeEmpty())

			Expect(s.Flush()).To(Equal([]string{"last"}))
		})

		It("drops trailing partial multi-byte bytes", func() {
			s := NewSession()

			// A lone UTF-8 continuation lead byte with no follow-up.
			s.Feed([]byte{0xc3})
			Expect(s.Flush()).To(BeEmpty())
		})

		It("is a no-op after the terminal sentinel", func() {
			s := NewSession()
			s.Feed([]byte("data: [DONE]\n"))
			Expect(s.Flush()).To(BeEmpty())
		})

		It("is a no-op on an empty session", func() {
			Expect(NewSession().Flush()).To(BeEmpty())
		})
	})
})
