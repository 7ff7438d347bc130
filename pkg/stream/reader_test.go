package stream

import (
	"errors"
	"io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// chunkReader yields exactly one predetermined chunk per Read call, so tests
// control where the upstream chunk boundaries fall.
type chunkReader struct {
	chunks [][]byte
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, c.chunks[0])
	if n < len(c.chunks[0]) {
		c.chunks[0] = c.chunks[0][n:]
	} else {
		c.chunks = c.chunks[1:]
	}
	return n, nil
}

// failAfterReader returns its payload on the first read and an error after.
type failAfterReader struct {
	payload []byte
	err     error
	sent    bool
}

func (f *failAfterReader) Read(p []byte) (int, error) {
	if !f.sent {
		f.sent = true
		return copy(p, f.payload), nil
	}
	return 0, f.err
}

var _ = Describe("Reader", func() {
	Describe("Next", func() {
		It("pulls deltas one at a time in order", func() {
			src := strings.NewReader(`{"response":"a"}` + "\n" + `{"response":"b"}` + "\n")
			r := NewReader(src)

			delta, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(delta).To(Equal("a"))

			delta, err = r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(delta).To(Equal("b"))

			_, err = r.Next()
			Expect(err).To(Equal(io.EOF))
		})

		It("returns io.EOF repeatedly once exhausted", func() {
			r := NewReader(strings.NewReader(""))

			_, err := r.Next()
			Expect(err).To(Equal(io.EOF))
			_, err = r.Next()
			Expect(err).To(Equal(io.EOF))
		})

		It("stops reading from the source after the terminal sentinel", func() {
			boom := errors.New("connection reset")
			src := &failAfterReader{
				payload: []byte("data: {\"response\":\"hi\"}\ndata: [DONE]\n"),
				err:     boom,
			}
			r := NewReader(src)

			delta, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(delta).To(Equal("hi"))

			// The sentinel was observed, so the failing source is never
			// read again.
			_, err = r.Next()
			Expect(err).To(Equal(io.EOF))
		})

		It("propagates upstream read errors after draining emitted deltas", func() {
			boom := errors.New("connection reset")
			src := &failAfterReader{
				payload: []byte(`{"response":"partial answer"}` + "\n"),
				err:     boom,
			}
			r := NewReader(src)

			delta, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(delta).To(Equal("partial answer"))

			_, err = r.Next()
			Expect(err).To(Equal(boom))
		})

		It("flushes an unterminated final line at EOF", func() {
			src := strings.NewReader(`{"response":"tail"}`)
			r := NewReader(src)

			delta, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(delta).To(Equal("tail"))

			_, err = r.Next()
			Expect(err).To(Equal(io.EOF))
		})

		It("reassembles payloads split across upstream chunks", func() {
			src := &chunkReader{chunks: [][]byte{
				[]byte(`{"message":{"content":"Hel`),
				[]byte(`lo"},"done":false}` + "\n" + `{"message":{"content":" wor`),
				[]byte(`ld"},"done":true}` + "\n"),
			}}
			r := NewReader(src)

			delta, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(delta).To(Equal("Hello"))

			delta, err = r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(delta).To(Equal(" world"))

			_, err = r.Next()
			Expect(err).To(Equal(io.EOF))
		})
	})

	Describe("Session", func() {
		It("exposes the underlying session for correlation", func() {
			r := NewReader(strings.NewReader(""))
			Expect(r.Session()).NotTo(BeNil())
			Expect(r.Session().ID()).NotTo(BeEmpty())
		})
	})

	Describe("WriteTo", func() {
		It("writes every delta in order", func() {
			input := "data: {\"choices\":[{\"delta\":{\"content\":\"The \"}}]}\n\n" +
				"data: {\"choices\":[{\"delta\":{\"content\":\"answer\"}}]}\n\n" +
				"data: [DONE]\n\n"
			r := NewReader(strings.NewReader(input))

			var sb strings.Builder
			written, err := r.WriteTo(&sb)
			Expect(err).NotTo(HaveOccurred())
			Expect(sb.String()).To(Equal("The answer"))
			Expect(written).To(Equal(int64(len("The answer"))))
		})

		It("returns the upstream error with the bytes already written", func() {
			boom := errors.New("upstream gone")
			src := &failAfterReader{
				payload: []byte(`{"response":"kept"}` + "\n"),
				err:     boom,
			}
			r := NewReader(src)

			var sb strings.Builder
			written, err := r.WriteTo(&sb)
			Expect(err).To(Equal(boom))
			Expect(sb.String()).To(Equal("kept"))
			Expect(written).To(Equal(int64(len("kept"))))
		})
	})
})
