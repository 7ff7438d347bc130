package stream

import "io"

// readBufSize is the per-read chunk size pulled from the upstream body.
const readBufSize = 4 * 1024

// Reader is the pull-based content-delta stream over an upstream response
// body. It owns one Session; each call to Next pulls upstream chunks as
// needed and yields the next normalized delta. The sequence is lazy, finite,
// and non-restartable.
type Reader struct {
	src     io.Reader
	session *Session
	buf     []byte
	queue   []string
	done    bool
}

// NewReader wraps an upstream response body in a delta Reader.
func NewReader(src io.Reader, opts ...Option) *Reader {
	return &Reader{
		src:     src,
		session: NewSession(opts...),
		buf:     make([]byte, readBufSize),
	}
}

// Session returns the reader's underlying session, for log correlation.
func (r *Reader) Session() *Session {
	return r.session
}

// Next returns the next content delta in upstream order. It returns io.EOF
// once the source is exhausted or the terminal sentinel has been observed and
// all prior deltas have been drained. Any other error is an upstream
// connection failure, fatal to the stream; deltas already returned stand.
func (r *Reader) Next() (string, error) {
	for {
		if len(r.queue) > 0 {
			delta := r.queue[0]
			r.queue = r.queue[1:]
			return delta, nil
		}

		if r.done {
			return "", io.EOF
		}

		// Sentinel seen: stop requesting further chunks. Closing the
		// underlying connection is the caller's responsibility.
		if r.session.Terminated() {
			r.done = true
			continue
		}

		n, err := r.src.Read(r.buf)
		if n > 0 {
			r.queue = append(r.queue, r.session.Feed(r.buf[:n])...)
		}

		switch {
		case err == io.EOF:
			r.done = true
			r.queue = append(r.queue, r.session.Flush()...)
		case err != nil:
			return "", err
		}
	}
}

// WriteTo drains the reader into w, writing each delta immediately and in
// order, with no batching. It implements io.WriterTo. A write error means the
// downstream consumer is gone; the drain stops so the caller can release the
// upstream connection.
func (r *Reader) WriteTo(w io.Writer) (int64, error) {
	var written int64

	for {
		delta, err := r.Next()
		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, err
		}

		n, err := io.WriteString(w, delta)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
}
