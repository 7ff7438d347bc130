// Package stream implements the streaming response normalization layer of
// the chat gateway. It consumes the raw, provider-specific chunked byte
// stream from an upstream LLM backend (SSE-framed or newline-delimited JSON)
// and produces a single uniform, ordered sequence of plain-text content
// deltas, tolerant of arbitrary chunk boundaries, partial JSON objects, and
// malformed payloads.
package stream

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/plumechat/plume/pkg/utils"
)

// payloadPreviewLen caps how much of a malformed payload is logged.
const payloadPreviewLen = 256

// Session holds the normalization state for one in-flight chat stream.
// A session is private to a single request and is never shared, so no
// locking is needed.
type Session struct {
	id       string
	provider string // diagnostics only; extraction never branches on it
	logger   *zap.Logger

	// pending is the undecoded tail of a multi-byte UTF-8 sequence split
	// across chunk boundaries. Appended and drained, never reset.
	pending []byte

	// lineBuf is the text accumulated since the last complete line
	// boundary. Invariant: it never contains a newline between Feed calls.
	lineBuf string

	// terminated is set once the terminal sentinel is observed. No further
	// frames are processed after that.
	terminated bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for malformed-frame diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithProvider tags the session with a provider name for log correlation.
func WithProvider(name string) Option {
	return func(s *Session) {
		s.provider = name
	}
}

// NewSession creates a Session for one chat request.
func NewSession(opts ...Option) *Session {
	s := &Session{
		id:     uuid.NewString(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session's correlation ID.
func (s *Session) ID() string {
	return s.id
}

// Terminated reports whether the terminal sentinel has been observed.
func (s *Session) Terminated() bool {
	return s.terminated
}

// Feed processes one raw chunk from the upstream stream and returns the
// content deltas it completed, in the exact order their source frames were
// observed. Splitting the same byte stream at different chunk boundaries
// yields the same delta sequence.
func (s *Session) Feed(chunk []byte) []string {
	if s.terminated {
		return nil
	}

	text := s.decode(chunk)
	if text == "" {
		return nil
	}

	lines, rest := splitLines(s.lineBuf + text)
	s.lineBuf = rest

	return s.dispatch(lines)
}

// Flush processes whatever remains buffered when the upstream stream closes.
// Observed provider traffic always newline-terminates its final event, but an
// upstream that omits the trailing newline would otherwise silently lose its
// last line. Held-back partial multi-byte bytes are dropped; they cannot be
// decoded into anything.
func (s *Session) Flush() []string {
	line := s.lineBuf
	s.lineBuf = ""
	s.pending = nil

	if s.terminated || line == "" {
		return nil
	}

	return s.dispatch([]string{line})
}

// dispatch runs complete lines through the frame parser and content
// extractor. A malformed payload is logged and skipped; the stream continues.
// The terminal sentinel halts frame processing for the session.
func (s *Session) dispatch(lines []string) []string {
	var deltas []string

	for _, line := range lines {
		frame := ParseFrame(line)

		switch frame.Kind {
		case FrameDone:
			s.terminated = true
			return deltas

		case FrameData:
			delta, err := ExtractDelta([]byte(frame.Payload))
			if err != nil {
				s.logger.Warn("skipping malformed frame",
					zap.String("session", s.id),
					zap.String("provider", s.provider),
					zap.String("payload", utils.Truncate(frame.Payload, payloadPreviewLen)),
					zap.Error(err),
				)
				continue
			}
			if delta != "" {
				deltas = append(deltas, delta)
			}
		}
	}

	return deltas
}

// decode converts a raw chunk into text, carrying a trailing partial
// multi-byte sequence over to the next call so a character split across two
// chunks never decodes to replacement characters. Invalid bytes pass through
// best-effort; a decode problem is never fatal to the stream.
func (s *Session) decode(chunk []byte) string {
	buf := chunk
	if len(s.pending) > 0 {
		buf = append(s.pending, chunk...)
		s.pending = nil
	}

	complete, rest := splitCompleteRunes(buf)
	if len(rest) > 0 {
		s.pending = append([]byte(nil), rest...)
	}

	return string(complete)
}

// splitLines splits text into complete newline-terminated lines and the
// trailing remainder. The final segment is never yielded as a complete line,
// even when empty; it is retained for the next call.
func splitLines(text string) ([]string, string) {
	if !strings.Contains(text, "\n") {
		return nil, text
	}

	segments := strings.Split(text, "\n")
	return segments[:len(segments)-1], segments[len(segments)-1]
}

// splitCompleteRunes splits b into the longest prefix that ends on a rune
// boundary and the trailing bytes that could still be completed by the next
// chunk. Bytes that cannot begin a valid sequence are passed through rather
// than held back, so garbage does not stall the stream.
func splitCompleteRunes(b []byte) (complete, rest []byte) {
	if len(b) == 0 {
		return b, nil
	}

	// Walk back at most one rune's worth of bytes looking for a start byte.
	for i := 1; i <= utf8.UTFMax && i <= len(b); i++ {
		start := len(b) - i
		if !utf8.RuneStart(b[start]) {
			continue
		}
		if utf8.FullRune(b[start:]) {
			return b, nil
		}
		return b[:start], b[start:]
	}

	return b, nil
}
