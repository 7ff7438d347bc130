package stream

import "strings"

const (
	dataField    = "data"
	doneSentinel = "[DONE]"
)

// FrameKind classifies a single parsed line from the upstream stream.
type FrameKind int

const (
	// FrameSkip marks a line carrying no event payload: blank frame
	// separators, SSE comments, and non-data fields such as "event:",
	// "id:", or "retry:". Providers may interleave these freely, so the
	// parser is permissive rather than failing the whole stream on an
	// unrecognized line.
	FrameSkip FrameKind = iota

	// FrameData marks a line carrying a candidate JSON payload.
	FrameData

	// FrameDone marks the terminal sentinel. No further frames follow.
	FrameDone
)

// Frame is an ephemeral value representing one parsed line. Frames are
// consumed immediately and never retained.
type Frame struct {
	Kind    FrameKind
	Payload string
}

// ParseFrame classifies one complete line.
//
// Two upstream framings flow through here: SSE "data: {...}" lines from the
// cloud gateway, and bare newline-delimited JSON objects from the local
// inference server. A line that opens a JSON object is treated as a payload
// even without the data prefix, which also covers NDJSON defensively wrapped
// in SSE data lines.
func ParseFrame(line string) Frame {
	line = strings.TrimSpace(line)
	if line == "" {
		return Frame{Kind: FrameSkip}
	}

	// Bare NDJSON line
	if strings.HasPrefix(line, "{") {
		return Frame{Kind: FrameData, Payload: line}
	}

	field, value, ok := strings.Cut(line, ":")
	if !ok || field != dataField {
		return Frame{Kind: FrameSkip}
	}

	// Strip a single leading space after the colon, per the SSE spec.
	value = strings.TrimPrefix(value, " ")

	if strings.TrimSpace(value) == doneSentinel {
		return Frame{Kind: FrameDone}
	}

	return Frame{Kind: FrameData, Payload: value}
}
