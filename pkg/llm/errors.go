package llm

// ErrorResponse is the JSON error body returned to the client when an
// upstream call fails before any streaming begins. Once streaming has
// started, errors terminate the stream instead — a partial stream is never
// rewritten into an error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
