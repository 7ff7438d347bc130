package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/plumechat/plume/pkg/llm"
	"github.com/plumechat/plume/pkg/stream"
	"github.com/plumechat/plume/pkg/utils"
)

// errorDetailsLen caps how much of an upstream error body is echoed back.
const errorDetailsLen = 512

// handleChat handles POST /api/chat: it validates the inbound request,
// builds the provider-specific upstream request, and dispatches to the
// streaming or non-streaming path.
func (s *Server) handleChat(c *fiber.Ctx) error {
	startTime := time.Now()
	requestID := uuid.NewString()

	var req llm.ChatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{
			Error:   "invalid request body",
			Details: err.Error(),
		})
	}

	if len(req.Messages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "messages are required"})
	}
	if req.Temperature != nil && (*req.Temperature < 0 || *req.Temperature > 2) {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "temperature must be between 0 and 2"})
	}

	body, err := s.prov.MarshalChatRequest(&req)
	if err != nil {
		s.logger.Error("failed to marshal upstream request",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "internal error"})
	}

	s.logger.Debug("forwarding chat request",
		zap.String("request_id", requestID),
		zap.String("provider", s.prov.Name()),
		zap.String("model", req.Model),
		zap.Int("message_count", len(req.Messages)),
		zap.Bool("streaming", req.IsStreaming()),
	)

	if req.IsStreaming() {
		return s.handleChatStream(c, requestID, body, startTime)
	}

	return s.handleChatOnce(c, requestID, body, startTime)
}

// handleChatOnce handles the non-streaming path: the upstream response is
// awaited in full and its single content value returned as JSON.
func (s *Server) handleChatOnce(c *fiber.Ctx, requestID string, body []byte, startTime time.Time) error {
	httpReq, err := http.NewRequestWithContext(c.Context(), http.MethodPost, s.prov.ChatURL(s.config.UpstreamURL), bytes.NewReader(body))
	if err != nil {
		s.logger.Error("failed to create upstream request", zap.String("request_id", requestID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "internal error"})
	}
	s.prov.ApplyHeaders(httpReq)

	httpResp, err := s.httpClient.Do(httpReq)
	if err != nil {
		s.logger.Error("upstream request failed", zap.String("request_id", requestID), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(llm.ErrorResponse{
			Error:   "upstream request failed",
			Details: err.Error(),
		})
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		s.logger.Error("failed to read upstream response", zap.String("request_id", requestID), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(llm.ErrorResponse{Error: "failed to read upstream response"})
	}

	if httpResp.StatusCode != http.StatusOK {
		return s.upstreamRejection(c, requestID, httpResp.StatusCode, respBody)
	}

	parsed, err := s.prov.ParseResponse(respBody)
	if err != nil {
		s.logger.Error("failed to parse upstream response",
			zap.String("request_id", requestID),
			zap.String("provider", s.prov.Name()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusBadGateway).JSON(llm.ErrorResponse{Error: "failed to parse upstream response"})
	}

	s.logger.Debug("chat complete",
		zap.String("request_id", requestID),
		zap.String("model", parsed.Model),
		zap.Duration("duration", time.Since(startTime)),
	)

	return c.JSON(parsed)
}

// handleChatStream handles the streaming path: the upstream body is pulled
// through the normalization pipeline and the resulting content deltas are
// written to the client as raw UTF-8 text with no framing, terminated by
// stream close with no trailing sentinel.
func (s *Server) handleChatStream(c *fiber.Ctx, requestID string, body []byte, startTime time.Time) error {
	// Use context.Background() instead of c.Context() because fasthttp
	// recycles its RequestCtx after the handler returns, but the pump
	// goroutine keeps reading the upstream connection.
	httpReq, err := http.NewRequestWithContext(context.Background(), http.MethodPost, s.prov.ChatURL(s.config.UpstreamURL), bytes.NewReader(body))
	if err != nil {
		s.logger.Error("failed to create upstream request", zap.String("request_id", requestID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "internal error"})
	}
	s.prov.ApplyHeaders(httpReq)

	httpResp, err := s.httpClient.Do(httpReq)
	if err != nil {
		s.logger.Error("upstream request failed", zap.String("request_id", requestID), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(llm.ErrorResponse{
			Error:   "upstream request failed",
			Details: err.Error(),
		})
	}

	// Upstream rejection before any streaming begins surfaces as a
	// structured error response, never as a malformed stream.
	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		httpResp.Body.Close()
		return s.upstreamRejection(c, requestID, httpResp.StatusCode, respBody)
	}

	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")

	// io.Pipe gives direct backpressure: pw.Write blocks until fasthttp's
	// chunked writer has flushed the previous delta to the socket, so a slow
	// consumer never forces the emitter to buffer unbounded output.
	pr, pw := io.Pipe()
	go s.pumpStream(requestID, httpResp, pw, startTime)

	// Unknown size (-1) triggers chunked transfer encoding.
	c.Context().Response.SetBodyStream(pr, -1)

	return nil
}

// pumpStream drains the upstream body through the normalization pipeline
// into the pipe writer. It owns the upstream connection for the lifetime of
// the stream and closes it on the way out, including when the downstream
// consumer disconnects mid-stream.
func (s *Server) pumpStream(requestID string, httpResp *http.Response, pw *io.PipeWriter, startTime time.Time) {
	defer httpResp.Body.Close()

	reader := stream.NewReader(httpResp.Body,
		stream.WithLogger(s.logger),
		stream.WithProvider(s.prov.Name()),
	)

	written, err := reader.WriteTo(pw)
	if err != nil {
		// Content already emitted stands; the stream simply ends early.
		s.logger.Error("stream aborted",
			zap.String("request_id", requestID),
			zap.String("session", reader.Session().ID()),
			zap.Int64("bytes_written", written),
			zap.Error(err),
		)
		pw.CloseWithError(err)
		return
	}

	s.logger.Debug("stream complete",
		zap.String("request_id", requestID),
		zap.String("session", reader.Session().ID()),
		zap.Int64("bytes_written", written),
		zap.Duration("duration", time.Since(startTime)),
	)
	pw.Close()
}

// upstreamRejection wraps a non-success upstream status as a JSON error body
// with the upstream's status code.
func (s *Server) upstreamRejection(c *fiber.Ctx, requestID string, status int, respBody []byte) error {
	s.logger.Error("upstream rejected request",
		zap.String("request_id", requestID),
		zap.Int("status", status),
		zap.String("body", utils.Truncate(string(respBody), errorDetailsLen)),
	)

	return c.Status(status).JSON(llm.ErrorResponse{
		Error:   "upstream rejected request",
		Details: utils.Truncate(string(respBody), errorDetailsLen),
	})
}
