package gateway

import (
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/plumechat/plume/pkg/llm"
)

// ModelsResponse lists the model identifiers available upstream.
type ModelsResponse struct {
	Models []string `json:"models"`
}

// handleModels handles GET /api/models: model discovery against the
// configured provider.
func (s *Server) handleModels(c *fiber.Ctx) error {
	requestID := uuid.NewString()

	httpReq, err := http.NewRequestWithContext(c.Context(), http.MethodGet, s.prov.ModelsURL(s.config.UpstreamURL), nil)
	if err != nil {
		s.logger.Error("failed to create upstream request", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "internal error"})
	}
	s.prov.ApplyHeaders(httpReq)

	httpResp, err := s.httpClient.Do(httpReq)
	if err != nil {
		s.logger.Error("upstream request failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(llm.ErrorResponse{
			Error:   "upstream request failed",
			Details: err.Error(),
		})
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		s.logger.Error("failed to read upstream response", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(llm.ErrorResponse{Error: "failed to read upstream response"})
	}

	if httpResp.StatusCode != http.StatusOK {
		return s.upstreamRejection(c, requestID, httpResp.StatusCode, respBody)
	}

	models, err := s.prov.ParseModels(respBody)
	if err != nil {
		s.logger.Error("failed to parse model list",
			zap.String("provider", s.prov.Name()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusBadGateway).JSON(llm.ErrorResponse{Error: "failed to parse model list"})
	}

	return c.JSON(ModelsResponse{Models: models})
}
