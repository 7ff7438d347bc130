// Package gateway provides the chat gateway server for the Plume browser
// client. It accepts chat requests, forwards them to the configured LLM
// backend, and streams normalized plain-text content deltas back to the UI.
package gateway

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/plumechat/plume/pkg/llm/provider"
)

// Server is the chat gateway. Each in-flight request owns its own
// normalization session; the server itself holds no per-conversation state.
type Server struct {
	config     Config
	prov       provider.Provider
	logger     *zap.Logger
	httpClient *http.Client
	app        *fiber.App
}

// New creates a new gateway Server.
// Returns an error if the configured provider type is not recognized.
func New(config Config, logger *zap.Logger) (*Server, error) {
	if config.Provider == "" {
		return nil, errors.New("provider type is required")
	}

	prov, err := provider.New(config.Provider, provider.Options{APIKey: config.APIKey})
	if err != nil {
		return nil, fmt.Errorf("could not create provider: %w", err)
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		// Enable streaming
		StreamRequestBody: true,
	})

	s := &Server{
		config: config,
		prov:   prov,
		logger: logger,
		app:    app,
		httpClient: &http.Client{
			// LLM requests can be slow, especially on cold local models
			Timeout: 5 * time.Minute,
		},
	}

	app.Get("/ping", s.handlePing)
	app.Get("/api/models", s.handleModels)
	app.Post("/api/chat", s.handleChat)

	return s, nil
}

// Run starts the gateway server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting gateway server",
		zap.String("listen", s.config.ListenAddr),
		zap.String("provider", s.prov.Name()),
		zap.String("upstream", s.config.UpstreamURL),
	)

	return s.app.Listen(s.config.ListenAddr)
}

// RunWithListener starts the gateway server using the provided listener.
func (s *Server) RunWithListener(listener net.Listener) error {
	s.logger.Info("starting gateway server",
		zap.String("listen", listener.Addr().String()),
		zap.String("provider", s.prov.Name()),
		zap.String("upstream", s.config.UpstreamURL),
	)

	return s.app.Listener(listener)
}

// Shutdown gracefully shuts down the gateway server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}
