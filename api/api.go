package api

import (
	"errors"
	"log/slog"
	"net"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/binder/pkg/client"
)

// Server is the mock portfolio backend.
type Server struct {
	config   Config
	fixtures *Fixtures
	logger   *slog.Logger
	app      *fiber.App
}

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewServer creates a new mock backend serving fixtures.
func NewServer(config Config, fixtures *Fixtures, logger *slog.Logger) (*Server, error) {
	if fixtures == nil {
		return nil, errors.New("fixtures are required")
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:   config,
		fixtures: fixtures,
		logger:   logger,
		app:      app,
	}

	app.Use(s.logRequest)

	app.Get("/ping", s.handlePing)
	app.Get(client.PathDashboard, s.handleDashboard)
	app.Get(client.PathProperties, s.handleListProperties)
	app.Get(client.PathProperties+"/:id", s.handleGetProperty)
	app.Get(client.PathGaps, s.handleListGaps)
	app.Get(client.PathCompliance, s.handleListCompliance)
	app.Get(client.PathRenewals, s.handleListRenewals)
	app.Get(client.PathDocuments, s.handleListDocuments)
	app.Get(client.PathClaims, s.handleListClaims)
	app.Post(client.PathChat, s.handleChat)

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting mock backend", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("starting mock backend", "listen", ln.Addr().String())
	return s.app.Listener(ln)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) logRequest(c *fiber.Ctx) error {
	err := c.Next()
	s.logger.Debug("handled request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"request_id", c.Get(client.RequestIDHeader),
		"organization_id", c.Query("organization_id"),
	)
	return err
}
