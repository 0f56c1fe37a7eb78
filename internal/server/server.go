package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/entity-registry/entity_registry/internal/entity"
	"github.com/entity-registry/entity_registry/internal/routes"
)

// Server wraps the Fiber application and shared dependencies.
type Server struct {
	app  *fiber.App
	deps routes.Deps
}

// New instantiates the HTTP server and delegates route wiring to routes.Setup.
func New(d routes.Deps) (*Server, error) {
	app := fiber.New(fiber.Config{
		AppName:      d.Cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: jsonErrorHandler,
	})

	if err := routes.Setup(app, d); err != nil {
		return nil, err
	}

	return &Server{app: app, deps: d}, nil
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	return s.app.Listen(s.deps.Cfg.Address())
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// jsonErrorHandler renders every error, including fiber's built-in 405, as the
// {"error": message} body clients expect. Unclassified errors degrade to a
// generic 500 so internal detail never reaches the client.
func jsonErrorHandler(c *fiber.Ctx, err error) error {
	code := http.StatusInternalServerError
	message := entity.GenericServerMessage

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
		if code >= http.StatusInternalServerError {
			message = entity.GenericServerMessage
		}
	}

	return c.Status(code).JSON(fiber.Map{"error": message})
}
