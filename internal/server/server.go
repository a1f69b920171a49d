// Package server exposes the dashboard over HTTP.
package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/kawa-dev/contrib-board/internal/usecase"
)

// OverviewProvider is the slice of the dashboard usecase the handlers need.
type OverviewProvider interface {
	Overview(ctx context.Context, sortField string, descending bool) usecase.Overview
}

// Server wires the fiber app with the dashboard handlers.
type Server struct {
	app   *fiber.App
	log   *zap.SugaredLogger
	board OverviewProvider
}

// New constructs the HTTP server.
func New(log *zap.SugaredLogger, board OverviewProvider) *Server {
	s := &Server{
		app:   fiber.New(),
		log:   log,
		board: board,
	}

	s.app.Use(recover.New())
	s.app.Use(requestid.New())
	s.app.Use(requestLogger(log))

	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	s.app.Get("/", s.handleIndex)
	s.app.Get("/api/issues", s.handleAPIIssues)

	return s
}

// Listen starts serving on addr and blocks.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully closes the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	field := c.Query("sort", "number")
	descending := c.Query("order") == "desc"

	ov := s.board.Overview(c.Context(), field, descending)
	return renderIndex(c, ov)
}

func (s *Server) handleAPIIssues(c *fiber.Ctx) error {
	field := c.Query("sort", "number")
	descending := c.Query("order") == "desc"

	return c.JSON(s.board.Overview(c.Context(), field, descending))
}
