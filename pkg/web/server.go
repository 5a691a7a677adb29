// Package web serves the arm over HTTP and WebSocket.
//
// The REST routes are /init, /position, /control/:joint/:delta and /moveto.
// State changes from any source are pushed to /ws/state subscribers.
package web

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teslashibe/go-planar-arm/internal/log"
	"github.com/teslashibe/go-planar-arm/pkg/arm"
	"github.com/teslashibe/go-planar-arm/pkg/hub"
	"github.com/teslashibe/go-planar-arm/pkg/kinematics"
	"github.com/teslashibe/go-planar-arm/pkg/protocol"
)

// Options configures the HTTP server.
type Options struct {
	CORSOrigins string // comma separated, "*" for any
	RequestLog  bool
}

// Server is the arm API server
type Server struct {
	app      *fiber.App
	arms     *arm.Manager
	stateHub *hub.Hub
	validate *validator.Validate
	started  time.Time
	log      *slog.Logger
}

// NewServer creates a server for the arms owned by mgr.
func NewServer(mgr *arm.Manager, opts Options) *Server {
	s := &Server{
		arms:     mgr,
		validate: validator.New(),
		started:  time.Now(),
		log:      log.For("web"),
	}
	s.stateHub = hub.New("state", hub.HandlerFunc(s.handleCommand))

	mgr.OnChange(func(id string, state kinematics.State) {
		msg, err := protocol.NewStateMessage(id, state)
		if err != nil {
			s.log.Error("encode state", "error", err)
			return
		}
		if err := s.stateHub.BroadcastMessage(msg); err != nil {
			s.log.Error("broadcast state", "error", err)
		}
	})

	app := fiber.New(fiber.Config{
		AppName:               "planar-arm",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	origins := opts.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{AllowOrigins: origins}))
	if opts.RequestLog {
		app.Use(logger.New())
	}

	app.Get("/", s.handleHome)
	app.Post("/", s.handleHome)
	app.Get("/health", s.handleHealth)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/algorithms", s.handleAlgorithms)

	app.Get("/init", s.handleInitDefault)
	app.Post("/init", s.handleInit)
	app.Delete("/init", s.handleReset)
	app.Get("/position", s.handlePosition)
	app.Get("/control/:joint/:delta", s.handleControl)
	app.Post("/control/:joint/:delta", s.handleControl)
	app.Post("/moveto", s.handleMoveTo)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/state", websocket.New(s.handleStateWS))

	s.app = app
	return s
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Hub returns the state hub.
func (s *Server) Hub() *hub.Hub {
	return s.stateHub
}

// Run starts the state hub. It must be running before WebSocket clients
// connect and stops when ctx is cancelled.
func (s *Server) Run(ctx context.Context) {
	go s.stateHub.Run(ctx)
}

// Listen serves HTTP on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.log.Info("listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
