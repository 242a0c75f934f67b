package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kozaktomas/photo-sheet/internal/config"
	"github.com/kozaktomas/photo-sheet/internal/web/handlers"
	"github.com/kozaktomas/photo-sheet/internal/web/middleware"
)

// Server represents the web server
type Server struct {
	config       *config.Config
	router       *chi.Mux
	httpServer   *http.Server
	logger       *log.Logger
	editors      *handlers.EditorManager
	images       *handlers.ImageStore
	ownerManager *middleware.OwnerManager
	stopSweeper  context.CancelFunc
}

// NewServer creates a new web server
func NewServer(cfg *config.Config, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	images, err := handlers.NewImageStore(cfg.Upload.Dir)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	s := &Server{
		config:       cfg,
		router:       r,
		logger:       logger,
		editors:      handlers.NewEditorManager(cfg.Editor.Defaults, cfg.Editor.IdleTimeout, logger),
		images:       images,
		ownerManager: middleware.NewOwnerManager(cfg.Web.SessionSecret),
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.Web.AllowedOrigins))
	r.Use(middleware.SecurityHeaders())

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // event streams stay open
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start starts the idle session sweeper and the HTTP server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.stopSweeper = cancel
	go s.editors.Run(ctx)

	s.logger.Info("starting web server", "addr", s.httpServer.Addr, "uploads", s.images.Dir())
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down web server")

	if s.stopSweeper != nil {
		s.stopSweeper()
	}
	// Close event streams first so Shutdown does not wait on them.
	s.editors.Shutdown()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
