package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sleepstars/personachat/internal/config"
	"github.com/sleepstars/personachat/internal/logger"
	"github.com/sleepstars/personachat/internal/proxy"
	"github.com/sleepstars/personachat/internal/server/middleware"
)

// ChatPath is the only API route; every other request is a static file lookup
const ChatPath = "/api/chat"

const shutdownTimeout = 10 * time.Second

// Server is the HTTP front of the chat proxy
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	chat   *proxy.Handler
	files  http.Handler
	logger *logger.Logger
}

// New creates the server. chat answers POST /api/chat and files answers
// everything else.
func New(cfg *config.Config, chat *proxy.Handler, files http.Handler) *Server {
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.RedirectTrailingSlash = false

	s := &Server{
		cfg:    cfg,
		engine: engine,
		chat:   chat,
		files:  files,
		logger: logger.GetLogger().WithComponent("server"),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS())

	s.engine.POST(ChatPath, s.handleChat)
	s.engine.NoRoute(gin.WrapH(s.files))
}

// Run listens on addr until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// Engine returns the gin engine (used by tests)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
