// Package api assembles the gin HTTP server for the configuration web
// UI: routing, the API-key gate and graceful lifecycle.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/router-for-me/ProxyConfigUI/internal/api/handlers/webui"
	"github.com/router-for-me/ProxyConfigUI/internal/session"
	"github.com/router-for-me/ProxyConfigUI/internal/store"
)

// Options configures the HTTP server.
type Options struct {
	// Host is the listen address, empty for all interfaces.
	Host string

	// Port is the listen port.
	Port int

	// Debug switches gin into debug mode and enables debug logging.
	Debug bool

	// LogFilePath is the rotating service log tailed by the dashboard.
	LogFilePath string
}

// Server is the configuration web UI HTTP server.
type Server struct {
	opts     Options
	store    *store.Store
	sessions *session.Manager
	engine   *gin.Engine
	handlers *webui.Handler
}

// NewServer builds the engine, middleware chain and routes.
func NewServer(opts Options, st *store.Store, sessions *session.Manager) *Server {
	if opts.Debug {
		gin.SetMode(gin.DebugMode)
	} else if gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		opts:     opts,
		store:    st,
		sessions: sessions,
		engine:   gin.New(),
		handlers: webui.NewHandler(st, sessions, opts.LogFilePath),
	}

	s.engine.Use(gin.Recovery(), requestIDMiddleware(), s.authGate())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/", s.handlers.Index)
	s.engine.POST("/login", s.handlers.Login)
	s.engine.POST("/save_config", s.handlers.SaveConfig)
	s.engine.POST("/set_key", s.handlers.SetKey)
	s.engine.GET("/health", s.handlers.Health)

	s.engine.GET("/api/dashboard/providers", s.handlers.DashboardProviders)
	s.engine.GET("/api/dashboard/logs", s.handlers.DashboardLogs)
	s.engine.GET("/api/config/export", s.handlers.ExportConfig)

	// Model probing is deliberately disabled: the probing calls could
	// block the request-handling thread, so both endpoints answer 501.
	s.engine.GET("/api/models/discover/:index", s.handlers.DiscoverModels)
	s.engine.GET("/api/models/validate/:index/*model", s.handlers.ValidateModel)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("configuration web UI listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("configuration web UI stopped")
	return nil
}
