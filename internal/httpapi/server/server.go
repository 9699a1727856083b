package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/BBQAnChang/SBHomework/internal/httpapi/handlers"
	"github.com/BBQAnChang/SBHomework/internal/httpapi/middleware"
	"github.com/BBQAnChang/SBHomework/pkg/config"
	"github.com/BBQAnChang/SBHomework/pkg/telemetry"
)

const readHeaderTimeout = 10 * time.Second

type APIServer struct {
	config   *config.AppConfig
	router   *gin.Engine
	handlers *handlers.Handlers

	mu     sync.Mutex
	server *http.Server
}

func NewAPIServer(cfg *config.AppConfig, service handlers.UserService) *APIServer {
	if cfg.App.Environment == "local" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(&cfg.APIServer))

	s := &APIServer{
		config:   cfg,
		router:   router,
		handlers: handlers.NewHandlers(cfg, service),
	}

	s.setupRoutes()
	return s
}

func (s *APIServer) setupRoutes() {
	// scrape endpoint sits outside the API key group
	if telemetry.PrometheusEnabled(s.config.Telemetry) {
		s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	v1 := s.router.Group("/api/v1")
	v1.Use(middleware.APIKeyAuth(s.config))

	v1.GET("/status", s.handlers.Status)

	users := v1.Group("/users")
	users.POST("", s.handlers.CreateUser)
	users.POST("/bulk", s.handlers.CreateUsers)
	users.GET("", s.handlers.GetUsers)
	users.GET("/:id", s.handlers.GetUser)
	users.PUT("/:id", s.handlers.UpdateUser)

	v1.GET("/cache/users", s.handlers.GetCachedUsers)
}

// Handler exposes the router, mainly for tests
func (s *APIServer) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *APIServer) Start() error {
	srv := &http.Server{
		Addr:              s.config.APIServer.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	logrus.WithField("address", srv.Addr).Info("starting http API server")
	if err := srv.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			logrus.Info("http API server stopped")
			return nil
		}
		return fmt.Errorf("failed to start http API server : %w", err)
	}
	return nil
}

func (s *APIServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	logrus.Info("turning down http API server")

	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Error during HTTP API server shutdown")
		return err
	}
	return nil
}
