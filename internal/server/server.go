package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/koliko-eats/koliko-orders-service/internal/config"
	"github.com/koliko-eats/koliko-orders-service/internal/handlers"
	"github.com/koliko-eats/koliko-orders-service/internal/metrics"
)

type Server struct {
	httpServer *http.Server
}

func New(h *handlers.Handlers, m *metrics.Registry, cfg *config.Config) *Server {
	router := gin.Default()

	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/orders/quote", h.QuoteOrder)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}
}

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
