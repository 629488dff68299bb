package shapeaudit

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/gtfs-shape-audit/config"
)

// Server hosts the audit HTTP API: the report endpoint, a health check,
// and Prometheus metrics.
type Server struct {
	cfg   config.AppConfig
	cache *reportCache
	log   zerolog.Logger
	http  *http.Server
}

func NewServer(cfg config.AppConfig, logger zerolog.Logger) *Server {
	engine := NewEngine(cfg, logger)
	ttl := time.Duration(cfg.Server.CacheTTLSec) * time.Second
	s := &Server{
		cfg:   cfg,
		cache: newReportCache(engine, ttl),
		log:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/audit", s.handleAudit)
	mux.Handle("/metrics", promhttp.Handler())

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler exposes the routing table.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Start begins serving in the background.
func (s *Server) Start() {
	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Fatal().Err(err).Msg("server error")
		}
	}()
	s.log.Info().Str("addr", s.http.Addr).Msg("server listening")
}

// WaitForShutdown blocks until SIGINT or SIGTERM, then drains in-flight
// requests before returning.
func (s *Server) WaitForShutdown() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	s.log.Info().Msg("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		s.log.Error().Err(err).Msg("server shutdown error")
	} else {
		s.log.Info().Msg("server shut down")
	}
}
