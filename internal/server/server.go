// Copyright 2025 6flow Studio
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server exposes node previews over HTTP for editor frontends.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/6flow-studio/6flow-convergence-sub000/internal/log"
	"github.com/6flow-studio/6flow-convergence-sub000/pkg/preview"
)

// Config configures the preview server.
type Config struct {
	// Addr is the listen address, e.g. ":8719".
	Addr string

	// ShutdownTimeout bounds graceful shutdown. Default: 10s.
	ShutdownTimeout time.Duration
}

// Server serves the preview API.
type Server struct {
	cfg     Config
	logger  *slog.Logger
	svc     *preview.Service
	metrics *metrics
	httpSrv *http.Server
	ln      net.Listener
}

// New creates a Server around a preview service.
func New(cfg Config, svc *preview.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8719"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		cfg:     cfg,
		logger:  log.WithComponent(logger, "server"),
		svc:     svc,
		metrics: newMetrics(prometheus.DefaultRegisterer),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/preview", s.handlePreview)
	mux.HandleFunc("POST /api/upstream-schemas", s.handleUpstreamSchemas)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.httpSrv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start listens and serves until Shutdown or a listener error.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	s.ln = ln

	s.logger.Info("preview server listening", "addr", ln.Addr().String())
	if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr reports the bound listen address, for tests that bind ":0".
func (s *Server) Addr() string {
	if s.ln == nil {
		return s.cfg.Addr
	}
	return s.ln.Addr().String()
}

// Shutdown drains in-flight requests up to the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down preview server")
	return s.httpSrv.Shutdown(ctx)
}
