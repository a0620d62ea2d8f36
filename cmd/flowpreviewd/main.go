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

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/6flow-studio/6flow-convergence-sub000/internal/log"
	"github.com/6flow-studio/6flow-convergence-sub000/internal/server"
	"github.com/6flow-studio/6flow-convergence-sub000/pkg/preview"
)

// Version information (injected via ldflags at build time)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	var (
		addr            = flag.String("addr", "", "TCP address to listen on (default :8719)")
		shutdownTimeout = flag.Duration("shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")
		traceStdout     = flag.Bool("trace-stdout", false, "Export trace spans to stdout")
		showVersion     = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("flowpreviewd %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Initialize structured logging from environment
	logger := log.New(log.FromEnv())
	slog.SetDefault(logger)

	// Trace context always propagates to outbound HTTP requests; the
	// stdout exporter is opt-in.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	if *traceStdout {
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			logger.Error("Failed to create trace exporter", log.Error(err))
			os.Exit(1)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
		otel.SetTracerProvider(tp)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				logger.Error("Failed to shut down tracer provider", log.Error(err))
			}
		}()
	}

	svc := preview.NewService(preview.Config{Logger: logger})

	srv := server.New(server.Config{
		Addr:            *addr,
		ShutdownTimeout: *shutdownTimeout,
	}, svc, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case sig := <-sigCh:
		logger.Info("Received signal, shutting down", slog.String("signal", sig.String()))
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error("Error during shutdown", log.Error(err))
			os.Exit(1)
		}
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", log.Error(err))
			os.Exit(1)
		}
	}
}
