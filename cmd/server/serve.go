// Copyright 2026 The SeatGate Authors
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
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/seatgate/seatgate/internal/activation"
	"github.com/seatgate/seatgate/internal/audit"
	"github.com/seatgate/seatgate/internal/config"
	"github.com/seatgate/seatgate/internal/observability/logger"
	"github.com/seatgate/seatgate/internal/observability/metrics"
	"github.com/seatgate/seatgate/internal/observability/tracing"
	"github.com/seatgate/seatgate/internal/operator"
	"github.com/seatgate/seatgate/internal/presence"
	"github.com/seatgate/seatgate/internal/tenant"
	transportHTTP "github.com/seatgate/seatgate/internal/transport/http"
)

func serve(parent context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.InfoContext(ctx, "starting seatgate", logger.String("version", cfg.Observability.ServiceVersion))

	// Initialize tracer
	tracer, err := tracing.New(ctx, tracing.Config{
		Enabled:        cfg.Observability.Enabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		Endpoint:       cfg.Observability.Endpoint,
		Insecure:       cfg.Observability.Insecure,
		SamplingRate:   cfg.Observability.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}
	defer tracer.Shutdown(context.Background())

	// Initialize meter
	meter, err := metrics.New(ctx, metrics.Config{
		Enabled: cfg.Observability.MetricsEnabled,
	}, cfg.Observability.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to initialize meter: %w", err)
	}
	defer meter.Shutdown(context.Background())

	seats, err := metrics.NewSeats(meter)
	if err != nil {
		return fmt.Errorf("failed to create seat instruments: %w", err)
	}

	// Initialize database
	b, err := openBackend(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer b.Close()
	if err := b.Migrate(ctx); err != nil {
		return err
	}

	// Initialize services
	auditLogger := audit.NewSlogLogger()
	tenantService := tenant.NewService(b.Tenants, auditLogger)
	activationService := activation.NewService(b.Activation, auditLogger, activation.WithMetrics(seats))
	tracker := presence.NewTracker(b.Heartbeats,
		presence.WithThreshold(cfg.Presence.OnlineThreshold),
		presence.WithMetrics(seats),
	)
	slog.InfoContext(ctx, "presence tracking enabled",
		slog.Duration("online_threshold", tracker.Threshold()))

	authenticator, err := operator.NewAuthenticator(operator.Config{
		Username:     cfg.Operator.Username,
		PasswordHash: cfg.Operator.PasswordHash,
		JWTSecret:    []byte(cfg.Operator.JWTSecret),
		TokenTTL:     cfg.Operator.TokenTTL,
		Issuer:       cfg.Operator.Issuer,
	}, operator.DefaultPasswordHasher(), auditLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize operator authentication: %w", err)
	}

	// Rate limiters
	rateLimiter := transportHTTP.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	activationLimiter := transportHTTP.NewRateLimiter(cfg.RateLimit.ActivationRequestsPerSecond, cfg.RateLimit.ActivationBurst)

	handler := transportHTTP.NewHandler(activationService, tenantService, tracker, authenticator, auditLogger)
	routerCfg := transportHTTP.RouterConfig{
		RateLimiter:       rateLimiter,
		ActivationLimiter: activationLimiter,
		RequestTimeout:    cfg.Server.RequestTimeout,
	}
	if cfg.Observability.MetricsEnabled {
		routerCfg.MetricsHandler = meter.Handler()
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      transportHTTP.NewRouter(handler, routerCfg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rateLimiter.Run(gctx)
		return nil
	})
	g.Go(func() error {
		activationLimiter.Run(gctx)
		return nil
	})
	g.Go(func() error {
		slog.InfoContext(gctx, "starting http server",
			logger.Component("server"),
			logger.Operation("listen"),
			logger.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")

		// Graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}
