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

// @title SeatGate API
// @version 1.0
// @description Seat activation and presence tracking for multi-tenant deployments.
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @securityDefinitions.apikey TenantAPIKey
// @in header
// @name X-Tenant-API-Key

package http

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/seatgate/seatgate/internal/activation"
	"github.com/seatgate/seatgate/internal/audit"
	"github.com/seatgate/seatgate/internal/operator"
	"github.com/seatgate/seatgate/internal/presence"
	"github.com/seatgate/seatgate/internal/tenant"
)

// Handler holds HTTP handlers and dependencies
type Handler struct {
	activationService *activation.Service
	tenantService     *tenant.Service
	presenceTracker   *presence.Tracker
	authenticator     *operator.Authenticator
	auditLogger       audit.Logger
	validate          *Validator
}

// NewHandler creates a new HTTP handler
func NewHandler(
	activationService *activation.Service,
	tenantService *tenant.Service,
	presenceTracker *presence.Tracker,
	authenticator *operator.Authenticator,
	auditLogger audit.Logger,
) *Handler {
	return &Handler{
		activationService: activationService,
		tenantService:     tenantService,
		presenceTracker:   presenceTracker,
		authenticator:     authenticator,
		auditLogger:       auditLogger,
		validate:          NewValidator(),
	}
}

// RouterConfig holds the router-level knobs
type RouterConfig struct {
	// RateLimiter applies to every request.
	RateLimiter *RateLimiter
	// ActivationLimiter additionally guards the unauthenticated device endpoints.
	ActivationLimiter *RateLimiter
	RequestTimeout    time.Duration
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	if cfg.RateLimiter != nil {
		r.Use(RateLimitMiddleware(cfg.RateLimiter))
	}
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/health", h.HealthCheck)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Device-facing, unauthenticated
		r.Route("/activation", func(r chi.Router) {
			if cfg.ActivationLimiter != nil {
				r.Use(RateLimitMiddleware(cfg.ActivationLimiter))
			}
			r.Post("/check", h.CheckActivation)
			r.Post("/activate", h.Activate)
		})

		r.Post("/admin/login", h.Login)

		// Operator console
		r.Group(func(r chi.Router) {
			r.Use(h.OperatorAuthMiddleware)

			r.Route("/tenants", func(r chi.Router) {
				r.Post("/", h.CreateTenant)
				r.Get("/", h.ListTenants)

				r.Route("/{tenantID}", func(r chi.Router) {
					r.Get("/", h.GetTenant)
					r.Patch("/", h.UpdateTenant)
					r.Post("/regenerate-key", h.RegenerateAPIKey)
					r.Get("/presence", h.TenantPresence)

					r.Route("/activations", func(r chi.Router) {
						r.Post("/", h.GenerateCodes)
						r.Get("/", h.ListCodes)
						r.Post("/{codeID}/unbind", h.UnbindCode)
						r.Delete("/{codeID}", h.DeleteCode)
					})
				})
			})
		})

		// Tenant servers
		r.Group(func(r chi.Router) {
			r.Use(h.TenantAPIKeyMiddleware)
			r.Post("/heartbeat", h.Heartbeat)
			r.Get("/tenant/verify", h.VerifyTenant)
		})
	})

	return r
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// HealthCheck returns the health status
// @Summary Health Check
// @Description Checks if the service is up and running
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: "seatgate",
	})
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// getIPAddress returns the client address: the first X-Forwarded-For hop,
// then X-Real-IP, then the connection peer.
func getIPAddress(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
