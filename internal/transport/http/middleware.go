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

package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/seatgate/seatgate/internal/audit"
	"github.com/seatgate/seatgate/internal/observability/logger"
)

// Header names used by tenant servers
const (
	HeaderTenantAPIKey = "X-Tenant-API-Key"
	HeaderServerID     = "X-Server-ID"
)

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			slog.DebugContext(r.Context(), "http_request_start",
				logger.RequestID(middleware.GetReqID(r.Context())),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.RemoteAddr(r.RemoteAddr),
			)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				slog.InfoContext(r.Context(), "http_request_end",
					logger.RequestID(middleware.GetReqID(r.Context())),
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.RemoteAddr(r.RemoteAddr),
					logger.UserAgent(r.UserAgent()),
					logger.StatusCode(ww.Status()),
					logger.Duration(time.Since(start).Milliseconds()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// OperatorAuthMiddleware validates the Bearer token and adds the operator to context
func (h *Handler) OperatorAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			respondError(w, http.StatusUnauthorized, CodeUnauthorized, "not authenticated")
			return
		}

		claims, err := h.authenticator.VerifyToken(strings.TrimSpace(token))
		if err != nil {
			respondError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), operatorIDKey, claims.Subject)
		ctx = audit.WithActor(ctx, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TenantAPIKeyMiddleware resolves the tenant from X-Tenant-API-Key.
// A rotated key is rejected on the very next request.
func (h *Handler) TenantAPIKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimSpace(r.Header.Get(HeaderTenantAPIKey))
		if key == "" {
			respondError(w, http.StatusUnauthorized, CodeUnauthorized, "missing api key")
			return
		}

		t, err := h.tenantService.AuthenticateAPIKey(r.Context(), key)
		if err != nil {
			respondDomainError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), tenantKey, t)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
