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
	"errors"
	"log/slog"
	"net/http"

	"github.com/seatgate/seatgate/internal/activation"
	"github.com/seatgate/seatgate/internal/observability/logger"
	"github.com/seatgate/seatgate/internal/operator"
	"github.com/seatgate/seatgate/internal/presence"
	"github.com/seatgate/seatgate/internal/tenant"
)

// Stable error codes carried in the "code" field of error responses.
const (
	CodeBadRequest       = "bad_request"
	CodeValidation       = "validation_failed"
	CodeUnauthorized     = "unauthorized"
	CodeNotFound         = "not_found"
	CodeTenantNotFound   = "tenant_not_found"
	CodeTenantInactive   = "tenant_inactive"
	CodeAlreadyActivated = "already_activated"
	CodeNotActivated     = "not_activated"
	CodeQuotaExceeded    = "quota_exceeded"
	CodeQuotaBelowUsage  = "quota_below_usage"
	CodeActiveCodeDelete = "code_in_use"
	CodeInvalidCount     = "invalid_count"
	CodeNameConflict     = "name_conflict"
	CodeRateLimited      = "rate_limited"
	CodeInternal         = "internal_error"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// Order matters: the first matching sentinel wins.
var errorMappings = []errorMapping{
	{activation.ErrQuotaExceeded, http.StatusConflict, CodeQuotaExceeded, "seat limit reached: raise the seat limit or free a seat first"},
	{activation.ErrAlreadyActivated, http.StatusConflict, CodeAlreadyActivated, "this activation code is already in use on another device"},
	{activation.ErrNotActivated, http.StatusConflict, CodeNotActivated, "this activation code is not bound to a device"},
	{activation.ErrActiveCodeDeletion, http.StatusConflict, CodeActiveCodeDelete, "unbind the device before deleting this activation code"},
	{activation.ErrNotFound, http.StatusNotFound, CodeNotFound, "activation code not found: check the code and tenant"},
	{activation.ErrInvalidCount, http.StatusBadRequest, CodeInvalidCount, "count must be between 1 and the batch limit"},
	{activation.ErrInvalidInput, http.StatusBadRequest, CodeValidation, "invalid activation request"},
	{tenant.ErrTenantInactive, http.StatusForbidden, CodeTenantInactive, "this tenant has been disabled"},
	{tenant.ErrTenantNotFound, http.StatusNotFound, CodeTenantNotFound, "tenant not found"},
	{tenant.ErrQuotaBelowUsage, http.StatusConflict, CodeQuotaBelowUsage, "seat limit cannot be lower than the number of issued codes"},
	{tenant.ErrInvalidMaxClients, http.StatusBadRequest, CodeValidation, "maxClients is out of range"},
	{tenant.ErrInvalidName, http.StatusBadRequest, CodeValidation, "tenant name is required"},
	{tenant.ErrTenantNameConflict, http.StatusConflict, CodeNameConflict, "a tenant with this name already exists"},
	{tenant.ErrInvalidAPIKey, http.StatusUnauthorized, CodeUnauthorized, "invalid api key"},
	{presence.ErrInvalidHeartbeat, http.StatusBadRequest, CodeValidation, "invalid heartbeat"},
	{operator.ErrInvalidCredentials, http.StatusUnauthorized, CodeUnauthorized, "invalid username or password"},
	{operator.ErrInvalidToken, http.StatusUnauthorized, CodeUnauthorized, "invalid or expired token"},
}

// respondDomainError translates a service error into an HTTP reply.
// Errors that match no known kind are logged and answered with a generic 500.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			respondError(w, m.status, m.code, m.message)
			return
		}
	}

	slog.ErrorContext(r.Context(), "request failed",
		logger.Method(r.Method),
		logger.Path(r.URL.Path),
		logger.Error(err),
	)
	respondError(w, http.StatusInternalServerError, CodeInternal, "internal server error")
}
