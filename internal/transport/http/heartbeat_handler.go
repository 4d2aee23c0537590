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
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/seatgate/seatgate/internal/presence"
)

// HeartbeatRequest is the liveness signal of a tenant server. The body may
// be empty.
type HeartbeatRequest struct {
	Version string `json:"version" validate:"max=64"`
	IP      string `json:"ip" validate:"omitempty,ip"`
}

// StatusResponse is a bare acknowledgement
type StatusResponse struct {
	Status string `json:"status"`
}

// VerifyResponse identifies the tenant owning an API key
type VerifyResponse struct {
	TenantID   string `json:"tenantId"`
	TenantName string `json:"tenantName"`
}

// Heartbeat records that a tenant server is alive
// @Summary Tenant server heartbeat
// @Tags Tenant Servers
// @Accept json
// @Produce json
// @Security TenantAPIKey
// @Param X-Server-ID header string false "Server identifier"
// @Param request body HeartbeatRequest false "Heartbeat"
// @Success 200 {object} StatusResponse
// @Failure 401 {object} ErrorResponse
// @Router /heartbeat [post]
func (h *Handler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	t := GetTenant(r.Context())

	var req HeartbeatRequest
	err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodySize)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	ip := strings.TrimSpace(req.IP)
	if ip == "" {
		ip = getIPAddress(r)
	}

	err = h.presenceTracker.RecordHeartbeat(r.Context(), presence.Heartbeat{
		TenantID: t.ID,
		ServerID: r.Header.Get(HeaderServerID),
		Version:  req.Version,
		IP:       ip,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// VerifyTenant confirms an API key and names its tenant
// @Summary Verify tenant API key
// @Tags Tenant Servers
// @Produce json
// @Security TenantAPIKey
// @Success 200 {object} VerifyResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /tenant/verify [get]
func (h *Handler) VerifyTenant(w http.ResponseWriter, r *http.Request) {
	t := GetTenant(r.Context())
	respondJSON(w, http.StatusOK, VerifyResponse{TenantID: t.ID, TenantName: t.Name})
}
