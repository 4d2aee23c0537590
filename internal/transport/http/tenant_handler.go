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
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/seatgate/seatgate/internal/observability/logger"
	"github.com/seatgate/seatgate/internal/tenant"
)

// CreateTenantRequest represents a tenant creation request
type CreateTenantRequest struct {
	Name       string `json:"name" validate:"required,notblank,max=255"`
	MaxClients int    `json:"maxClients" validate:"required,min=1,max=10000"`
}

// CreateTenantResponse carries the tenant and its API key. The key is
// shown only in this response.
type CreateTenantResponse struct {
	Tenant *tenant.Tenant `json:"tenant"`
	APIKey string         `json:"apiKey"`
}

// UpdateTenantRequest represents a partial tenant update
type UpdateTenantRequest struct {
	Name       *string `json:"name" validate:"omitempty,notblank,max=255"`
	MaxClients *int    `json:"maxClients" validate:"omitempty,min=1,max=10000"`
	IsActive   *bool   `json:"isActive"`
}

// TenantView is a tenant annotated with its liveness
type TenantView struct {
	*tenant.Tenant
	Online bool `json:"online"`
}

// TenantListResponse is the body of GET /tenants
type TenantListResponse struct {
	Tenants []TenantView `json:"tenants"`
}

// APIKeyResponse carries a freshly issued API key
type APIKeyResponse struct {
	APIKey string `json:"apiKey"`
}

// CreateTenant provisions a tenant and returns its first API key
// @Summary Create tenant
// @Tags Tenants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTenantRequest true "Tenant"
// @Success 201 {object} CreateTenantResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /tenants [post]
func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var req CreateTenantRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	t, apiKey, err := h.tenantService.CreateTenant(r.Context(), req.Name, req.MaxClients)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, CreateTenantResponse{Tenant: t, APIKey: apiKey})
}

// ListTenants lists tenants with their online flag
// @Summary List tenants
// @Tags Tenants
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} TenantListResponse
// @Router /tenants [get]
func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	tenants, err := h.tenantService.ListTenants(r.Context(), limit, offset)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	ids := make([]string, len(tenants))
	for i, t := range tenants {
		ids[i] = t.ID
	}
	online, err := h.presenceTracker.OnlineTenants(r.Context(), ids)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	views := make([]TenantView, len(tenants))
	for i, t := range tenants {
		views[i] = TenantView{Tenant: t, Online: online[t.ID]}
	}

	respondJSON(w, http.StatusOK, TenantListResponse{Tenants: views})
}

// GetTenant returns a single tenant
// @Summary Get tenant
// @Tags Tenants
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Success 200 {object} TenantView
// @Failure 404 {object} ErrorResponse
// @Router /tenants/{tenantID} [get]
func (h *Handler) GetTenant(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	t, err := h.tenantService.GetTenant(r.Context(), tenantID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	online, err := h.presenceTracker.OnlineTenants(r.Context(), []string{t.ID})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, TenantView{Tenant: t, Online: online[t.ID]})
}

// UpdateTenant changes a tenant's name, seat quota or active flag
// @Summary Update tenant
// @Tags Tenants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param request body UpdateTenantRequest true "Fields to change"
// @Success 200 {object} tenant.Tenant
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /tenants/{tenantID} [patch]
func (h *Handler) UpdateTenant(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	var req UpdateTenantRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	t, err := h.tenantService.UpdateTenant(r.Context(), tenantID, tenant.Update{
		Name:       req.Name,
		MaxClients: req.MaxClients,
		IsActive:   req.IsActive,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, t)
}

// RegenerateAPIKey rotates the tenant API key and releases every bound device
// @Summary Regenerate tenant API key
// @Tags Tenants
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Success 200 {object} APIKeyResponse
// @Failure 404 {object} ErrorResponse
// @Router /tenants/{tenantID}/regenerate-key [post]
func (h *Handler) RegenerateAPIKey(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	apiKey, err := h.activationService.ResetAPIKey(r.Context(), tenantID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "tenant api key reset",
		logger.TenantID(tenantID),
		logger.OperatorID(GetOperatorID(r.Context())),
	)

	respondJSON(w, http.StatusOK, APIKeyResponse{APIKey: apiKey})
}

// TenantPresence returns the liveness of every server of a tenant
// @Summary Tenant presence
// @Tags Tenants
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Success 200 {object} presence.Status
// @Failure 404 {object} ErrorResponse
// @Router /tenants/{tenantID}/presence [get]
func (h *Handler) TenantPresence(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	if _, err := h.tenantService.GetTenant(r.Context(), tenantID); err != nil {
		respondDomainError(w, r, err)
		return
	}

	status, err := h.presenceTracker.TenantStatus(r.Context(), tenantID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, status)
}
