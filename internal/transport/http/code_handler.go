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
	"net/http"

	"github.com/go-chi/chi/v5"
)

// GenerateCodesRequest asks for a batch of new activation codes
type GenerateCodesRequest struct {
	Count int `json:"count" validate:"required,min=1,max=100"`
}

// GenerateCodes issues new activation codes within the tenant quota
// @Summary Generate activation codes
// @Tags Activation Codes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param request body GenerateCodesRequest true "Batch size"
// @Success 201 {array} activation.Code
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /tenants/{tenantID}/activations [post]
func (h *Handler) GenerateCodes(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	var req GenerateCodesRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	codes, err := h.activationService.Generate(r.Context(), tenantID, req.Count)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, codes)
}

// ListCodes lists a tenant's activation codes with seat statistics
// @Summary List activation codes
// @Tags Activation Codes
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Success 200 {object} activation.Listing
// @Failure 404 {object} ErrorResponse
// @Router /tenants/{tenantID}/activations [get]
func (h *Handler) ListCodes(w http.ResponseWriter, r *http.Request) {
	listing, err := h.activationService.List(r.Context(), chi.URLParam(r, "tenantID"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, listing)
}

// UnbindCode releases the device bound to a code
// @Summary Unbind activation code
// @Tags Activation Codes
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param codeID path string true "Code ID"
// @Success 200 {object} activation.Code
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /tenants/{tenantID}/activations/{codeID}/unbind [post]
func (h *Handler) UnbindCode(w http.ResponseWriter, r *http.Request) {
	code, err := h.activationService.Unbind(r.Context(), chi.URLParam(r, "tenantID"), chi.URLParam(r, "codeID"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, code)
}

// DeleteCode removes an unbound code and frees its quota slot
// @Summary Delete activation code
// @Tags Activation Codes
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param codeID path string true "Code ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /tenants/{tenantID}/activations/{codeID} [delete]
func (h *Handler) DeleteCode(w http.ResponseWriter, r *http.Request) {
	if err := h.activationService.Delete(r.Context(), chi.URLParam(r, "tenantID"), chi.URLParam(r, "codeID")); err != nil {
		respondDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
