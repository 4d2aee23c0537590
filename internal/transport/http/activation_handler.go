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

	"github.com/seatgate/seatgate/internal/activation"
)

// CheckRequest represents an activation status query from a device
type CheckRequest struct {
	DeviceFingerprint string `json:"deviceFingerprint" validate:"required,max=256"`
}

// ActivateRequest represents a device presenting an activation code
type ActivateRequest struct {
	TenantID          string `json:"tenantId" validate:"required,max=64"`
	Code              string `json:"code" validate:"required,notblank,max=64"`
	DeviceFingerprint string `json:"deviceFingerprint" validate:"required,max=256"`
	DeviceName        string `json:"deviceName" validate:"max=100"`
}

// CheckActivation reports whether a device fingerprint holds a seat
// @Summary Check activation
// @Tags Activation
// @Accept json
// @Produce json
// @Param request body CheckRequest true "Device fingerprint"
// @Success 200 {object} activation.CheckResult
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /activation/check [post]
func (h *Handler) CheckActivation(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.activationService.Check(r.Context(), req.DeviceFingerprint)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, res)
}

// Activate binds an activation code to the calling device
// @Summary Activate device
// @Tags Activation
// @Accept json
// @Produce json
// @Param request body ActivateRequest true "Activation request"
// @Success 200 {object} activation.Code
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /activation/activate [post]
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	var req ActivateRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	code, err := h.activationService.Activate(r.Context(), activation.ActivateRequest{
		TenantID:          req.TenantID,
		Code:              req.Code,
		DeviceFingerprint: req.DeviceFingerprint,
		DeviceName:        req.DeviceName,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, code)
}
