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

package activation

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/seatgate/seatgate/internal/audit"
	"github.com/seatgate/seatgate/internal/observability/logger"
)

// Input bounds, mirrored by the HTTP validators.
const (
	MaxFingerprintLength = 256
	MaxDeviceNameLength  = 100
)

// Activation results recorded on the activations_total counter.
const (
	resultActivated   = "activated"
	resultReactivated = "reactivated"
	resultRejected    = "rejected"
)

// Activate binds a code to a device fingerprint. The bind is a conditional
// update on an unbound row, so of two racing devices exactly one wins. A
// device presenting a code it already holds succeeds again unchanged.
func (s *Service) Activate(ctx context.Context, req ActivateRequest) (*Code, error) {
	ctx, span := s.tracer.Start(ctx, "activation.Activate")
	defer span.End()
	span.SetAttributes(attribute.String("tenant.id", req.TenantID))

	req.Code = NormalizeCode(req.Code)
	req.DeviceName = strings.TrimSpace(req.DeviceName)
	if req.TenantID == "" || req.Code == "" || req.DeviceFingerprint == "" ||
		len(req.DeviceFingerprint) > MaxFingerprintLength || len(req.DeviceName) > MaxDeviceNameLength {
		return nil, ErrInvalidInput
	}
	if req.DeviceName == "" {
		req.DeviceName = DefaultDeviceName
	}

	var (
		bound  *Code
		result string
	)
	err := s.store.WriteTx(ctx, func(tx Tx) error {
		// The shared lock orders this bind against a concurrent key rotation.
		t, err := tx.TenantForShare(ctx, req.TenantID)
		if err != nil {
			if errors.Is(err, ErrTenantNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !t.IsActive {
			return ErrTenantInactive
		}

		c, err := tx.GetCodeByValue(ctx, req.TenantID, req.Code)
		if err != nil {
			return err
		}
		if c.BoundTo(req.DeviceFingerprint) {
			bound, result = c, resultReactivated
			return nil
		}
		if c.IsActivated {
			return ErrAlreadyActivated
		}

		_, activated, err := tx.CountCodes(ctx, req.TenantID)
		if err != nil {
			return err
		}
		if activated >= t.MaxClients {
			return ErrQuotaExceeded
		}

		ok, err := tx.BindCode(ctx, c.ID, req.DeviceFingerprint, req.DeviceName, s.now().UTC())
		if err != nil {
			return err
		}

		// Re-read either way: on success to return the stored row, on a lost
		// race to see who won.
		cur, err := tx.GetCode(ctx, req.TenantID, c.ID)
		if err != nil {
			return err
		}
		if !ok {
			if cur.BoundTo(req.DeviceFingerprint) {
				bound, result = cur, resultReactivated
				return nil
			}
			return ErrAlreadyActivated
		}
		bound, result = cur, resultActivated
		return nil
	})
	if err != nil {
		s.metrics.Activation(ctx, resultRejected)
		return nil, err
	}

	s.metrics.Activation(ctx, result)
	if result == resultActivated {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeDeviceActivated,
			TenantID: req.TenantID,
			Resource: bound.ID,
			Metadata: map[string]any{"device_name": req.DeviceName},
		})
	}
	slog.InfoContext(ctx, "device activation",
		logger.TenantID(req.TenantID),
		logger.CodeID(bound.ID),
		logger.Fingerprint(req.DeviceFingerprint),
		logger.String("result", result),
	)

	return bound, nil
}

// Unbind forcibly releases a bound code, keeping its code string so another
// device can take the seat.
func (s *Service) Unbind(ctx context.Context, tenantID, codeID string) (*Code, error) {
	ctx, span := s.tracer.Start(ctx, "activation.Unbind")
	defer span.End()

	var released *Code
	err := s.store.WriteTx(ctx, func(tx Tx) error {
		ok, err := tx.UnbindCode(ctx, tenantID, codeID)
		if err != nil {
			return err
		}
		c, err := tx.GetCode(ctx, tenantID, codeID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotActivated
		}
		released = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Unbound(ctx, 1)
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeDeviceUnbound,
		TenantID: tenantID,
		ActorID:  audit.ActorFromContext(ctx),
		Resource: codeID,
	})
	return released, nil
}

// Check reports the binding held by fingerprint. When several codes share
// the fingerprint the most recently activated one in an active tenant
// answers; bindings in disabled tenants are ignored.
func (s *Service) Check(ctx context.Context, fingerprint string) (*CheckResult, error) {
	ctx, span := s.tracer.Start(ctx, "activation.Check")
	defer span.End()

	if fingerprint == "" || len(fingerprint) > MaxFingerprintLength {
		return nil, ErrInvalidInput
	}

	res := &CheckResult{}
	err := s.store.ReadTx(ctx, func(tx Tx) error {
		_, t, err := tx.FindBinding(ctx, fingerprint)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			return err
		}
		if !t.IsActive {
			return nil
		}
		res.IsActivated = true
		res.TenantID = t.ID
		res.TenantName = t.Name
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
