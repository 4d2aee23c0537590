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
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/seatgate/seatgate/internal/audit"
	"github.com/seatgate/seatgate/internal/id"
	"github.com/seatgate/seatgate/internal/observability/logger"
)

const maxCodeAttempts = 5

// Generate issues count new codes for a tenant. The quota is re-checked
// under an exclusive lock on the tenant row, so concurrent callers can
// never push the pool past MaxClients.
func (s *Service) Generate(ctx context.Context, tenantID string, count int) ([]*Code, error) {
	ctx, span := s.tracer.Start(ctx, "activation.Generate")
	defer span.End()
	span.SetAttributes(attribute.String("tenant.id", tenantID), attribute.Int("count", count))

	if count < 1 || count > MaxBatch {
		return nil, ErrInvalidCount
	}

	var codes []*Code
	err := s.store.WriteTx(ctx, func(tx Tx) error {
		codes = codes[:0]

		t, err := tx.TenantForUpdate(ctx, tenantID)
		if err != nil {
			return err
		}

		total, _, err := tx.CountCodes(ctx, tenantID)
		if err != nil {
			return err
		}
		if total+count > t.MaxClients {
			return ErrQuotaExceeded
		}

		now := s.now().UTC()
		for range count {
			c, err := s.insertFresh(ctx, tx, tenantID, now)
			if err != nil {
				return err
			}
			codes = append(codes, c)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			slog.InfoContext(ctx, "code generation rejected by quota",
				logger.TenantID(tenantID), logger.Count(count))
		}
		return nil, err
	}

	s.metrics.CodesGenerated(ctx, len(codes))
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeCodesGenerated,
		TenantID: tenantID,
		ActorID:  audit.ActorFromContext(ctx),
		Resource: "activation_codes",
		Metadata: map[string]any{"count": len(codes)},
	})

	return codes, nil
}

// insertFresh inserts one code, drawing a new value on a uniqueness collision.
func (s *Service) insertFresh(ctx context.Context, tx Tx, tenantID string, now time.Time) (*Code, error) {
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		value, err := s.newCode()
		if err != nil {
			return nil, err
		}

		c := &Code{
			ID:        id.NewUUIDv7(),
			TenantID:  tenantID,
			Code:      value,
			CreatedAt: now,
		}
		err = tx.InsertCode(ctx, c)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, ErrDuplicateCode) {
			return nil, err
		}
		slog.DebugContext(ctx, "activation code collision, regenerating",
			logger.TenantID(tenantID), logger.Attempt(attempt))
	}
	return nil, fmt.Errorf("no unique activation code after %d attempts: %w", maxCodeAttempts, ErrDuplicateCode)
}

// List returns a tenant's codes, newest first, with pool statistics.
func (s *Service) List(ctx context.Context, tenantID string) (*Listing, error) {
	ctx, span := s.tracer.Start(ctx, "activation.List")
	defer span.End()

	var out Listing
	err := s.store.ReadTx(ctx, func(tx Tx) error {
		t, err := tx.GetTenant(ctx, tenantID)
		if err != nil {
			return err
		}
		codes, err := tx.ListCodes(ctx, tenantID)
		if err != nil {
			return err
		}

		activated := 0
		for _, c := range codes {
			if c.IsActivated {
				activated++
			}
		}
		out = Listing{
			Codes: codes,
			Stats: Stats{
				Total:      len(codes),
				Activated:  activated,
				Available:  len(codes) - activated,
				MaxClients: t.MaxClients,
			},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.Codes == nil {
		out.Codes = []*Code{}
	}
	return &out, nil
}

// Delete retires an unbound code. A bound code must be unbound first.
func (s *Service) Delete(ctx context.Context, tenantID, codeID string) error {
	ctx, span := s.tracer.Start(ctx, "activation.Delete")
	defer span.End()

	err := s.store.WriteTx(ctx, func(tx Tx) error {
		deleted, err := tx.DeleteCode(ctx, tenantID, codeID)
		if err != nil {
			return err
		}
		if deleted {
			return nil
		}
		// Nothing deleted: either absent or bound.
		if _, err := tx.GetCode(ctx, tenantID, codeID); err != nil {
			return err
		}
		return ErrActiveCodeDeletion
	})
	if err != nil {
		return err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeCodeDeleted,
		TenantID: tenantID,
		ActorID:  audit.ActorFromContext(ctx),
		Resource: codeID,
	})
	return nil
}
