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
	"log/slog"

	"github.com/seatgate/seatgate/internal/audit"
	"github.com/seatgate/seatgate/internal/credential"
	"github.com/seatgate/seatgate/internal/observability/logger"
)

// ResetAPIKey replaces the tenant's API key and releases every binding in
// the same transaction. The new plaintext key is returned exactly once.
// Codes are kept; bound devices must activate again.
func (s *Service) ResetAPIKey(ctx context.Context, tenantID string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "activation.ResetAPIKey")
	defer span.End()

	var (
		apiKey   string
		released int64
	)
	err := s.store.WriteTx(ctx, func(tx Tx) error {
		if _, err := tx.TenantForUpdate(ctx, tenantID); err != nil {
			return err
		}

		key, err := credential.Generate()
		if err != nil {
			return err
		}
		if err := tx.SetAPIKey(ctx, tenantID, credential.Hash(key), credential.Prefix(key), s.now().UTC()); err != nil {
			return err
		}

		n, err := tx.ReleaseAll(ctx, tenantID)
		if err != nil {
			return err
		}
		apiKey, released = key, n
		return nil
	})
	if err != nil {
		return "", err
	}

	s.metrics.Rotated(ctx)
	s.metrics.Unbound(ctx, released)
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeAPIKeyRotated,
		TenantID: tenantID,
		ActorID:  audit.ActorFromContext(ctx),
		Resource: "tenant",
		Metadata: map[string]any{"released_bindings": released},
	})
	slog.InfoContext(ctx, "tenant api key rotated",
		logger.TenantID(tenantID), logger.RowsAffected(released))

	return apiKey, nil
}
