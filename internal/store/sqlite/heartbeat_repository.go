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

package sqlite

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/seatgate/seatgate/internal/presence"
)

// HeartbeatRepository implements presence.Repository
type HeartbeatRepository struct {
	db *DB
}

var _ presence.Repository = (*HeartbeatRepository)(nil)

// NewHeartbeatRepository creates a new heartbeat repository
func NewHeartbeatRepository(db *DB) *HeartbeatRepository {
	return &HeartbeatRepository{db: db}
}

// Upsert records a heartbeat, keeping the later of the stored and incoming times
func (r *HeartbeatRepository) Upsert(ctx context.Context, hb presence.Heartbeat, at time.Time) error {
	at = at.UTC()
	row := &heartbeatRow{
		TenantID:      hb.TenantID,
		ServerID:      hb.ServerID,
		LastHeartbeat: at,
		Version:       hb.Version,
		IP:            hb.IP,
		UpdatedAt:     at,
	}

	err := r.db.WriteTX(ctx, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "server_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"last_heartbeat": gorm.Expr("MAX(last_heartbeat, excluded.last_heartbeat)"),
				"version":        gorm.Expr("excluded.version"),
				"ip":             gorm.Expr("excluded.ip"),
				"updated_at":     gorm.Expr("excluded.updated_at"),
			}),
		}).Create(row).Error
	})
	if err != nil {
		return fmt.Errorf("failed to upsert heartbeat: %w", err)
	}
	return nil
}

// ListByTenant lists the heartbeat records of every server of a tenant
func (r *HeartbeatRepository) ListByTenant(ctx context.Context, tenantID string) ([]*presence.Record, error) {
	var rows []heartbeatRow
	err := r.db.ReadTX(ctx, func(tx *gorm.DB) error {
		return tx.Where("tenant_id = ?", tenantID).Order("server_id").Find(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list heartbeats: %w", err)
	}

	out := make([]*presence.Record, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

// LatestByTenants returns the newest heartbeat per tenant
func (r *HeartbeatRepository) LatestByTenants(ctx context.Context, tenantIDs []string) (map[string]time.Time, error) {
	out := make(map[string]time.Time, len(tenantIDs))
	if len(tenantIDs) == 0 {
		return out, nil
	}

	var rows []heartbeatRow
	err := r.db.ReadTX(ctx, func(tx *gorm.DB) error {
		return tx.Select("tenant_id", "last_heartbeat").
			Where("tenant_id IN ?", tenantIDs).
			Find(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load heartbeats: %w", err)
	}

	for _, row := range rows {
		last := row.LastHeartbeat.UTC()
		if cur, ok := out[row.TenantID]; !ok || last.After(cur) {
			out[row.TenantID] = last
		}
	}
	return out, nil
}
