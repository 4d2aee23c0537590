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

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

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

// Upsert records a heartbeat. A delayed, older heartbeat never moves
// last_heartbeat backwards.
func (r *HeartbeatRepository) Upsert(ctx context.Context, hb presence.Heartbeat, at time.Time) error {
	err := r.db.withTx(ctx, readWrite, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO tenant_heartbeats (tenant_id, server_id, last_heartbeat, version, ip, updated_at)
			VALUES ($1, $2, $3, $4, $5, $3)
			ON CONFLICT (tenant_id, server_id) DO UPDATE SET
				last_heartbeat = GREATEST(tenant_heartbeats.last_heartbeat, EXCLUDED.last_heartbeat),
				version        = EXCLUDED.version,
				ip             = EXCLUDED.ip,
				updated_at     = EXCLUDED.updated_at
		`, hb.TenantID, hb.ServerID, at.UTC(), hb.Version, hb.IP)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to upsert heartbeat: %w", err)
	}
	return nil
}

// ListByTenant lists the heartbeat records of every server of a tenant
func (r *HeartbeatRepository) ListByTenant(ctx context.Context, tenantID string) ([]*presence.Record, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT tenant_id, server_id, last_heartbeat, version, ip, updated_at
		FROM tenant_heartbeats
		WHERE tenant_id = $1
		ORDER BY server_id
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list heartbeats: %w", err)
	}
	defer rows.Close()

	out := []*presence.Record{}
	for rows.Next() {
		var rec presence.Record
		if err := rows.Scan(&rec.TenantID, &rec.ServerID, &rec.LastHeartbeat, &rec.Version, &rec.IP, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan heartbeat: %w", err)
		}
		rec.LastHeartbeat = rec.LastHeartbeat.UTC()
		rec.UpdatedAt = rec.UpdatedAt.UTC()
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list heartbeats: %w", err)
	}
	return out, nil
}

// LatestByTenants returns the newest heartbeat per tenant
func (r *HeartbeatRepository) LatestByTenants(ctx context.Context, tenantIDs []string) (map[string]time.Time, error) {
	out := make(map[string]time.Time, len(tenantIDs))
	if len(tenantIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.pool.Query(ctx, `
		SELECT tenant_id, MAX(last_heartbeat)
		FROM tenant_heartbeats
		WHERE tenant_id = ANY($1)
		GROUP BY tenant_id
	`, tenantIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load heartbeats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   string
			last time.Time
		)
		if err := rows.Scan(&id, &last); err != nil {
			return nil, fmt.Errorf("failed to scan heartbeat: %w", err)
		}
		out[id] = last.UTC()
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load heartbeats: %w", err)
	}
	return out, nil
}
