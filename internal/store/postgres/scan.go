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
	"github.com/jackc/pgx/v5"

	"github.com/seatgate/seatgate/internal/activation"
	"github.com/seatgate/seatgate/internal/tenant"
)

const (
	tenantColumns = `id, name, api_key_hash, api_key_prefix, max_clients, is_active, created_at, updated_at`
	codeColumns   = `id, tenant_id, code, device_fingerprint, device_name, is_activated, activated_at, created_at`
)

func scanTenant(row pgx.Row) (*tenant.Tenant, error) {
	var t tenant.Tenant
	err := row.Scan(
		&t.ID, &t.Name, &t.APIKeyHash, &t.APIKeyPrefix,
		&t.MaxClients, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}

func scanCode(row pgx.Row) (*activation.Code, error) {
	var c activation.Code
	err := row.Scan(
		&c.ID, &c.TenantID, &c.Code, &c.DeviceFingerprint, &c.DeviceName,
		&c.IsActivated, &c.ActivatedAt, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	if c.ActivatedAt != nil {
		at := c.ActivatedAt.UTC()
		c.ActivatedAt = &at
	}
	return &c, nil
}
