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
	"time"

	"github.com/seatgate/seatgate/internal/activation"
	"github.com/seatgate/seatgate/internal/presence"
	"github.com/seatgate/seatgate/internal/tenant"
)

type tenantRow struct {
	ID           string    `gorm:"column:id;primaryKey"`
	Name         string    `gorm:"column:name"`
	APIKeyHash   string    `gorm:"column:api_key_hash"`
	APIKeyPrefix string    `gorm:"column:api_key_prefix"`
	MaxClients   int       `gorm:"column:max_clients"`
	IsActive     bool      `gorm:"column:is_active"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (tenantRow) TableName() string { return "tenants" }

func tenantFromDomain(t *tenant.Tenant) *tenantRow {
	return &tenantRow{
		ID:           t.ID,
		Name:         t.Name,
		APIKeyHash:   t.APIKeyHash,
		APIKeyPrefix: t.APIKeyPrefix,
		MaxClients:   t.MaxClients,
		IsActive:     t.IsActive,
		CreatedAt:    t.CreatedAt.UTC(),
		UpdatedAt:    t.UpdatedAt.UTC(),
	}
}

func (r *tenantRow) toDomain() *tenant.Tenant {
	return &tenant.Tenant{
		ID:           r.ID,
		Name:         r.Name,
		APIKeyHash:   r.APIKeyHash,
		APIKeyPrefix: r.APIKeyPrefix,
		MaxClients:   r.MaxClients,
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

type codeRow struct {
	ID                string     `gorm:"column:id;primaryKey"`
	TenantID          string     `gorm:"column:tenant_id"`
	Code              string     `gorm:"column:code"`
	DeviceFingerprint *string    `gorm:"column:device_fingerprint"`
	DeviceName        *string    `gorm:"column:device_name"`
	IsActivated       bool       `gorm:"column:is_activated"`
	ActivatedAt       *time.Time `gorm:"column:activated_at"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime:false"`
}

func (codeRow) TableName() string { return "activation_codes" }

func codeFromDomain(c *activation.Code) *codeRow {
	return &codeRow{
		ID:                c.ID,
		TenantID:          c.TenantID,
		Code:              c.Code,
		DeviceFingerprint: c.DeviceFingerprint,
		DeviceName:        c.DeviceName,
		IsActivated:       c.IsActivated,
		ActivatedAt:       utcPtr(c.ActivatedAt),
		CreatedAt:         c.CreatedAt.UTC(),
	}
}

func (r *codeRow) toDomain() *activation.Code {
	return &activation.Code{
		ID:                r.ID,
		TenantID:          r.TenantID,
		Code:              r.Code,
		DeviceFingerprint: r.DeviceFingerprint,
		DeviceName:        r.DeviceName,
		IsActivated:       r.IsActivated,
		ActivatedAt:       utcPtr(r.ActivatedAt),
		CreatedAt:         r.CreatedAt.UTC(),
	}
}

type heartbeatRow struct {
	TenantID      string    `gorm:"column:tenant_id;primaryKey"`
	ServerID      string    `gorm:"column:server_id;primaryKey"`
	LastHeartbeat time.Time `gorm:"column:last_heartbeat"`
	Version       string    `gorm:"column:version"`
	IP            string    `gorm:"column:ip"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (heartbeatRow) TableName() string { return "tenant_heartbeats" }

func (r *heartbeatRow) toDomain() *presence.Record {
	return &presence.Record{
		TenantID:      r.TenantID,
		ServerID:      r.ServerID,
		LastHeartbeat: r.LastHeartbeat.UTC(),
		Version:       r.Version,
		IP:            r.IP,
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
