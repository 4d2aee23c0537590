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
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/seatgate/seatgate/internal/tenant"
)

// TenantRepository implements tenant.Repository
type TenantRepository struct {
	db  *DB
	now func() time.Time
}

var _ tenant.Repository = (*TenantRepository)(nil)

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *DB) *TenantRepository {
	return &TenantRepository{db: db, now: time.Now}
}

// Create creates a new tenant
func (r *TenantRepository) Create(ctx context.Context, t *tenant.Tenant) error {
	return r.db.WriteTX(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(tenantFromDomain(t)).Error; err != nil {
			if isUniqueViolation(err) {
				return tenant.ErrTenantNameConflict
			}
			return fmt.Errorf("failed to create tenant: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a tenant by ID
func (r *TenantRepository) GetByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	return r.take(ctx, "id = ?", id)
}

// GetByAPIKeyHash retrieves the tenant whose current key hashes to hash
func (r *TenantRepository) GetByAPIKeyHash(ctx context.Context, hash string) (*tenant.Tenant, error) {
	return r.take(ctx, "api_key_hash = ?", hash)
}

func (r *TenantRepository) take(ctx context.Context, query string, args ...any) (*tenant.Tenant, error) {
	var row tenantRow
	err := r.db.ReadTX(ctx, func(tx *gorm.DB) error {
		return tx.Where(query, args...).Take(&row).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return row.toDomain(), nil
}

// List lists tenants, newest first
func (r *TenantRepository) List(ctx context.Context, limit, offset int) ([]*tenant.Tenant, error) {
	var rows []tenantRow
	err := r.db.ReadTX(ctx, func(tx *gorm.DB) error {
		return tx.Order("created_at DESC").Order("id DESC").
			Limit(limit).Offset(offset).
			Find(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}

	out := make([]*tenant.Tenant, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

// Update applies upd. The quota check and the write share the writer
// connection, so no Generate can slip in between.
func (r *TenantRepository) Update(ctx context.Context, id string, upd tenant.Update) (*tenant.Tenant, error) {
	var row tenantRow
	err := r.db.WriteTX(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Take(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return tenant.ErrTenantNotFound
			}
			return err
		}

		fields := map[string]any{"updated_at": r.now().UTC()}
		if upd.Name != nil {
			fields["name"] = *upd.Name
		}
		if upd.MaxClients != nil {
			total, _, err := countCodes(ctx, tx, id)
			if err != nil {
				return err
			}
			if *upd.MaxClients < total {
				return tenant.ErrQuotaBelowUsage
			}
			fields["max_clients"] = *upd.MaxClients
		}
		if upd.IsActive != nil {
			fields["is_active"] = *upd.IsActive
		}

		if err := tx.Model(&tenantRow{}).Where("id = ?", id).Updates(fields).Error; err != nil {
			if isUniqueViolation(err) {
				return tenant.ErrTenantNameConflict
			}
			return err
		}
		return tx.Where("id = ?", id).Take(&row).Error
	})
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) ||
			errors.Is(err, tenant.ErrQuotaBelowUsage) ||
			errors.Is(err, tenant.ErrTenantNameConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}
	return row.toDomain(), nil
}
