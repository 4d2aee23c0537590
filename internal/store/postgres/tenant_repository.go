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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/seatgate/seatgate/internal/tenant"
)

const tenantNameConstraint = "tenants_name_key"

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
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO tenants (`+tenantColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		t.ID, t.Name, t.APIKeyHash, t.APIKeyPrefix, t.MaxClients, t.IsActive, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, tenantNameConstraint) {
			return tenant.ErrTenantNameConflict
		}
		return fmt.Errorf("failed to create tenant: %w", err)
	}
	return nil
}

// GetByID retrieves a tenant by ID
func (r *TenantRepository) GetByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	return r.get(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id)
}

// GetByAPIKeyHash retrieves the tenant whose current key hashes to hash
func (r *TenantRepository) GetByAPIKeyHash(ctx context.Context, hash string) (*tenant.Tenant, error) {
	return r.get(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE api_key_hash = $1`, hash)
}

func (r *TenantRepository) get(ctx context.Context, query string, args ...any) (*tenant.Tenant, error) {
	t, err := scanTenant(r.db.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return t, nil
}

// List lists tenants, newest first
func (r *TenantRepository) List(ctx context.Context, limit, offset int) ([]*tenant.Tenant, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+tenantColumns+`
		FROM tenants
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var out []*tenant.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	return out, nil
}

// Update applies upd. The tenant row is locked first so the quota check
// cannot race a concurrent code generation.
func (r *TenantRepository) Update(ctx context.Context, id string, upd tenant.Update) (*tenant.Tenant, error) {
	var updated *tenant.Tenant
	err := r.db.withTx(ctx, readWrite, func(tx pgx.Tx) error {
		if _, err := scanTenant(tx.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1 FOR UPDATE`, id)); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return tenant.ErrTenantNotFound
			}
			return err
		}

		sets := []string{"updated_at = $1"}
		args := []any{r.now().UTC()}
		add := func(column string, v any) {
			args = append(args, v)
			sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
		}

		if upd.Name != nil {
			add("name", *upd.Name)
		}
		if upd.MaxClients != nil {
			var total int
			if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM activation_codes WHERE tenant_id = $1`, id).Scan(&total); err != nil {
				return err
			}
			if *upd.MaxClients < total {
				return tenant.ErrQuotaBelowUsage
			}
			add("max_clients", *upd.MaxClients)
		}
		if upd.IsActive != nil {
			add("is_active", *upd.IsActive)
		}

		args = append(args, id)
		query := fmt.Sprintf(`UPDATE tenants SET %s WHERE id = $%d RETURNING `+tenantColumns,
			strings.Join(sets, ", "), len(args))

		t, err := scanTenant(tx.QueryRow(ctx, query, args...))
		if err != nil {
			if isUniqueViolation(err, tenantNameConstraint) {
				return tenant.ErrTenantNameConflict
			}
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) ||
			errors.Is(err, tenant.ErrQuotaBelowUsage) ||
			errors.Is(err, tenant.ErrTenantNameConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}
	return updated, nil
}
