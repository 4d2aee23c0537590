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
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/seatgate/seatgate/internal/activation"
	"github.com/seatgate/seatgate/internal/tenant"
)

// ActivationStore implements activation.Store
type ActivationStore struct {
	db *DB
}

var _ activation.Store = (*ActivationStore)(nil)

// NewActivationStore creates a new activation store
func NewActivationStore(db *DB) *ActivationStore {
	return &ActivationStore{db: db}
}

// ReadTx runs fn in a read-only transaction.
func (s *ActivationStore) ReadTx(ctx context.Context, fn func(tx activation.Tx) error) error {
	return s.db.withTx(ctx, readOnly, func(tx pgx.Tx) error {
		return fn(&activationTx{tx: tx})
	})
}

// WriteTx runs fn in a read-write transaction.
func (s *ActivationStore) WriteTx(ctx context.Context, fn func(tx activation.Tx) error) error {
	return s.db.withTx(ctx, readWrite, func(tx pgx.Tx) error {
		return fn(&activationTx{tx: tx})
	})
}

// activationTx implements activation.Tx on a pgx transaction
type activationTx struct {
	tx pgx.Tx
}

func (t *activationTx) tenant(ctx context.Context, lock, tenantID string) (*tenant.Tenant, error) {
	tn, err := scanTenant(t.tx.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`+lock, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return tn, nil
}

func (t *activationTx) GetTenant(ctx context.Context, tenantID string) (*tenant.Tenant, error) {
	return t.tenant(ctx, "", tenantID)
}

func (t *activationTx) TenantForShare(ctx context.Context, tenantID string) (*tenant.Tenant, error) {
	return t.tenant(ctx, " FOR SHARE", tenantID)
}

func (t *activationTx) TenantForUpdate(ctx context.Context, tenantID string) (*tenant.Tenant, error) {
	return t.tenant(ctx, " FOR UPDATE", tenantID)
}

func (t *activationTx) CountCodes(ctx context.Context, tenantID string) (int, int, error) {
	var total, activated int
	err := t.tx.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_activated)
		FROM activation_codes WHERE tenant_id = $1
	`, tenantID).Scan(&total, &activated)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count activation codes: %w", err)
	}
	return total, activated, nil
}

func (t *activationTx) ListCodes(ctx context.Context, tenantID string) ([]*activation.Code, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT `+codeColumns+`
		FROM activation_codes
		WHERE tenant_id = $1
		ORDER BY created_at DESC, id DESC
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activation codes: %w", err)
	}
	defer rows.Close()

	codes := []*activation.Code{}
	for rows.Next() {
		c, err := scanCode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activation code: %w", err)
		}
		codes = append(codes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list activation codes: %w", err)
	}
	return codes, nil
}

func (t *activationTx) GetCode(ctx context.Context, tenantID, codeID string) (*activation.Code, error) {
	return t.code(ctx, `tenant_id = $1 AND id = $2`, tenantID, codeID)
}

func (t *activationTx) GetCodeByValue(ctx context.Context, tenantID, code string) (*activation.Code, error) {
	return t.code(ctx, `tenant_id = $1 AND code = $2`, tenantID, code)
}

func (t *activationTx) code(ctx context.Context, where string, args ...any) (*activation.Code, error) {
	c, err := scanCode(t.tx.QueryRow(ctx, `SELECT `+codeColumns+` FROM activation_codes WHERE `+where, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, activation.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get activation code: %w", err)
	}
	return c, nil
}

// InsertCode uses ON CONFLICT so a colliding code does not abort the
// surrounding transaction.
func (t *activationTx) InsertCode(ctx context.Context, c *activation.Code) error {
	tag, err := t.tx.Exec(ctx, `
		INSERT INTO activation_codes (id, tenant_id, code, is_activated, created_at)
		VALUES ($1, $2, $3, FALSE, $4)
		ON CONFLICT (tenant_id, code) DO NOTHING
	`, c.ID, c.TenantID, c.Code, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert activation code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return activation.ErrDuplicateCode
	}
	return nil
}

func (t *activationTx) BindCode(ctx context.Context, codeID, fingerprint, deviceName string, at time.Time) (bool, error) {
	tag, err := t.tx.Exec(ctx, `
		UPDATE activation_codes
		SET device_fingerprint = $2, device_name = $3, is_activated = TRUE, activated_at = $4
		WHERE id = $1 AND NOT is_activated
	`, codeID, fingerprint, deviceName, at)
	if err != nil {
		return false, fmt.Errorf("failed to bind activation code: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

const releaseBinding = `device_fingerprint = NULL, device_name = NULL, is_activated = FALSE, activated_at = NULL`

func (t *activationTx) UnbindCode(ctx context.Context, tenantID, codeID string) (bool, error) {
	tag, err := t.tx.Exec(ctx, `
		UPDATE activation_codes SET `+releaseBinding+`
		WHERE tenant_id = $1 AND id = $2 AND is_activated
	`, tenantID, codeID)
	if err != nil {
		return false, fmt.Errorf("failed to unbind activation code: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (t *activationTx) DeleteCode(ctx context.Context, tenantID, codeID string) (bool, error) {
	tag, err := t.tx.Exec(ctx, `
		DELETE FROM activation_codes
		WHERE tenant_id = $1 AND id = $2 AND NOT is_activated
	`, tenantID, codeID)
	if err != nil {
		return false, fmt.Errorf("failed to delete activation code: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (t *activationTx) ReleaseAll(ctx context.Context, tenantID string) (int64, error) {
	tag, err := t.tx.Exec(ctx, `
		UPDATE activation_codes SET `+releaseBinding+`
		WHERE tenant_id = $1 AND is_activated
	`, tenantID)
	if err != nil {
		return 0, fmt.Errorf("failed to release activation codes: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (t *activationTx) SetAPIKey(ctx context.Context, tenantID, hash, prefix string, at time.Time) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE tenants SET api_key_hash = $2, api_key_prefix = $3, updated_at = $4
		WHERE id = $1
	`, tenantID, hash, prefix, at)
	if err != nil {
		return fmt.Errorf("failed to set api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tenant.ErrTenantNotFound
	}
	return nil
}

func (t *activationTx) FindBinding(ctx context.Context, fingerprint string) (*activation.Code, *tenant.Tenant, error) {
	c, err := scanCode(t.tx.QueryRow(ctx, `
		SELECT `+codeColumns+`
		FROM activation_codes
		WHERE device_fingerprint = $1 AND is_activated
		  AND EXISTS (SELECT 1 FROM tenants t WHERE t.id = activation_codes.tenant_id AND t.is_active)
		ORDER BY activated_at DESC, id DESC
		LIMIT 1
	`, fingerprint))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, activation.ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to find binding: %w", err)
	}

	tn, err := t.GetTenant(ctx, c.TenantID)
	if err != nil {
		return nil, nil, err
	}
	return c, tn, nil
}
