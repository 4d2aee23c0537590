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
	"gorm.io/gorm/clause"

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

// ReadTx runs fn on the read pool.
func (s *ActivationStore) ReadTx(ctx context.Context, fn func(tx activation.Tx) error) error {
	return s.db.ReadTX(ctx, func(tx *gorm.DB) error {
		return fn(&activationTx{db: tx})
	})
}

// WriteTx runs fn on the writer connection.
func (s *ActivationStore) WriteTx(ctx context.Context, fn func(tx activation.Tx) error) error {
	return s.db.WriteTX(ctx, func(tx *gorm.DB) error {
		return fn(&activationTx{db: tx})
	})
}

// activationTx implements activation.Tx. Row locks are implicit: every
// write transaction already holds the database write lock.
type activationTx struct {
	db *gorm.DB
}

func (t *activationTx) GetTenant(ctx context.Context, tenantID string) (*tenant.Tenant, error) {
	var row tenantRow
	if err := t.db.WithContext(ctx).Where("id = ?", tenantID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return row.toDomain(), nil
}

func (t *activationTx) TenantForShare(ctx context.Context, tenantID string) (*tenant.Tenant, error) {
	return t.GetTenant(ctx, tenantID)
}

func (t *activationTx) TenantForUpdate(ctx context.Context, tenantID string) (*tenant.Tenant, error) {
	return t.GetTenant(ctx, tenantID)
}

func (t *activationTx) CountCodes(ctx context.Context, tenantID string) (int, int, error) {
	return countCodes(ctx, t.db, tenantID)
}

func countCodes(ctx context.Context, db *gorm.DB, tenantID string) (int, int, error) {
	var total, activated int
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_activated THEN 1 ELSE 0 END), 0)
		 FROM activation_codes WHERE tenant_id = ?`, tenantID,
	).Row().Scan(&total, &activated)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count activation codes: %w", err)
	}
	return total, activated, nil
}

func (t *activationTx) ListCodes(ctx context.Context, tenantID string) ([]*activation.Code, error) {
	var rows []codeRow
	err := t.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list activation codes: %w", err)
	}

	codes := make([]*activation.Code, 0, len(rows))
	for i := range rows {
		codes = append(codes, rows[i].toDomain())
	}
	return codes, nil
}

func (t *activationTx) GetCode(ctx context.Context, tenantID, codeID string) (*activation.Code, error) {
	return t.takeCode(ctx, "tenant_id = ? AND id = ?", tenantID, codeID)
}

func (t *activationTx) GetCodeByValue(ctx context.Context, tenantID, code string) (*activation.Code, error) {
	return t.takeCode(ctx, "tenant_id = ? AND code = ?", tenantID, code)
}

func (t *activationTx) takeCode(ctx context.Context, query string, args ...any) (*activation.Code, error) {
	var row codeRow
	if err := t.db.WithContext(ctx).Where(query, args...).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, activation.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get activation code: %w", err)
	}
	return row.toDomain(), nil
}

func (t *activationTx) InsertCode(ctx context.Context, c *activation.Code) error {
	res := t.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "code"}},
			DoNothing: true,
		}).
		Create(codeFromDomain(c))
	if res.Error != nil {
		return fmt.Errorf("failed to insert activation code: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return activation.ErrDuplicateCode
	}
	return nil
}

func (t *activationTx) BindCode(ctx context.Context, codeID, fingerprint, deviceName string, at time.Time) (bool, error) {
	res := t.db.WithContext(ctx).Model(&codeRow{}).
		Where("id = ? AND is_activated = ?", codeID, false).
		Updates(map[string]any{
			"device_fingerprint": fingerprint,
			"device_name":        deviceName,
			"is_activated":       true,
			"activated_at":       at.UTC(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to bind activation code: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func releasedBinding() map[string]any {
	return map[string]any{
		"device_fingerprint": nil,
		"device_name":        nil,
		"is_activated":       false,
		"activated_at":       nil,
	}
}

func (t *activationTx) UnbindCode(ctx context.Context, tenantID, codeID string) (bool, error) {
	res := t.db.WithContext(ctx).Model(&codeRow{}).
		Where("tenant_id = ? AND id = ? AND is_activated = ?", tenantID, codeID, true).
		Updates(releasedBinding())
	if res.Error != nil {
		return false, fmt.Errorf("failed to unbind activation code: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (t *activationTx) DeleteCode(ctx context.Context, tenantID, codeID string) (bool, error) {
	res := t.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ? AND is_activated = ?", tenantID, codeID, false).
		Delete(&codeRow{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete activation code: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (t *activationTx) ReleaseAll(ctx context.Context, tenantID string) (int64, error) {
	res := t.db.WithContext(ctx).Model(&codeRow{}).
		Where("tenant_id = ? AND is_activated = ?", tenantID, true).
		Updates(releasedBinding())
	if res.Error != nil {
		return 0, fmt.Errorf("failed to release activation codes: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (t *activationTx) SetAPIKey(ctx context.Context, tenantID, hash, prefix string, at time.Time) error {
	res := t.db.WithContext(ctx).Model(&tenantRow{}).
		Where("id = ?", tenantID).
		Updates(map[string]any{
			"api_key_hash":   hash,
			"api_key_prefix": prefix,
			"updated_at":     at.UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to set api key: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return tenant.ErrTenantNotFound
	}
	return nil
}

func (t *activationTx) FindBinding(ctx context.Context, fingerprint string) (*activation.Code, *tenant.Tenant, error) {
	var row codeRow
	err := t.db.WithContext(ctx).
		Where("device_fingerprint = ? AND is_activated = ?", fingerprint, true).
		Where("tenant_id IN (SELECT id FROM tenants WHERE is_active = ?)", true).
		Order("activated_at DESC").Order("id DESC").
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, activation.ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to find binding: %w", err)
	}

	tn, err := t.GetTenant(ctx, row.TenantID)
	if err != nil {
		return nil, nil, err
	}
	return row.toDomain(), tn, nil
}
