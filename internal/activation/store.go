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
	"time"

	"github.com/seatgate/seatgate/internal/tenant"
)

// Store is the transactional storage behind the activation subsystem.
// Implementations retry fn once on a transient failure, so fn must not
// have side effects outside tx.
type Store interface {
	ReadTx(ctx context.Context, fn func(tx Tx) error) error
	WriteTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the unit of work handed to Store callbacks. Row-locking methods
// are only valid inside WriteTx.
type Tx interface {
	GetTenant(ctx context.Context, tenantID string) (*tenant.Tenant, error)
	// TenantForShare holds a shared lock on the tenant row until commit.
	TenantForShare(ctx context.Context, tenantID string) (*tenant.Tenant, error)
	// TenantForUpdate holds an exclusive lock on the tenant row until commit.
	TenantForUpdate(ctx context.Context, tenantID string) (*tenant.Tenant, error)

	CountCodes(ctx context.Context, tenantID string) (total, activated int, err error)
	ListCodes(ctx context.Context, tenantID string) ([]*Code, error)
	GetCode(ctx context.Context, tenantID, codeID string) (*Code, error)
	GetCodeByValue(ctx context.Context, tenantID, code string) (*Code, error)
	// InsertCode returns ErrDuplicateCode when (tenant_id, code) exists.
	InsertCode(ctx context.Context, c *Code) error

	// BindCode sets the binding only if the code is unbound.
	BindCode(ctx context.Context, codeID, fingerprint, deviceName string, at time.Time) (bool, error)
	// UnbindCode clears the binding only if the code is bound.
	UnbindCode(ctx context.Context, tenantID, codeID string) (bool, error)
	// DeleteCode removes the code only if it is unbound.
	DeleteCode(ctx context.Context, tenantID, codeID string) (bool, error)
	// ReleaseAll clears every binding of the tenant and returns how many.
	ReleaseAll(ctx context.Context, tenantID string) (int64, error)

	SetAPIKey(ctx context.Context, tenantID, hash, prefix string, at time.Time) error
	// FindBinding returns the most recently activated code bound to
	// fingerprint in an active tenant, with that tenant.
	FindBinding(ctx context.Context, fingerprint string) (*Code, *tenant.Tenant, error)
}
