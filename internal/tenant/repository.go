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

package tenant

import (
	"context"
	"errors"
)

var (
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrTenantInactive     = errors.New("tenant is inactive")
	ErrInvalidAPIKey      = errors.New("invalid api key")
	ErrInvalidName        = errors.New("tenant name is required")
	ErrInvalidMaxClients  = errors.New("max clients out of range")
	ErrQuotaBelowUsage    = errors.New("max clients below issued code count")
	ErrTenantNameConflict = errors.New("tenant name already exists")
)

// Repository defines the interface for tenant storage
type Repository interface {
	Create(ctx context.Context, tenant *Tenant) error
	GetByID(ctx context.Context, id string) (*Tenant, error)
	GetByAPIKeyHash(ctx context.Context, hash string) (*Tenant, error)
	List(ctx context.Context, limit, offset int) ([]*Tenant, error)
	// Update applies upd atomically. A MaxClients value below the number of
	// codes already issued to the tenant fails with ErrQuotaBelowUsage.
	Update(ctx context.Context, id string, upd Update) (*Tenant, error)
}
