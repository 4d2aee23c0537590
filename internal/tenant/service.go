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
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/seatgate/seatgate/internal/audit"
	"github.com/seatgate/seatgate/internal/credential"
	"github.com/seatgate/seatgate/internal/id"
	"github.com/seatgate/seatgate/internal/observability/logger"
)

const maxNameLength = 100

// Service provides tenant management business logic
type Service struct {
	repo        Repository
	auditLogger audit.Logger
	now         func() time.Time
}

// NewService creates a new tenant service
func NewService(repo Repository, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		auditLogger: auditLogger,
		now:         time.Now,
	}
}

// CreateTenant creates a new tenant and its first API key. The plaintext key
// is returned once and never stored.
func (s *Service) CreateTenant(ctx context.Context, name string, maxClients int) (*Tenant, string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLength {
		return nil, "", ErrInvalidName
	}
	if maxClients < 1 || maxClients > MaxClientsLimit {
		return nil, "", ErrInvalidMaxClients
	}

	apiKey, err := credential.Generate()
	if err != nil {
		return nil, "", err
	}

	now := s.now().UTC()
	t := &Tenant{
		ID:           id.NewUUIDv7(),
		Name:         name,
		APIKeyHash:   credential.Hash(apiKey),
		APIKeyPrefix: credential.Prefix(apiKey),
		MaxClients:   maxClients,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		if errors.Is(err, ErrTenantNameConflict) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("failed to create tenant: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTenantCreated,
		TenantID: t.ID,
		ActorID:  audit.ActorFromContext(ctx),
		Resource: t.Name,
		Metadata: map[string]any{"max_clients": maxClients},
	})

	return t, apiKey, nil
}

// GetTenant retrieves a tenant by ID
func (s *Service) GetTenant(ctx context.Context, id string) (*Tenant, error) {
	if id == "" {
		return nil, ErrTenantNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// ListTenants lists tenants, newest first
func (s *Service) ListTenants(ctx context.Context, limit, offset int) ([]*Tenant, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

// UpdateTenant changes a tenant's name, seat quota or active flag
func (s *Service) UpdateTenant(ctx context.Context, id string, upd Update) (*Tenant, error) {
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" || len(name) > maxNameLength {
			return nil, ErrInvalidName
		}
		upd.Name = &name
	}
	if upd.MaxClients != nil && (*upd.MaxClients < 1 || *upd.MaxClients > MaxClientsLimit) {
		return nil, ErrInvalidMaxClients
	}
	if upd.Empty() {
		return s.repo.GetByID(ctx, id)
	}

	t, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}

	meta := map[string]any{}
	if upd.MaxClients != nil {
		meta["max_clients"] = *upd.MaxClients
	}
	if upd.IsActive != nil {
		meta["is_active"] = *upd.IsActive
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTenantUpdated,
		TenantID: t.ID,
		ActorID:  audit.ActorFromContext(ctx),
		Resource: t.Name,
		Metadata: meta,
	})

	return t, nil
}

// AuthenticateAPIKey resolves the tenant owning key. Lookup is by digest on
// every call, so a rotated key stops working immediately.
func (s *Service) AuthenticateAPIKey(ctx context.Context, key string) (*Tenant, error) {
	if err := credential.Validate(key); err != nil {
		return nil, ErrInvalidAPIKey
	}

	t, err := s.repo.GetByAPIKeyHash(ctx, credential.Hash(key))
	if err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			return nil, ErrInvalidAPIKey
		}
		return nil, fmt.Errorf("failed to look up api key: %w", err)
	}

	if !t.IsActive {
		slog.WarnContext(ctx, "api key presented for inactive tenant", logger.TenantID(t.ID))
		return nil, ErrTenantInactive
	}
	return t, nil
}
