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

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/seatgate/seatgate/internal/activation"
	"github.com/seatgate/seatgate/internal/config"
	"github.com/seatgate/seatgate/internal/observability/logger"
	"github.com/seatgate/seatgate/internal/presence"
	"github.com/seatgate/seatgate/internal/store/postgres"
	"github.com/seatgate/seatgate/internal/store/sqlite"
	"github.com/seatgate/seatgate/internal/tenant"
)

// backend bundles the repositories of one storage driver
type backend struct {
	Activation activation.Store
	Tenants    tenant.Repository
	Heartbeats presence.Repository

	migrate func(ctx context.Context) error
	close   func() error
}

func (b *backend) Migrate(ctx context.Context) error {
	if err := b.migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.InfoContext(ctx, "database migrated")
	return nil
}

func (b *backend) Close() {
	if err := b.close(); err != nil {
		slog.Error("failed to close database", logger.Error(err))
	}
}

func openBackend(ctx context.Context, cfg config.DatabaseConfig) (*backend, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "opened sqlite database", logger.String("path", cfg.SQLitePath))
		return &backend{
			Activation: sqlite.NewActivationStore(db),
			Tenants:    sqlite.NewTenantRepository(db),
			Heartbeats: sqlite.NewHeartbeatRepository(db),
			migrate:    db.Migrate,
			close:      db.Close,
		}, nil

	case config.DriverPostgres:
		db, err := postgres.New(ctx, postgres.Config{
			Host:            cfg.Host,
			Port:            cfg.Port,
			User:            cfg.User,
			Password:        cfg.Password,
			Database:        cfg.Database,
			SSLMode:         cfg.SSLMode,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "connected to database")
		return &backend{
			Activation: postgres.NewActivationStore(db),
			Tenants:    postgres.NewTenantRepository(db),
			Heartbeats: postgres.NewHeartbeatRepository(db),
			migrate:    db.Migrate,
			close: func() error {
				db.Close()
				return nil
			},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
