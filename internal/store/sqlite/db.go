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

// Package sqlite is the embedded single-node backend. All writes go through
// one connection, so write transactions are serialized by construction.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"runtime"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	gormdriver "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	msqlite "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"

	"github.com/seatgate/seatgate/internal/observability/logger"
	"github.com/seatgate/seatgate/migrations"
)

// DB holds a pooled read handle and a single-connection write handle on the
// same database file.
type DB struct {
	R *gorm.DB
	W *gorm.DB
}

var _ io.Closer = (*DB)(nil)

// Open opens (creating if needed) the database at path.
func Open(path string) (*DB, error) {
	cfg := &gorm.Config{
		PrepareStmt: true,
		Logger: gormlogger.New(
			slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
			gormlogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
				ParameterizedQueries:      true,
				Colorful:                  false,
			},
		),
	}

	reader, err := gorm.Open(gormdriver.Dialector{DriverName: "sqlite", DSN: buildDSN(path, true)}, cfg)
	if err != nil {
		return nil, fmt.Errorf("open read db: %w", err)
	}
	writer, err := gorm.Open(gormdriver.Dialector{DriverName: "sqlite", DSN: buildDSN(path, false)}, cfg)
	if err != nil {
		_ = closeGORM(reader)
		return nil, fmt.Errorf("open write db: %w", err)
	}

	rdb, err := reader.DB()
	if err != nil {
		_ = closeGORM(reader)
		_ = closeGORM(writer)
		return nil, fmt.Errorf("reader sql db: %w", err)
	}
	wdb, err := writer.DB()
	if err != nil {
		_ = closeGORM(reader)
		_ = closeGORM(writer)
		return nil, fmt.Errorf("writer sql db: %w", err)
	}

	rdb.SetMaxOpenConns(runtime.NumCPU())
	rdb.SetMaxIdleConns(runtime.NumCPU())
	rdb.SetConnMaxLifetime(0)

	wdb.SetMaxOpenConns(1)
	wdb.SetMaxIdleConns(1)
	wdb.SetConnMaxLifetime(0)

	return &DB{R: reader, W: writer}, nil
}

// buildDSN sets pragmas per connection, so every pooled connection gets them.
func buildDSN(path string, readOnly bool) string {
	q := url.Values{}
	for _, p := range []string{
		"journal_mode(WAL)",
		"synchronous(NORMAL)",
		"foreign_keys(1)",
		"busy_timeout(5000)",
		"trusted_schema(OFF)",
	} {
		q.Add("_pragma", p)
	}
	if readOnly {
		q.Add("_pragma", "query_only(1)")
	} else {
		q.Add("_pragma", "query_only(0)")
		q.Set("_txlock", "immediate")
	}
	q.Set("_time_format", "sqlite")

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + q.Encode()
}

// Migrate applies the embedded schema through the write handle.
func (db *DB) Migrate(ctx context.Context) error {
	wdb, err := db.W.DB()
	if err != nil {
		return err
	}
	return migrations.Up(ctx, wdb, goose.DialectSQLite3)
}

type txFunc func(tx *gorm.DB) error

// ReadTX runs fn in a transaction on the read pool.
func (db *DB) ReadTX(ctx context.Context, fn txFunc) error {
	return retryBusy(ctx, func() error {
		return db.R.WithContext(ctx).Transaction(fn)
	})
}

// WriteTX runs fn in a transaction on the writer connection.
func (db *DB) WriteTX(ctx context.Context, fn txFunc) error {
	return retryBusy(ctx, func() error {
		return db.W.WithContext(ctx).Transaction(fn)
	})
}

// retryBusy runs op and, if it failed on a locked database, runs it once more.
func retryBusy(ctx context.Context, op func() error) error {
	err := op()
	if err == nil || !isBusy(err) {
		return err
	}
	slog.WarnContext(ctx, "sqlite busy, retrying transaction", logger.Error(err), logger.Attempt(2))
	return op()
}

func isBusy(err error) bool {
	var se *msqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() & 0xff {
	case sqlitelib.SQLITE_BUSY, sqlitelib.SQLITE_LOCKED:
		return true
	}
	return false
}

func isUniqueViolation(err error) bool {
	var se *msqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code()&0xff == sqlitelib.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE")
}

// Close closes both handles.
func (db *DB) Close() error {
	var firstErr error
	for _, g := range []*gorm.DB{db.R, db.W} {
		if err := closeGORM(g); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SQLDB returns the write handle for callers that need database/sql.
func (db *DB) SQLDB() (*sql.DB, error) {
	return db.W.DB()
}

func closeGORM(g *gorm.DB) error {
	if g == nil {
		return nil
	}
	sqlDB, err := g.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
