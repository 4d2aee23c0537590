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

package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("SEATGATE_DB_PASSWORD", "pw")
	t.Setenv("SEATGATE_OPERATOR_JWT_SECRET", strings.Repeat("s", 32))
	t.Setenv("SEATGATE_OPERATOR_PASSWORD_HASH", "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 60*time.Second, cfg.Presence.OnlineThreshold)
	assert.Equal(t, 8*time.Hour, cfg.Operator.TokenTTL)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SEATGATE_SERVER_PORT", "9090")
	t.Setenv("SEATGATE_DB_DRIVER", "sqlite")
	t.Setenv("SEATGATE_DB_SQLITE_PATH", "/tmp/x.sqlite")
	t.Setenv("SEATGATE_RATELIMIT_ACTIVATION_RPS", "0.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "/tmp/x.sqlite", cfg.Database.SQLitePath)
	assert.InDelta(t, 0.5, cfg.RateLimit.ActivationRequestsPerSecond, 1e-9)
}

func TestValidate_Errors(t *testing.T) {
	t.Run("missing db password", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SEATGATE_DB_PASSWORD", "")
		_, err := Load()
		assert.ErrorContains(t, err, "DB_PASSWORD")
	})

	t.Run("short jwt secret", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SEATGATE_OPERATOR_JWT_SECRET", "short")
		_, err := Load()
		assert.ErrorContains(t, err, "JWT_SECRET")
	})

	t.Run("unknown driver", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SEATGATE_DB_DRIVER", "mysql")
		_, err := Load()
		assert.ErrorContains(t, err, "unsupported database driver")
	})
}
