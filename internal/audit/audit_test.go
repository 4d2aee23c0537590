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

package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPurpose: Validates that sensitive keys are correctly identified as secrets to prevent them from being logged in plaintext.
// Scope: Unit Test
// Expected: Returns true for keys containing 'password', 'token', 'secret', 'key', etc., and false for non-sensitive keys.
func TestAudit_IsSecret(t *testing.T) {
	tests := []struct {
		key      string
		isSecret bool
	}{
		{"password", true},
		{"Password", true},
		{"PASSWORD", true},
		{"token", true},
		{"access_token", true},
		{"secret", true},
		{"api_key", true},
		{"hash", true},
		{"credential", true},
		{"tenant_id", false},
		{"code_id", false},
		{"device_fingerprint", false},
		{"count", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := isSecret(tt.key); got != tt.isSecret {
				t.Errorf("isSecret(%q) = %v, want %v", tt.key, got, tt.isSecret)
			}
		})
	}
}

// TestPurpose: Validates that audit events are emitted as structured records with secrets redacted.
// Scope: Unit Test
// Expected: The api_key metadata value never reaches the log sink.
func TestAudit_Log_RedactsMetadata(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogLoggerWith(slog.New(slog.NewJSONHandler(&buf, nil)))

	l.Log(context.Background(), Event{
		Type:     TypeAPIKeyRotated,
		TenantID: "tenant-1",
		ActorID:  "operator",
		Metadata: map[string]any{"api_key": "sk_live_secret", "released": 3},
	})

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "AUDIT_EVENT", rec["msg"])
	assert.Equal(t, TypeAPIKeyRotated, rec["audit_type"])
	assert.Equal(t, "tenant-1", rec["tenant_id"])

	md, ok := rec["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "[REDACTED]", md["api_key"])
	assert.EqualValues(t, 3, md["released"])
	assert.NotContains(t, buf.String(), "sk_live_secret")
}

// TestPurpose: Validates that the actor placed on a request context can be read back for audit events.
// Scope: Unit Test
// Expected: ActorFromContext returns the value set by WithActor and "" on a bare context.
func TestAudit_ActorFromContext(t *testing.T) {
	assert.Empty(t, ActorFromContext(context.Background()))

	ctx := WithActor(context.Background(), "admin")
	assert.Equal(t, "admin", ActorFromContext(ctx))

	var buf bytes.Buffer
	l := NewSlogLoggerWith(slog.New(slog.NewJSONHandler(&buf, nil)))
	l.Log(ctx, Event{Type: TypeCodesGenerated, TenantID: "tenant-1", ActorID: ActorFromContext(ctx)})

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "admin", rec["actor_id"])
}
