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

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seatgate/seatgate/internal/activation"
	"github.com/seatgate/seatgate/internal/audit"
	"github.com/seatgate/seatgate/internal/operator"
	"github.com/seatgate/seatgate/internal/presence"
	"github.com/seatgate/seatgate/internal/store/sqlite"
	"github.com/seatgate/seatgate/internal/tenant"
)

const (
	testOperator = "admin"
	testPassword = "correct horse battery"
)

type testServer struct {
	t       *testing.T
	router  http.Handler
	tenants *tenant.Service
	audit   *recordingAudit
	token   string
}

// recordingAudit keeps every event it is given.
type recordingAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingAudit) Log(_ context.Context, event audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingAudit) ofType(eventType string) []audit.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []audit.Event
	for _, e := range r.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// newTestServer wires the full stack on a temporary SQLite database.
func newTestServer(t *testing.T, cfg RouterConfig) *testServer {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "seatgate.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(context.Background()))

	auditLogger := audit.NewSlogLoggerWith(slog.New(slog.NewTextHandler(io.Discard, nil)))

	hasher := operator.NewPasswordHasher(1024, 1, 1, 16, 32)
	hash, err := hasher.Hash(testPassword)
	require.NoError(t, err)
	auth, err := operator.NewAuthenticator(operator.Config{
		Username:     testOperator,
		PasswordHash: hash,
		JWTSecret:    []byte(strings.Repeat("s", 32)),
		TokenTTL:     time.Hour,
		Issuer:       "seatgate-test",
	}, hasher, auditLogger)
	require.NoError(t, err)

	rec := &recordingAudit{}
	tenants := tenant.NewService(sqlite.NewTenantRepository(db), rec)
	h := NewHandler(
		activation.NewService(sqlite.NewActivationStore(db), rec),
		tenants,
		presence.NewTracker(sqlite.NewHeartbeatRepository(db)),
		auth,
		rec,
	)

	ts := &testServer{t: t, router: NewRouter(h, cfg), tenants: tenants, audit: rec}
	ts.token = ts.login()
	return ts
}

func (ts *testServer) login() string {
	w := ts.do(http.MethodPost, "/api/v1/admin/login", LoginRequest{Username: testOperator, Password: testPassword}, nil)
	require.Equal(ts.t, http.StatusOK, w.Code, w.Body.String())
	var tok operator.Token
	require.NoError(ts.t, json.Unmarshal(w.Body.Bytes(), &tok))
	return tok.AccessToken
}

// do sends body as JSON. A string body is sent verbatim.
func (ts *testServer) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	ts.t.Helper()

	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(ts.t, err)
		rd = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

// admin sends an operator-authenticated request.
func (ts *testServer) admin(method, path string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()
	return ts.do(method, path, body, map[string]string{"Authorization": "Bearer " + ts.token})
}

// createTenant provisions a tenant through the API and returns it with its key.
func (ts *testServer) createTenant(name string, maxClients int) (*tenant.Tenant, string) {
	ts.t.Helper()
	w := ts.admin(http.MethodPost, "/api/v1/tenants", CreateTenantRequest{Name: name, MaxClients: maxClients})
	require.Equal(ts.t, http.StatusCreated, w.Code, w.Body.String())
	var resp CreateTenantResponse
	require.NoError(ts.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Tenant, resp.APIKey
}

func (ts *testServer) generate(tenantID string, count int) []*activation.Code {
	ts.t.Helper()
	w := ts.admin(http.MethodPost, "/api/v1/tenants/"+tenantID+"/activations", GenerateCodesRequest{Count: count})
	require.Equal(ts.t, http.StatusCreated, w.Code, w.Body.String())
	var codes []*activation.Code
	require.NoError(ts.t, json.Unmarshal(w.Body.Bytes(), &codes))
	return codes
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}
