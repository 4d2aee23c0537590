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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ROUTER AUTHENTICATION BOUNDARY TESTS
// Category: Security - Authentication
// Type: Unit Test (UT)
// =============================================================================

// TestPurpose: Validates that every operator route requires a valid bearer token.
// Scope: Unit Test
// Security: Operator console is not reachable anonymously or with a forged token
// Expected: 401 unauthorized without a token and with a tampered token.
// Test Case ID: RTR-01
func TestRouter_OperatorRoutes_RequireBearerToken(t *testing.T) {
	ts := newTestServer(t, RouterConfig{})

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/tenants"},
		{http.MethodPost, "/api/v1/tenants"},
		{http.MethodGet, "/api/v1/tenants/t1"},
		{http.MethodPatch, "/api/v1/tenants/t1"},
		{http.MethodPost, "/api/v1/tenants/t1/regenerate-key"},
		{http.MethodGet, "/api/v1/tenants/t1/presence"},
		{http.MethodPost, "/api/v1/tenants/t1/activations"},
		{http.MethodGet, "/api/v1/tenants/t1/activations"},
		{http.MethodPost, "/api/v1/tenants/t1/activations/c1/unbind"},
		{http.MethodDelete, "/api/v1/tenants/t1/activations/c1"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			w := ts.do(rt.method, rt.path, nil, nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			w = ts.do(rt.method, rt.path, nil, map[string]string{"Authorization": "Bearer " + ts.token + "x"})
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			w = ts.do(rt.method, rt.path, nil, map[string]string{"Authorization": "Basic " + ts.token})
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

// TestPurpose: Validates that a wrong operator password is rejected without detail.
// Scope: Unit Test
// Security: Credential check
// Expected: 401 with code unauthorized.
// Test Case ID: RTR-02
func TestRouter_Login_WrongPassword_Unauthorized(t *testing.T) {
	ts := newTestServer(t, RouterConfig{})

	w := ts.do(http.MethodPost, "/api/v1/admin/login", LoginRequest{Username: testOperator, Password: "nope"}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, CodeUnauthorized, decodeError(t, w).Code)
}

// TestPurpose: Validates that tenant server routes require a valid API key and not an operator token.
// Scope: Unit Test
// Security: Plane separation between operators and tenant servers
// Expected: 401 without a key, with a garbage key, and with an operator bearer token.
// Test Case ID: RTR-03
func TestRouter_TenantRoutes_RequireAPIKey(t *testing.T) {
	ts := newTestServer(t, RouterConfig{})

	for _, path := range []string{"/api/v1/heartbeat", "/api/v1/tenant/verify"} {
		method := http.MethodPost
		if strings.HasSuffix(path, "verify") {
			method = http.MethodGet
		}

		w := ts.do(method, path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)

		w = ts.do(method, path, nil, map[string]string{HeaderTenantAPIKey: "sk_not_a_real_key"})
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)

		w = ts.do(method, path, nil, map[string]string{"Authorization": "Bearer " + ts.token})
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

// TestPurpose: Validates that the device endpoints are reachable without credentials.
// Scope: Unit Test
// Expected: Check answers 200 isActivated=false for an unknown fingerprint.
// Test Case ID: RTR-04
func TestRouter_DeviceRoutes_AreAnonymous(t *testing.T) {
	ts := newTestServer(t, RouterConfig{})

	w := ts.do(http.MethodPost, "/api/v1/activation/check", CheckRequest{DeviceFingerprint: "unknown"}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var res map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, false, res["isActivated"])
	assert.NotContains(t, res, "tenantId")
}

// TestPurpose: Validates that /metrics is mounted only when a handler is configured.
// Scope: Unit Test
// Expected: 404 without a handler, the handler's body with one.
// Test Case ID: RTR-05
func TestRouter_Metrics_MountedWhenConfigured(t *testing.T) {
	ts := newTestServer(t, RouterConfig{})
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/metrics", nil, nil).Code)

	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("seatgate_metrics 1\n"))
	})
	ts = newTestServer(t, RouterConfig{MetricsHandler: metricsHandler})

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "seatgate_metrics")
}

// TestPurpose: Validates that the client address prefers the first forwarded hop.
// Scope: Unit Test
// Expected: X-Forwarded-For first hop, then X-Real-IP, then the peer address without port.
// Test Case ID: RTR-06
func TestGetIPAddress(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.9:5555"
	assert.Equal(t, "10.0.0.9", getIPAddress(r))

	r.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", getIPAddress(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "203.0.113.5", getIPAddress(r))
}
