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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// DEVICE API INPUT VALIDATION TESTS
// Category: Device API - Input Validation & HTTP Behavior
// Type: Unit Test (UT)
// =============================================================================

// TestPurpose: Validates that an activation check with an empty body is rejected.
// Scope: Unit Test
// Security: Request body parsing and validation
// Expected: Returns HTTP 400 Bad Request with code bad_request.
// Test Case ID: ACT-01
func TestActivation_Check_EmptyBody_ReturnsBadRequest(t *testing.T) {
	ts := newTestServer(t, RouterConfig{})

	w := ts.do(http.MethodPost, "/api/v1/activation/check", "", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code, "ACT-01: Empty body should return 400 Bad Request")
	assert.Equal(t, CodeBadRequest, decodeError(t, w).Code)
}

// TestPurpose: Validates that malformed JSON on activate is rejected safely.
// Scope: Unit Test
// Security: JSON parsing safety
// Expected: Returns HTTP 400 Bad Request for malformed JSON.
// Test Case ID: ACT-02
func TestActivation_Activate_MalformedJSON_ReturnsBadRequest(t *testing.T) {
	ts := newTestServer(t, RouterConfig{})

	w := ts.do(http.MethodPost, "/api/v1/activation/activate", `{invalid_json}`, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code, "ACT-02: Malformed JSON should return 400 Bad Request")
}

// TestPurpose: Validates that missing and oversized fields are reported by their JSON names.
// Scope: Unit Test
// Expected: Returns HTTP 400 with code validation_failed naming the offending field.
// Test Case ID: ACT-03
func TestActivation_Activate_MissingFields_NamesJSONField(t *testing.T) {
	ts := newTestServer(t, RouterConfig{})

	w := ts.do(http.MethodPost, "/api/v1/activation/activate", ActivateRequest{
		TenantID: "t1",
		Code:     "SEAT-AAAA-BBBB-CCCC",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, CodeValidation, resp.Code)
	assert.Contains(t, resp.Error, "deviceFingerprint is required")

	w = ts.do(http.MethodPost, "/api/v1/activation/check", CheckRequest{
		DeviceFingerprint: strings.Repeat("f", 257),
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Error, "deviceFingerprint must be at most 256 characters")
}

// TestPurpose: Validates that a blank code string is rejected before reaching the registry.
// Scope: Unit Test
// Expected: Returns HTTP 400 validation_failed.
// Test Case ID: ACT-04
func TestActivation_Activate_BlankCode_ReturnsBadRequest(t *testing.T) {
	ts := newTestServer(t, RouterConfig{})

	w := ts.do(http.MethodPost, "/api/v1/activation/activate", ActivateRequest{
		TenantID:          "t1",
		Code:              "   ",
		DeviceFingerprint: "-123_lq2x3a",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, CodeValidation, decodeError(t, w).Code)
}

// =============================================================================
// SECURITY TESTS - Error Message Safety
// Category: Security - Error Handling
// Type: Unit Test (UT)
// =============================================================================

// TestPurpose: Validates that error responses do not leak sensitive internal details (stack traces, paths).
// Scope: Unit Test
// Security: Information disclosure prevention (CWE-209)
// Expected: Response body does not contain patterns like "panic", "goroutine", "sql", etc.
// Test Case ID: SEC-02
func TestSecurity_ErrorHandling_NoSensitiveDataIsLeaked(t *testing.T) {
	ts := newTestServer(t, RouterConfig{})

	responses := []string{
		ts.do(http.MethodPost, "/api/v1/activation/activate", `{invalid}`, nil).Body.String(),
		ts.do(http.MethodPost, "/api/v1/activation/activate", ActivateRequest{
			TenantID: "missing", Code: "SEAT-AAAA-BBBB-CCCC", DeviceFingerprint: "fp",
		}, nil).Body.String(),
		ts.admin(http.MethodDelete, "/api/v1/tenants/missing/activations/missing", nil).Body.String(),
	}

	sensitivePatterns := []string{
		"panic",
		"goroutine",
		"runtime.",
		".go:",
		"sqlite",
		"SELECT",
		"/home/",
		"/root/",
	}

	for _, body := range responses {
		for _, pattern := range sensitivePatterns {
			assert.NotContains(t, body, pattern,
				"SEC-02: Error response should not contain sensitive pattern: %s", pattern)
		}
	}
}

// TestPurpose: Validates that every JSON reply carries the JSON content type.
// Scope: Unit Test
// Expected: Content-Type is application/json on success and error replies.
// Test Case ID: SEC-03
func TestSecurity_ContentType_IsJSON(t *testing.T) {
	ts := newTestServer(t, RouterConfig{})

	ok := ts.do(http.MethodGet, "/health", nil, nil)
	bad := ts.do(http.MethodPost, "/api/v1/activation/check", `{`, nil)

	assert.Equal(t, "application/json", ok.Header().Get("Content-Type"))
	assert.Equal(t, "application/json", bad.Header().Get("Content-Type"))
}

// TestPurpose: Validates that the API key never appears in tenant reads after creation.
// Scope: Unit Test
// Security: Show-once credential handling
// Expected: GET and LIST omit the key and its hash; only the prefix is exposed.
// Test Case ID: SEC-04
func TestSecurity_TenantReads_OmitAPIKey(t *testing.T) {
	ts := newTestServer(t, RouterConfig{})
	tn, apiKey := ts.createTenant("Acme", 3)
	require.NotEmpty(t, apiKey)

	get := ts.admin(http.MethodGet, "/api/v1/tenants/"+tn.ID, nil)
	list := ts.admin(http.MethodGet, "/api/v1/tenants", nil)

	for _, w := range []string{get.Body.String(), list.Body.String()} {
		assert.NotContains(t, w, apiKey)
		assert.NotContains(t, w, "apiKeyHash")
		assert.Contains(t, w, tn.APIKeyPrefix)
	}
}

// =============================================================================
// HEALTH CHECK TESTS
// Category: System - Health Endpoint
// Type: Unit Test (UT)
// =============================================================================

// TestPurpose: Validates that the health check endpoint returns 200 OK and the correct service name.
// Scope: Unit Test
// Expected: Returns HTTP 200 OK with {"status": "healthy", "service": "seatgate"}.
// Test Case ID: SYS-01
func TestHealth_Check_ReturnsStatusOK(t *testing.T) {
	ts := newTestServer(t, RouterConfig{})

	w := ts.do(http.MethodGet, "/health", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code, "SYS-01: Health check should return 200 OK")

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "seatgate", resp.Service)
}
