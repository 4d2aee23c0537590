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

package operator

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/seatgate/seatgate/internal/audit"
)

type mockAudit struct {
	mock.Mock
}

func (m *mockAudit) Log(ctx context.Context, event audit.Event) {
	m.Called(ctx, event)
}

// Cheap parameters keep the tests fast.
func testHasher() *PasswordHasher {
	return NewPasswordHasher(1024, 1, 1, 16, 32)
}

func newTestAuthenticator(t *testing.T, auditLogger audit.Logger) *Authenticator {
	t.Helper()
	hash, err := testHasher().Hash("correct horse")
	require.NoError(t, err)
	a, err := NewAuthenticator(Config{
		Username:     "admin",
		PasswordHash: hash,
		JWTSecret:    []byte(strings.Repeat("k", 32)),
		TokenTTL:     time.Hour,
		Issuer:       "seatgate",
	}, testHasher(), auditLogger)
	require.NoError(t, err)
	return a
}

func TestPasswordHasher_HashVerify(t *testing.T) {
	h := testHasher()

	encoded, err := h.Hash("s3cret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=1024,t=1,p=1$"))

	ok, err := h.Verify("s3cret", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("wrong", encoded)
	require.NoError(t, err)
	assert.False(t, ok)

	// Parameters come from the hash, not the verifier.
	ok, err = DefaultPasswordHasher().Verify("s3cret", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = h.Verify("s3cret", "$bcrypt$whatever")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

// TestPurpose: Validates operator login and bearer token verification.
// Scope: Unit Test
// Security: Operator console authentication
// Expected: Correct credentials yield a verifiable HS256 token; wrong credentials are audited and rejected.
// Test Case ID: OPR-01
func TestAuthenticator_Login(t *testing.T) {
	ctx := context.Background()
	auditLogger := new(mockAudit)
	a := newTestAuthenticator(t, auditLogger)

	auditLogger.On("Log", ctx, mock.MatchedBy(func(e audit.Event) bool {
		return e.Type == audit.TypeOperatorLogin && e.ActorID == "admin"
	})).Return().Once()
	tok, err := a.Login(ctx, "admin", "correct horse", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tok.TokenType)

	claims, err := a.VerifyToken(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)

	auditLogger.On("Log", ctx, mock.MatchedBy(func(e audit.Event) bool {
		return e.Type == audit.TypeOperatorLoginFailed
	})).Return().Twice()
	_, err = a.Login(ctx, "admin", "wrong", "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = a.Login(ctx, "root", "correct horse", "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	auditLogger.AssertExpectations(t)
}

func TestAuthenticator_VerifyToken_Rejects(t *testing.T) {
	ctx := context.Background()
	auditLogger := new(mockAudit)
	auditLogger.On("Log", mock.Anything, mock.Anything).Return()
	a := newTestAuthenticator(t, auditLogger)

	tok, err := a.Login(ctx, "admin", "correct horse", "")
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		a.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { a.now = time.Now }()
		_, err := a.VerifyToken(tok.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Issuer:    "seatgate",
			Subject:   "admin",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString([]byte(strings.Repeat("x", 32)))
		require.NoError(t, err)
		_, err = a.VerifyToken(forged)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("alg none", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Issuer:    "seatgate",
			Subject:   "admin",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = a.VerifyToken(unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := a.VerifyToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestNewAuthenticator_RejectsWeakConfig(t *testing.T) {
	_, err := NewAuthenticator(Config{Username: "admin", PasswordHash: "x", JWTSecret: []byte("short")}, testHasher(), new(mockAudit))
	assert.Error(t, err)

	_, err = NewAuthenticator(Config{JWTSecret: []byte(strings.Repeat("k", 32))}, testHasher(), new(mockAudit))
	assert.Error(t, err)
}
