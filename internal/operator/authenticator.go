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

// Package operator authenticates the single operator account of the
// console and issues its bearer tokens.
package operator

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/seatgate/seatgate/internal/audit"
	"github.com/seatgate/seatgate/internal/id"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Config holds the operator account and token settings
type Config struct {
	Username     string
	PasswordHash string
	JWTSecret    []byte
	TokenTTL     time.Duration
	Issuer       string
}

// Claims are the claims of an operator token
type Claims struct {
	jwt.RegisteredClaims
}

// Token is an issued bearer token
type Token struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Authenticator verifies operator credentials and tokens
type Authenticator struct {
	cfg         Config
	hasher      *PasswordHasher
	auditLogger audit.Logger
	now         func() time.Time
}

// NewAuthenticator creates a new operator authenticator
func NewAuthenticator(cfg Config, hasher *PasswordHasher, auditLogger audit.Logger) (*Authenticator, error) {
	if cfg.Username == "" || cfg.PasswordHash == "" {
		return nil, errors.New("operator username and password hash are required")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("operator jwt secret must be at least 32 bytes")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 8 * time.Hour
	}
	return &Authenticator{
		cfg:         cfg,
		hasher:      hasher,
		auditLogger: auditLogger,
		now:         time.Now,
	}, nil
}

// Login checks the operator credentials and issues a token.
func (a *Authenticator) Login(ctx context.Context, username, password, ipAddress string) (*Token, error) {
	// Verify the password even on a username mismatch so both paths cost the same.
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.cfg.Username)) == 1
	passOK, err := a.hasher.Verify(password, a.cfg.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify operator password: %w", err)
	}
	if !userOK || !passOK {
		a.auditLogger.Log(ctx, audit.Event{
			Type:      audit.TypeOperatorLoginFailed,
			Resource:  username,
			IPAddress: ipAddress,
			Metadata:  map[string]any{"reason": "invalid_credentials"},
		})
		return nil, ErrInvalidCredentials
	}

	now := a.now()
	exp := now.Add(a.cfg.TokenTTL)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.cfg.Issuer,
			Subject:   a.cfg.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        id.NewUUIDv7(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign operator token: %w", err)
	}

	a.auditLogger.Log(ctx, audit.Event{
		Type:      audit.TypeOperatorLogin,
		ActorID:   a.cfg.Username,
		Resource:  "operator",
		IPAddress: ipAddress,
	})

	return &Token{AccessToken: signed, TokenType: "Bearer", ExpiresAt: exp}, nil
}

// VerifyToken validates a bearer token and returns its claims.
func (a *Authenticator) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return a.cfg.JWTSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.cfg.Issuer),
		jwt.WithSubject(a.cfg.Username),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}
