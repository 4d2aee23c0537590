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

package credential

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// KeyPrefix marks every tenant API key so it can be recognised in logs and
// rejected early when malformed.
const KeyPrefix = "sk_live_"

const keyBytes = 16

// ErrMalformedKey is returned when a presented key does not have the tenant
// API key shape.
var ErrMalformedKey = errors.New("malformed api key")

// Generate creates a new tenant API key. The plaintext is handed to the
// caller exactly once; only Hash(key) is ever persisted.
func Generate() (string, error) {
	b := make([]byte, keyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate api key: %w", err)
	}
	return KeyPrefix + hex.EncodeToString(b), nil
}

// Hash returns the storage digest of an API key.
func Hash(key string) string {
	sum := sha256.Sum256([]byte(key))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// Prefix returns a non-secret display hint, e.g. "sk_live_3f9a…".
func Prefix(key string) string {
	n := len(KeyPrefix) + 4
	if len(key) < n {
		return key
	}
	return key[:n]
}

// Validate checks the shape of a presented key.
func Validate(key string) error {
	if !strings.HasPrefix(key, KeyPrefix) {
		return ErrMalformedKey
	}
	if len(key) != len(KeyPrefix)+2*keyBytes {
		return ErrMalformedKey
	}
	if _, err := hex.DecodeString(key[len(KeyPrefix):]); err != nil {
		return ErrMalformedKey
	}
	return nil
}

// Matches reports whether key hashes to digest, in constant time.
func Matches(key, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(Hash(key)), []byte(digest)) == 1
}
