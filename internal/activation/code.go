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

package activation

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

// DefaultDeviceName labels a binding whose device supplied no name.
const DefaultDeviceName = "Unnamed device"

// MaxBatch bounds a single Generate call.
const MaxBatch = 100

const (
	codePrefix = "SEAT"
	groupCount = 3
	groupLen   = 4
	// 32 symbols without 0/O and 1/I, so byte%32 is unbiased.
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Code is one seat in a tenant's pool
type Code struct {
	ID                string     `json:"id"`
	TenantID          string     `json:"tenantId"`
	Code              string     `json:"code"`
	DeviceFingerprint *string    `json:"deviceFingerprint"`
	DeviceName        *string    `json:"deviceName"`
	IsActivated       bool       `json:"isActivated"`
	ActivatedAt       *time.Time `json:"activatedAt"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// BoundTo reports whether the code is bound to fingerprint.
func (c *Code) BoundTo(fingerprint string) bool {
	return c.IsActivated && c.DeviceFingerprint != nil && *c.DeviceFingerprint == fingerprint
}

// Stats summarizes a tenant's pool
type Stats struct {
	Total      int `json:"total"`
	Activated  int `json:"activated"`
	Available  int `json:"available"`
	MaxClients int `json:"maxClients"`
}

// Listing is a tenant's codes with their summary
type Listing struct {
	Codes []*Code `json:"codes"`
	Stats Stats   `json:"stats"`
}

// CheckResult is what a device learns about its own binding
type CheckResult struct {
	IsActivated bool   `json:"isActivated"`
	TenantID    string `json:"tenantId,omitempty"`
	TenantName  string `json:"tenantName,omitempty"`
}

// ActivateRequest binds a code to a device
type ActivateRequest struct {
	TenantID          string
	Code              string
	DeviceFingerprint string
	DeviceName        string
}

// NewCodeValue returns a fresh code string such as SEAT-7KQ2-MX9D-4HJP.
func NewCodeValue() (string, error) {
	b := make([]byte, groupCount*groupLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(codePrefix)
	for i, v := range b {
		if i%groupLen == 0 {
			sb.WriteByte('-')
		}
		sb.WriteByte(codeAlphabet[int(v)%len(codeAlphabet)])
	}
	return sb.String(), nil
}

// NormalizeCode canonicalizes user-typed input.
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
