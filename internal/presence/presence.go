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

// Package presence derives tenant server liveness from heartbeats.
package presence

import (
	"context"
	"errors"
	"time"
)

// OnlineThreshold is how long a heartbeat keeps a server online.
const OnlineThreshold = 60 * time.Second

// DefaultServerID names the server of a tenant that does not identify itself.
const DefaultServerID = "default"

const (
	maxServerIDLength = 64
	maxVersionLength  = 64
)

var ErrInvalidHeartbeat = errors.New("invalid heartbeat")

// Heartbeat is one liveness signal from a tenant server
type Heartbeat struct {
	TenantID string
	ServerID string
	Version  string
	IP       string
}

// Record is the latest known heartbeat of one tenant server
type Record struct {
	TenantID      string    `json:"tenantId"`
	ServerID      string    `json:"serverId"`
	LastHeartbeat time.Time `json:"lastHeartbeat"`
	Version       string    `json:"version"`
	IP            string    `json:"ip"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Repository defines the interface for heartbeat storage
type Repository interface {
	// Upsert stores hb at time at. The stored LastHeartbeat never moves
	// backwards.
	Upsert(ctx context.Context, hb Heartbeat, at time.Time) error
	ListByTenant(ctx context.Context, tenantID string) ([]*Record, error)
	// LatestByTenants returns the newest heartbeat per tenant. Tenants that
	// never reported are absent from the map.
	LatestByTenants(ctx context.Context, tenantIDs []string) (map[string]time.Time, error)
}

// IsOnline reports whether rec was seen within OnlineThreshold of now.
func IsOnline(rec *Record, now time.Time) bool {
	return rec != nil && within(rec.LastHeartbeat, now, OnlineThreshold)
}

func within(last, now time.Time, threshold time.Duration) bool {
	return now.Sub(last) < threshold
}
