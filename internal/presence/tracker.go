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

package presence

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/seatgate/seatgate/internal/observability/logger"
	"github.com/seatgate/seatgate/internal/observability/metrics"
)

// ServerStatus is one server's record with its liveness
type ServerStatus struct {
	*Record
	Online bool `json:"online"`
}

// Status aggregates the liveness of every server of a tenant
type Status struct {
	TenantID      string         `json:"tenantId"`
	Online        bool           `json:"online"`
	LastHeartbeat *time.Time     `json:"lastHeartbeat"`
	Servers       []ServerStatus `json:"servers"`
}

// Tracker records heartbeats and answers liveness queries
type Tracker struct {
	repo      Repository
	threshold time.Duration
	now       func() time.Time
	metrics   *metrics.Seats
}

// Option configures a Tracker
type Option func(*Tracker)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithThreshold overrides OnlineThreshold.
func WithThreshold(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.threshold = d
		}
	}
}

// WithMetrics counts ingested heartbeats on m.
func WithMetrics(m *metrics.Seats) Option {
	return func(t *Tracker) { t.metrics = m }
}

// NewTracker creates a new presence tracker
func NewTracker(repo Repository, opts ...Option) *Tracker {
	t := &Tracker{
		repo:      repo,
		threshold: OnlineThreshold,
		now:       time.Now,
		metrics:   metrics.NoopSeats(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Threshold returns the online window in use.
func (t *Tracker) Threshold() time.Duration {
	return t.threshold
}

// RecordHeartbeat stores a heartbeat stamped with the tracker's clock.
func (t *Tracker) RecordHeartbeat(ctx context.Context, hb Heartbeat) error {
	hb.ServerID = strings.TrimSpace(hb.ServerID)
	if hb.ServerID == "" {
		hb.ServerID = DefaultServerID
	}
	if hb.TenantID == "" || len(hb.ServerID) > maxServerIDLength || len(hb.Version) > maxVersionLength {
		return ErrInvalidHeartbeat
	}

	if err := t.repo.Upsert(ctx, hb, t.now().UTC()); err != nil {
		return fmt.Errorf("failed to record heartbeat: %w", err)
	}
	t.metrics.Heartbeat(ctx)
	slog.DebugContext(ctx, "heartbeat recorded",
		logger.TenantID(hb.TenantID),
		logger.ServerID(hb.ServerID),
	)
	return nil
}

// IsOnline reports whether rec is within the tracker's window of its clock.
func (t *Tracker) IsOnline(rec *Record) bool {
	return rec != nil && within(rec.LastHeartbeat, t.now(), t.threshold)
}

// TenantStatus returns per-server liveness for a tenant. A tenant is online
// while any of its servers is.
func (t *Tracker) TenantStatus(ctx context.Context, tenantID string) (*Status, error) {
	recs, err := t.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list heartbeats: %w", err)
	}

	now := t.now()
	st := &Status{TenantID: tenantID, Servers: make([]ServerStatus, 0, len(recs))}
	for _, rec := range recs {
		online := within(rec.LastHeartbeat, now, t.threshold)
		st.Servers = append(st.Servers, ServerStatus{Record: rec, Online: online})
		st.Online = st.Online || online
		if st.LastHeartbeat == nil || rec.LastHeartbeat.After(*st.LastHeartbeat) {
			last := rec.LastHeartbeat
			st.LastHeartbeat = &last
		}
	}
	return st, nil
}

// OnlineTenants returns the online flag of each requested tenant.
func (t *Tracker) OnlineTenants(ctx context.Context, tenantIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(tenantIDs))
	if len(tenantIDs) == 0 {
		return out, nil
	}

	latest, err := t.repo.LatestByTenants(ctx, tenantIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load heartbeats: %w", err)
	}

	now := t.now()
	for _, id := range tenantIDs {
		last, ok := latest[id]
		out[id] = ok && within(last, now, t.threshold)
	}
	return out, nil
}
