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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo is an in-memory Repository with the storage upsert semantics.
type memRepo struct {
	mu   sync.Mutex
	recs map[[2]string]*Record
}

func newMemRepo() *memRepo {
	return &memRepo{recs: map[[2]string]*Record{}}
}

func (m *memRepo) Upsert(_ context.Context, hb Heartbeat, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := [2]string{hb.TenantID, hb.ServerID}
	rec, ok := m.recs[k]
	if !ok {
		rec = &Record{TenantID: hb.TenantID, ServerID: hb.ServerID, LastHeartbeat: at}
		m.recs[k] = rec
	}
	if at.After(rec.LastHeartbeat) {
		rec.LastHeartbeat = at
	}
	rec.Version, rec.IP, rec.UpdatedAt = hb.Version, hb.IP, at
	return nil
}

func (m *memRepo) ListByTenant(_ context.Context, tenantID string) ([]*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Record
	for k, rec := range m.recs {
		if k[0] == tenantID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRepo) LatestByTenants(_ context.Context, tenantIDs []string) (map[string]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]time.Time{}
	for _, id := range tenantIDs {
		for k, rec := range m.recs {
			if k[0] == id && rec.LastHeartbeat.After(out[id]) {
				out[id] = rec.LastHeartbeat
			}
		}
	}
	return out, nil
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time           { return c.t }
func (c *fakeClock) Set(offset time.Duration) { c.t = epoch.Add(offset) }

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// TestPurpose: Validates the liveness window: a heartbeat keeps a server online for strictly less than 60s, and a later heartbeat extends the window.
// Scope: Unit Test
// Expected: online at t=30s, offline at t=90s; heartbeat at t=50s keeps it online through t=109s and offline at t=110s.
// Test Case ID: PRS-01
func TestPresence_LivenessWindow(t *testing.T) {
	ctx := context.Background()

	t.Run("single heartbeat expires", func(t *testing.T) {
		clock := &fakeClock{t: epoch}
		tracker := NewTracker(newMemRepo(), WithClock(clock.Now))
		require.NoError(t, tracker.RecordHeartbeat(ctx, Heartbeat{TenantID: "t1"}))

		clock.Set(30 * time.Second)
		st, err := tracker.TenantStatus(ctx, "t1")
		require.NoError(t, err)
		assert.True(t, st.Online)

		clock.Set(90 * time.Second)
		st, err = tracker.TenantStatus(ctx, "t1")
		require.NoError(t, err)
		assert.False(t, st.Online)
	})

	t.Run("second heartbeat extends", func(t *testing.T) {
		clock := &fakeClock{t: epoch}
		tracker := NewTracker(newMemRepo(), WithClock(clock.Now))
		require.NoError(t, tracker.RecordHeartbeat(ctx, Heartbeat{TenantID: "t1"}))

		clock.Set(50 * time.Second)
		require.NoError(t, tracker.RecordHeartbeat(ctx, Heartbeat{TenantID: "t1"}))

		clock.Set(109 * time.Second)
		online, err := tracker.OnlineTenants(ctx, []string{"t1"})
		require.NoError(t, err)
		assert.True(t, online["t1"])

		clock.Set(110 * time.Second)
		online, err = tracker.OnlineTenants(ctx, []string{"t1"})
		require.NoError(t, err)
		assert.False(t, online["t1"])
	})
}

func TestPresence_IsOnline(t *testing.T) {
	rec := &Record{LastHeartbeat: epoch}

	assert.False(t, IsOnline(nil, epoch))
	assert.True(t, IsOnline(rec, epoch.Add(59*time.Second)))
	assert.False(t, IsOnline(rec, epoch.Add(60*time.Second)))
}

func TestPresence_TenantStatus_AggregatesServers(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: epoch}
	tracker := NewTracker(newMemRepo(), WithClock(clock.Now))

	require.NoError(t, tracker.RecordHeartbeat(ctx, Heartbeat{TenantID: "t1", ServerID: "a", Version: "1.0.0"}))
	clock.Set(45 * time.Second)
	require.NoError(t, tracker.RecordHeartbeat(ctx, Heartbeat{TenantID: "t1", ServerID: "b", Version: "1.1.0"}))

	clock.Set(70 * time.Second)
	st, err := tracker.TenantStatus(ctx, "t1")
	require.NoError(t, err)

	require.Len(t, st.Servers, 2)
	assert.True(t, st.Online, "server b is still within the window")
	require.NotNil(t, st.LastHeartbeat)
	assert.Equal(t, epoch.Add(45*time.Second), *st.LastHeartbeat)

	byID := map[string]bool{}
	for _, s := range st.Servers {
		byID[s.ServerID] = s.Online
	}
	assert.False(t, byID["a"])
	assert.True(t, byID["b"])
}

func TestPresence_RecordHeartbeat_DefaultsAndValidation(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	tracker := NewTracker(repo)

	require.NoError(t, tracker.RecordHeartbeat(ctx, Heartbeat{TenantID: "t1", ServerID: "  "}))
	recs, err := repo.ListByTenant(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, DefaultServerID, recs[0].ServerID)

	assert.ErrorIs(t, tracker.RecordHeartbeat(ctx, Heartbeat{}), ErrInvalidHeartbeat)
}

func TestPresence_NeverReported(t *testing.T) {
	tracker := NewTracker(newMemRepo())

	st, err := tracker.TenantStatus(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, st.Online)
	assert.Nil(t, st.LastHeartbeat)
	assert.Empty(t, st.Servers)
}

func TestPresence_WithThreshold(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: epoch}

	assert.Equal(t, OnlineThreshold, NewTracker(newMemRepo()).Threshold())

	tracker := NewTracker(newMemRepo(), WithClock(clock.Now), WithThreshold(10*time.Second))
	assert.Equal(t, 10*time.Second, tracker.Threshold())

	require.NoError(t, tracker.RecordHeartbeat(ctx, Heartbeat{TenantID: "t1"}))
	clock.Set(9 * time.Second)
	online, err := tracker.OnlineTenants(ctx, []string{"t1"})
	require.NoError(t, err)
	assert.True(t, online["t1"])

	clock.Set(10 * time.Second)
	online, err = tracker.OnlineTenants(ctx, []string{"t1"})
	require.NoError(t, err)
	assert.False(t, online["t1"])
}
