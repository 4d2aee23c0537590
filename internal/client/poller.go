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

package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/seatgate/seatgate/internal/observability/logger"
	"github.com/seatgate/seatgate/internal/presence"
)

// HeartbeatInterval is the default period between tenant server heartbeats.
// It must stay below presence.OnlineThreshold.
const HeartbeatInterval = 30 * time.Second

// ActivationPollInterval is the default period of the device activation check.
const ActivationPollInterval = 30 * time.Second

// ErrInvalidInterval is returned for a non-positive poll interval.
var ErrInvalidInterval = errors.New("poll interval must be positive")

// Poller runs a task now and then on every tick until its context ends.
// Runs never overlap: a slow run delays the next one and missed ticks are
// dropped.
type Poller struct {
	name     string
	interval time.Duration
	fn       func(ctx context.Context) error
}

// NewPoller creates a poller calling fn every interval.
func NewPoller(name string, interval time.Duration, fn func(ctx context.Context) error) (*Poller, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	if fn == nil {
		return nil, errors.New("poll function is required")
	}
	return &Poller{name: name, interval: interval, fn: fn}, nil
}

// NewHeartbeatPoller sends c.Heartbeat every interval. Intervals at or
// above the online threshold would let the server flap offline and are
// rejected.
func NewHeartbeatPoller(c *Client, interval time.Duration, version string) (*Poller, error) {
	if interval >= presence.OnlineThreshold {
		return nil, fmt.Errorf("heartbeat interval %s must be below %s", interval, presence.OnlineThreshold)
	}
	return NewPoller("heartbeat", interval, func(ctx context.Context) error {
		return c.Heartbeat(ctx, version, "")
	})
}

// Run blocks until ctx is cancelled. Task errors are logged and do not stop
// the poller.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runOnce(ctx)
		}
	}
}

func (p *Poller) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := p.fn(ctx); err != nil && ctx.Err() == nil {
		slog.WarnContext(ctx, "poll failed",
			logger.Component("client"),
			logger.Operation(p.name),
			logger.Error(err),
		)
	}
}
