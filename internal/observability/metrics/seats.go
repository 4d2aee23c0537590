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

package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Seats holds the instruments for the activation and presence subsystem.
type Seats struct {
	codesGenerated metric.Int64Counter
	activations    metric.Int64Counter
	unbinds        metric.Int64Counter
	rotations      metric.Int64Counter
	heartbeats     metric.Int64Counter
}

// NewSeats registers the seat instruments on m. A nil meter yields no-op
// instruments.
func NewSeats(m *Meter) (*Seats, error) {
	if m == nil {
		m = Noop()
	}
	var s Seats
	var err error
	if s.codesGenerated, err = m.CreateCounter("activation_codes_generated_total", "Activation codes issued"); err != nil {
		return nil, err
	}
	if s.activations, err = m.CreateCounter("activations_total", "Device activation attempts by result"); err != nil {
		return nil, err
	}
	if s.unbinds, err = m.CreateCounter("unbinds_total", "Devices unbound from activation codes"); err != nil {
		return nil, err
	}
	if s.rotations, err = m.CreateCounter("api_key_rotations_total", "Tenant API key rotations"); err != nil {
		return nil, err
	}
	if s.heartbeats, err = m.CreateCounter("heartbeats_total", "Heartbeats ingested from tenant servers"); err != nil {
		return nil, err
	}
	return &s, nil
}

// NoopSeats returns instruments that record nothing.
func NoopSeats() *Seats {
	s, _ := NewSeats(Noop())
	return s
}

func (s *Seats) CodesGenerated(ctx context.Context, n int) {
	s.codesGenerated.Add(ctx, int64(n))
}

func (s *Seats) Activation(ctx context.Context, result string) {
	s.activations.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (s *Seats) Unbound(ctx context.Context, n int64) {
	s.unbinds.Add(ctx, n)
}

func (s *Seats) Rotated(ctx context.Context) {
	s.rotations.Add(ctx, 1)
}

func (s *Seats) Heartbeat(ctx context.Context) {
	s.heartbeats.Add(ctx, 1)
}
