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

// Package activation implements the seat pool of a tenant: issuing
// activation codes under a quota, binding them to device fingerprints and
// rotating the tenant credential that guards them.
package activation

import (
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/seatgate/seatgate/internal/audit"
	"github.com/seatgate/seatgate/internal/observability/metrics"
)

// Service provides activation business logic
type Service struct {
	store       Store
	auditLogger audit.Logger
	metrics     *metrics.Seats
	tracer      trace.Tracer
	now         func() time.Time
	newCode     func() (string, error)
}

// Option configures a Service
type Option func(*Service)

// WithMetrics records domain counters on m.
func WithMetrics(m *metrics.Seats) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithCodeSource overrides how code strings are drawn.
func WithCodeSource(fn func() (string, error)) Option {
	return func(s *Service) { s.newCode = fn }
}

// NewService creates a new activation service
func NewService(store Store, auditLogger audit.Logger, opts ...Option) *Service {
	s := &Service{
		store:       store,
		auditLogger: auditLogger,
		metrics:     metrics.NoopSeats(),
		tracer:      otel.Tracer("github.com/seatgate/seatgate/internal/activation"),
		now:         time.Now,
		newCode:     NewCodeValue,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
