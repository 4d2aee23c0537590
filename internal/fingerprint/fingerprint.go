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

// Package fingerprint gives a client installation a stable device identity
// of the form web_<hash>_<created>, persisted across sessions.
package fingerprint

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf16"
)

const prefix = "web_"

// ErrStorageUnavailable reports that the fingerprint could not be loaded or
// persisted. It always accompanies a usable value.
var ErrStorageUnavailable = errors.New("fingerprint storage unavailable")

var ErrMalformed = errors.New("malformed fingerprint")

var shape = regexp.MustCompile(`^web_([0-9]+)_([0-9a-z]+)$`)

// Provider yields the device fingerprint of this installation.
type Provider interface {
	GetOrCreate(ctx context.Context) (string, error)
}

// Static is a Provider that always returns the same value.
type Static string

func (s Static) GetOrCreate(context.Context) (string, error) {
	return string(s), nil
}

// Hash is the 32-bit rolling hash h = h*31 + c over the UTF-16 code units
// of s, so non-ASCII traits hash the same as in a browser client.
func Hash(s string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(c)
	}
	return h
}

// Format builds a fingerprint from a trait hash and a creation time.
func Format(hash int32, created time.Time) string {
	abs := int64(hash)
	if abs < 0 {
		abs = -abs
	}
	return prefix + strconv.FormatInt(abs, 10) + "_" + strconv.FormatInt(created.UnixMilli(), 36)
}

// Parse splits a fingerprint into its hash and creation time.
func Parse(fp string) (uint32, time.Time, error) {
	m := shape.FindStringSubmatch(fp)
	if m == nil {
		return 0, time.Time{}, ErrMalformed
	}
	hash, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("%w: hash: %v", ErrMalformed, err)
	}
	ms, err := strconv.ParseInt(m[2], 36, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("%w: timestamp: %v", ErrMalformed, err)
	}
	return uint32(hash), time.UnixMilli(ms).UTC(), nil
}

// Valid reports whether fp has the fingerprint shape.
func Valid(fp string) bool {
	_, _, err := Parse(fp)
	return err == nil
}

// Persistent is the Provider backed by a Store. The first value it settles
// on is kept for the life of the Persistent, so a session sees one identity
// even when the store fails.
type Persistent struct {
	store  Store
	traits TraitsSource
	now    func() time.Time

	mu     sync.Mutex
	cached string
}

// Option configures a Persistent provider
type Option func(*Persistent)

// WithClock overrides the creation time source.
func WithClock(now func() time.Time) Option {
	return func(p *Persistent) { p.now = now }
}

// New creates a provider persisting to store and hashing traits.
func New(store Store, traits TraitsSource, opts ...Option) *Persistent {
	p := &Persistent{store: store, traits: traits, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetOrCreate returns the persisted fingerprint, creating and saving one if
// none is stored. A storage failure yields a fresh value together with
// ErrStorageUnavailable.
func (p *Persistent) GetOrCreate(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != "" {
		return p.cached, nil
	}

	stored, loadErr := p.store.Load(ctx)
	if loadErr == nil && Valid(strings.TrimSpace(stored)) {
		p.cached = strings.TrimSpace(stored)
		return p.cached, nil
	}

	fp := Format(Hash(p.traits.Traits().String()), p.now())
	p.cached = fp

	if loadErr != nil {
		return fp, fmt.Errorf("%w: load: %v", ErrStorageUnavailable, loadErr)
	}
	if err := p.store.Save(ctx, fp); err != nil {
		return fp, fmt.Errorf("%w: save: %v", ErrStorageUnavailable, err)
	}
	return fp, nil
}
