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
	"errors"

	"github.com/seatgate/seatgate/internal/tenant"
)

var (
	ErrQuotaExceeded      = errors.New("activation code quota exceeded")
	ErrNotFound           = errors.New("activation code not found")
	ErrAlreadyActivated   = errors.New("activation code already bound to another device")
	ErrNotActivated       = errors.New("activation code is not bound")
	ErrActiveCodeDeletion = errors.New("cannot delete a bound activation code")
	ErrInvalidCount       = errors.New("invalid activation code count")
	ErrInvalidInput       = errors.New("invalid activation input")
	ErrDuplicateCode      = errors.New("duplicate activation code")

	ErrTenantNotFound = tenant.ErrTenantNotFound
	ErrTenantInactive = tenant.ErrTenantInactive
)
