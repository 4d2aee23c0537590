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
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var codePattern = regexp.MustCompile(`^SEAT-[A-HJ-NP-Z2-9]{4}-[A-HJ-NP-Z2-9]{4}-[A-HJ-NP-Z2-9]{4}$`)

func TestNewCodeValue_Format(t *testing.T) {
	seen := map[string]bool{}
	for range 200 {
		v, err := NewCodeValue()
		require.NoError(t, err)
		assert.Regexp(t, codePattern, v)
		seen[v] = true
	}
	assert.Greater(t, len(seen), 190, "codes should practically never repeat")
}

func TestNewCodeValue_AlphabetIsUnambiguous(t *testing.T) {
	assert.Len(t, codeAlphabet, 32)
	for _, r := range "01IO" {
		assert.NotContains(t, codeAlphabet, string(r))
	}
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "SEAT-AB12-CD34-EF56", NormalizeCode("  seat-ab12-cd34-ef56\n"))
}

func TestCode_BoundTo(t *testing.T) {
	fp := "web_1_a"
	c := &Code{IsActivated: true, DeviceFingerprint: &fp}
	assert.True(t, c.BoundTo("web_1_a"))
	assert.False(t, c.BoundTo("web_2_b"))
	assert.False(t, (&Code{}).BoundTo("web_1_a"))
}
