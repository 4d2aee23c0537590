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

package fingerprint

import (
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Traits are the low-volatility device characteristics the hash covers.
// Mutable, easily spoofed signals such as the user agent are not part of it.
type Traits struct {
	ScreenWidth    int
	ScreenHeight   int
	ColorDepth     int
	TimezoneOffset int // minutes, positive west of UTC
	CPUCount       int
	Locale         string
}

// String joins the traits in hash order.
func (t Traits) String() string {
	return strings.Join([]string{
		strconv.Itoa(t.ScreenWidth),
		strconv.Itoa(t.ScreenHeight),
		strconv.Itoa(t.ColorDepth),
		strconv.Itoa(t.TimezoneOffset),
		strconv.Itoa(t.CPUCount),
		t.Locale,
	}, "|")
}

// TraitsSource supplies the current device traits.
type TraitsSource interface {
	Traits() Traits
}

// TraitsFunc adapts a function to TraitsSource.
type TraitsFunc func() Traits

func (f TraitsFunc) Traits() Traits { return f() }

// HostTraits reads traits from the running host. A headless process has no
// screen, so the caller supplies the display metrics.
type HostTraits struct {
	ScreenWidth  int
	ScreenHeight int
	ColorDepth   int
}

func (h HostTraits) Traits() Traits {
	_, offset := time.Now().Zone()
	return Traits{
		ScreenWidth:    h.ScreenWidth,
		ScreenHeight:   h.ScreenHeight,
		ColorDepth:     h.ColorDepth,
		TimezoneOffset: -offset / 60,
		CPUCount:       runtime.NumCPU(),
		Locale:         locale(),
	}
}

// locale turns POSIX locale variables into a BCP 47 tag, e.g. en_US.UTF-8
// becomes en-US.
func locale() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := os.Getenv(key)
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		if i := strings.IndexAny(v, ".@"); i >= 0 {
			v = v[:i]
		}
		return strings.ReplaceAll(v, "_", "-")
	}
	return "und"
}
