// Copyright 2021-2022
// SPDX-License-Identifier: Apache-2.0
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

package portfolio

import (
	"fmt"
	"iter"
	"strings"

	"github.com/penny-vault/pv-navstats/tradecron"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Window is the length of a rolling return window in years
type Window int

const (
	OneYearWindow   Window = 1
	ThreeYearWindow Window = 3
	FiveYearWindow  Window = 5
	SevenYearWindow Window = 7
)

// RollingWindows are the windows reported when none are requested
var RollingWindows = []Window{OneYearWindow, ThreeYearWindow, FiveYearWindow, SevenYearWindow}

func (w Window) String() string {
	return fmt.Sprintf("%dY", int(w))
}

// ParseWindow converts labels such as "3Y" to a Window
func ParseWindow(label string) (Window, error) {
	label = strings.ToUpper(strings.TrimSpace(label))
	for _, w := range RollingWindows {
		if w.String() == label {
			return w, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownWindow, label)
}

func (w Window) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

func (w *Window) UnmarshalText(text []byte) error {
	parsed, err := ParseWindow(string(text))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

func (w Window) resolution() resolution {
	return monthSnap(12 * int(w))
}

// RollingWindowStat summarizes every rolling return of one window length
type RollingWindowStat struct {
	Window Window `json:"window"`
	Avg    Figure `json:"avg"`
	High   Figure `json:"high"`
	Low    Figure `json:"low"`
	Count  int    `json:"count"`
}

// RollingReturns yields the return of every observation measured over window
// w. Observations whose window start cannot be resolved are skipped.
func RollingReturns(s Series, w Window, days tradecron.TradingDaySet) iter.Seq[float64] {
	res := w.resolution()
	return func(yield func(float64) bool) {
		for anchor := 1; anchor < len(s.obs); anchor++ {
			idx, err := resolveAt(s.obs, anchor, res, days)
			if err != nil {
				continue
			}
			r, err := ComputeReturn(s.obs[anchor], s.obs[idx])
			if err != nil {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}

// RollingStats computes avg, high and low of the rolling returns for each
// window. Windows without any eligible anchor report unavailable figures.
func RollingStats(s Series, days tradecron.TradingDaySet, windows ...Window) []RollingWindowStat {
	if len(windows) == 0 {
		windows = RollingWindows
	}

	stats := make([]RollingWindowStat, 0, len(windows))
	for _, w := range windows {
		stats = append(stats, rollingStat(s, w, days))
	}
	return stats
}

func rollingStat(s Series, w Window, days tradecron.TradingDaySet) RollingWindowStat {
	res := RollingWindowStat{Window: w, Avg: NA, High: NA, Low: NA}

	returns := make([]float64, 0, len(s.obs))
	for r := range RollingReturns(s, w, days) {
		returns = append(returns, r)
	}

	if len(returns) == 0 {
		return res
	}

	res.Count = len(returns)
	res.Avg = Some(stat.Mean(returns, nil))
	res.High = Some(floats.Max(returns))
	res.Low = Some(floats.Min(returns))
	return res
}
