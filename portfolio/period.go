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
	"sort"
	"strings"

	"github.com/penny-vault/pv-navstats/tradecron"
)

// Period is a named trailing horizon
type Period int

const (
	OneDay Period = iota + 1
	TwoDays
	ThreeDays
	TenDays
	OneWeek
	OneMonth
	ThreeMonths
	SixMonths
	NineMonths
	OneYear
	TwoYears
	ThreeYears
	FourYears
	FiveYears
	SinceInception
)

// monthSnapWindowDays is the length of the calendar window, ending at the
// snapped month end, searched for a comparison observation
const monthSnapWindowDays = 7

// TrailingPeriods is the fixed list reported for every compared series
var TrailingPeriods = []Period{
	OneDay, TwoDays, ThreeDays, TenDays, OneWeek,
	OneMonth, ThreeMonths, SixMonths, NineMonths,
	OneYear, TwoYears, ThreeYears, FourYears, FiveYears,
	SinceInception,
}

var periodLabels = map[Period]string{
	OneDay:         "1D",
	TwoDays:        "2D",
	ThreeDays:      "3D",
	TenDays:        "10D",
	OneWeek:        "1W",
	OneMonth:       "1M",
	ThreeMonths:    "3M",
	SixMonths:      "6M",
	NineMonths:     "9M",
	OneYear:        "1Y",
	TwoYears:       "2Y",
	ThreeYears:     "3Y",
	FourYears:      "4Y",
	FiveYears:      "5Y",
	SinceInception: "Since Inception",
}

func (p Period) String() string {
	if label, ok := periodLabels[p]; ok {
		return label
	}
	return fmt.Sprintf("Period(%d)", int(p))
}

// ParsePeriod converts a label such as "3M" or "Since Inception" to a Period
func ParsePeriod(label string) (Period, error) {
	label = strings.TrimSpace(label)
	if strings.EqualFold(label, "SI") {
		return SinceInception, nil
	}
	for p, l := range periodLabels {
		if strings.EqualFold(l, label) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPeriod, label)
}

func (p Period) MarshalText() ([]byte, error) {
	if _, ok := periodLabels[p]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPeriod, int(p))
	}
	return []byte(p.String()), nil
}

func (p *Period) UnmarshalText(text []byte) error {
	parsed, err := ParsePeriod(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p Period) resolution() resolution {
	switch p {
	case OneDay:
		return dayCount(1)
	case TwoDays:
		return dayCount(2)
	case ThreeDays:
		return dayCount(3)
	case TenDays:
		return dayCount(10)
	case OneWeek:
		return dayCount(7)
	case OneMonth:
		return monthSnap(1)
	case ThreeMonths:
		return monthSnap(3)
	case SixMonths:
		return monthSnap(6)
	case NineMonths:
		return monthSnap(9)
	case OneYear:
		return monthSnap(12)
	case TwoYears:
		return monthSnap(24)
	case ThreeYears:
		return monthSnap(36)
	case FourYears:
		return monthSnap(48)
	case FiveYears:
		return monthSnap(60)
	case SinceInception:
		return inception{}
	default:
		return nil
	}
}

// resolution locates the comparison observation for the observation at
// anchor. Implementations only look at obs[:anchor].
type resolution interface {
	resolve(obs []Observation, anchor int, days tradecron.TradingDaySet) (int, error)
}

// dayCount walks back a number of valid trading days
type dayCount int

func (n dayCount) resolve(obs []Observation, anchor int, days tradecron.TradingDaySet) (int, error) {
	count := 0
	for ii := anchor - 1; ii >= 0; ii-- {
		if !tradecron.IsValidTradingDay(obs[ii].Date, days) {
			continue
		}
		count++
		if count == int(n) {
			return ii, nil
		}
	}
	return -1, ErrInsufficientData
}

// monthSnap goes back a number of calendar months to the month end
type monthSnap int

func (n monthSnap) resolve(obs []Observation, anchor int, days tradecron.TradingDaySet) (int, error) {
	target, ok := tradecron.SubtractMonths(obs[anchor].Date, int(n))
	if !ok {
		return -1, ErrInsufficientData
	}
	windowStart := target.AddDate(0, 0, -(monthSnapWindowDays - 1))

	// index of the last observation on or before target
	idx := sort.Search(anchor, func(i int) bool {
		return obs[i].Date.After(target)
	}) - 1

	for ; idx >= 0 && !obs[idx].Date.Before(windowStart); idx-- {
		if tradecron.IsValidTradingDay(obs[idx].Date, days) {
			return idx, nil
		}
	}
	return -1, ErrInsufficientData
}

// inception always compares against the first observation
type inception struct{}

func (inception) resolve(obs []Observation, anchor int, days tradecron.TradingDaySet) (int, error) {
	if anchor < 1 {
		return -1, ErrInsufficientData
	}
	return 0, nil
}

// resolveAt runs res for the observation at anchor
func resolveAt(obs []Observation, anchor int, res resolution, days tradecron.TradingDaySet) (int, error) {
	if len(obs) < 2 || anchor < 1 || anchor >= len(obs) {
		return -1, ErrInsufficientData
	}
	return res.resolve(obs, anchor, days)
}

// ResolveComparisonDate finds the observation that period p measures the latest
// observation against. ErrInsufficientData is returned when the series has
// fewer than two observations or nothing qualifies.
func ResolveComparisonDate(s Series, p Period, days tradecron.TradingDaySet) (Observation, error) {
	res := p.resolution()
	if res == nil {
		return Observation{}, fmt.Errorf("%w: %d", ErrUnknownPeriod, int(p))
	}
	idx, err := resolveAt(s.obs, len(s.obs)-1, res, days)
	if err != nil {
		return Observation{}, err
	}
	return s.obs[idx], nil
}
