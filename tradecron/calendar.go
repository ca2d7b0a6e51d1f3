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

package tradecron

import (
	"sort"
	"time"
)

const isoDate = "2006-01-02"

// TradingDaySet holds the calendar dates a market was open, keyed by ISO
// date. A nil set means no calendar is available and every day is valid.
type TradingDaySet map[string]struct{}

// NewTradingDaySet builds a set from the given dates. Only the calendar date
// of each value is kept.
func NewTradingDaySet(dates ...time.Time) TradingDaySet {
	set := make(TradingDaySet, len(dates))
	for _, dt := range dates {
		set[dt.Format(isoDate)] = struct{}{}
	}
	return set
}

// Contains reports whether dt is in the set. Unlike IsValidTradingDay a nil
// set contains nothing.
func (set TradingDaySet) Contains(dt time.Time) bool {
	_, ok := set[dt.Format(isoDate)]
	return ok
}

// Dates returns the members of the set in ascending order
func (set TradingDaySet) Dates() []time.Time {
	res := make([]time.Time, 0, len(set))
	for k := range set {
		dt, err := time.Parse(isoDate, k)
		if err != nil {
			continue
		}
		res = append(res, dt)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Before(res[j]) })
	return res
}

// IsValidTradingDay reports whether dt counts toward day-count horizons. When
// set is nil every calendar day is valid.
func IsValidTradingDay(dt time.Time, set TradingDaySet) bool {
	if set == nil {
		return true
	}
	return set.Contains(dt)
}

// Date strips the clock from t without converting between time zones. The
// calendar date that t shows in its own location is what is kept.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// BusinessDays returns every weekday between begin and end (inclusive) that is
// not listed in holidays.
func BusinessDays(begin, end time.Time, holidays TradingDaySet) TradingDaySet {
	begin = Date(begin)
	end = Date(end)
	set := make(TradingDaySet)
	for dt := begin; !dt.After(end); dt = dt.AddDate(0, 0, 1) {
		if isWeekend(dt) || holidays.Contains(dt) {
			continue
		}
		set[dt.Format(isoDate)] = struct{}{}
	}
	return set
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}
