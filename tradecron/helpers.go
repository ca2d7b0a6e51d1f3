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
	"time"
)

// MonthEnd returns the last calendar day of the month containing t
func MonthEnd(t time.Time) time.Time {
	firstOfMonth := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return firstOfMonth.AddDate(0, 1, -1)
}

// NextMonth returns the first day of the month following t
func NextMonth(t time.Time) time.Time {
	y := t.Year()
	m := t.Month()
	if m == time.December {
		y++
		m = time.January
	} else {
		m++
	}
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// SubtractMonths moves t back n calendar months and returns the last day of
// the resulting month. The second return value is false when the result would
// fall before year 1.
func SubtractMonths(t time.Time, n int) (time.Time, bool) {
	total := t.Year()*12 + int(t.Month()-1) - n
	if total < 12 {
		return time.Time{}, false
	}
	y := total / 12
	m := time.Month(total%12 + 1)
	return MonthEnd(time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)), true
}

// MonthKey identifies the calendar month of t
func MonthKey(t time.Time) int {
	return t.Year()*12 + int(t.Month()-1)
}
