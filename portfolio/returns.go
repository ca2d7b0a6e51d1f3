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
	"math"
	"time"

	"github.com/penny-vault/pv-navstats/tradecron"
)

const daysPerYear = 365.25

// ReturnResult is the return over one trailing period. StartDate and EndDate
// are zero when the value is unavailable and Reason says why.
type ReturnResult struct {
	Period    Period    `json:"period"`
	Value     Figure    `json:"value"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Reason    string    `json:"reason,omitempty"`
}

func yearsBetween(begin, end time.Time) float64 {
	return end.Sub(begin).Hours() / 24 / daysPerYear
}

// ComputeReturn returns the percent change from comparison to latest. Spans of
// one year or less use the absolute return; longer spans are annualized.
func ComputeReturn(latest, comparison Observation) (float64, error) {
	if comparison.NAV <= 0 || latest.NAV <= 0 {
		return math.NaN(), ErrInvalidNAV
	}

	ratio := latest.NAV / comparison.NAV
	years := yearsBetween(comparison.Date, latest.Date)
	if years > 1 {
		return (math.Pow(ratio, 1.0/years) - 1.0) * 100, nil
	}
	return (ratio - 1.0) * 100, nil
}

// TrailingReturns computes the return of the latest observation over each
// period. Periods that cannot be resolved are reported as unavailable.
func TrailingReturns(s Series, periods []Period, days tradecron.TradingDaySet) []ReturnResult {
	results := make([]ReturnResult, 0, len(periods))
	for _, p := range periods {
		results = append(results, trailingReturn(s, p, days))
	}
	return results
}

func trailingReturn(s Series, p Period, days tradecron.TradingDaySet) ReturnResult {
	result := ReturnResult{Period: p, Value: NA}

	comparison, err := ResolveComparisonDate(s, p, days)
	if err != nil {
		result.Reason = err.Error()
		return result
	}

	latest, _ := s.Latest()
	v, err := ComputeReturn(latest, comparison)
	if err != nil {
		result.Reason = err.Error()
		return result
	}

	result.Value = Some(v)
	result.StartDate = comparison.Date
	result.EndDate = latest.Date
	return result
}

// Lookup returns the result for p from a list produced by TrailingReturns
func Lookup(results []ReturnResult, p Period) (ReturnResult, bool) {
	for _, r := range results {
		if r.Period == p {
			return r, true
		}
	}
	return ReturnResult{}, false
}
