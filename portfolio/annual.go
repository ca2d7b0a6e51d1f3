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
	"github.com/penny-vault/pv-navstats/tradecron"
)

// AnnualMetric is the return and closing NAV of one calendar year
type AnnualMetric struct {
	Year       int     `json:"year"`
	Return     Figure  `json:"returnPercent"`
	EndBalance float64 `json:"endBalance"`
}

// MonthlyRow is one calendar year of the monthly P&L grid. Months is indexed
// from January.
type MonthlyRow struct {
	Year   int        `json:"year"`
	Months [12]Figure `json:"months"`
	Total  Figure     `json:"total"`
}

// bucket is the range of observations that fall into one calendar year or
// month
type bucket struct {
	key   int
	first int
	last  int
}

func bucketize(obs []Observation, keyFn func(o Observation) int) []bucket {
	buckets := make([]bucket, 0, 16)
	for idx, o := range obs {
		key := keyFn(o)
		if n := len(buckets); n > 0 && buckets[n-1].key == key {
			buckets[n-1].last = idx
			continue
		}
		buckets = append(buckets, bucket{key: key, first: idx, last: idx})
	}
	return buckets
}

// periodReturn is the return between two observation indexes, unavailable
// when they coincide
func periodReturn(obs []Observation, start, end int) Figure {
	if start < 0 || start >= end {
		return NA
	}
	return figureOf(ComputeReturn(obs[end], obs[start]))
}

// AnnualMetrics computes the return of every calendar year present in the
// series. A year is measured from the last observation before it, or from
// inception for the first year, to its own last observation.
func AnnualMetrics(s Series) []AnnualMetric {
	years := bucketize(s.obs, func(o Observation) int { return o.Date.Year() })
	metrics := make([]AnnualMetric, len(years))
	for k, y := range years {
		start := 0
		if k > 0 {
			start = years[k-1].last
		}
		metrics[k] = AnnualMetric{
			Year:       y.key,
			Return:     periodReturn(s.obs, start, y.last),
			EndBalance: s.obs[y.last].NAV,
		}
	}
	return metrics
}

// BestWorstYears picks the annual metrics with the highest and lowest return.
// ok is false when no year has a return.
func BestWorstYears(metrics []AnnualMetric) (best AnnualMetric, worst AnnualMetric, ok bool) {
	for _, m := range metrics {
		if !m.Return.Valid {
			continue
		}
		if !ok {
			best, worst, ok = m, m, true
			continue
		}
		if m.Return.Value > best.Return.Value {
			best = m
		}
		if m.Return.Value < worst.Return.Value {
			worst = m
		}
	}
	return
}

// MonthlyPLTable builds the monthly return grid. Each cell runs from the last
// observation of the previous month to the last observation of the month; the
// first month of the series starts at inception. Months without data, or
// following a month without data, are unavailable. Total compounds the
// available cells of the row.
func MonthlyPLTable(s Series) []MonthlyRow {
	months := bucketize(s.obs, func(o Observation) int { return tradecron.MonthKey(o.Date) })
	rows := make([]MonthlyRow, 0, len(months)/12+1)

	var row *MonthlyRow
	for k, m := range months {
		year := m.key / 12
		if row == nil || row.Year != year {
			rows = append(rows, MonthlyRow{Year: year})
			row = &rows[len(rows)-1]
		}

		start := -1
		switch {
		case k == 0:
			start = 0
		case months[k-1].key == m.key-1:
			start = months[k-1].last
		}
		row.Months[m.key%12] = periodReturn(s.obs, start, m.last)
	}

	for idx := range rows {
		rows[idx].Total = compound(rows[idx].Months[:])
	}
	return rows
}

// compound chains percent returns: ((Π(1+r/100)) − 1) × 100
func compound(returns []Figure) Figure {
	growth := 1.0
	found := false
	for _, r := range returns {
		if !r.Valid {
			continue
		}
		growth *= 1 + r.Value/100
		found = true
	}
	if !found {
		return NA
	}
	return Some((growth - 1) * 100)
}
