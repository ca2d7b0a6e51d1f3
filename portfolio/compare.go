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
	"sync"
	"time"

	"github.com/penny-vault/pv-navstats/tradecron"
	"github.com/rs/zerolog/log"
)

// DefaultTopDrawdowns is the number of drawdown episodes listed when the
// caller does not ask for a specific count
const DefaultTopDrawdowns = 10

// RiskSummary holds risk/return statistics produced outside of this package.
// The zero value has every figure unavailable.
type RiskSummary struct {
	StdDev      Figure `json:"stdDev"`
	MaxDrawdown Figure `json:"maxDrawdown"`
	Sharpe      Figure `json:"sharpe"`
	Sortino     Figure `json:"sortino"`
	Treynor     Figure `json:"treynor"`
	Calmar      Figure `json:"calmar"`
	Alpha       Figure `json:"alpha"`
	Beta        Figure `json:"beta"`
}

// RiskSummarizer computes the risk summary of a series against an optional
// benchmark (an empty series when none was supplied).
type RiskSummarizer interface {
	Summarize(s Series, benchmark Series) RiskSummary
}

// CompareOptions controls CompareSeries. The zero value reports the default
// periods and windows with every calendar day treated as a trading day and
// no drawdown episodes listed.
type CompareOptions struct {
	TradingDays      tradecron.TradingDaySet
	Periods          []Period
	Windows          []Window
	Benchmark        Series
	Risk             RiskSummarizer
	AsOf             time.Time
	// TopDrawdowns is the number of episodes to list; negative selects
	// DefaultTopDrawdowns and 0 lists none
	TopDrawdowns     int
	IncludeDrawdowns bool
}

// ComparisonResult carries every metric computed for one series
type ComparisonResult struct {
	SeriesID        string              `json:"id"`
	StartDate       time.Time           `json:"startDate"`
	EndDate         time.Time           `json:"endDate"`
	LatestNAV       Figure              `json:"latestNav"`
	Observations    int                 `json:"observations"`
	Trailing        []ReturnResult      `json:"trailingReturns"`
	Rolling         []RollingWindowStat `json:"rolling"`
	Annual          []AnnualMetric      `json:"annual"`
	BestYear        *AnnualMetric       `json:"bestYear,omitempty"`
	WorstYear       *AnnualMetric       `json:"worstYear,omitempty"`
	Monthly         []MonthlyRow        `json:"monthly"`
	CurrentDrawdown Figure              `json:"currentDrawdown"`
	MaxDrawdown     Figure              `json:"maxDrawdown"`
	TopDrawdowns    []*DrawDown         `json:"topDrawdowns"`
	Drawdowns       []DrawdownPoint     `json:"drawdowns,omitempty"`
	Risk            RiskSummary         `json:"risk"`
}

// CompareSeries computes a ComparisonResult for every series, in input order.
// Series are independent of one another: each is measured from its own latest
// observation and a series lacking data only yields unavailable figures.
func CompareSeries(series []Series, opts CompareOptions) []ComparisonResult {
	if len(opts.Periods) == 0 {
		opts.Periods = TrailingPeriods
	}
	if len(opts.Windows) == 0 {
		opts.Windows = RollingWindows
	}
	if opts.TopDrawdowns < 0 {
		opts.TopDrawdowns = DefaultTopDrawdowns
	}

	benchmark := opts.Benchmark
	if !opts.AsOf.IsZero() {
		benchmark = benchmark.Through(opts.AsOf)
	}

	results := make([]ComparisonResult, len(series))
	var wg sync.WaitGroup
	for idx := range series {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			s := series[idx]
			if !opts.AsOf.IsZero() {
				s = s.Through(opts.AsOf)
			}
			results[idx] = compareOne(s, benchmark, &opts)
		}(idx)
	}
	wg.Wait()

	return results
}

func compareOne(s Series, benchmark Series, opts *CompareOptions) ComparisonResult {
	subLog := log.With().Str("SeriesID", s.ID()).Int("NumObservations", s.Len()).Logger()
	subLog.Debug().Msg("computing comparison metrics")

	result := ComparisonResult{
		SeriesID:        s.ID(),
		Observations:    s.Len(),
		Trailing:        TrailingReturns(s, opts.Periods, opts.TradingDays),
		Rolling:         RollingStats(s, opts.TradingDays, opts.Windows...),
		Annual:          AnnualMetrics(s),
		Monthly:         MonthlyPLTable(s),
		CurrentDrawdown: CurrentDrawdown(s),
		MaxDrawdown:     MaxDrawdown(s),
		TopDrawdowns:    TopDrawdowns(s, opts.TopDrawdowns),
	}

	if first, ok := s.First(); ok {
		result.StartDate = first.Date
	}
	if latest, ok := s.Latest(); ok {
		result.EndDate = latest.Date
		result.LatestNAV = Some(latest.NAV)
	}

	if best, worst, ok := BestWorstYears(result.Annual); ok {
		result.BestYear = &best
		result.WorstYear = &worst
	}

	if opts.IncludeDrawdowns {
		points, err := DrawdownSeries(s)
		if err != nil {
			subLog.Warn().Err(err).Msg("drawdown series unavailable")
		}
		result.Drawdowns = points
	}

	if opts.Risk != nil {
		result.Risk = opts.Risk.Summarize(s, benchmark)
	}

	subLog.Debug().Str("MaxDrawdown", result.MaxDrawdown.String()).Msg("comparison metrics computed")
	return result
}
