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

// Package risk computes the risk/return summary that is merged into
// portfolio comparison results.
package risk

import (
	"math"

	"github.com/penny-vault/pv-navstats/portfolio"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"
)

const (
	monthsPerYear = 12

	// volatility below epsilon is treated as none
	epsilon = 1e-12
)

// Summarizer derives risk statistics from month over month returns. The
// risk-free rate is an annual percentage.
type Summarizer struct {
	RiskFreeRate float64
}

func NewSummarizer(riskFreeRate float64) *Summarizer {
	return &Summarizer{
		RiskFreeRate: riskFreeRate,
	}
}

// monthly holds month over month returns as fractions keyed by month
type monthly struct {
	keys   []int
	values []float64
}

func monthlyReturns(s portfolio.Series) monthly {
	rets := monthly{
		keys:   make([]int, 0, s.Len()),
		values: make([]float64, 0, s.Len()),
	}
	for _, row := range portfolio.MonthlyPLTable(s) {
		for idx, cell := range row.Months {
			if !cell.Valid {
				continue
			}
			rets.keys = append(rets.keys, row.Year*monthsPerYear+idx)
			rets.values = append(rets.values, cell.Value/100)
		}
	}
	return rets
}

// align returns the returns of a and b for the months both have
func align(a, b monthly) ([]float64, []float64) {
	lookup := make(map[int]float64, len(b.keys))
	for idx, key := range b.keys {
		lookup[key] = b.values[idx]
	}

	ra := make([]float64, 0, len(a.keys))
	rb := make([]float64, 0, len(a.keys))
	for idx, key := range a.keys {
		if v, ok := lookup[key]; ok {
			ra = append(ra, a.values[idx])
			rb = append(rb, v)
		}
	}
	return ra, rb
}

// annualized compounds the monthly returns less rate and annualizes the
// result when it covers more than a year
func annualized(rets []float64, rate float64) float64 {
	growth := 1.0
	for _, r := range rets {
		growth *= 1.0 + r - rate
	}
	years := float64(len(rets)) / monthsPerYear
	if years > 1.0 {
		return math.Pow(growth, 1.0/years) - 1.0
	}
	return growth - 1.0
}

// downsideDeviation is the annualized root mean square of the negative
// excess returns
func downsideDeviation(rets []float64, rate float64) float64 {
	downside := 0.0
	for _, r := range rets {
		excessReturn := r - rate
		if excessReturn < 0 {
			downside += excessReturn * excessReturn
		}
	}
	return math.Sqrt(downside/float64(len(rets))) * math.Sqrt(monthsPerYear)
}

// Summarize computes the risk summary of s. Benchmark relative figures (alpha,
// beta and treynor) are only available when benchmark shares at least two
// months of returns with s.
func (sm *Summarizer) Summarize(s portfolio.Series, benchmark portfolio.Series) portfolio.RiskSummary {
	summary := portfolio.RiskSummary{
		MaxDrawdown: portfolio.MaxDrawdown(s),
	}

	rp := monthlyReturns(s)
	if len(rp.values) < 2 {
		log.Debug().Str("SeriesID", s.ID()).Int("NumMonths", len(rp.values)).Msg("not enough monthly returns for risk summary")
		return summary
	}

	rf := sm.RiskFreeRate / 100 / monthsPerYear
	stdev := stat.StdDev(rp.values, nil) * math.Sqrt(monthsPerYear)
	summary.StdDev = portfolio.Some(stdev * 100)

	excessReturn := annualized(rp.values, rf)
	if stdev > epsilon {
		summary.Sharpe = portfolio.Some(excessReturn / stdev)
	}

	if dd := downsideDeviation(rp.values, rf); dd > epsilon {
		summary.Sortino = portfolio.Some(excessReturn / dd)
	}

	cagr := annualized(rp.values, 0)
	if mdd := summary.MaxDrawdown; mdd.Valid && mdd.Value < 0 {
		summary.Calmar = portfolio.Some(cagr * 100 / -mdd.Value)
	}

	if benchmark.Len() < 2 {
		return summary
	}

	ra, rb := align(rp, monthlyReturns(benchmark))
	if len(ra) < 2 {
		return summary
	}

	variance := stat.Variance(rb, nil)
	if variance < epsilon {
		return summary
	}

	beta := stat.Covariance(ra, rb, nil) / variance
	summary.Beta = portfolio.Some(beta)

	// alpha is the excess of the portfolio over its CAPM expected return
	rP := annualized(ra, 0)
	rB := annualized(rb, 0)
	rF := sm.RiskFreeRate / 100
	summary.Alpha = portfolio.Some((rP - (rF + (rB-rF)*beta)) * 100)

	if math.Abs(beta) > epsilon {
		summary.Treynor = portfolio.Some(annualized(ra, rf) / beta)
	}

	return summary
}
