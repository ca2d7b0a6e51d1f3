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
	"context"
	"errors"
	"time"

	"github.com/penny-vault/pv-navstats/observability/opentelemetry"
	"github.com/penny-vault/pv-navstats/tradecron"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

// SeriesSource loads the NAV history of a portfolio or benchmark. Observations
// may be returned in any order. Unknown identifiers return an error wrapping
// ErrSeriesNotFound.
type SeriesSource interface {
	NAVSeries(ctx context.Context, id string, begin, end time.Time) (Series, error)
}

// CalendarSource supplies the trading days between two dates
type CalendarSource interface {
	TradingDays(ctx context.Context, begin, end time.Time) (tradecron.TradingDaySet, error)
}

// Request names the series to compare and the reporting options
type Request struct {
	IDs              []string
	Benchmark        string
	Begin            time.Time
	End              time.Time
	AsOf             time.Time
	Periods          []Period
	Windows          []Window
	TopDrawdowns     int
	IncludeDrawdowns bool
}

// Facade acquires data from its collaborators and then runs CompareSeries.
// Calendar and Risk are optional.
type Facade struct {
	Source   SeriesSource
	Calendar CalendarSource
	Risk     RiskSummarizer
}

func NewFacade(source SeriesSource, calendar CalendarSource, risk RiskSummarizer) *Facade {
	return &Facade{
		Source:   source,
		Calendar: calendar,
		Risk:     risk,
	}
}

var earliestDate = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

// Compare loads every requested series concurrently and computes their
// comparison results. Only data access errors are returned; a series the
// source does not know is reported with unavailable metrics.
func (f *Facade) Compare(ctx context.Context, req Request) ([]ComparisonResult, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "portfolio.Compare")
	defer span.End()

	span.SetAttributes(
		attribute.StringSlice("ids", req.IDs),
		attribute.String("benchmark", req.Benchmark),
	)

	begin, end := req.Begin, req.End
	if begin.IsZero() {
		begin = earliestDate
	}
	if end.IsZero() {
		end = req.AsOf
	}
	if end.IsZero() {
		end = time.Now()
	}
	begin = tradecron.Date(begin)
	end = tradecron.Date(end)

	subLog := log.With().Strs("IDs", req.IDs).Str("Benchmark", req.Benchmark).Time("Begin", begin).Time("End", end).Logger()

	series := make([]Series, len(req.IDs))
	var benchmark Series

	g, gctx := errgroup.WithContext(ctx)
	for idx, id := range req.IDs {
		g.Go(func() error {
			s, err := f.load(gctx, id, begin, end)
			series[idx] = s
			return err
		})
	}
	if req.Benchmark != "" {
		g.Go(func() error {
			var err error
			benchmark, err = f.load(gctx, req.Benchmark, begin, end)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "could not load series")
		subLog.Error().Err(err).Msg("could not load series for comparison")
		return nil, err
	}

	days := f.tradingDays(ctx, series, begin, end)

	results := CompareSeries(series, CompareOptions{
		TradingDays:      days,
		Periods:          req.Periods,
		Windows:          req.Windows,
		Benchmark:        benchmark,
		Risk:             f.Risk,
		AsOf:             req.AsOf,
		TopDrawdowns:     req.TopDrawdowns,
		IncludeDrawdowns: req.IncludeDrawdowns,
	})

	for idx := range results {
		subLog.Debug().Object("Result", &results[idx]).Msg("compared series")
	}

	return results, nil
}

func (f *Facade) load(ctx context.Context, id string, begin, end time.Time) (Series, error) {
	s, err := f.Source.NAVSeries(ctx, id, begin, end)
	if errors.Is(err, ErrSeriesNotFound) {
		log.Warn().Str("SeriesID", id).Msg("series not found; reporting unavailable metrics")
		return Series{id: id}, nil
	}
	return s, err
}

// tradingDays loads the calendar covering every series. Without a calendar,
// or when it cannot be loaded, every day is treated as a trading day.
func (f *Facade) tradingDays(ctx context.Context, series []Series, begin, end time.Time) tradecron.TradingDaySet {
	if f.Calendar == nil {
		return nil
	}

	first, last := end, begin
	for _, s := range series {
		if o, ok := s.First(); ok && o.Date.Before(first) {
			first = o.Date
		}
		if o, ok := s.Latest(); ok && o.Date.After(last) {
			last = o.Date
		}
	}
	if last.Before(first) {
		return nil
	}

	days, err := f.Calendar.TradingDays(ctx, first, last)
	if err != nil {
		log.Warn().Err(err).Time("Begin", first).Time("End", last).Msg("trading calendar unavailable; treating every day as a trading day")
		return nil
	}
	return days
}
