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

package data

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/penny-vault/pv-navstats/common"
	"github.com/penny-vault/pv-navstats/portfolio"
	"github.com/penny-vault/pv-navstats/tradecron"
	"github.com/rs/zerolog/log"
	"github.com/zeebo/blake3"
)

// CachedSource memoizes NAV histories and trading calendars loaded from an
// underlying source. Errors are never cached.
type CachedSource struct {
	source   portfolio.SeriesSource
	calendar portfolio.CalendarSource
	cache    *common.Cache
}

// NewCachedSource wraps source and calendar with cache. calendar may be nil in
// which case TradingDays reports every day as valid.
func NewCachedSource(source portfolio.SeriesSource, calendar portfolio.CalendarSource, cache *common.Cache) *CachedSource {
	return &CachedSource{
		source:   source,
		calendar: calendar,
		cache:    cache,
	}
}

func cacheKey(kind, id string, begin, end time.Time) string {
	sum := blake3.Sum256([]byte(fmt.Sprintf("%s:%s:%s:%s", kind, id, begin.Format(time.RFC3339), end.Format(time.RFC3339))))
	return kind + ":" + hex.EncodeToString(sum[:16])
}

func (c *CachedSource) NAVSeries(ctx context.Context, id string, begin, end time.Time) (portfolio.Series, error) {
	key := cacheKey("nav", id, begin, end)
	subLog := log.With().Str("SeriesID", id).Str("Key", key).Logger()

	if raw, ok, err := c.cache.Get(ctx, key); err != nil {
		subLog.Warn().Err(err).Msg("cache lookup failed")
	} else if ok {
		var observations []portfolio.Observation
		if err := json.Unmarshal(raw, &observations); err == nil {
			subLog.Debug().Msg("nav history cache hit")
			return portfolio.NewSeries(id, observations)
		}
		subLog.Warn().Msg("could not decode cached nav history")
	}

	series, err := c.source.NAVSeries(ctx, id, begin, end)
	if err != nil {
		return series, err
	}

	if raw, err := json.Marshal(series.Observations()); err != nil {
		subLog.Warn().Err(err).Msg("could not encode nav history for cache")
	} else if err := c.cache.Set(ctx, key, raw); err != nil {
		subLog.Warn().Err(err).Msg("could not store nav history in cache")
	}

	return series, nil
}

func (c *CachedSource) TradingDays(ctx context.Context, begin, end time.Time) (tradecron.TradingDaySet, error) {
	if c.calendar == nil {
		return nil, nil
	}

	key := cacheKey("tradingdays", "", begin, end)
	subLog := log.With().Str("Key", key).Logger()

	if raw, ok, err := c.cache.Get(ctx, key); err != nil {
		subLog.Warn().Err(err).Msg("cache lookup failed")
	} else if ok {
		var days []time.Time
		if err := json.Unmarshal(raw, &days); err == nil {
			return tradecron.NewTradingDaySet(days...), nil
		}
		subLog.Warn().Msg("could not decode cached trading days")
	}

	days, err := c.calendar.TradingDays(ctx, begin, end)
	if err != nil || days == nil {
		return days, err
	}

	if raw, err := json.Marshal(days.Dates()); err != nil {
		subLog.Warn().Err(err).Msg("could not encode trading days for cache")
	} else if err := c.cache.Set(ctx, key, raw); err != nil {
		subLog.Warn().Err(err).Msg("could not store trading days in cache")
	}

	return days, nil
}
