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
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/penny-vault/pv-navstats/data/database"
	"github.com/penny-vault/pv-navstats/observability/opentelemetry"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

// Calendar is a weekday calendar minus market holidays. It is safe for
// concurrent use; holidays may be reloaded while readers are active.
type Calendar struct {
	mu              sync.RWMutex
	holidays        TradingDaySet
	lastHolidayLoad time.Time
}

func NewCalendar(holidays ...time.Time) *Calendar {
	return &Calendar{
		holidays: NewTradingDaySet(holidays...),
	}
}

// AddHolidays marks additional dates as market holidays
func (cal *Calendar) AddHolidays(dates ...time.Time) {
	cal.mu.Lock()
	defer cal.mu.Unlock()
	if cal.holidays == nil {
		cal.holidays = make(TradingDaySet)
	}
	for _, dt := range dates {
		cal.holidays[dt.Format(isoDate)] = struct{}{}
		if dt.After(cal.lastHolidayLoad) {
			cal.lastHolidayLoad = Date(dt)
		}
	}
}

func (cal *Calendar) IsMarketHoliday(t time.Time) bool {
	cal.mu.RLock()
	defer cal.mu.RUnlock()
	return cal.holidays.Contains(t)
}

func (cal *Calendar) IsTradeDay(t time.Time) bool {
	if isWeekend(t) {
		return false
	}
	return !cal.IsMarketHoliday(t)
}

// TradingDays returns the set of trade days between begin and end inclusive
func (cal *Calendar) TradingDays(ctx context.Context, begin, end time.Time) (TradingDaySet, error) {
	if end.Before(begin) {
		return nil, ErrInvalidTimeRange
	}

	cal.mu.RLock()
	defer cal.mu.RUnlock()
	return BusinessDays(begin, end, cal.holidays), nil
}

// LoadMarketHolidays reads holidays from the market_holidays table. After the
// first load only holidays newer than the most recent one already known are
// fetched.
func (cal *Calendar) LoadMarketHolidays(ctx context.Context) error {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "tradecron.LoadMarketHolidays")
	defer span.End()

	var rows pgx.Rows
	var err error

	trx, err := database.TrxForUser(ctx, "pvuser")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "could not begin transaction")
		return err
	}

	cal.mu.RLock()
	since := cal.lastHolidayLoad
	cal.mu.RUnlock()

	if !since.IsZero() {
		rows, err = trx.Query(ctx, "SELECT event_date FROM market_holidays WHERE event_date > $1 ORDER BY event_date ASC", since)
	} else {
		rows, err = trx.Query(ctx, "SELECT event_date FROM market_holidays ORDER BY event_date ASC")
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "database query failed")
		log.Error().Stack().Err(err).Msg("could not query market holidays")
		if err := trx.Rollback(ctx); err != nil {
			log.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return err
	}

	loaded := make([]time.Time, 0, 16)
	for rows.Next() {
		var dt time.Time
		if err = rows.Scan(&dt); err != nil {
			log.Error().Stack().Err(err).Msg("could not scan market holiday")
			rows.Close()
			if err := trx.Rollback(ctx); err != nil {
				log.Error().Stack().Err(err).Msg("could not rollback transaction")
			}
			return err
		}
		loaded = append(loaded, Date(dt))
	}

	if err := rows.Err(); err != nil {
		log.Error().Stack().Err(err).Msg("error while reading market holidays")
		if err := trx.Rollback(ctx); err != nil {
			log.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return err
	}

	if err := trx.Commit(ctx); err != nil {
		log.Error().Stack().Err(err).Msg("could not commit transaction")
	}

	cal.AddHolidays(loaded...)
	log.Debug().Int("NumHolidays", len(loaded)).Time("Since", since).Msg("loaded market holidays")
	return nil
}
