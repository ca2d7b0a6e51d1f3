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
	"fmt"
	"time"

	"github.com/penny-vault/pv-navstats/data/database"
	"github.com/penny-vault/pv-navstats/observability/opentelemetry"
	"github.com/penny-vault/pv-navstats/portfolio"
	"github.com/penny-vault/pv-navstats/tradecron"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PvDb reads NAV histories and the trading calendar from the penny vault
// database
type PvDb struct {
}

func NewPvDb() *PvDb {
	return &PvDb{}
}

// NAVSeries loads the NAV observations of a series between begin and end
// (inclusive). A series without any rows in the range is reported as not found.
func (p *PvDb) NAVSeries(ctx context.Context, id string, begin, end time.Time) (portfolio.Series, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "pvdb.NAVSeries")
	defer span.End()
	span.SetAttributes(attribute.String("SeriesID", id))

	subLog := log.With().Str("SeriesID", id).Time("Begin", begin).Time("End", end).Logger()
	subLog.Debug().Msg("loading nav history")

	if end.Before(begin) {
		subLog.Warn().Stack().Msg("end before begin in call to NAVSeries")
		return portfolio.Series{}, ErrInvalidTimeRange
	}

	trx, err := database.TrxForUser(ctx, "pvuser")
	if err != nil {
		subLog.Error().Stack().Err(err).Msg("could not get transaction when querying nav history")
		return portfolio.Series{}, err
	}

	rows, err := trx.Query(ctx, "SELECT event_date, nav FROM nav_history WHERE series_id=$1 AND event_date BETWEEN $2 AND $3 ORDER BY event_date", id, begin, end)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "database query failed")
		subLog.Error().Stack().Err(err).Msg("could not query nav history")
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return portfolio.Series{}, err
	}

	observations := make([]portfolio.Observation, 0, 252)
	for rows.Next() {
		var dt time.Time
		var nav float64
		if err = rows.Scan(&dt, &nav); err != nil {
			rows.Close()
			subLog.Error().Stack().Err(err).Msg("could not SCAN DB result")
			if err := trx.Rollback(ctx); err != nil {
				subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
			}
			return portfolio.Series{}, err
		}
		observations = append(observations, portfolio.Observation{Date: dt, NAV: nav})
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		subLog.Error().Stack().Err(err).Msg("error while iterating nav history")
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return portfolio.Series{}, err
	}

	if len(observations) == 0 {
		span.SetStatus(codes.Error, "series not found")
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return portfolio.Series{}, fmt.Errorf("%w: %s", portfolio.ErrSeriesNotFound, id)
	}

	if err := trx.Commit(ctx); err != nil {
		subLog.Warn().Stack().Err(err).Msg("could not commit transaction")
	}

	return portfolio.NewSeries(id, observations)
}

// TradingDays returns the set of US market trading days between begin and end
func (p *PvDb) TradingDays(ctx context.Context, begin time.Time, end time.Time) (tradecron.TradingDaySet, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "pvdb.TradingDays")
	defer span.End()

	subLog := log.With().Time("Begin", begin).Time("End", end).Logger()
	subLog.Debug().Msg("getting trading days")

	if end.Before(begin) {
		subLog.Warn().Stack().Msg("end before begin in call to TradingDays")
		return nil, ErrInvalidTimeRange
	}

	trx, err := database.TrxForUser(ctx, "pvuser")
	if err != nil {
		subLog.Error().Stack().Err(err).Msg("could not get transaction when querying trading days")
		return nil, err
	}

	rows, err := trx.Query(ctx, "SELECT trading_day FROM trading_days WHERE market='us' AND trading_day BETWEEN $1 and $2 ORDER BY trading_day", begin, end)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "database query failed")
		subLog.Error().Stack().Err(err).Msg("could not query trading days")
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return nil, err
	}

	days := make([]time.Time, 0, 252)
	for rows.Next() {
		var dt time.Time
		if err = rows.Scan(&dt); err != nil {
			rows.Close()
			subLog.Error().Stack().Err(err).Msg("could not SCAN DB result")
			if err := trx.Rollback(ctx); err != nil {
				subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
			}
			return nil, err
		}
		days = append(days, dt)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		subLog.Error().Stack().Err(err).Msg("error while iterating trading days")
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return nil, err
	}

	if len(days) == 0 {
		span.SetStatus(codes.Error, "no trading days found")
		subLog.Error().Stack().Msg("could not load trading days")
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return nil, ErrNoTradingDays
	}

	if err := trx.Commit(ctx); err != nil {
		subLog.Warn().Stack().Err(err).Msg("could not commit transaction")
	}
	return tradecron.NewTradingDaySet(days...), nil
}
