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

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/penny-vault/pv-navstats/common"
	"github.com/penny-vault/pv-navstats/data"
	"github.com/penny-vault/pv-navstats/data/database"
	"github.com/penny-vault/pv-navstats/portfolio"
	"github.com/penny-vault/pv-navstats/risk"
	"github.com/penny-vault/pv-navstats/tradecron"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var (
	ErrNoDataSource       = errors.New("either --data-dir or --database-url must be set")
	ErrUnknownCalendar    = errors.New("unknown calendar source")
	ErrCalendarNeedsDbase = errors.New("the trading_days calendar requires --database-url")
)

const (
	calendarAllDays     = "all_days"
	calendarHolidays    = "holidays"
	calendarTradingDays = "trading_days"
)

// calendarSource resolves the configured calendar. Without an explicit
// choice, weekdays less market holidays are used when a database is
// available and every day counts as a trading day otherwise.
func calendarSource(configured string, haveDatabase bool) (string, error) {
	switch configured {
	case "":
		if haveDatabase {
			return calendarHolidays, nil
		}
		return calendarAllDays, nil
	case calendarAllDays, calendarHolidays:
		return configured, nil
	case calendarTradingDays:
		if !haveDatabase {
			return "", ErrCalendarNeedsDbase
		}
		return configured, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCalendar, configured)
	}
}

// setupFacade wires the configured NAV source, trading calendar, cache and
// risk summarizer together. The returned holiday calendar is nil unless the
// holidays calendar is in use.
func setupFacade(ctx context.Context) (*portfolio.Facade, *tradecron.Calendar, error) {
	if viper.GetString("database.url") != "" {
		if err := database.Connect(ctx); err != nil {
			return nil, nil, err
		}
	}

	var source portfolio.SeriesSource
	switch dataDir := viper.GetString("data.dir"); {
	case dataDir != "":
		log.Info().Str("Dir", dataDir).Msg("reading nav histories from files")
		source = data.NewFileSource(dataDir)
	case database.Configured():
		source = data.NewPvDb()
	default:
		return nil, nil, ErrNoDataSource
	}

	mode, err := calendarSource(viper.GetString("calendar.source"), database.Configured())
	if err != nil {
		return nil, nil, err
	}
	log.Debug().Str("CalendarSource", mode).Msg("selected trading calendar")

	var dbCalendar portfolio.CalendarSource
	var holidays *tradecron.Calendar
	switch mode {
	case calendarTradingDays:
		dbCalendar = data.NewPvDb()
	case calendarHolidays:
		holidays = tradecron.NewCalendar()
		if database.Configured() {
			if err := holidays.LoadMarketHolidays(ctx); err != nil {
				log.Warn().Err(err).Msg("could not load market holidays; only weekends are excluded")
			}
		}
	}

	cache, err := common.SetupCache()
	if err != nil {
		return nil, nil, err
	}

	cached := data.NewCachedSource(source, dbCalendar, cache)
	var calendar portfolio.CalendarSource
	switch {
	case holidays != nil:
		calendar = holidays
	case dbCalendar != nil:
		calendar = cached
	}

	summarizer := risk.NewSummarizer(viper.GetFloat64("risk.free_rate"))
	return portfolio.NewFacade(cached, calendar, summarizer), holidays, nil
}
