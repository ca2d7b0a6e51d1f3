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
	"fmt"
	"os"

	"github.com/penny-vault/pv-navstats/common"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Profile bool

func init() {
	flags := rootCmd.PersistentFlags()

	// Database
	viper.BindEnv("database.url", "DATABASE_URL")
	flags.String("database-url", "", "PostgreSQL connection string")
	viper.BindPFlag("database.url", flags.Lookup("database-url"))

	// File based NAV histories
	viper.BindEnv("data.dir", "PVNAV_DATA_DIR")
	flags.String("data-dir", "", "Read NAV histories from <dir>/<id>.json instead of the database")
	viper.BindPFlag("data.dir", flags.Lookup("data-dir"))

	// Logging configuration
	viper.BindEnv("log.level", "PVNAV_LOG_LEVEL")
	flags.String("log-level", "warning", "Logging level")
	viper.BindPFlag("log.level", flags.Lookup("log-level"))

	viper.BindEnv("log.report_caller", "PVNAV_LOG_REPORT_CALLER")
	flags.Bool("log-report-caller", false, "Log function name that called log statement")
	viper.BindPFlag("log.report_caller", flags.Lookup("log-report-caller"))

	viper.BindEnv("log.output", "PVNAV_LOG_OUTPUT")
	flags.String("log-output", "stderr", "Write logs to specified output one of: file path, `stdout`, or `stderr`")
	viper.BindPFlag("log.output", flags.Lookup("log-output"))

	viper.BindEnv("log.pretty", "PVNAV_LOG_PRETTY")
	flags.Bool("log-pretty", false, "Format logs for humans instead of as JSON")
	viper.BindPFlag("log.pretty", flags.Lookup("log-pretty"))

	// Cache
	viper.BindEnv("cache.local_size", "PVNAV_CACHE_LOCAL_SIZE")
	flags.Int("cache-local-size", 1024, "Number of entries held in the in-process cache")
	viper.BindPFlag("cache.local_size", flags.Lookup("cache-local-size"))

	viper.BindEnv("cache.redis", "PVNAV_CACHE_REDIS")
	flags.Bool("cache-redis", false, "Write cache entries through to redis")
	viper.BindPFlag("cache.redis", flags.Lookup("cache-redis"))

	viper.BindEnv("cache.redis_url", "REDIS_URL")
	flags.String("cache-redis-url", "redis://localhost:6379/0", "Redis connection string")
	viper.BindPFlag("cache.redis_url", flags.Lookup("cache-redis-url"))

	viper.BindEnv("cache.ttl", "PVNAV_CACHE_TTL")
	flags.Int("cache-ttl", 3600, "Redis cache TTL in seconds")
	viper.BindPFlag("cache.ttl", flags.Lookup("cache-ttl"))

	// Calendar
	viper.BindEnv("calendar.source", "PVNAV_CALENDAR_SOURCE")
	flags.String("calendar-source", "", "Trading calendar: `holidays` (weekdays less market_holidays), `trading_days` or `all_days`; defaults to holidays with a database and all_days without")
	viper.BindPFlag("calendar.source", flags.Lookup("calendar-source"))

	viper.BindEnv("calendar.refresh", "PVNAV_CALENDAR_REFRESH")
	flags.Duration("calendar-refresh", 0, "How often serve reloads market holidays (default 1h)")
	viper.BindPFlag("calendar.refresh", flags.Lookup("calendar-refresh"))

	// Risk
	viper.BindEnv("risk.free_rate", "PVNAV_RISK_FREE_RATE")
	flags.Float64("risk-free-rate", 0, "Annual risk free rate, in percent, used by risk ratios")
	viper.BindPFlag("risk.free_rate", flags.Lookup("risk-free-rate"))

	// Tracing
	viper.BindEnv("otlp.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
	flags.String("otlp-endpoint", "", "OTLP collector endpoint; tracing is disabled when blank")
	viper.BindPFlag("otlp.endpoint", flags.Lookup("otlp-endpoint"))

	viper.BindEnv("otlp.http", "PVNAV_OTLP_HTTP")
	flags.Bool("otlp-http", false, "Use HTTP instead of gRPC to talk to the OTLP collector")
	viper.BindPFlag("otlp.http", flags.Lookup("otlp-http"))

	flags.BoolVar(&Profile, "cpu-profile", false, "Run pprof and save in profile.out")
}

var rootCmd = &cobra.Command{
	Use:     "pvnav",
	Version: common.CurrentVersion.String(),
	Short:   "Performance analytics for portfolio NAV histories",
	Long:    `Compute trailing returns, drawdowns, rolling returns, calendar returns and risk statistics from portfolio NAV histories.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		common.SetupLogging()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
