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
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/penny-vault/pv-navstats/common"
	"github.com/penny-vault/pv-navstats/data/database"
	"github.com/penny-vault/pv-navstats/handler"
	"github.com/penny-vault/pv-navstats/middleware"
	"github.com/penny-vault/pv-navstats/observability/opentelemetry"
	"github.com/penny-vault/pv-navstats/router"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	viper.BindEnv("server.port", "PORT")
	serveCmd.Flags().IntP("port", "p", 3000, "Port to run application server on")
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))

	viper.BindEnv("server.cors_origins", "PVNAV_CORS_ORIGINS")
	serveCmd.Flags().String("cors-origins", "http://localhost:8080, https://www.pennyvault.com", "Comma separated list of origins allowed by CORS")
	viper.BindPFlag("server.cors_origins", serveCmd.Flags().Lookup("cors-origins"))

	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the pvnav server",
	Long:  `Run HTTP server that reports performance statistics of NAV histories`,
	Run: func(cmd *cobra.Command, args []string) {
		if Profile {
			f, err := os.Create("profile.out")
			if err != nil {
				log.Fatal().Err(err).Msg("could not create profile output")
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				log.Fatal().Err(err).Msg("could not start cpu profile")
			}
			defer pprof.StopCPUProfile()
		}

		ctx := context.Background()

		shutdownTracing, err := opentelemetry.Setup()
		if err != nil {
			log.Fatal().Err(err).Msg("could not setup tracing")
		}
		defer func() {
			if err := shutdownTracing(ctx); err != nil {
				log.Error().Err(err).Msg("could not flush traces")
			}
		}()

		facade, holidays, err := setupFacade(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not initialize data sources")
		}
		log.Info().Msg("initialized data sources")

		app := fiber.New(fiber.Config{
			ErrorHandler: handler.ErrorHandler,
			JSONEncoder:  json.Marshal,
			JSONDecoder:  json.Unmarshal,
		})

		// shutdown cleanly on interrupt
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt)
		go func() {
			sig := <-c
			fmt.Printf("Received signal: '%s'; shutting down...\n", sig.String())
			database.LogOpenTransactions()
			if err := app.Shutdown(); err != nil {
				log.Fatal().Err(err).Msg("shutdown failed")
			}
		}()

		app.Use(cors.New(cors.Config{
			AllowOrigins: viper.GetString("server.cors_origins"),
			AllowHeaders: "*",
			AllowMethods: "GET,HEAD",
		}))
		app.Use(middleware.NewLogger())

		router.SetupRoutes(app, facade)

		// keep market holidays current
		if holidays != nil && database.Configured() {
			refresh := viper.GetDuration("calendar.refresh")
			if refresh <= 0 {
				refresh = time.Hour
			}
			scheduler := gocron.NewScheduler(common.GetTimezone())
			if _, err := scheduler.Every(refresh).Do(func() {
				if err := holidays.LoadMarketHolidays(ctx); err != nil {
					log.Warn().Err(err).Msg("market holiday refresh failed")
				}
			}); err != nil {
				log.Error().Err(err).Msg("could not schedule market holiday refresh")
			}
			scheduler.StartAsync()
			defer scheduler.Stop()
		}

		if err := app.Listen(":" + viper.GetString("server.port")); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	},
}
