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

	"github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"github.com/penny-vault/pv-navstats/common"
	"github.com/penny-vault/pv-navstats/portfolio"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	compareBenchmark string
	compareAsOf      string
	compareProfile   string
	compareFormat    string
	comparePeriods   []string
	compareWindows   []string
	compareTop       int
)

func init() {
	compareCmd.Flags().StringVarP(&compareBenchmark, "benchmark", "b", "", "Series id of the benchmark used by relative risk statistics")
	compareCmd.Flags().StringVar(&compareAsOf, "as-of", "", "Ignore observations after this date (YYYY-MM-DD)")
	compareCmd.Flags().StringVar(&compareProfile, "profile", "", "TOML comparison profile naming the ids, benchmark and as-of date")
	compareCmd.Flags().StringVarP(&compareFormat, "format", "f", "table", "Output format: `table` or `json`")
	compareCmd.Flags().StringSliceVar(&comparePeriods, "period", nil, "Trailing periods to report (default all)")
	compareCmd.Flags().StringSliceVar(&compareWindows, "window", nil, "Rolling windows to report (default 1Y,3Y,5Y,7Y)")
	compareCmd.Flags().IntVar(&compareTop, "top", 5, "Number of largest drawdowns to list")

	rootCmd.AddCommand(compareCmd)
}

// ComparisonProfile is a saved comparison read from TOML:
//
//	name = "income sleeve"
//	ids = ["balanced", "income"]
//	benchmark = "SPY"
//	as_of = "2024-12-31"
//	periods = ["1M", "1Y", "SI"]
type ComparisonProfile struct {
	Name      string   `toml:"name"`
	IDs       []string `toml:"ids"`
	Benchmark string   `toml:"benchmark"`
	AsOf      string   `toml:"as_of"`
	Periods   []string `toml:"periods"`
	Windows   []string `toml:"windows"`
}

func loadProfile(fn string) (*ComparisonProfile, error) {
	raw, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}
	profile := &ComparisonProfile{}
	if err := toml.Unmarshal(raw, profile); err != nil {
		return nil, fmt.Errorf("could not parse profile %s: %w", fn, err)
	}
	return profile, nil
}

// buildRequest merges the profile (if any) with command line arguments;
// arguments win.
func buildRequest(profile *ComparisonProfile, ids []string) (portfolio.Request, error) {
	req := portfolio.Request{TopDrawdowns: compareTop}
	periods, windows := comparePeriods, compareWindows
	asOf := compareAsOf

	if profile != nil {
		req.IDs = profile.IDs
		req.Benchmark = profile.Benchmark
		if asOf == "" {
			asOf = profile.AsOf
		}
		if len(periods) == 0 {
			periods = profile.Periods
		}
		if len(windows) == 0 {
			windows = profile.Windows
		}
	}

	if len(ids) > 0 {
		req.IDs = ids
	}
	if compareBenchmark != "" {
		req.Benchmark = compareBenchmark
	}
	if len(req.IDs) == 0 {
		return req, fmt.Errorf("no series to compare: pass ids or a --profile")
	}

	var err error
	if req.AsOf, err = common.ParseDate(asOf); err != nil {
		return req, err
	}

	for _, label := range periods {
		p, err := portfolio.ParsePeriod(label)
		if err != nil {
			return req, err
		}
		req.Periods = append(req.Periods, p)
	}
	for _, label := range windows {
		w, err := portfolio.ParseWindow(label)
		if err != nil {
			return req, err
		}
		req.Windows = append(req.Windows, w)
	}

	return req, nil
}

var compareCmd = &cobra.Command{
	Use:   "compare [ids...]",
	Short: "Compare the performance of NAV histories",
	Long:  `Print trailing returns, rolling returns, calendar returns, drawdowns and risk statistics for one or more NAV histories`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var profile *ComparisonProfile
		if compareProfile != "" {
			var err error
			if profile, err = loadProfile(compareProfile); err != nil {
				return err
			}
			log.Debug().Str("Profile", profile.Name).Msg("loaded comparison profile")
		}

		req, err := buildRequest(profile, args)
		if err != nil {
			return err
		}

		ctx := context.Background()
		facade, _, err := setupFacade(ctx)
		if err != nil {
			return err
		}

		results, err := facade.Compare(ctx, req)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch compareFormat {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		case "table":
			renderComparison(out, results)
			return nil
		default:
			return fmt.Errorf("unknown output format %q", compareFormat)
		}
	},
}
