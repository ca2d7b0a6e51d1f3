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
	"bytes"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-navstats/portfolio"
)

var _ = Describe("Compare command", func() {
	BeforeEach(func() {
		compareBenchmark = ""
		compareAsOf = ""
		comparePeriods = nil
		compareWindows = nil
		compareTop = 5
	})

	Context("when reading a profile", func() {
		var fn string

		BeforeEach(func() {
			dir, err := os.MkdirTemp("", "pvnav")
			Expect(err).To(BeNil())
			DeferCleanup(os.RemoveAll, dir)

			fn = filepath.Join(dir, "income.toml")
			doc := `name = "income sleeve"
ids = ["balanced", "income"]
benchmark = "SPY"
as_of = "2024-12-31"
periods = ["1M", "1Y", "SI"]
`
			Expect(os.WriteFile(fn, []byte(doc), 0o600)).To(Succeed())
		})

		It("builds a request from the profile", func() {
			profile, err := loadProfile(fn)
			Expect(err).To(BeNil())
			Expect(profile.Name).To(Equal("income sleeve"))

			req, err := buildRequest(profile, nil)
			Expect(err).To(BeNil())
			Expect(req.IDs).To(Equal([]string{"balanced", "income"}))
			Expect(req.Benchmark).To(Equal("SPY"))
			Expect(req.AsOf).To(Equal(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)))
			Expect(req.Periods).To(Equal([]portfolio.Period{portfolio.OneMonth, portfolio.OneYear, portfolio.SinceInception}))
			Expect(req.TopDrawdowns).To(Equal(5))
		})

		It("lets arguments override the profile", func() {
			profile, err := loadProfile(fn)
			Expect(err).To(BeNil())

			compareBenchmark = "AGG"
			compareAsOf = "2023-12-29"
			req, err := buildRequest(profile, []string{"growth"})
			Expect(err).To(BeNil())
			Expect(req.IDs).To(Equal([]string{"growth"}))
			Expect(req.Benchmark).To(Equal("AGG"))
			Expect(req.AsOf).To(Equal(time.Date(2023, 12, 29, 0, 0, 0, 0, time.UTC)))
		})
	})

	It("requires at least one series", func() {
		_, err := buildRequest(nil, nil)
		Expect(err).To(HaveOccurred())
	})

	It("rejects unknown periods", func() {
		comparePeriods = []string{"13M"}
		_, err := buildRequest(nil, []string{"growth"})
		Expect(err).To(MatchError(portfolio.ErrUnknownPeriod))
	})

	It("renders every section", func() {
		s := portfolio.MustSeries("growth", []portfolio.Observation{
			{Date: time.Date(2023, 12, 29, 0, 0, 0, 0, time.UTC), NAV: 100},
			{Date: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), NAV: 110},
			{Date: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), NAV: 99},
		})
		results := portfolio.CompareSeries([]portfolio.Series{s}, portfolio.CompareOptions{TopDrawdowns: portfolio.DefaultTopDrawdowns})

		var buf bytes.Buffer
		renderComparison(&buf, results)
		out := buf.String()

		Expect(out).To(ContainSubstring("Trailing Returns %"))
		Expect(out).To(ContainSubstring("Since Inception"))
		Expect(out).To(ContainSubstring("Monthly Returns % (growth)"))
		Expect(out).To(ContainSubstring("Largest Drawdowns"))
		Expect(out).To(ContainSubstring("-10.00"))
		Expect(out).To(ContainSubstring("N/A"))
	})
})
