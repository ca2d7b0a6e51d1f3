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

package portfolio_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-navstats/portfolio"
)

var _ = Describe("Annual metrics", func() {
	Describe("when computing per-year returns", func() {
		var metrics []portfolio.AnnualMetric

		BeforeEach(func() {
			s := portfolio.MustSeries("A", []portfolio.Observation{
				obs(day(2020, 6, 30), 100),
				obs(day(2020, 12, 31), 110),
				obs(day(2021, 6, 30), 99),
				obs(day(2021, 12, 31), 121),
				obs(day(2023, 12, 29), 133.1),
			})
			metrics = portfolio.AnnualMetrics(s)
		})

		It("should have one entry per year present", func() {
			Expect(metrics).To(HaveLen(3))
			Expect(metrics[0].Year).To(Equal(2020))
			Expect(metrics[1].Year).To(Equal(2021))
			Expect(metrics[2].Year).To(Equal(2023))
		})

		It("should measure the first year from inception", func() {
			Expect(metrics[0].Return.Value).To(BeNumerically("~", 10.0, 1e-9))
			Expect(metrics[0].EndBalance).To(Equal(110.0))
		})

		It("should measure later years from the prior year end", func() {
			Expect(metrics[1].Return.Value).To(BeNumerically("~", 10.0, 1e-9))
			Expect(metrics[1].EndBalance).To(Equal(121.0))
		})

		It("should annualize across a missing year", func() {
			Expect(metrics[2].Return.Value).To(BeNumerically("~", 4.90, 0.01))
		})

		It("should pick the worst year", func() {
			best, worst, ok := portfolio.BestWorstYears(metrics)
			Expect(ok).To(BeTrue())
			Expect(best.Return.Value).To(BeNumerically("~", 10.0, 1e-9))
			Expect(worst.Year).To(Equal(2023))
		})
	})

	Context("with a single observation in the first year", func() {
		It("should report that year unavailable", func() {
			s := portfolio.MustSeries("A", []portfolio.Observation{
				obs(day(2020, 12, 31), 100),
				obs(day(2021, 12, 31), 110),
			})
			metrics := portfolio.AnnualMetrics(s)
			Expect(metrics[0].Return.Valid).To(BeFalse())
			Expect(metrics[0].EndBalance).To(Equal(100.0))
			Expect(metrics[1].Return.Value).To(BeNumerically("~", 10.0, 1e-9))
		})
	})

	Describe("when building the monthly P&L grid", func() {
		var rows []portfolio.MonthlyRow

		BeforeEach(func() {
			s := portfolio.MustSeries("A", []portfolio.Observation{
				obs(day(2023, 1, 15), 100),
				obs(day(2023, 1, 31), 102),
				obs(day(2023, 2, 28), 107.1),
				obs(day(2023, 4, 28), 110),
				obs(day(2023, 5, 31), 99),
			})
			rows = portfolio.MonthlyPLTable(s)
		})

		It("should fill the months with data", func() {
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].Year).To(Equal(2023))
			Expect(rows[0].Months[0].Value).To(BeNumerically("~", 2.0, 1e-9))
			Expect(rows[0].Months[1].Value).To(BeNumerically("~", 5.0, 1e-9))
			Expect(rows[0].Months[4].Value).To(BeNumerically("~", -10.0, 1e-9))
		})

		It("should mark missing months and the month after a gap as no data", func() {
			Expect(rows[0].Months[2].Valid).To(BeFalse())
			Expect(rows[0].Months[3].Valid).To(BeFalse())
			for m := 5; m < 12; m++ {
				Expect(rows[0].Months[m].Valid).To(BeFalse())
			}
		})

		It("should compound the monthly returns into the total", func() {
			Expect(rows[0].Total.Value).To(BeNumerically("~", -3.61, 0.01))
			Expect(rows[0].Total.Value).ToNot(BeNumerically("~", -3.0, 0.01))
		})

		It("should carry the december close into january", func() {
			s := portfolio.MustSeries("A", []portfolio.Observation{
				obs(day(2023, 12, 29), 100),
				obs(day(2024, 1, 31), 103),
			})
			rows := portfolio.MonthlyPLTable(s)
			Expect(rows).To(HaveLen(2))
			Expect(rows[0].Months[11].Valid).To(BeFalse())
			Expect(rows[0].Total.Valid).To(BeFalse())
			Expect(rows[1].Months[0].Value).To(BeNumerically("~", 3.0, 1e-9))
			Expect(rows[1].Total.Value).To(BeNumerically("~", 3.0, 1e-9))
		})
	})
})
