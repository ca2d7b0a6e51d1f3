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
	"github.com/penny-vault/pv-navstats/tradecron"
)

var _ = Describe("Period resolution", func() {
	var (
		s        portfolio.Series
		weekdays tradecron.TradingDaySet
	)

	BeforeEach(func() {
		s = dailySeries("A", day(2023, 12, 1), day(2024, 3, 15), 100, 0.5)
		weekdays = tradecron.BusinessDays(day(2023, 11, 1), day(2024, 3, 31), nil)
	})

	Describe("when parsing period labels", func() {
		DescribeTable("known labels",
			func(label string, expected portfolio.Period) {
				p, err := portfolio.ParsePeriod(label)
				Expect(err).To(BeNil())
				Expect(p).To(Equal(expected))
				Expect(expected.String()).To(Equal(p.String()))
			},
			Entry("one day", "1D", portfolio.OneDay),
			Entry("ten days", "10D", portfolio.TenDays),
			Entry("one week", "1W", portfolio.OneWeek),
			Entry("nine months lowercase", "9m", portfolio.NineMonths),
			Entry("five years", "5Y", portfolio.FiveYears),
			Entry("since inception", "Since Inception", portfolio.SinceInception),
			Entry("since inception alias", "SI", portfolio.SinceInception),
		)

		It("should reject unknown labels", func() {
			_, err := portfolio.ParsePeriod("6W")
			Expect(err).To(MatchError(portfolio.ErrUnknownPeriod))
		})

		It("should round trip through text", func() {
			text, err := portfolio.ThreeMonths.MarshalText()
			Expect(err).To(BeNil())
			var p portfolio.Period
			Expect(p.UnmarshalText(text)).To(Succeed())
			Expect(p).To(Equal(portfolio.ThreeMonths))
		})
	})

	Describe("when resolving day-count periods", func() {
		It("should count calendar days without a trading calendar", func() {
			o, err := portfolio.ResolveComparisonDate(s, portfolio.OneWeek, nil)
			Expect(err).To(BeNil())
			Expect(o.Date).To(Equal(day(2024, 3, 8)))
		})

		It("should land on the 7th prior business day with a weekday calendar", func() {
			o, err := portfolio.ResolveComparisonDate(s, portfolio.OneWeek, weekdays)
			Expect(err).To(BeNil())
			Expect(o.Date).To(Equal(day(2024, 3, 6)))
		})

		It("should skip the weekend for 1D on a Monday", func() {
			monday := s.Through(day(2024, 3, 11))
			o, err := portfolio.ResolveComparisonDate(monday, portfolio.OneDay, weekdays)
			Expect(err).To(BeNil())
			Expect(o.Date).To(Equal(day(2024, 3, 8)))
		})

		It("should be unavailable when the series runs out", func() {
			short := dailySeries("B", day(2024, 3, 11), day(2024, 3, 15), 100, 1)
			_, err := portfolio.ResolveComparisonDate(short, portfolio.TenDays, nil)
			Expect(err).To(MatchError(portfolio.ErrInsufficientData))
		})
	})

	Describe("when resolving month periods", func() {
		It("should roll back over the year boundary to the month end", func() {
			o, err := portfolio.ResolveComparisonDate(s, portfolio.ThreeMonths, nil)
			Expect(err).To(BeNil())
			Expect(o.Date).To(Equal(day(2023, 12, 31)))
		})

		It("should take the latest trading day inside the window", func() {
			o, err := portfolio.ResolveComparisonDate(s, portfolio.ThreeMonths, weekdays)
			Expect(err).To(BeNil())
			Expect(o.Date).To(Equal(day(2023, 12, 29)))
		})

		It("should snap to the end of a shorter month", func() {
			o, err := portfolio.ResolveComparisonDate(s, portfolio.OneMonth, nil)
			Expect(err).To(BeNil())
			Expect(o.Date).To(Equal(day(2024, 2, 29)))
		})

		It("should be unavailable when nothing falls in the 7 day window", func() {
			gappy := portfolio.MustSeries("B", []portfolio.Observation{
				obs(day(2023, 12, 20), 100),
				obs(day(2024, 3, 15), 110),
			})
			_, err := portfolio.ResolveComparisonDate(gappy, portfolio.ThreeMonths, nil)
			Expect(err).To(MatchError(portfolio.ErrInsufficientData))
		})

		It("should accept an observation on the first day of the window", func() {
			edge := portfolio.MustSeries("B", []portfolio.Observation{
				obs(day(2023, 12, 25), 100),
				obs(day(2024, 3, 15), 110),
			})
			o, err := portfolio.ResolveComparisonDate(edge, portfolio.ThreeMonths, nil)
			Expect(err).To(BeNil())
			Expect(o.Date).To(Equal(day(2023, 12, 25)))
		})

		It("should be unavailable before the start of the series", func() {
			_, err := portfolio.ResolveComparisonDate(s, portfolio.OneYear, nil)
			Expect(err).To(MatchError(portfolio.ErrInsufficientData))
		})
	})

	Describe("when resolving since inception", func() {
		It("should use the first observation", func() {
			o, err := portfolio.ResolveComparisonDate(s, portfolio.SinceInception, weekdays)
			Expect(err).To(BeNil())
			Expect(o.Date).To(Equal(day(2023, 12, 1)))
		})
	})

	Context("with fewer than two observations", func() {
		It("should make every period unavailable", func() {
			single := portfolio.MustSeries("A", []portfolio.Observation{obs(day(2024, 1, 31), 100)})
			for _, p := range portfolio.TrailingPeriods {
				_, err := portfolio.ResolveComparisonDate(single, p, nil)
				Expect(err).To(MatchError(portfolio.ErrInsufficientData), p.String())
				_, err = portfolio.ResolveComparisonDate(portfolio.Series{}, p, nil)
				Expect(err).To(MatchError(portfolio.ErrInsufficientData), p.String())
			}
		})
	})
})
