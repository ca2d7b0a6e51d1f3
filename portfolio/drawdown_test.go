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
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-navstats/portfolio"
)

var _ = Describe("Drawdown", func() {
	var s portfolio.Series

	BeforeEach(func() {
		s = portfolio.MustSeries("A", []portfolio.Observation{
			obs(day(2023, 1, 31), 100),
			obs(day(2023, 2, 28), 120),
			obs(day(2023, 3, 31), 90),
			obs(day(2023, 4, 28), 110),
			obs(day(2023, 5, 31), 130),
			obs(day(2023, 6, 30), 117),
		})
	})

	Describe("when computing the drawdown series", func() {
		It("should measure every point from the running peak", func() {
			points, err := portfolio.DrawdownSeries(s)
			Expect(err).To(BeNil())
			Expect(points).To(HaveLen(6))

			expected := []float64{0, 0, -25, -8.333333, 0, -10}
			for idx, pt := range points {
				Expect(pt.Date).To(Equal(s.At(idx).Date))
				Expect(pt.Percent).To(BeNumerically("~", expected[idx], 1e-6))
				Expect(pt.Percent).To(BeNumerically("<=", 0))
			}
		})

		It("should be exactly zero at new highs", func() {
			points, err := portfolio.DrawdownSeries(s)
			Expect(err).To(BeNil())
			Expect(points[1].Percent).To(Equal(0.0))
			Expect(points[4].Percent).To(Equal(0.0))
		})

		It("should equal its minimum for max drawdown", func() {
			points, err := portfolio.DrawdownSeries(s)
			Expect(err).To(BeNil())
			lowest := 0.0
			for _, pt := range points {
				lowest = min(lowest, pt.Percent)
			}
			Expect(portfolio.MaxDrawdown(s).Value).To(Equal(lowest))
		})

		It("should fail on a non-positive nav", func() {
			bad := portfolio.MustSeries("A", []portfolio.Observation{obs(day(2023, 1, 31), 100), obs(day(2023, 2, 28), 0)})
			_, err := portfolio.DrawdownSeries(bad)
			Expect(err).To(MatchError(portfolio.ErrInvalidNAV))
			Expect(portfolio.MaxDrawdown(bad).Valid).To(BeFalse())
			Expect(portfolio.CurrentDrawdown(bad).Valid).To(BeFalse())
		})
	})

	Describe("when computing max and current drawdown", func() {
		It("should find the deepest decline", func() {
			Expect(portfolio.MaxDrawdown(s).Value).To(BeNumerically("~", -25.0, 1e-9))
		})

		It("should measure the latest point against the whole series peak", func() {
			Expect(portfolio.CurrentDrawdown(s).Value).To(BeNumerically("~", -10.0, 1e-9))

			recovered := portfolio.MustSeries("B", []portfolio.Observation{
				obs(day(2023, 1, 31), 100),
				obs(day(2023, 2, 28), 150),
				obs(day(2023, 3, 31), 120),
				obs(day(2023, 4, 28), 130),
			})
			Expect(portfolio.CurrentDrawdown(recovered).Value).To(BeNumerically("~", -13.333333, 1e-6))
		})

		It("should be zero for a monotonically increasing series", func() {
			up := dailySeries("B", day(2023, 1, 1), day(2023, 12, 31), 100, 0.25)
			Expect(portfolio.MaxDrawdown(up)).To(Equal(portfolio.Some(0)))
			Expect(portfolio.CurrentDrawdown(up)).To(Equal(portfolio.Some(0)))
		})

		It("should match a simple six month decline", func() {
			decline := portfolio.MustSeries("B", []portfolio.Observation{
				obs(day(2023, 6, 30), 100),
				obs(day(2023, 12, 31), 80),
			})
			Expect(portfolio.MaxDrawdown(decline).String()).To(Equal("-20.00"))
		})

		DescribeTable("short series",
			func(observations []portfolio.Observation) {
				short := portfolio.MustSeries("B", observations)
				Expect(portfolio.MaxDrawdown(short)).To(Equal(portfolio.Some(0)))
				Expect(portfolio.CurrentDrawdown(short)).To(Equal(portfolio.Some(0)))
			},
			Entry("empty", []portfolio.Observation{}),
			Entry("single observation", []portfolio.Observation{obs(day(2023, 6, 30), 100)}),
		)
	})

	Describe("when listing drawdown episodes", func() {
		It("should record begin, trough and recovery", func() {
			episodes := portfolio.DrawdownEpisodes(s)
			Expect(episodes).To(HaveLen(2))

			Expect(episodes[0].Begin).To(Equal(day(2023, 2, 28)))
			Expect(episodes[0].End).To(Equal(day(2023, 3, 31)))
			Expect(episodes[0].Recovery).To(Equal(day(2023, 5, 31)))
			Expect(episodes[0].LossPercent).To(BeNumerically("~", -25.0, 1e-9))

			Expect(episodes[1].Begin).To(Equal(day(2023, 5, 31)))
			Expect(episodes[1].Recovery).To(Equal(time.Time{}))
		})

		It("should order the top drawdowns by loss", func() {
			top := portfolio.TopDrawdowns(s, 1)
			Expect(top).To(HaveLen(1))
			Expect(top[0].LossPercent).To(BeNumerically("~", -25.0, 1e-9))
			Expect(portfolio.TopDrawdowns(s, 10)).To(HaveLen(2))
		})
	})
})
