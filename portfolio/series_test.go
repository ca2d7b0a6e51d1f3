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
	"errors"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-navstats/portfolio"
)

var _ = Describe("Series", func() {
	Context("with observations out of order", func() {
		It("should sort them ascending", func() {
			s, err := portfolio.NewSeries("A", []portfolio.Observation{
				obs(day(2021, 1, 31), 110),
				obs(day(2020, 1, 31), 100),
				obs(day(2022, 1, 31), 121),
			})
			Expect(err).To(BeNil())
			Expect(s.ID()).To(Equal("A"))
			Expect(s.Len()).To(Equal(3))
			Expect(s.At(0).Date).To(Equal(day(2020, 1, 31)))
			Expect(s.At(2).Date).To(Equal(day(2022, 1, 31)))
		})
	})

	Context("with dates in a non-UTC location", func() {
		It("should keep the calendar date without shifting time zones", func() {
			tokyo, err := time.LoadLocation("Asia/Tokyo")
			Expect(err).To(BeNil())
			s, err := portfolio.NewSeries("A", []portfolio.Observation{
				obs(time.Date(2024, 1, 2, 1, 0, 0, 0, tokyo), 100),
			})
			Expect(err).To(BeNil())
			Expect(s.At(0).Date).To(Equal(day(2024, 1, 2)))
		})
	})

	Context("with structurally malformed input", func() {
		It("should name the nav field for a NaN", func() {
			_, err := portfolio.NewSeries("A", []portfolio.Observation{
				obs(day(2020, 1, 31), 100),
				obs(day(2020, 2, 29), math.NaN()),
			})
			Expect(err).To(MatchError(portfolio.ErrMalformedSeries))
			var malformed *portfolio.MalformedSeriesError
			Expect(errors.As(err, &malformed)).To(BeTrue())
			Expect(malformed.Field).To(Equal("nav"))
			Expect(malformed.Index).To(Equal(1))
		})

		It("should reject infinite navs", func() {
			_, err := portfolio.NewSeries("A", []portfolio.Observation{obs(day(2020, 1, 31), math.Inf(1))})
			Expect(err).To(MatchError(portfolio.ErrMalformedSeries))
		})

		It("should name the date field for a missing date", func() {
			_, err := portfolio.NewSeries("A", []portfolio.Observation{{NAV: 100}})
			var malformed *portfolio.MalformedSeriesError
			Expect(errors.As(err, &malformed)).To(BeTrue())
			Expect(malformed.Field).To(Equal("date"))
		})

		It("should reject duplicate dates", func() {
			_, err := portfolio.NewSeries("A", []portfolio.Observation{
				obs(day(2020, 1, 31), 100),
				obs(day(2020, 1, 31), 101),
			})
			Expect(err).To(MatchError(portfolio.ErrMalformedSeries))
			Expect(err.Error()).To(ContainSubstring("duplicate date 2020-01-31"))
		})
	})

	Context("with non-positive navs", func() {
		It("should accept the series so that single metrics can report them", func() {
			_, err := portfolio.NewSeries("A", []portfolio.Observation{
				obs(day(2020, 1, 31), 0),
				obs(day(2020, 2, 29), -5),
			})
			Expect(err).To(BeNil())
		})
	})

	It("should not expose its backing array", func() {
		s := portfolio.MustSeries("A", []portfolio.Observation{obs(day(2020, 1, 31), 100)})
		observations := s.Observations()
		observations[0].NAV = 1
		Expect(s.At(0).NAV).To(Equal(100.0))
	})

	It("should truncate through a date", func() {
		s := dailySeries("A", day(2024, 1, 1), day(2024, 1, 10), 100, 1)
		t := s.Through(day(2024, 1, 5))
		Expect(t.Len()).To(Equal(5))
		latest, ok := t.Latest()
		Expect(ok).To(BeTrue())
		Expect(latest.Date).To(Equal(day(2024, 1, 5)))
		Expect(s.Len()).To(Equal(10))
	})

	It("should report no first or latest observation when empty", func() {
		var s portfolio.Series
		_, ok := s.First()
		Expect(ok).To(BeFalse())
		_, ok = s.Latest()
		Expect(ok).To(BeFalse())
	})
})
