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

package data_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-navstats/common"
	"github.com/penny-vault/pv-navstats/data"
	"github.com/penny-vault/pv-navstats/portfolio"
	"github.com/penny-vault/pv-navstats/tradecron"
)

type countingSource struct {
	calls int
	fail  bool
}

func (cs *countingSource) NAVSeries(ctx context.Context, id string, begin, end time.Time) (portfolio.Series, error) {
	cs.calls++
	if cs.fail {
		return portfolio.Series{}, errors.New("source unavailable")
	}
	return portfolio.NewSeries(id, []portfolio.Observation{
		{Date: day(2024, 1, 31), NAV: 100},
		{Date: day(2024, 2, 29), NAV: 103},
	})
}

type countingCalendar struct {
	calls int
}

func (cc *countingCalendar) TradingDays(ctx context.Context, begin, end time.Time) (tradecron.TradingDaySet, error) {
	cc.calls++
	return tradecron.BusinessDays(begin, end, nil), nil
}

var _ = Describe("CachedSource", func() {
	var (
		source   *countingSource
		calendar *countingCalendar
		cache    *common.Cache
		ctx      context.Context
	)

	BeforeEach(func() {
		var err error
		cache, err = common.NewCache(16, nil, time.Minute)
		Expect(err).To(BeNil())
		source = &countingSource{}
		calendar = &countingCalendar{}
		ctx = context.Background()
	})

	It("serves repeated requests from the cache", func() {
		cached := data.NewCachedSource(source, calendar, cache)

		first, err := cached.NAVSeries(ctx, "growth", day(2024, 1, 1), day(2024, 3, 1))
		Expect(err).To(BeNil())
		second, err := cached.NAVSeries(ctx, "growth", day(2024, 1, 1), day(2024, 3, 1))
		Expect(err).To(BeNil())

		Expect(source.calls).To(Equal(1))
		Expect(second.ID()).To(Equal("growth"))
		Expect(second.Observations()).To(HaveLen(2))
		Expect(second.At(1).Date.Equal(first.At(1).Date)).To(BeTrue())
		Expect(second.At(1).NAV).To(Equal(first.At(1).NAV))
	})

	It("keys entries by series and range", func() {
		cached := data.NewCachedSource(source, calendar, cache)

		_, err := cached.NAVSeries(ctx, "growth", day(2024, 1, 1), day(2024, 3, 1))
		Expect(err).To(BeNil())
		_, err = cached.NAVSeries(ctx, "income", day(2024, 1, 1), day(2024, 3, 1))
		Expect(err).To(BeNil())
		_, err = cached.NAVSeries(ctx, "growth", day(2024, 1, 1), day(2024, 4, 1))
		Expect(err).To(BeNil())

		Expect(source.calls).To(Equal(3))
		Expect(cache.Len()).To(Equal(3))
	})

	It("does not cache errors", func() {
		source.fail = true
		cached := data.NewCachedSource(source, calendar, cache)

		_, err := cached.NAVSeries(ctx, "growth", day(2024, 1, 1), day(2024, 3, 1))
		Expect(err).To(HaveOccurred())

		source.fail = false
		_, err = cached.NAVSeries(ctx, "growth", day(2024, 1, 1), day(2024, 3, 1))
		Expect(err).To(BeNil())
		Expect(source.calls).To(Equal(2))
	})

	It("caches trading days", func() {
		cached := data.NewCachedSource(source, calendar, cache)

		days, err := cached.TradingDays(ctx, day(2024, 1, 1), day(2024, 1, 7))
		Expect(err).To(BeNil())
		Expect(days).To(HaveLen(5))

		days, err = cached.TradingDays(ctx, day(2024, 1, 1), day(2024, 1, 7))
		Expect(err).To(BeNil())
		Expect(days).To(HaveLen(5))
		Expect(days.Contains(day(2024, 1, 6))).To(BeFalse())
		Expect(calendar.calls).To(Equal(1))
	})

	It("treats every day as valid without a calendar", func() {
		cached := data.NewCachedSource(source, nil, cache)
		days, err := cached.TradingDays(ctx, day(2024, 1, 1), day(2024, 1, 7))
		Expect(err).To(BeNil())
		Expect(days).To(BeNil())
	})
})
