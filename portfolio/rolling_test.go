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

var _ = Describe("Rolling returns", func() {
	var s portfolio.Series

	BeforeEach(func() {
		// flat through 2021, then up one point per month through 2022
		s = monthEndSeries("A", day(2021, 1, 1), day(2022, 12, 31), func(dt time.Time) float64 {
			if dt.Year() == 2021 {
				return 100
			}
			return 100 + float64(dt.Month())
		})
	})

	It("should summarize every anchor with a full window", func() {
		stats := portfolio.RollingStats(s, nil, portfolio.OneYearWindow)
		Expect(stats).To(HaveLen(1))
		Expect(stats[0].Window).To(Equal(portfolio.OneYearWindow))
		Expect(stats[0].Count).To(Equal(12))
		Expect(stats[0].Avg.Value).To(BeNumerically("~", 6.5, 1e-9))
		Expect(stats[0].High.Value).To(BeNumerically("~", 12.0, 1e-9))
		Expect(stats[0].Low.Value).To(BeNumerically("~", 1.0, 1e-9))
	})

	It("should report unavailable figures when no anchor has a full window", func() {
		stats := portfolio.RollingStats(s, nil, portfolio.ThreeYearWindow)
		Expect(stats[0].Count).To(Equal(0))
		Expect(stats[0].Avg.Valid).To(BeFalse())
		Expect(stats[0].High.Valid).To(BeFalse())
		Expect(stats[0].Low.Valid).To(BeFalse())
	})

	It("should default to the 1, 3, 5 and 7 year windows", func() {
		stats := portfolio.RollingStats(s, nil)
		Expect(stats).To(HaveLen(4))
		Expect(stats[3].Window).To(Equal(portfolio.SevenYearWindow))
	})

	It("should yield returns lazily", func() {
		seen := 0
		for r := range portfolio.RollingReturns(s, portfolio.OneYearWindow, nil) {
			seen++
			Expect(r).To(BeNumerically("~", 1.0, 1e-9))
			break
		}
		Expect(seen).To(Equal(1))
	})

	It("should not error for an empty series", func() {
		stats := portfolio.RollingStats(portfolio.Series{}, nil)
		for _, st := range stats {
			Expect(st.Avg.Valid).To(BeFalse())
		}
	})

	It("should parse window labels", func() {
		w, err := portfolio.ParseWindow("5y")
		Expect(err).To(BeNil())
		Expect(w).To(Equal(portfolio.FiveYearWindow))
		_, err = portfolio.ParseWindow("2Y")
		Expect(err).To(MatchError(portfolio.ErrUnknownWindow))
	})
})
