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

package portfolio

import (
	"math"
	"sort"
	"time"

	"github.com/penny-vault/pv-navstats/tradecron"
)

// Observation is the net asset value of a portfolio or index on a date
type Observation struct {
	Date time.Time `json:"date"`
	NAV  float64   `json:"nav"`
}

// Series is an immutable, date-ascending sequence of observations for one
// portfolio or benchmark. The zero value is an empty series.
type Series struct {
	id  string
	obs []Observation
}

// NewSeries validates and copies observations, which may arrive in any order.
// Dates are reduced to their calendar date. A NaN or infinite NAV, a missing
// date, or two observations on the same date make the series malformed; NAVs
// that are zero or negative are kept and reported as invalid by the metrics
// that cannot use them.
func NewSeries(id string, observations []Observation) (Series, error) {
	obs := make([]Observation, len(observations))
	for idx, o := range observations {
		if o.Date.IsZero() {
			return Series{}, &MalformedSeriesError{SeriesID: id, Index: idx, Field: "date", Reason: "missing"}
		}
		if math.IsNaN(o.NAV) || math.IsInf(o.NAV, 0) {
			return Series{}, &MalformedSeriesError{SeriesID: id, Index: idx, Field: "nav", Reason: "not a finite number"}
		}
		obs[idx] = Observation{Date: tradecron.Date(o.Date), NAV: o.NAV}
	}

	sort.SliceStable(obs, func(i, j int) bool {
		return obs[i].Date.Before(obs[j].Date)
	})

	for ii := 1; ii < len(obs); ii++ {
		if obs[ii].Date.Equal(obs[ii-1].Date) {
			return Series{}, &MalformedSeriesError{
				SeriesID: id,
				Index:    ii,
				Field:    "date",
				Reason:   "duplicate date " + obs[ii].Date.Format("2006-01-02"),
			}
		}
	}

	return Series{id: id, obs: obs}, nil
}

// MustSeries is like NewSeries but panics on malformed input
func MustSeries(id string, observations []Observation) Series {
	s, err := NewSeries(id, observations)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Series) ID() string {
	return s.id
}

func (s Series) Len() int {
	return len(s.obs)
}

// At returns the i-th observation in date order
func (s Series) At(i int) Observation {
	return s.obs[i]
}

// Observations returns a copy of the observations in date order
func (s Series) Observations() []Observation {
	res := make([]Observation, len(s.obs))
	copy(res, s.obs)
	return res
}

func (s Series) First() (Observation, bool) {
	if len(s.obs) == 0 {
		return Observation{}, false
	}
	return s.obs[0], true
}

func (s Series) Latest() (Observation, bool) {
	if len(s.obs) == 0 {
		return Observation{}, false
	}
	return s.obs[len(s.obs)-1], true
}

// Through returns the observations on or before dt
func (s Series) Through(dt time.Time) Series {
	dt = tradecron.Date(dt)
	idx := sort.Search(len(s.obs), func(i int) bool {
		return s.obs[i].Date.After(dt)
	})
	return Series{id: s.id, obs: s.obs[:idx:idx]}
}
