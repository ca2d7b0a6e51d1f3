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
)

// DrawdownPoint is the decline from the running peak on a date, in percent
type DrawdownPoint struct {
	Date    time.Time `json:"date"`
	Percent float64   `json:"drawdownPercent"`
}

// DrawDown is a single peak to recovery episode. Recovery is zero when the
// series has not regained the peak.
type DrawDown struct {
	Begin       time.Time `json:"begin"`
	End         time.Time `json:"end"`
	Recovery    time.Time `json:"recovery"`
	LossPercent float64   `json:"lossPercent"`
}

// walkDrawdown makes a single ascending pass over obs calling fn with the
// drawdown at each index. A non-positive NAV aborts the walk.
func walkDrawdown(obs []Observation, fn func(idx int, peak, dd float64)) error {
	peak := math.Inf(-1)
	for idx, o := range obs {
		if o.NAV <= 0 {
			return ErrInvalidNAV
		}
		peak = math.Max(peak, o.NAV)
		fn(idx, peak, (o.NAV-peak)/peak*100)
	}
	return nil
}

// DrawdownSeries returns the drawdown of every observation from the highest
// NAV seen up to that date.
func DrawdownSeries(s Series) ([]DrawdownPoint, error) {
	points := make([]DrawdownPoint, 0, len(s.obs))
	err := walkDrawdown(s.obs, func(idx int, _, dd float64) {
		points = append(points, DrawdownPoint{Date: s.obs[idx].Date, Percent: dd})
	})
	if err != nil {
		return nil, err
	}
	return points, nil
}

// MaxDrawdown is the most negative drawdown over the whole series. Series
// with fewer than two observations have a max drawdown of 0.
func MaxDrawdown(s Series) Figure {
	if len(s.obs) < 2 {
		return Some(0)
	}
	maxDD := 0.0
	err := walkDrawdown(s.obs, func(_ int, _, dd float64) {
		maxDD = math.Min(maxDD, dd)
	})
	return figureOf(maxDD, err)
}

// CurrentDrawdown measures the latest observation against the peak of the
// entire series.
func CurrentDrawdown(s Series) Figure {
	if len(s.obs) < 2 {
		return Some(0)
	}
	current := 0.0
	err := walkDrawdown(s.obs, func(_ int, _, dd float64) {
		current = dd
	})
	return figureOf(current, err)
}

// DrawdownEpisodes lists every decline from a peak. An episode begins on the
// last date at the peak, ends at the trough and recovers on the first date the
// peak is reached again.
func DrawdownEpisodes(s Series) []*DrawDown {
	allDrawDowns := []*DrawDown{}

	var drawDown *DrawDown
	var prev time.Time
	err := walkDrawdown(s.obs, func(idx int, _, dd float64) {
		o := s.obs[idx]
		if dd < 0 {
			if drawDown == nil {
				drawDown = &DrawDown{
					Begin:       prev,
					End:         o.Date,
					LossPercent: dd,
				}
			}
			if dd < drawDown.LossPercent {
				drawDown.End = o.Date
				drawDown.LossPercent = dd
			}
		} else if drawDown != nil {
			drawDown.Recovery = o.Date
			allDrawDowns = append(allDrawDowns, drawDown)
			drawDown = nil
		}
		prev = o.Date
	})
	if err != nil {
		return []*DrawDown{}
	}

	if drawDown != nil {
		allDrawDowns = append(allDrawDowns, drawDown)
	}

	return allDrawDowns
}

// TopDrawdowns returns up to n episodes ordered from the deepest loss
func TopDrawdowns(s Series, n int) []*DrawDown {
	if n < 0 {
		n = 0
	}
	allDrawDowns := DrawdownEpisodes(s)
	sort.SliceStable(allDrawDowns, func(i, j int) bool {
		return allDrawDowns[i].LossPercent < allDrawDowns[j].LossPercent
	})
	if n < len(allDrawDowns) {
		allDrawDowns = allDrawDowns[:n]
	}
	return allDrawDowns
}
