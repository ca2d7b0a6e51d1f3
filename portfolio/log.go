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
	"github.com/rs/zerolog"
)

func (o *DrawDown) MarshalZerologObject(e *zerolog.Event) {
	e.Time("Begin", o.Begin).Time("End", o.End).Time("RecoveryDate", o.Recovery).Float64("LossPercent", o.LossPercent)
}

func (r ReturnResult) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Period", r.Period.String()).Str("Value", r.Value.String())
	if r.Value.Valid {
		e.Time("StartDate", r.StartDate).Time("EndDate", r.EndDate)
	} else {
		e.Str("Reason", r.Reason)
	}
}

func (risk RiskSummary) MarshalZerologObject(e *zerolog.Event) {
	e.Str("StdDev", risk.StdDev.String())
	e.Str("MaxDrawdown", risk.MaxDrawdown.String())
	e.Str("Sharpe", risk.Sharpe.String())
	e.Str("Sortino", risk.Sortino.String())
	e.Str("Treynor", risk.Treynor.String())
	e.Str("Calmar", risk.Calmar.String())
	e.Str("Alpha", risk.Alpha.String())
	e.Str("Beta", risk.Beta.String())
}

func (result *ComparisonResult) MarshalZerologObject(e *zerolog.Event) {
	e.Str("SeriesID", result.SeriesID).
		Time("StartDate", result.StartDate).
		Time("EndDate", result.EndDate).
		Int("Observations", result.Observations).
		Str("CurrentDrawdown", result.CurrentDrawdown.String()).
		Str("MaxDrawdown", result.MaxDrawdown.String()).
		Object("Risk", result.Risk)
	if si, ok := Lookup(result.Trailing, SinceInception); ok {
		e.Str("SinceInception", si.Value.String())
	}
}
