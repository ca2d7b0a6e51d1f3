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
	"bytes"
	"math"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

const outputPrecision = 2

// Figure is a metric value that may be unavailable. Values keep full precision
// and are rounded only when rendered.
type Figure struct {
	Value float64
	Valid bool
}

// NA is the unavailable figure
var NA = Figure{}

// Some wraps v; non-finite values become NA
func Some(v float64) Figure {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NA
	}
	return Figure{Value: v, Valid: true}
}

func figureOf(v float64, err error) Figure {
	if err != nil {
		return NA
	}
	return Some(v)
}

// Rounded returns the value rounded to two decimals, or NaN when unavailable
func (f Figure) Rounded() float64 {
	if !f.Valid {
		return math.NaN()
	}
	return decimal.NewFromFloat(f.Value).Round(outputPrecision).InexactFloat64()
}

func (f Figure) String() string {
	if !f.Valid {
		return "N/A"
	}
	return decimal.NewFromFloat(f.Value).StringFixed(outputPrecision)
}

func (f Figure) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(decimal.NewFromFloat(f.Value).StringFixed(outputPrecision)), nil
}

func (f *Figure) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = NA
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Some(v)
	return nil
}
