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
	"errors"
	"fmt"
)

var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrInvalidNAV       = errors.New("nav must be greater than zero")
	ErrMalformedSeries  = errors.New("malformed series")
	ErrUnknownPeriod    = errors.New("unknown period")
	ErrUnknownWindow    = errors.New("unknown rolling window")
	ErrSeriesNotFound   = errors.New("series not found")
)

// MalformedSeriesError names the field of the observation that made a series
// structurally invalid.
type MalformedSeriesError struct {
	SeriesID string
	Index    int
	Field    string
	Reason   string
}

func (e *MalformedSeriesError) Error() string {
	return fmt.Sprintf("malformed series %q: observation %d field %s: %s", e.SeriesID, e.Index, e.Field, e.Reason)
}

func (e *MalformedSeriesError) Unwrap() error {
	return ErrMalformedSeries
}
