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

package data

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/penny-vault/pv-navstats/portfolio"
	"github.com/rs/zerolog/log"
)

// FileSource reads NAV histories from JSON documents stored in a directory.
// Each series lives in <Dir>/<id>.json as an array of {"date", "nav"} objects
// with dates formatted as YYYY-MM-DD.
type FileSource struct {
	Dir string
}

type navRecord struct {
	Date string  `json:"date"`
	NAV  float64 `json:"nav"`
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{Dir: dir}
}

func (f *FileSource) path(id string) (string, error) {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidSeriesID, id)
	}
	return filepath.Join(f.Dir, id+".json"), nil
}

// NAVSeries loads the observations of id that fall between begin and end
func (f *FileSource) NAVSeries(ctx context.Context, id string, begin, end time.Time) (portfolio.Series, error) {
	subLog := log.With().Str("SeriesID", id).Str("Dir", f.Dir).Logger()

	if end.Before(begin) {
		return portfolio.Series{}, ErrInvalidTimeRange
	}

	fn, err := f.path(id)
	if err != nil {
		return portfolio.Series{}, err
	}

	raw, err := os.ReadFile(fn)
	if errors.Is(err, fs.ErrNotExist) {
		return portfolio.Series{}, fmt.Errorf("%w: %s", portfolio.ErrSeriesNotFound, id)
	}
	if err != nil {
		subLog.Error().Err(err).Msg("could not read nav history file")
		return portfolio.Series{}, err
	}

	records := make([]navRecord, 0, 256)
	if err := json.Unmarshal(raw, &records); err != nil {
		subLog.Error().Err(err).Msg("could not decode nav history file")
		return portfolio.Series{}, err
	}

	observations := make([]portfolio.Observation, 0, len(records))
	for idx, rec := range records {
		dt, err := time.Parse("2006-01-02", rec.Date)
		if err != nil {
			return portfolio.Series{}, &portfolio.MalformedSeriesError{
				SeriesID: id,
				Index:    idx,
				Field:    "date",
				Reason:   fmt.Sprintf("%s: %q", ErrInvalidDate, rec.Date),
			}
		}
		if dt.Before(begin) || dt.After(end) {
			continue
		}
		observations = append(observations, portfolio.Observation{Date: dt, NAV: rec.NAV})
	}

	subLog.Debug().Int("NumRecords", len(records)).Int("NumObservations", len(observations)).Msg("loaded nav history file")
	return portfolio.NewSeries(id, observations)
}
