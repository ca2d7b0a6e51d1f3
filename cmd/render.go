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

package cmd

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/penny-vault/pv-navstats/common"
	"github.com/penny-vault/pv-navstats/portfolio"
	"github.com/shopspring/decimal"
)

var monthHeaders = []string{"Year", "Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec", "Total"}

func newTable(w io.Writer, title string, header []string) *tablewriter.Table {
	fmt.Fprintf(w, "\n%s\n", title)
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	return table
}

func formatDate(dt time.Time) string {
	if dt.IsZero() {
		return "-"
	}
	return dt.Format(common.DateFormat)
}

func formatFloat(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// renderComparison writes the comparison results as a set of text tables
func renderComparison(w io.Writer, results []portfolio.ComparisonResult) {
	if len(results) == 0 {
		return
	}

	summary := newTable(w, "Summary", []string{"Series", "Start", "End", "Observations", "Latest NAV", "Current DD %", "Max DD %"})
	for _, r := range results {
		summary.Append([]string{
			r.SeriesID,
			formatDate(r.StartDate),
			formatDate(r.EndDate),
			strconv.Itoa(r.Observations),
			r.LatestNAV.String(),
			r.CurrentDrawdown.String(),
			r.MaxDrawdown.String(),
		})
	}
	summary.Render()

	header := []string{"Series"}
	for _, tr := range results[0].Trailing {
		header = append(header, tr.Period.String())
	}
	trailing := newTable(w, "Trailing Returns %", header)
	for _, r := range results {
		row := []string{r.SeriesID}
		for _, tr := range r.Trailing {
			row = append(row, tr.Value.String())
		}
		trailing.Append(row)
	}
	trailing.Render()

	rolling := newTable(w, "Rolling Returns %", []string{"Series", "Window", "Average", "High", "Low", "Count"})
	for _, r := range results {
		for _, rs := range r.Rolling {
			rolling.Append([]string{r.SeriesID, rs.Window.String(), rs.Avg.String(), rs.High.String(), rs.Low.String(), strconv.Itoa(rs.Count)})
		}
	}
	rolling.Render()

	annual := newTable(w, "Calendar Year Returns %", []string{"Series", "Year", "Return", "End Balance"})
	for _, r := range results {
		for _, am := range r.Annual {
			annual.Append([]string{r.SeriesID, strconv.Itoa(am.Year), am.Return.String(), formatFloat(am.EndBalance)})
		}
	}
	annual.Render()

	for _, r := range results {
		if len(r.Monthly) == 0 {
			continue
		}
		monthly := newTable(w, fmt.Sprintf("Monthly Returns %% (%s)", r.SeriesID), monthHeaders)
		for _, row := range r.Monthly {
			cells := make([]string, 0, len(monthHeaders))
			cells = append(cells, strconv.Itoa(row.Year))
			for _, m := range row.Months {
				cells = append(cells, m.String())
			}
			cells = append(cells, row.Total.String())
			monthly.Append(cells)
		}
		monthly.Render()
	}

	drawdowns := newTable(w, "Largest Drawdowns", []string{"Series", "Begin", "Trough", "Recovery", "Loss %"})
	for _, r := range results {
		for _, dd := range r.TopDrawdowns {
			drawdowns.Append([]string{r.SeriesID, formatDate(dd.Begin), formatDate(dd.End), formatDate(dd.Recovery), formatFloat(dd.LossPercent)})
		}
	}
	drawdowns.Render()

	risk := newTable(w, "Risk", []string{"Series", "Std Dev %", "Max DD %", "Sharpe", "Sortino", "Treynor", "Calmar", "Alpha %", "Beta"})
	for _, r := range results {
		rs := r.Risk
		risk.Append([]string{
			r.SeriesID,
			rs.StdDev.String(),
			rs.MaxDrawdown.String(),
			rs.Sharpe.String(),
			rs.Sortino.String(),
			rs.Treynor.String(),
			rs.Calmar.String(),
			rs.Alpha.String(),
			rs.Beta.String(),
		})
	}
	risk.Render()
}
