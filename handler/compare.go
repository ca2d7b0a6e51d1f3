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

package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/penny-vault/pv-navstats/common"
	"github.com/penny-vault/pv-navstats/observability/opentelemetry"
	"github.com/penny-vault/pv-navstats/portfolio"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

const maxSeriesPerRequest = 25

// Comparer computes comparison results for a request
type Comparer interface {
	Compare(ctx context.Context, req portfolio.Request) ([]portfolio.ComparisonResult, error)
}

type DrawdownResponse struct {
	SeriesID        string                    `json:"id"`
	CurrentDrawdown portfolio.Figure          `json:"currentDrawdown"`
	MaxDrawdown     portfolio.Figure          `json:"maxDrawdown"`
	TopDrawdowns    []*portfolio.DrawDown     `json:"topDrawdowns"`
	Drawdowns       []portfolio.DrawdownPoint `json:"drawdowns"`
}

// splitList flattens repeated and comma separated query values
func splitList(values [][]byte) []string {
	res := make([]string, 0, len(values))
	for _, raw := range values {
		for _, part := range strings.Split(string(raw), ",") {
			if part = strings.TrimSpace(part); part != "" {
				res = append(res, part)
			}
		}
	}
	return res
}

func parseDateParam(c *fiber.Ctx, name string) (time.Time, error) {
	dt, err := common.ParseDate(c.Query(name))
	if err != nil {
		return dt, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%s: %s", name, err))
	}
	return dt, nil
}

func parseRequest(c *fiber.Ctx) (portfolio.Request, error) {
	args := c.Context().QueryArgs()
	req := portfolio.Request{
		IDs:              splitList(args.PeekMulti("id")),
		Benchmark:        strings.TrimSpace(c.Query("benchmark")),
		IncludeDrawdowns: c.Query("drawdowns") == "true",
	}

	if len(req.IDs) == 0 {
		return req, fiber.NewError(fiber.StatusBadRequest, "at least one id is required")
	}
	if len(req.IDs) > maxSeriesPerRequest {
		return req, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("at most %d ids may be compared at once", maxSeriesPerRequest))
	}

	var err error
	if req.Begin, err = parseDateParam(c, "begin"); err != nil {
		return req, err
	}
	if req.End, err = parseDateParam(c, "end"); err != nil {
		return req, err
	}
	if req.AsOf, err = parseDateParam(c, "asOf"); err != nil {
		return req, err
	}

	for _, label := range splitList(args.PeekMulti("period")) {
		p, err := portfolio.ParsePeriod(label)
		if err != nil {
			return req, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		req.Periods = append(req.Periods, p)
	}

	for _, label := range splitList(args.PeekMulti("window")) {
		w, err := portfolio.ParseWindow(label)
		if err != nil {
			return req, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		req.Windows = append(req.Windows, w)
	}

	if req.TopDrawdowns, err = parseTop(c); err != nil {
		return req, err
	}

	return req, nil
}

// parseTop reads the number of drawdown episodes to list; 0 lists none
func parseTop(c *fiber.Ctx) (int, error) {
	top := c.Query("top")
	if top == "" {
		return portfolio.DefaultTopDrawdowns, nil
	}
	n, err := strconv.Atoi(top)
	if err != nil || n < 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "top must be a non-negative integer")
	}
	return n, nil
}

// dataError maps errors from the data layer to a response. Malformed series
// are the caller's data problem and keep their diagnostic.
func dataError(err error) error {
	var malformed *portfolio.MalformedSeriesError
	if errors.As(err, &malformed) || errors.Is(err, portfolio.ErrMalformedSeries) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	return fiber.ErrInternalServerError
}

// Compare returns the comparison results of every requested series
func Compare(cmp Comparer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, span := otel.Tracer(opentelemetry.Name).Start(c.UserContext(), "handler.Compare")
		defer span.End()
		span.SetAttributes(opentelemetry.SpanAttributesFromFiber(c)...)

		req, err := parseRequest(c)
		if err != nil {
			return err
		}

		subLog := log.With().Strs("IDs", req.IDs).Str("Benchmark", req.Benchmark).Str("Endpoint", "Compare").Logger()

		results, err := cmp.Compare(ctx, req)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "comparison failed")
			subLog.Error().Stack().Err(err).Msg("comparison failed")
			return dataError(err)
		}

		return c.JSON(results)
	}
}

// Drawdown returns the drawdown history of a single series
func Drawdown(cmp Comparer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, span := otel.Tracer(opentelemetry.Name).Start(c.UserContext(), "handler.Drawdown")
		defer span.End()
		span.SetAttributes(opentelemetry.SpanAttributesFromFiber(c)...)

		id := c.Params("id")
		subLog := log.With().Str("SeriesID", id).Str("Endpoint", "Drawdown").Logger()

		req := portfolio.Request{
			IDs:              []string{id},
			IncludeDrawdowns: true,
			Periods:          []portfolio.Period{portfolio.SinceInception},
		}

		var err error
		if req.AsOf, err = parseDateParam(c, "asOf"); err != nil {
			return err
		}
		if req.TopDrawdowns, err = parseTop(c); err != nil {
			return err
		}

		results, err := cmp.Compare(ctx, req)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "drawdown failed")
			subLog.Error().Stack().Err(err).Msg("could not compute drawdowns")
			return dataError(err)
		}
		if len(results) != 1 || results[0].Observations == 0 {
			return fiber.ErrNotFound
		}

		result := results[0]
		return c.JSON(DrawdownResponse{
			SeriesID:        result.SeriesID,
			CurrentDrawdown: result.CurrentDrawdown,
			MaxDrawdown:     result.MaxDrawdown,
			TopDrawdowns:    result.TopDrawdowns,
			Drawdowns:       result.Drawdowns,
		})
	}
}

// ErrorHandler renders errors as {"error": message}
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
