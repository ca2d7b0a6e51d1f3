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

package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NewLogger creates a middleware handler that writes one zerolog event per
// request
func NewLogger() fiber.Handler {
	var (
		once       sync.Once
		errHandler fiber.ErrorHandler
	)

	return func(c *fiber.Ctx) (err error) {
		once.Do(func() {
			errHandler = c.App().Config().ErrorHandler
		})

		start := time.Now()

		chainErr := c.Next()
		if chainErr != nil {
			if err := errHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		latency := time.Since(start).Round(time.Millisecond)
		code := c.Response().StatusCode()

		var event *zerolog.Event
		var msg string
		switch {
		case code >= fiber.StatusOK && code < fiber.StatusMultipleChoices:
			event, msg = log.Info(), "processed HTTP request"
		case code >= fiber.StatusMultipleChoices && code < fiber.StatusBadRequest:
			event, msg = log.Info(), "forward HTTP request"
		case code >= fiber.StatusBadRequest && code < fiber.StatusInternalServerError:
			event, msg = log.Warn(), "bad HTTP request"
		default:
			event, msg = log.Error(), "internal server error"
		}

		event.
			Int("StatusCode", code).
			Dur("Latency", latency).
			Str("IP", c.IP()).
			Str("Method", c.Method()).
			Str("Path", c.Path()).
			Str("Referer", c.Get(fiber.HeaderReferer)).
			Str("Protocol", c.Protocol()).
			Str("XForwardedFor", c.Get(fiber.HeaderXForwardedFor)).
			Str("Host", c.Hostname()).
			Str("URL", c.OriginalURL()).
			Str("UserAgent", c.Get(fiber.HeaderUserAgent)).
			Int("NumBytesSent", len(c.Response().Body())).
			Str("Route", c.Route().Path).
			Str("QueryStringParams", c.Request().URI().QueryArgs().String())

		if chainErr != nil {
			event = event.Err(chainErr)
		}
		event.Msg(msg)

		return nil
	}
}
