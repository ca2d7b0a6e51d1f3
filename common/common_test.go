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

package common_test

import (
	"context"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-navstats/common"
)

var _ = Describe("Cache", func() {
	var (
		cache *common.Cache
		ctx   context.Context
	)

	BeforeEach(func() {
		var err error
		cache, err = common.NewCache(2, nil, time.Minute)
		Expect(err).To(BeNil())
		ctx = context.Background()
	})

	It("round trips compressed values", func() {
		payload := []byte(strings.Repeat("nav history ", 100))
		Expect(cache.Set(ctx, "a", payload)).To(Succeed())

		val, ok, err := cache.Get(ctx, "a")
		Expect(err).To(BeNil())
		Expect(ok).To(BeTrue())
		Expect(val).To(Equal(payload))
	})

	It("reports a miss without an error", func() {
		val, ok, err := cache.Get(ctx, "missing")
		Expect(err).To(BeNil())
		Expect(ok).To(BeFalse())
		Expect(val).To(BeNil())
	})

	It("evicts the least recently used entry", func() {
		Expect(cache.Set(ctx, "a", []byte("1"))).To(Succeed())
		Expect(cache.Set(ctx, "b", []byte("2"))).To(Succeed())
		_, _, _ = cache.Get(ctx, "a")
		Expect(cache.Set(ctx, "c", []byte("3"))).To(Succeed())

		_, ok, _ := cache.Get(ctx, "b")
		Expect(ok).To(BeFalse())
		_, ok, _ = cache.Get(ctx, "a")
		Expect(ok).To(BeTrue())
		Expect(cache.Len()).To(Equal(2))
	})
})

var _ = Describe("ParseDate", func() {
	It("parses ISO dates", func() {
		dt, err := common.ParseDate("2024-03-15")
		Expect(err).To(BeNil())
		Expect(dt).To(Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)))
	})

	It("treats an empty string as unset", func() {
		dt, err := common.ParseDate("")
		Expect(err).To(BeNil())
		Expect(dt.IsZero()).To(BeTrue())
	})

	It("rejects other layouts", func() {
		_, err := common.ParseDate("03/15/2024")
		Expect(errors.Is(err, common.ErrInvalidDate)).To(BeTrue())
	})
})

var _ = Describe("Version", func() {
	It("includes dependencies only on request", func() {
		Expect(common.BuildVersionString(false)).To(HavePrefix("pvnav v"))
		Expect(common.BuildVersionString(false)).NotTo(ContainSubstring("Dependencies:"))
		Expect(common.BuildVersionString(true)).To(ContainSubstring("Dependencies:"))
	})
})

var _ = Describe("Compression", func() {
	It("restores repetitive payloads", func() {
		payload := []byte(strings.Repeat(`{"date":"2024-01-02","nav":102.5},`, 200))
		packed, err := common.Compress(payload)
		Expect(err).To(BeNil())
		Expect(len(packed)).To(BeNumerically("<", len(payload)))

		unpacked, err := common.Decompress(packed)
		Expect(err).To(BeNil())
		Expect(unpacked).To(Equal(payload))
	})

	It("rejects data that is not an lz4 frame", func() {
		_, err := common.Decompress([]byte("not compressed"))
		Expect(err).To(HaveOccurred())
	})
})
