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

package common

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Cache is a two level byte cache. Values are lz4 compressed and held in a
// local LRU; when a redis client is configured they are also written through
// to redis with the configured TTL.
type Cache struct {
	local *lru.Cache
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCache(localSize int, rdb *redis.Client, ttl time.Duration) (*Cache, error) {
	if localSize <= 0 {
		localSize = 128
	}
	local, err := lru.New(localSize)
	if err != nil {
		return nil, err
	}
	return &Cache{
		local: local,
		rdb:   rdb,
		ttl:   ttl,
	}, nil
}

// SetupCache builds a Cache from the cache.* configuration keys
func SetupCache() (*Cache, error) {
	var rdb *redis.Client
	if viper.GetBool("cache.redis") {
		opt, err := redis.ParseURL(viper.GetString("cache.redis_url"))
		if err != nil {
			log.Error().Err(err).Msg("could not parse redis URL")
			return nil, err
		}
		rdb = redis.NewClient(opt)
	}

	ttl := time.Duration(viper.GetInt("cache.ttl")) * time.Second
	return NewCache(viper.GetInt("cache.local_size"), rdb, ttl)
}

func (c *Cache) Set(ctx context.Context, key string, data []byte) error {
	compressed, err := Compress(data)
	if err != nil {
		return err
	}
	c.local.Add(key, compressed)

	if c.rdb != nil {
		return c.rdb.Set(ctx, key, compressed, c.ttl).Err()
	}
	return nil
}

// Get returns the cached bytes for key. A miss is reported with ok == false
// and a nil error.
func (c *Cache) Get(ctx context.Context, key string) (data []byte, ok bool, err error) {
	if val, hit := c.local.Get(key); hit {
		data, err = Decompress(val.([]byte))
		return data, err == nil, err
	}

	if c.rdb == nil {
		return nil, false, nil
	}

	val, err := c.rdb.GetEx(ctx, key, c.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	c.local.Add(key, val)
	data, err = Decompress(val)
	return data, err == nil, err
}

func (c *Cache) Len() int {
	return c.local.Len()
}

func (c *Cache) Purge() {
	c.local.Purge()
}
