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

package database

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type PgxIface interface {
	Begin(context.Context) (pgx.Tx, error)
}

var (
	ErrEmptyRole    = errors.New("role cannot be an empty string")
	ErrNotConnected = errors.New("database pool has not been configured")
)

var (
	pool             PgxIface
	openTransactions map[string]string
	trxMu            sync.Mutex
)

func trackTransaction(id, caller string) {
	trxMu.Lock()
	defer trxMu.Unlock()
	openTransactions[id] = caller
}

func untrackTransaction(id string) {
	trxMu.Lock()
	defer trxMu.Unlock()
	delete(openTransactions, id)
}

func SetPool(myPool PgxIface) {
	trxMu.Lock()
	defer trxMu.Unlock()
	openTransactions = make(map[string]string)
	pool = myPool
}

// Connect opens a pool against database.url and pings the server
func Connect(ctx context.Context) error {
	cfg, err := pgxpool.ParseConfig(viper.GetString("database.url"))
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not parse database url")
		return err
	}
	if maxConns := viper.GetInt32("database.max_conns"); maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	myPool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not connect to pool")
		return err
	}
	if err = myPool.Ping(ctx); err != nil {
		log.Error().Stack().Err(err).Msg("could not ping database server")
		return err
	}
	SetPool(myPool)
	return nil
}

// Configured reports whether a pool has been installed with SetPool or Connect
func Configured() bool {
	trxMu.Lock()
	defer trxMu.Unlock()
	return pool != nil
}

// OpenTransactions returns the number of transactions that have been started
// but neither committed nor rolled back
func OpenTransactions() int {
	trxMu.Lock()
	defer trxMu.Unlock()
	return len(openTransactions)
}

// LogOpenTransactions writes an INFO log for each open transaction
func LogOpenTransactions() {
	trxMu.Lock()
	defer trxMu.Unlock()
	for k, v := range openTransactions {
		log.Info().Str("TrxId", k).Str("Caller", v).Msg("open transaction")
	}
}

// TrxForUser creates a transaction running as role. NAV histories and the
// trading calendar are readable by the pvuser role; the login role only needs
// permission to switch to it.
func TrxForUser(ctx context.Context, role string) (pgx.Tx, error) {
	if role == "" {
		log.Error().Stack().Msg("role cannot be an empty string")
		return nil, ErrEmptyRole
	}

	trxMu.Lock()
	myPool := pool
	trxMu.Unlock()
	if myPool == nil {
		return nil, ErrNotConnected
	}

	trx, err := myPool.Begin(ctx)
	if err != nil {
		return nil, err
	}

	// record transactions in openTransaction log
	_, file, lineno, ok := runtime.Caller(1)
	caller := fmt.Sprintf("[%v] %s:%d", ok, file, lineno)
	trxID := uuid.New().String()
	trackTransaction(trxID, caller)

	wrappedTrx := &PvDbTx{
		id:   trxID,
		user: role,
		tx:   trx,
	}

	ident := pgx.Identifier{role}
	sql := fmt.Sprintf("SET ROLE %s", ident.Sanitize())
	if _, err = wrappedTrx.Exec(ctx, sql); err != nil {
		log.Error().Stack().Err(err).Str("Role", role).Msg("could not switch role")
		if err := wrappedTrx.Rollback(ctx); err != nil {
			log.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return nil, err
	}

	return wrappedTrx, nil
}
