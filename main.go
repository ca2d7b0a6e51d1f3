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

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/penny-vault/pv-navstats/cmd"
	"github.com/spf13/viper"
)

func configureViper() {
	viper.SetConfigName("config")
	viper.SetConfigType("toml")
	viper.AddConfigPath("/etc/pv-navstats/")
	viper.AddConfigPath("$HOME/.config/pv-navstats")
	viper.AddConfigPath(".")

	// flags and environment variables are enough to run without a file
	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		fmt.Fprintf(os.Stderr, "fatal error config file: %s\n", err)
		os.Exit(1)
	}
}

func main() {
	configureViper()
	cmd.Execute()
}
