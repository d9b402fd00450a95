// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/ianlewis/go-stardict/stardict"
)

// loadController synchronously loads every dictionary found under c's
// --path roots and returns the ready Controller. The CLI is one-shot, so
// there's no value in exposing Controller's async loading to the user; this
// just blocks on the DictionariesLoaded event.
func loadController(c *cli.Context) (*stardict.Controller, error) {
	paths := c.StringSlice("path")
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: at least one --path is required", ErrFlagParse)
	}

	ctrl := stardict.NewController(c.Int("max-words"))

	done := make(chan string, 1)
	ctrl.Events.DictionariesLoaded = func(message string) {
		done <- message
	}

	ctrl.LoadDictionaries(context.Background(), paths)
	message := <-done
	fmt.Fprintln(c.App.ErrWriter, message)

	if len(ctrl.LoadedDictionaries()) == 0 {
		return nil, ErrNoDictionaries
	}
	return ctrl, nil
}

var maxWordsFlag = &cli.IntFlag{
	Name:  "max-words",
	Usage: "maximum number of results to return",
	Value: 10000,
}
