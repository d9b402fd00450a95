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
	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"
)

func newListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "list the dictionaries found under the given search paths",
		Flags: []cli.Flag{
			pathFlag,
		},
		Action: func(c *cli.Context) error {
			ctrl, err := loadController(c)
			if err != nil {
				return err
			}

			tbl := table.New("dictionary")
			for _, d := range ctrl.LoadedDictionaries() {
				tbl.AddRow(d)
			}
			tbl.Print()
			return nil
		},
	}
}
