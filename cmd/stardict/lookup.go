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
	"fmt"

	"github.com/urfave/cli/v2"
)

func newLookupCommand() *cli.Command {
	return &cli.Command{
		Name:      "lookup",
		Usage:     "list headwords starting with a prefix",
		ArgsUsage: "PREFIX",
		Flags: []cli.Flag{
			pathFlag,
			maxWordsFlag,
			&cli.BoolFlag{
				Name:  "suppress-multiforms",
				Usage: "collapse headwords that share an article into a single result",
			},
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 1 {
				return fmt.Errorf("%w: lookup takes exactly one PREFIX argument", ErrFlagParse)
			}
			ctrl, err := loadController(c)
			if err != nil {
				return err
			}
			words := ctrl.Lookup(c.Args().First(), c.Bool("suppress-multiforms"), c.Int("max-words"))
			for _, w := range words {
				fmt.Fprintln(c.App.Writer, w)
			}
			return nil
		},
	}
}
