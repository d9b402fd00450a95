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

func newArticleCommand() *cli.Command {
	return &cli.Command{
		Name:      "article",
		Usage:     "print the rendered HTML article for an exact headword",
		ArgsUsage: "WORD",
		Flags: []cli.Flag{
			pathFlag,
			&cli.BoolFlag{
				Name:  "dict-names",
				Usage: "prepend each dictionary's name as a header",
				Value: true,
			},
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 1 {
				return fmt.Errorf("%w: article takes exactly one WORD argument", ErrFlagParse)
			}
			ctrl, err := loadController(c)
			if err != nil {
				return err
			}
			html := ctrl.Article(c.Args().First(), c.Bool("dict-names"))
			if html == "" {
				return fmt.Errorf("%w: no article found for %q", ErrStardict, c.Args().First())
			}
			fmt.Fprintln(c.App.Writer, html)
			return nil
		},
	}
}
