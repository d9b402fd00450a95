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

// Command stardict is a CLI front end for package stardict: it loads every
// StarDict dictionary found under a set of search paths and answers prefix
// lookups and article queries against them.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/common-nighthawk/go-figure"
	"github.com/urfave/cli/v2"
	"sigs.k8s.io/release-utils/version"
)

const (
	// ExitCodeSuccess is successful error code.
	ExitCodeSuccess int = iota

	// ExitCodeFlagParseError is the exit code for a flag parsing error.
	ExitCodeFlagParseError

	// ExitCodeUnknownError is the exit code for an unknown error.
	ExitCodeUnknownError
)

// ErrStardict is the base error for all stardict CLI errors.
var ErrStardict = errors.New("stardict")

// ErrFlagParse is a flag parsing error.
var ErrFlagParse = fmt.Errorf("%w: parsing flags", ErrStardict)

// ErrNoDictionaries indicates that no dictionary could be loaded from any of
// the given --path roots.
var ErrNoDictionaries = fmt.Errorf("%w: no dictionaries found", ErrStardict)

func init() {
	// See cmd/dictzip/app.go for why HelpFlag is renamed: `cli` otherwise
	// treats `--help foo` as a missing-command error instead of showing
	// help.
	cli.HelpFlag = &cli.BoolFlag{
		Name:               "d41d8cd98f00b204e980",
		DisableDefaultText: true,
	}
}

// check panics if err is non-nil.
func check(err error) {
	if err != nil {
		panic(err)
	}
}

// must panics if err is non-nil, otherwise returns val.
func must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

var pathFlag = &cli.StringSliceFlag{
	Name:     "path",
	Usage:    "a directory to search for StarDict dictionaries (repeatable)",
	Aliases:  []string{"p"},
	Required: true,
}

func newStardictApp() *cli.App {
	return &cli.App{
		Name:  filepath.Base(os.Args[0]),
		Usage: "Query offline StarDict dictionaries.",
		Description: strings.Join([]string{
			"stardict(1) loads StarDict dictionary files and answers prefix",
			"word lookups and article queries against them.",
			"http://github.com/ianlewis/go-stardict",
		}, "\n"),
		Commands: []*cli.Command{
			newLookupCommand(),
			newArticleCommand(),
			newListCommand(),
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:               "license",
				Usage:              "display software license",
				Aliases:            []string{"L"},
				DisableDefaultText: true,
			},
			&cli.BoolFlag{
				Name:               "help",
				Usage:              "print this help text and exit",
				Aliases:            []string{"h"},
				DisableDefaultText: true,
			},
			&cli.BoolFlag{
				Name:               "version",
				Usage:              "print version information and exit",
				Aliases:            []string{"v"},
				DisableDefaultText: true,
			},
		},
		HideHelp:        true,
		HideHelpCommand: true,
		Copyright:       "Google LLC",
		Action: func(c *cli.Context) error {
			if c.Bool("help") {
				printBanner(c)
				check(cli.ShowAppHelp(c))
				return nil
			}
			if c.Bool("version") {
				return printVersion(c)
			}
			if c.Bool("license") {
				return printLicense(c)
			}
			printBanner(c)
			check(cli.ShowAppHelp(c))
			return nil
		},
		ExitErrHandler: func(c *cli.Context, err error) {
			if err == nil {
				return
			}
			_ = must(fmt.Fprintf(c.App.ErrWriter, "%s: %v\n", c.App.Name, err))
			if errors.Is(err, ErrFlagParse) {
				cli.OsExiter(ExitCodeFlagParseError)
				return
			}
			cli.OsExiter(ExitCodeUnknownError)
		},
	}
}

// printBanner writes the "stardict" ASCII banner.
func printBanner(c *cli.Context) {
	fig := figure.NewFigure("stardict", "", true)
	fig.Print()
}

func printVersion(c *cli.Context) error {
	versionInfo := version.GetVersionInfo()
	_, err := fmt.Fprintf(c.App.Writer, `%s %s
Copyright 2024 Google LLC

%s
`, c.App.Name, versionInfo.GitVersion, versionInfo.String())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStardict, err)
	}
	return nil
}
