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

// Package stardict loads and queries StarDict-format dictionaries: the
// `.ifo`/`.idx[.gz]`/`.dict[.dz]` file triples produced by dictd, GoldenDict,
// and similar tools.
//
// A [Controller] discovers dictionaries under a set of search paths, loads
// them in parallel, and answers prefix lookups and article lookups fanned
// out across every loaded dictionary. Package dictzip (the parent package
// of this module) supplies random-access decompression for the `.dict.dz`
// article store.
package stardict

import (
	"errors"
	"fmt"
)

// errStardict is the base error for all package stardict errors.
var errStardict = errors.New("stardict")

// ErrIfoInvalid indicates a malformed or unrecognized .ifo file.
var ErrIfoInvalid = fmt.Errorf("%w: invalid ifo file", errStardict)

// ErrIndexMismatch indicates the decompressed .idx size did not match the
// size declared by the .ifo file, or that an index record does not
// terminate properly.
var ErrIndexMismatch = fmt.Errorf("%w: index size mismatch", errStardict)

// ErrFormatMalformed indicates an article entry's framing underflowed the
// remaining blob.
var ErrFormatMalformed = fmt.Errorf("%w: malformed article entry", errStardict)
