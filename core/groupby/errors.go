/*
SPDX-License-Identifier: Apache-2.0

Copyright 2025 The Pandas Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package groupby

import "errors"

var (
	// ErrConfiguration marks an invalid grouping setup: no keys, a key that
	// does not fit the target axis, or an option combination the target
	// type does not support. Raised at construction.
	ErrConfiguration = errors.New("groupby: invalid configuration")

	// ErrNoEligibleData is returned when every candidate column fails a
	// kernel reduction's type requirement. Multi-column callers catch it
	// with errors.Is and drop the offending column instead of aborting.
	ErrNoEligibleData = errors.New("groupby: no numeric types to aggregate")

	// ErrReductionShape is returned when an aggregation function produced a
	// per-group result that is not a single reduced value.
	ErrReductionShape = errors.New("groupby: function does not reduce")

	// ErrUnsupportedArity is returned when a multi-column reduction kind is
	// requested against input that cannot hold its output.
	ErrUnsupportedArity = errors.New("groupby: multi-column reduction not implemented for this input")
)
