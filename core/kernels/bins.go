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

package kernels

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Closed selects which edge of a bin owns a value that falls exactly on it.
type Closed int

const (
	// ClosedLeft puts a value equal to a bin's right edge into the next bin.
	ClosedLeft Closed = iota
	// ClosedRight keeps a value equal to a bin's right edge in that bin.
	ClosedRight
)

// GenerateBins produces, for each bin, the offset into values where the next
// bin begins. Both values and edges must be sorted ascending; every value
// must fall within [edges[0], edges[len-1]] or an error is returned. The
// result has len(edges)-1 entries: bin i covers values[bins[i-1]:bins[i]]
// with bins[-1] taken as 0.
func GenerateBins[T constraints.Ordered](values []T, edges []T, closed Closed) ([]int64, error) {
	if len(values) == 0 || len(edges) < 2 {
		return nil, fmt.Errorf("invalid length for values (%d) or for edges (%d)", len(values), len(edges))
	}
	if values[0] < edges[0] {
		return nil, fmt.Errorf("value %v falls before first edge %v", values[0], edges[0])
	}
	if values[len(values)-1] > edges[len(edges)-1] {
		return nil, fmt.Errorf("value %v falls after last edge %v", values[len(values)-1], edges[len(edges)-1])
	}

	bins := make([]int64, len(edges)-1)
	j := 0
	for i := 0; i < len(edges)-1; i++ {
		right := edges[i+1]
		for j < len(values) && (values[j] < right || (closed == ClosedRight && values[j] == right)) {
			j++
		}
		bins[i] = int64(j)
	}
	return bins, nil
}

// BinGroupIDs expands bin end offsets into a per-observation group id array,
// so bin-keyed aggregation can run through the same kernels as label-keyed
// aggregation. Observations at or past the last offset attach to the last
// bin.
func BinGroupIDs(bins []int64, n int) []int64 {
	ids := make([]int64, n)
	g := int64(0)
	last := int64(len(bins) - 1)
	for i := 0; i < n; i++ {
		for g < last && int64(i) >= bins[g] {
			g++
		}
		ids[i] = g
	}
	return ids
}
