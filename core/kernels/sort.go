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

// GroupSort stably sorts observation positions by group id using a counting
// sort, O(n + ngroups). Observations with id -1 (no group) come first in the
// permutation and are excluded from every group's span. starts and ends give
// each group's contiguous [start, end) window into the permuted order;
// observations keep their original relative order within a group.
func GroupSort(groupIDs []int64, ngroups int) (indexer []int, starts, ends []int) {
	n := len(groupIDs)
	counts := make([]int, ngroups+1)
	for _, g := range groupIDs {
		counts[g+1]++
	}
	offsets := make([]int, ngroups+1)
	running := 0
	for g := 0; g <= ngroups; g++ {
		offsets[g] = running
		running += counts[g]
	}
	starts = make([]int, ngroups)
	ends = make([]int, ngroups)
	for g := 0; g < ngroups; g++ {
		starts[g] = offsets[g+1]
		ends[g] = offsets[g+1] + counts[g+1]
	}
	indexer = make([]int, n)
	for i, g := range groupIDs {
		indexer[offsets[g+1]] = i
		offsets[g+1]++
	}
	return indexer, starts, ends
}

// ReduceGroups invokes fn once per group over its sorted [start, end) window
// and collects one float64 per group. Groups are visited in ascending id
// order; counts receives each group's window width. The first fn error
// aborts the pass.
func ReduceGroups(starts, ends []int, fn func(start, end int) (float64, error)) (out []float64, counts []int64, err error) {
	ngroups := len(starts)
	out = make([]float64, ngroups)
	counts = make([]int64, ngroups)
	for g := 0; g < ngroups; g++ {
		v, err := fn(starts[g], ends[g])
		if err != nil {
			return nil, nil, err
		}
		out[g] = v
		counts[g] = int64(ends[g] - starts[g])
	}
	return out, counts, nil
}
