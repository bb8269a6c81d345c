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

// Package groupby implements split-apply-combine over series and frames:
// observations are partitioned into groups by one or more keys, a
// reduction or transformation runs per group, and the results are
// reassembled into a new series or frame.
package groupby

import (
	"math"
	"math/big"
	"sort"

	"github.com/frrp/pandas/core/index"
	"github.com/frrp/pandas/core/kernels"
)

// Grouper turns observations into dense group ids and describes the
// resulting groups. GroupIndex implements it for key-based groupings,
// BinGroupIndex for ordered bin edges.
type Grouper interface {
	// NGroups is the number of distinct groups, including empty ones.
	NGroups() int
	// Names returns one name per grouping key.
	Names() []string
	// GroupIDs returns one dense group id per observation, -1 for
	// observations that belong to no group.
	GroupIDs() []int64
	// GroupKeys returns the label of each group; multi-key groupings
	// return []any tuples.
	GroupKeys() []any
	// ResultIndex is the axis of a one-row-per-group result.
	ResultIndex() index.Axis
	// FilterEmpty reports whether empty groups are dropped from
	// reduction output.
	FilterEmpty() bool
}

// GroupIndex is the key-based Grouper. Multiple keys are combined by
// mixed-radix encoding of their per-key codes; when the combined key
// space would overflow int64 it falls back to factorizing the code
// tuples directly. Both paths order groups identically, so results do
// not depend on which path ran.
type GroupIndex struct {
	levels  []keyLevel
	compIDs []int64
	ngroups int
	// recon[k][g] is the level-k code of group g.
	recon [][]int64
	sorted bool
}

// NewGroupIndex resolves keys against the axis and builds the grouping
// eagerly. Group order is sorted key order when sorted is true, first
// observation order otherwise.
func newGroupIndex(keys []Key, ax index.Axis, lookup columnLookup, sorted bool) (*GroupIndex, error) {
	levels, err := resolveKeys(keys, ax, lookup, sorted)
	if err != nil {
		return nil, err
	}
	gi := &GroupIndex{levels: levels, sorted: sorted}

	if len(levels) == 1 {
		// Single key: the factorized codes already are dense group ids.
		gi.compIDs = levels[0].labels
		gi.ngroups = len(levels[0].uniques)
		recon := make([]int64, gi.ngroups)
		for g := range recon {
			recon[g] = int64(g)
		}
		gi.recon = [][]int64{recon}
		return gi, nil
	}

	shape := make([]int64, len(levels))
	labelLists := make([][]int64, len(levels))
	for i, lv := range levels {
		shape[i] = int64(len(lv.uniques))
		labelLists[i] = lv.labels
	}

	if shapeFits(shape) {
		obsIDs := encodeGroupIndex(labelLists, shape)
		gi.compIDs, gi.ngroups = compressGroupIndex(obsIDs, sorted)
		uniqueObs := uniqueObsIDs(gi.compIDs, obsIDs, gi.ngroups)
		gi.recon = decodeGroupIndex(uniqueObs, shape)
		return gi, nil
	}

	// The cartesian key space overflows int64. Factorizing the observed
	// code tuples visits only occupied cells; sorted tuple order equals
	// the arithmetic path's sorted order, so downstream results agree.
	compIDs, _, _ := kernels.FactorizeTuples(labelLists, sorted)
	gi.compIDs = compIDs
	ngroups := 0
	for _, id := range compIDs {
		if int(id)+1 > ngroups {
			ngroups = int(id) + 1
		}
	}
	gi.ngroups = ngroups
	mapper := newKeyMapper(compIDs, labelLists, ngroups)
	gi.recon = mapper.Codes()
	return gi, nil
}

// shapeFits reports whether the cartesian product of the per-key
// cardinalities fits in an int64. The product is taken exactly; no
// wraparound check after the fact.
func shapeFits(shape []int64) bool {
	prod := big.NewInt(1)
	for _, s := range shape {
		prod.Mul(prod, big.NewInt(s))
	}
	return prod.Cmp(big.NewInt(math.MaxInt64)) <= 0
}

// encodeGroupIndex combines parallel code slices into one flat id per
// observation using row-major strides over shape. Any -1 component makes
// the whole observation -1.
func encodeGroupIndex(labelLists [][]int64, shape []int64) []int64 {
	n := len(labelLists[0])
	strides := make([]int64, len(shape))
	strides[len(shape)-1] = 1
	for i := len(shape) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * shape[i+1]
	}
	out := make([]int64, n)
	for i := 0; i < n; i++ {
		var id int64
		for k, labels := range labelLists {
			if labels[i] < 0 {
				id = -1
				break
			}
			id += labels[i] * strides[k]
		}
		out[i] = id
	}
	return out
}

// decodeGroupIndex recovers per-key codes from flat ids, inverting
// encodeGroupIndex for the same shape.
func decodeGroupIndex(obsIDs []int64, shape []int64) [][]int64 {
	strides := make([]int64, len(shape))
	strides[len(shape)-1] = 1
	for i := len(shape) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * shape[i+1]
	}
	out := make([][]int64, len(shape))
	for k := range out {
		out[k] = make([]int64, len(obsIDs))
	}
	for i, id := range obsIDs {
		for k := range shape {
			out[k][i] = id / strides[k]
			id %= strides[k]
		}
	}
	return out
}

// compressGroupIndex maps sparse flat ids to dense group ids. With
// sorted set, dense ids follow ascending flat id order; otherwise first
// observation order.
func compressGroupIndex(obsIDs []int64, sorted bool) ([]int64, int) {
	seen := make(map[int64]int64)
	order := make([]int64, 0)
	for _, id := range obsIDs {
		if id < 0 {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = int64(len(order))
			order = append(order, id)
		}
	}
	if sorted {
		sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
		for rank, id := range order {
			seen[id] = int64(rank)
		}
	}
	compIDs := make([]int64, len(obsIDs))
	for i, id := range obsIDs {
		if id < 0 {
			compIDs[i] = -1
			continue
		}
		compIDs[i] = seen[id]
	}
	return compIDs, len(order)
}

// uniqueObsIDs returns the flat id of each dense group, indexed by
// group id.
func uniqueObsIDs(compIDs, obsIDs []int64, ngroups int) []int64 {
	out := make([]int64, ngroups)
	filled := make([]bool, ngroups)
	remaining := ngroups
	for i, c := range compIDs {
		if c < 0 || filled[c] {
			continue
		}
		out[c] = obsIDs[i]
		filled[c] = true
		if remaining--; remaining == 0 {
			break
		}
	}
	return out
}

// NGroups implements Grouper.
func (gi *GroupIndex) NGroups() int { return gi.ngroups }

// NKeys is the number of grouping keys.
func (gi *GroupIndex) NKeys() int { return len(gi.levels) }

// Names implements Grouper.
func (gi *GroupIndex) Names() []string {
	names := make([]string, len(gi.levels))
	for i, lv := range gi.levels {
		names[i] = lv.name
	}
	return names
}

// GroupIDs implements Grouper.
func (gi *GroupIndex) GroupIDs() []int64 { return gi.compIDs }

// GroupKeys implements Grouper.
func (gi *GroupIndex) GroupKeys() []any {
	keys := make([]any, gi.ngroups)
	if len(gi.levels) == 1 {
		uniques := gi.levels[0].uniques
		for g := 0; g < gi.ngroups; g++ {
			keys[g] = uniques[gi.recon[0][g]]
		}
		return keys
	}
	for g := 0; g < gi.ngroups; g++ {
		tuple := make([]any, len(gi.levels))
		for k, lv := range gi.levels {
			tuple[k] = lv.uniques[gi.recon[k][g]]
		}
		keys[g] = tuple
	}
	return keys
}

// ResultIndex implements Grouper. Single-key groupings get a flat index
// named after the key; multi-key groupings get a multi-level index with
// one level per key.
func (gi *GroupIndex) ResultIndex() index.Axis {
	if len(gi.levels) == 1 {
		return index.New(gi.levels[0].uniques, gi.levels[0].name)
	}
	names := gi.Names()
	levels := make([][]any, len(gi.levels))
	codes := make([][]int, len(gi.levels))
	for k, lv := range gi.levels {
		levels[k] = lv.uniques
		codes[k] = make([]int, gi.ngroups)
		for g := 0; g < gi.ngroups; g++ {
			codes[k][g] = int(gi.recon[k][g])
		}
	}
	mi, err := index.FromCodes(levels, codes, names)
	if err != nil {
		// Levels and codes are built in parallel above; lengths cannot
		// disagree.
		panic(err)
	}
	return mi
}

// FilterEmpty implements Grouper. Key-based groupings only materialize
// observed key combinations with at least one row, except that all-NaN
// groups still occupy a slot; reductions drop them.
func (gi *GroupIndex) FilterEmpty() bool { return true }

// Sizes returns the number of observations per group, missing
// observations excluded.
func (gi *GroupIndex) Sizes() []int64 {
	sizes := make([]int64, gi.ngroups)
	for _, c := range gi.compIDs {
		if c >= 0 {
			sizes[c]++
		}
	}
	return sizes
}

// exclusions lists columns consumed as keys, to be dropped from
// aggregation candidates.
func (gi *GroupIndex) exclusions() map[string]bool {
	out := make(map[string]bool)
	for _, lv := range gi.levels {
		if lv.exclude != "" {
			out[lv.exclude] = true
		}
	}
	return out
}
