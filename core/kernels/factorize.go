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
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
)

// IsMissing reports whether v counts as a missing key value. nil and NaN are
// the only missing markers.
func IsMissing(v any) bool {
	if v == nil {
		return true
	}
	switch f := v.(type) {
	case float64:
		return math.IsNaN(f)
	case float32:
		return math.IsNaN(float64(f))
	}
	return false
}

// Compare imposes a total order on label values so mixed-type key arrays can
// still be sorted deterministically: bools sort before numbers, numbers
// before strings, anything else after strings by its formatted form. Within
// the numeric class all widths compare through float64.
func Compare(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return ra - rb
	}
	switch ra {
	case rankBool:
		av, bv := a.(bool), b.(bool)
		if av == bv {
			return 0
		}
		if !av {
			return -1
		}
		return 1
	case rankNumber:
		av, _ := AsFloat64(a)
		bv, _ := AsFloat64(b)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case rankString:
		return strings.Compare(a.(string), b.(string))
	default:
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}

const (
	rankBool = iota
	rankNumber
	rankString
	rankOther
)

func typeRank(v any) int {
	switch v.(type) {
	case bool:
		return rankBool
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return rankNumber
	case string:
		return rankString
	}
	return rankOther
}

// AsFloat64 coerces a numeric or boolean value to float64.
func AsFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// Factorize assigns each value a small integer label and returns the ordered
// distinct values plus per-distinct occurrence counts. With sorted=true the
// uniques come out ascending; otherwise in first-occurrence order. NaN
// values (for float types) receive label -1 and are not counted.
func Factorize[T constraints.Ordered](values []T, sorted bool) (labels []int64, uniques []T, counts []int64) {
	labels = make([]int64, len(values))
	table := make(map[T]int64, len(values))
	for i, v := range values {
		if isNaNOrdered(v) {
			labels[i] = -1
			continue
		}
		id, ok := table[v]
		if !ok {
			id = int64(len(uniques))
			table[v] = id
			uniques = append(uniques, v)
			counts = append(counts, 0)
		}
		labels[i] = id
		counts[id]++
	}
	if sorted && len(uniques) > 0 {
		order := make([]int, len(uniques))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool { return uniques[order[a]] < uniques[order[b]] })
		uniques, counts, labels = reorderUniques(uniques, counts, labels, order)
	}
	return labels, uniques, counts
}

// isNaNOrdered reports NaN for the float instantiations of Factorize.
func isNaNOrdered[T constraints.Ordered](v T) bool {
	return v != v
}

// FactorizeAny is the dynamic-typed counterpart of Factorize. Values must be
// comparable Go values; nil and NaN are missing (label -1). Ascending order
// follows Compare.
func FactorizeAny(values []any, sorted bool) (labels []int64, uniques []any, counts []int64) {
	labels = make([]int64, len(values))
	table := make(map[any]int64, len(values))
	for i, v := range values {
		if IsMissing(v) {
			labels[i] = -1
			continue
		}
		id, ok := table[v]
		if !ok {
			id = int64(len(uniques))
			table[v] = id
			uniques = append(uniques, v)
			counts = append(counts, 0)
		}
		labels[i] = id
		counts[id]++
	}
	if sorted && len(uniques) > 0 {
		order := make([]int, len(uniques))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool { return Compare(uniques[order[a]], uniques[order[b]]) < 0 })
		uniques, counts, labels = reorderUniques(uniques, counts, labels, order)
	}
	return labels, uniques, counts
}

// FactorizeTuples factorizes per-observation label tuples as opaque units.
// labelLists holds one label array per key; observation i's tuple is
// (labelLists[0][i], ..., labelLists[k-1][i]). A -1 in any component marks
// the whole tuple missing. With sorted=true the distinct tuples come out in
// ascending lexicographic order, which matches the ascending order of the
// arithmetic mixed-radix encoding of the same tuples.
func FactorizeTuples(labelLists [][]int64, sorted bool) (labels []int64, uniques [][]int64, counts []int64) {
	if len(labelLists) == 0 {
		return nil, nil, nil
	}
	n := len(labelLists[0])
	labels = make([]int64, n)
	table := make(map[string]int64, n)
	var sb strings.Builder
	for i := 0; i < n; i++ {
		missing := false
		sb.Reset()
		for k, list := range labelLists {
			if list[i] < 0 {
				missing = true
				break
			}
			if k > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatInt(list[i], 10))
		}
		if missing {
			labels[i] = -1
			continue
		}
		key := sb.String()
		id, ok := table[key]
		if !ok {
			id = int64(len(uniques))
			table[key] = id
			tuple := make([]int64, len(labelLists))
			for k, list := range labelLists {
				tuple[k] = list[i]
			}
			uniques = append(uniques, tuple)
			counts = append(counts, 0)
		}
		labels[i] = id
		counts[id]++
	}
	if sorted && len(uniques) > 0 {
		order := make([]int, len(uniques))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool { return tupleLess(uniques[order[a]], uniques[order[b]]) })
		uniques, counts, labels = reorderUniques(uniques, counts, labels, order)
	}
	return labels, uniques, counts
}

func tupleLess(a, b []int64) bool {
	for k := range a {
		if a[k] != b[k] {
			return a[k] < b[k]
		}
	}
	return false
}

// reorderUniques applies a new unique ordering and remaps labels to it.
func reorderUniques[T any](uniques []T, counts []int64, labels []int64, order []int) ([]T, []int64, []int64) {
	newUniques := make([]T, len(uniques))
	newCounts := make([]int64, len(counts))
	remap := make([]int64, len(uniques))
	for newID, oldID := range order {
		newUniques[newID] = uniques[oldID]
		newCounts[newID] = counts[oldID]
		remap[oldID] = int64(newID)
	}
	for i, lab := range labels {
		if lab >= 0 {
			labels[i] = remap[lab]
		}
	}
	return newUniques, newCounts, labels
}
