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

package index

import (
	"fmt"

	"github.com/frrp/pandas/core/kernels"
)

// Multi is a hierarchical index: per-level distinct labels plus
// per-observation level codes. Code -1 marks a missing label on that level.
type Multi struct {
	names  []string
	levels [][]any
	codes  [][]int
}

// FromCodes creates a Multi from pre-built levels and codes.
func FromCodes(levels [][]any, codes [][]int, names []string) (*Multi, error) {
	if len(levels) == 0 || len(levels) != len(codes) {
		return nil, fmt.Errorf("levels (%d) and codes (%d) must be non-empty and parallel", len(levels), len(codes))
	}
	n := len(codes[0])
	for k, c := range codes {
		if len(c) != n {
			return nil, fmt.Errorf("code lengths differ: level 0 has %d, level %d has %d", n, k, len(c))
		}
	}
	if names == nil {
		names = make([]string, len(levels))
	}
	return &Multi{names: names, levels: levels, codes: codes}, nil
}

// FromArrays factorizes one label array per level into a Multi. Level label
// sets come out ascending.
func FromArrays(arrays [][]any, names []string) (*Multi, error) {
	if len(arrays) == 0 {
		return nil, fmt.Errorf("at least one level array required")
	}
	levels := make([][]any, len(arrays))
	codes := make([][]int, len(arrays))
	for k, arr := range arrays {
		labels, uniques, _ := kernels.FactorizeAny(arr, true)
		levels[k] = uniques
		codes[k] = make([]int, len(labels))
		for i, lab := range labels {
			codes[k][i] = int(lab)
		}
	}
	return FromCodes(levels, codes, names)
}

// FromTuples builds a Multi from per-observation label tuples.
func FromTuples(tuples [][]any, names []string) (*Multi, error) {
	if len(tuples) == 0 {
		return nil, fmt.Errorf("at least one tuple required")
	}
	width := len(tuples[0])
	arrays := make([][]any, width)
	for k := range arrays {
		arrays[k] = make([]any, len(tuples))
	}
	for i, tup := range tuples {
		if len(tup) != width {
			return nil, fmt.Errorf("tuple %d has %d elements, want %d", i, len(tup), width)
		}
		for k, elem := range tup {
			arrays[k][i] = elem
		}
	}
	return FromArrays(arrays, names)
}

// NLevels returns the number of levels.
func (m *Multi) NLevels() int {
	return len(m.levels)
}

// Names returns the per-level names.
func (m *Multi) Names() []string {
	return m.names
}

// Level returns level k's distinct labels.
func (m *Multi) Level(k int) []any {
	return m.levels[k]
}

// Codes returns level k's per-observation codes.
func (m *Multi) Codes(k int) []int {
	return m.codes[k]
}

// Len returns the number of observations.
func (m *Multi) Len() int {
	return len(m.codes[0])
}

// At returns observation i's label tuple. A missing level label (code -1)
// comes through as nil.
func (m *Multi) At(i int) any {
	tuple := make([]any, len(m.levels))
	for k := range m.levels {
		code := m.codes[k][i]
		if code < 0 {
			tuple[k] = nil
			continue
		}
		tuple[k] = m.levels[k][code]
	}
	return tuple
}

// Take returns a new Multi of the observations at the given positions.
func (m *Multi) Take(idx []int) Axis {
	codes := make([][]int, len(m.codes))
	for k, c := range m.codes {
		codes[k] = make([]int, len(idx))
		for i, pos := range idx {
			codes[k][i] = c[pos]
		}
	}
	return &Multi{names: m.names, levels: m.levels, codes: codes}
}

// Slice returns the [start, end) sub-index.
func (m *Multi) Slice(start, end int) Axis {
	codes := make([][]int, len(m.codes))
	for k, c := range m.codes {
		codes[k] = c[start:end]
	}
	return &Multi{names: m.names, levels: m.levels, codes: codes}
}

// Equal reports elementwise tuple equality with another axis.
func (m *Multi) Equal(other Axis) bool {
	return axisEqual(m, other)
}

// PrefixLevels builds a hierarchical axis whose leading levels are group-key
// levels and whose last level is the inner axis flattened to one level. The
// key codes arrays run in parallel with the inner observations.
func PrefixLevels(keyLevels [][]any, keyCodes [][]int, keyNames []string, inner Axis) (*Multi, error) {
	innerCodes, innerLabels := factorizeLabels(inner)
	levels := make([][]any, 0, len(keyLevels)+1)
	codes := make([][]int, 0, len(keyCodes)+1)
	names := make([]string, 0, len(keyNames)+1)
	levels = append(levels, keyLevels...)
	codes = append(codes, keyCodes...)
	names = append(names, keyNames...)
	levels = append(levels, innerLabels)
	codes = append(codes, innerCodes)
	innerName := ""
	if ix, ok := inner.(*Index); ok {
		innerName = ix.name
	}
	names = append(names, innerName)
	return FromCodes(levels, codes, names)
}

// factorizeLabels encodes an axis's labels by first occurrence, tolerating
// tuple labels.
func factorizeLabels(ax Axis) (codes []int, uniques []any) {
	codes = make([]int, ax.Len())
	table := make(map[string]int, ax.Len())
	for i := 0; i < ax.Len(); i++ {
		lab := ax.At(i)
		key := keyString(lab)
		id, ok := table[key]
		if !ok {
			id = len(uniques)
			table[key] = id
			uniques = append(uniques, lab)
		}
		codes[i] = id
	}
	return codes, uniques
}
