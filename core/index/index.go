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

// Package index implements the label algebra consumed by grouped
// computation: flat ordered label sets, hierarchical multi-level label sets,
// positional lookup, set difference and ascending sorts. Labels are
// arbitrary Go values; lookup keys are canonicalized so label tuples
// ([]any) are usable everywhere plain labels are.
package index

import (
	"fmt"
	"sort"
	"strings"

	"github.com/frrp/pandas/core/kernels"
)

// Axis is the label interface shared by flat and hierarchical indexes.
type Axis interface {
	Len() int
	// At returns the label at position i; for a hierarchical axis this is
	// the []any tuple of per-level labels.
	At(i int) any
	Take(idx []int) Axis
	Slice(start, end int) Axis
	// Equal reports elementwise label equality with another axis.
	Equal(other Axis) bool
}

// Index is an ordered set of row or column labels.
type Index struct {
	name   string
	labels []any
	lookup map[string]int // canonical label -> first position
}

// New creates an Index over the given labels.
func New(labels []any, name string) *Index {
	ix := &Index{name: name, labels: labels}
	ix.lookup = make(map[string]int, len(labels))
	for i, lab := range labels {
		key := keyString(lab)
		if _, exists := ix.lookup[key]; !exists {
			ix.lookup[key] = i
		}
	}
	return ix
}

// NewRange creates a default positional Index 0..n-1.
func NewRange(n int) *Index {
	labels := make([]any, n)
	for i := range labels {
		labels[i] = i
	}
	return New(labels, "")
}

// FromStrings creates an Index over string labels.
func FromStrings(labels []string, name string) *Index {
	anyLabels := make([]any, len(labels))
	for i, s := range labels {
		anyLabels[i] = s
	}
	return New(anyLabels, name)
}

// Name returns the index name.
func (ix *Index) Name() string {
	return ix.name
}

// WithName returns a copy of the index under a new name.
func (ix *Index) WithName(name string) *Index {
	return &Index{name: name, labels: ix.labels, lookup: ix.lookup}
}

// Len returns the number of labels.
func (ix *Index) Len() int {
	return len(ix.labels)
}

// At returns the label at position i.
func (ix *Index) At(i int) any {
	return ix.labels[i]
}

// Labels returns the ordered label values.
func (ix *Index) Labels() []any {
	return ix.labels
}

// Loc returns the first position of the given label.
func (ix *Index) Loc(label any) (int, bool) {
	pos, ok := ix.lookup[keyString(label)]
	return pos, ok
}

// Contains reports whether the label is present.
func (ix *Index) Contains(label any) bool {
	_, ok := ix.lookup[keyString(label)]
	return ok
}

// Take returns a new Index of the labels at the given positions.
func (ix *Index) Take(idx []int) Axis {
	labels := make([]any, len(idx))
	for i, pos := range idx {
		labels[i] = ix.labels[pos]
	}
	return New(labels, ix.name)
}

// Slice returns the [start, end) sub-index.
func (ix *Index) Slice(start, end int) Axis {
	return New(ix.labels[start:end], ix.name)
}

// Equal reports elementwise label equality.
func (ix *Index) Equal(other Axis) bool {
	return axisEqual(ix, other)
}

// Difference returns the index without the given labels, preserving order.
func (ix *Index) Difference(drop []any) *Index {
	dropped := make(map[string]bool, len(drop))
	for _, lab := range drop {
		dropped[keyString(lab)] = true
	}
	kept := make([]any, 0, len(ix.labels))
	for _, lab := range ix.labels {
		if !dropped[keyString(lab)] {
			kept = append(kept, lab)
		}
	}
	return New(kept, ix.name)
}

// SortValues returns the index sorted ascending along with the permutation
// that produced it.
func (ix *Index) SortValues() (*Index, []int) {
	perm := make([]int, len(ix.labels))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		return kernels.Compare(ix.labels[perm[a]], ix.labels[perm[b]]) < 0
	})
	sorted := ix.Take(perm).(*Index)
	return sorted, perm
}

// Indexer returns, for each target label, its first position in ax, or -1
// when absent.
func Indexer(ax Axis, target Axis) []int {
	lookup := make(map[string]int, ax.Len())
	for i := 0; i < ax.Len(); i++ {
		key := keyString(ax.At(i))
		if _, exists := lookup[key]; !exists {
			lookup[key] = i
		}
	}
	out := make([]int, target.Len())
	for i := 0; i < target.Len(); i++ {
		pos, ok := lookup[keyString(target.At(i))]
		if !ok {
			pos = -1
		}
		out[i] = pos
	}
	return out
}

// Concat joins axes end to end into a flat Index. Hierarchical labels come
// through as their tuples.
func Concat(axes ...Axis) *Index {
	total := 0
	for _, ax := range axes {
		total += ax.Len()
	}
	labels := make([]any, 0, total)
	name := ""
	for _, ax := range axes {
		if ix, ok := ax.(*Index); ok && name == "" {
			name = ix.name
		}
		for i := 0; i < ax.Len(); i++ {
			labels = append(labels, ax.At(i))
		}
	}
	return New(labels, name)
}

func axisEqual(a, b Axis) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if keyString(a.At(i)) != keyString(b.At(i)) {
			return false
		}
	}
	return true
}

// keyString canonicalizes a label for lookup maps. Tuples encode their
// elements recursively so []any labels behave like value types.
func keyString(label any) string {
	if tuple, ok := label.([]any); ok {
		parts := make([]string, len(tuple))
		for i, elem := range tuple {
			parts[i] = keyString(elem)
		}
		return "(" + strings.Join(parts, "\x1f") + ")"
	}
	return fmt.Sprintf("%T=%v", label, label)
}
