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

package frame

import (
	"fmt"
	"sort"

	"github.com/frrp/pandas/core/index"
)

// Frame is an ordered set of named columns sharing one row index.
type Frame struct {
	names []string
	cols  map[string]Column
	idx   index.Axis
}

// NewFrame creates a Frame from columns in the given order. A nil index
// defaults to the positional range.
func NewFrame(idx index.Axis, cols ...Column) (*Frame, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("at least one column required")
	}
	if idx == nil {
		idx = index.NewRange(cols[0].Len())
	}
	fr := &Frame{names: make([]string, 0, len(cols)), cols: make(map[string]Column, len(cols)), idx: idx}
	for _, col := range cols {
		if col.Len() != idx.Len() {
			return nil, fmt.Errorf("column %q length %d does not match index length %d", col.Name(), col.Len(), idx.Len())
		}
		if _, dup := fr.cols[col.Name()]; dup {
			return nil, fmt.Errorf("duplicate column name %q", col.Name())
		}
		fr.names = append(fr.names, col.Name())
		fr.cols[col.Name()] = col
	}
	return fr, nil
}

// FromMap creates a Frame from a name-to-column mapping plus an index,
// ordering columns by sorted name.
func FromMap(cols map[string]Column, idx index.Axis) (*Frame, error) {
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)
	ordered := make([]Column, len(names))
	for i, name := range names {
		ordered[i] = cols[name].WithName(name)
	}
	return NewFrame(idx, ordered...)
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return f.idx.Len()
}

// Index returns the row axis.
func (f *Frame) Index() index.Axis {
	return f.idx
}

// ColumnNames returns the ordered column names.
func (f *Frame) ColumnNames() []string {
	return f.names
}

// HasColumn reports whether a column exists.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// ColumnData returns the named column.
func (f *Frame) ColumnData(name string) (Column, error) {
	col, ok := f.cols[name]
	if !ok {
		return nil, fmt.Errorf("unknown column %q", name)
	}
	return col, nil
}

// Col returns the named column as a Series sharing the frame's index.
func (f *Frame) Col(name string) (*Series, error) {
	col, err := f.ColumnData(name)
	if err != nil {
		return nil, err
	}
	return &Series{col: col, idx: f.idx}, nil
}

// Take returns the rows at the given positions.
func (f *Frame) Take(idx []int) *Frame {
	cols := make([]Column, len(f.names))
	for i, name := range f.names {
		cols[i] = f.cols[name].Take(idx)
	}
	out, _ := NewFrame(f.idx.Take(idx), cols...)
	return out
}

// Slice returns the [start, end) row window.
func (f *Frame) Slice(start, end int) *Frame {
	cols := make([]Column, len(f.names))
	for i, name := range f.names {
		cols[i] = f.cols[name].Slice(start, end)
	}
	out, _ := NewFrame(f.idx.Slice(start, end), cols...)
	return out
}

// Select returns the frame restricted to the named columns, in that order.
func (f *Frame) Select(names ...string) (*Frame, error) {
	cols := make([]Column, len(names))
	for i, name := range names {
		col, err := f.ColumnData(name)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	return NewFrame(f.idx, cols...)
}

// Drop returns the frame without the named columns.
func (f *Frame) Drop(names ...string) (*Frame, error) {
	dropped := make(map[string]bool, len(names))
	for _, name := range names {
		dropped[name] = true
	}
	kept := make([]Column, 0, len(f.names))
	for _, name := range f.names {
		if !dropped[name] {
			kept = append(kept, f.cols[name])
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("dropping %v leaves no columns", names)
	}
	return NewFrame(f.idx, kept...)
}

// WithIndex rebinds the frame to another axis of the same length.
func (f *Frame) WithIndex(idx index.Axis) (*Frame, error) {
	cols := make([]Column, len(f.names))
	for i, name := range f.names {
		cols[i] = f.cols[name]
	}
	return NewFrame(idx, cols...)
}

// Reindex conforms the frame to the target row labels, filling missing rows
// per column as in Series.Reindex.
func (f *Frame) Reindex(target index.Axis) *Frame {
	cols := make([]Column, len(f.names))
	for i, name := range f.names {
		s := &Series{col: f.cols[name], idx: f.idx}
		cols[i] = s.Reindex(target).col
	}
	out, _ := NewFrame(target, cols...)
	return out
}

// ConcatFrames joins frames row-wise under a flat concatenated index. Every
// part must carry the same columns as the first, in any order.
func ConcatFrames(parts []*Frame) (*Frame, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("nothing to concatenate")
	}
	first := parts[0]
	cols := make([]Column, len(first.names))
	for ci, name := range first.names {
		sections := make([]*Series, len(parts))
		for pi, p := range parts {
			col, err := p.ColumnData(name)
			if err != nil {
				return nil, fmt.Errorf("frame %d: %w", pi, err)
			}
			sections[pi] = &Series{col: col, idx: p.idx}
		}
		joined, err := ConcatSeries(name, sections)
		if err != nil {
			return nil, err
		}
		cols[ci] = joined.col
	}
	axes := make([]index.Axis, len(parts))
	for i, p := range parts {
		axes[i] = p.idx
	}
	return NewFrame(index.Concat(axes...), cols...)
}
