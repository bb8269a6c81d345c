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
	"math"

	"github.com/frrp/pandas/core/index"
)

// Series is one column of values aligned with an index.
type Series struct {
	col Column
	idx index.Axis
}

// NewSeries creates a Series. A nil index defaults to the positional range.
func NewSeries(col Column, idx index.Axis) (*Series, error) {
	if idx == nil {
		idx = index.NewRange(col.Len())
	}
	if idx.Len() != col.Len() {
		return nil, fmt.Errorf("index length %d does not match column length %d", idx.Len(), col.Len())
	}
	return &Series{col: col, idx: idx}, nil
}

// Name returns the column name.
func (s *Series) Name() string {
	return s.col.Name()
}

// Rename returns the series under a new column name.
func (s *Series) Rename(name string) *Series {
	return &Series{col: s.col.WithName(name), idx: s.idx}
}

// Len returns the number of observations.
func (s *Series) Len() int {
	return s.col.Len()
}

// Index returns the label axis.
func (s *Series) Index() index.Axis {
	return s.idx
}

// Data returns the underlying column.
func (s *Series) Data() Column {
	return s.col
}

// At returns the value at position i.
func (s *Series) At(i int) any {
	return s.col.At(i)
}

// Float64s returns the numeric view of the values, or false for a
// non-numeric series.
func (s *Series) Float64s() ([]float64, bool) {
	return s.col.Float64s()
}

// Take returns the observations at the given positions.
func (s *Series) Take(idx []int) *Series {
	return &Series{col: s.col.Take(idx), idx: s.idx.Take(idx)}
}

// Slice returns the [start, end) window.
func (s *Series) Slice(start, end int) *Series {
	return &Series{col: s.col.Slice(start, end), idx: s.idx.Slice(start, end)}
}

// WithIndex rebinds the series to another axis of the same length.
func (s *Series) WithIndex(idx index.Axis) (*Series, error) {
	return NewSeries(s.col, idx)
}

// Reindex conforms the series to the target labels. Labels absent from the
// series come through as missing: NaN when the series is numeric, nil
// otherwise.
func (s *Series) Reindex(target index.Axis) *Series {
	indexer := index.Indexer(s.idx, target)
	missing := false
	for _, pos := range indexer {
		if pos < 0 {
			missing = true
			break
		}
	}
	if !missing {
		return &Series{col: s.col.Take(indexer), idx: target}
	}
	if values, ok := s.col.Float64s(); ok {
		data := make([]float64, len(indexer))
		for i, pos := range indexer {
			if pos < 0 {
				data[i] = math.NaN()
			} else {
				data[i] = values[pos]
			}
		}
		return &Series{col: NewFloat64Column(s.col.Name(), data), idx: target}
	}
	data := make([]any, len(indexer))
	for i, pos := range indexer {
		if pos >= 0 {
			data[i] = s.col.At(pos)
		}
	}
	return &Series{col: NewAnyColumn(s.col.Name(), data), idx: target}
}

// Equal reports equal labels and elementwise equal values. NaN values
// compare equal to each other.
func (s *Series) Equal(other *Series) bool {
	if s.Len() != other.Len() || !s.idx.Equal(other.idx) {
		return false
	}
	for i := 0; i < s.Len(); i++ {
		a, b := s.col.At(i), other.col.At(i)
		if af, aok := a.(float64); aok {
			if bf, bok := b.(float64); bok {
				if math.IsNaN(af) && math.IsNaN(bf) {
					continue
				}
				if af == bf {
					continue
				}
				return false
			}
		}
		if a != b {
			return false
		}
	}
	return true
}

// ConcatSeries joins series end to end into one series under a flat
// concatenated index. All parts must be non-empty in count but may differ in
// column type; the concatenation lands in an AnyColumn unless every part is
// numeric.
func ConcatSeries(name string, parts []*Series) (*Series, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("nothing to concatenate")
	}
	axes := make([]index.Axis, len(parts))
	allNumeric := true
	total := 0
	for i, p := range parts {
		axes[i] = p.idx
		total += p.Len()
		if _, ok := p.col.Float64s(); !ok {
			allNumeric = false
		}
	}
	idx := index.Concat(axes...)
	if allNumeric {
		data := make([]float64, 0, total)
		for _, p := range parts {
			values, _ := p.col.Float64s()
			data = append(data, values...)
		}
		return NewSeries(NewFloat64Column(name, data), idx)
	}
	data := make([]any, 0, total)
	for _, p := range parts {
		for i := 0; i < p.Len(); i++ {
			data = append(data, p.col.At(i))
		}
	}
	return NewSeries(NewAnyColumn(name, data), idx)
}
