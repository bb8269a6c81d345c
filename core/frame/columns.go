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

// Package frame implements the in-memory dataset the group engine operates
// on: typed value columns, a Series (one column plus an index) and a Frame
// (ordered named columns sharing an index). All data is addressable in
// memory; nothing here persists or synchronizes.
package frame

import (
	"math"

	"github.com/frrp/pandas/core/kernels"
)

// Column is one named array of values.
type Column interface {
	Name() string
	Len() int
	// At returns the value at position i as a dynamic value.
	At(i int) any
	// Take returns a new column of the values at the given positions. All
	// positions must be valid; missing-position handling lives in
	// Series.Reindex.
	Take(idx []int) Column
	// Slice returns the [start, end) sub-column sharing backing storage.
	Slice(start, end int) Column
	// Float64s returns a float64 view of the column for numeric kernels,
	// with NaN marking missing values, or false when the column is not
	// numeric.
	Float64s() ([]float64, bool)
	WithName(name string) Column
}

// Float64Column stores float64 values; NaN marks a missing value.
type Float64Column struct {
	name string
	data []float64
}

// NewFloat64Column creates a float64 column.
func NewFloat64Column(name string, data []float64) *Float64Column {
	return &Float64Column{name: name, data: data}
}

func (c *Float64Column) Name() string { return c.name }
func (c *Float64Column) Len() int     { return len(c.data) }
func (c *Float64Column) At(i int) any { return c.data[i] }

// Values returns the backing float64 slice.
func (c *Float64Column) Values() []float64 { return c.data }

func (c *Float64Column) Take(idx []int) Column {
	data := make([]float64, len(idx))
	for i, pos := range idx {
		data[i] = c.data[pos]
	}
	return &Float64Column{name: c.name, data: data}
}

func (c *Float64Column) Slice(start, end int) Column {
	return &Float64Column{name: c.name, data: c.data[start:end]}
}

func (c *Float64Column) Float64s() ([]float64, bool) {
	return c.data, true
}

func (c *Float64Column) WithName(name string) Column {
	return &Float64Column{name: name, data: c.data}
}

// Int64Column stores int64 values with no missing marker.
type Int64Column struct {
	name string
	data []int64
}

// NewInt64Column creates an int64 column.
func NewInt64Column(name string, data []int64) *Int64Column {
	return &Int64Column{name: name, data: data}
}

func (c *Int64Column) Name() string { return c.name }
func (c *Int64Column) Len() int     { return len(c.data) }
func (c *Int64Column) At(i int) any { return c.data[i] }

// Values returns the backing int64 slice.
func (c *Int64Column) Values() []int64 { return c.data }

func (c *Int64Column) Take(idx []int) Column {
	data := make([]int64, len(idx))
	for i, pos := range idx {
		data[i] = c.data[pos]
	}
	return &Int64Column{name: c.name, data: data}
}

func (c *Int64Column) Slice(start, end int) Column {
	return &Int64Column{name: c.name, data: c.data[start:end]}
}

func (c *Int64Column) Float64s() ([]float64, bool) {
	out := make([]float64, len(c.data))
	for i, v := range c.data {
		out[i] = float64(v)
	}
	return out, true
}

func (c *Int64Column) WithName(name string) Column {
	return &Int64Column{name: name, data: c.data}
}

// BoolColumn stores bool values; true converts to 1 for numeric kernels.
type BoolColumn struct {
	name string
	data []bool
}

// NewBoolColumn creates a bool column.
func NewBoolColumn(name string, data []bool) *BoolColumn {
	return &BoolColumn{name: name, data: data}
}

func (c *BoolColumn) Name() string { return c.name }
func (c *BoolColumn) Len() int     { return len(c.data) }
func (c *BoolColumn) At(i int) any { return c.data[i] }

func (c *BoolColumn) Take(idx []int) Column {
	data := make([]bool, len(idx))
	for i, pos := range idx {
		data[i] = c.data[pos]
	}
	return &BoolColumn{name: c.name, data: data}
}

func (c *BoolColumn) Slice(start, end int) Column {
	return &BoolColumn{name: c.name, data: c.data[start:end]}
}

func (c *BoolColumn) Float64s() ([]float64, bool) {
	out := make([]float64, len(c.data))
	for i, v := range c.data {
		if v {
			out[i] = 1
		}
	}
	return out, true
}

func (c *BoolColumn) WithName(name string) Column {
	return &BoolColumn{name: name, data: c.data}
}

// StringColumn stores string values. It has no numeric view; kernels cannot
// reduce it.
type StringColumn struct {
	name string
	data []string
}

// NewStringColumn creates a string column.
func NewStringColumn(name string, data []string) *StringColumn {
	return &StringColumn{name: name, data: data}
}

func (c *StringColumn) Name() string { return c.name }
func (c *StringColumn) Len() int     { return len(c.data) }
func (c *StringColumn) At(i int) any { return c.data[i] }

// Values returns the backing string slice.
func (c *StringColumn) Values() []string { return c.data }

func (c *StringColumn) Take(idx []int) Column {
	data := make([]string, len(idx))
	for i, pos := range idx {
		data[i] = c.data[pos]
	}
	return &StringColumn{name: c.name, data: data}
}

func (c *StringColumn) Slice(start, end int) Column {
	return &StringColumn{name: c.name, data: c.data[start:end]}
}

func (c *StringColumn) Float64s() ([]float64, bool) {
	return nil, false
}

func (c *StringColumn) WithName(name string) Column {
	return &StringColumn{name: name, data: c.data}
}

// AnyColumn stores heterogeneous values; nil marks a missing value. It is
// the landing type for per-group apply results of unknown shape.
type AnyColumn struct {
	name string
	data []any
}

// NewAnyColumn creates a dynamic-typed column.
func NewAnyColumn(name string, data []any) *AnyColumn {
	return &AnyColumn{name: name, data: data}
}

func (c *AnyColumn) Name() string { return c.name }
func (c *AnyColumn) Len() int     { return len(c.data) }
func (c *AnyColumn) At(i int) any { return c.data[i] }

// Values returns the backing slice.
func (c *AnyColumn) Values() []any { return c.data }

func (c *AnyColumn) Take(idx []int) Column {
	data := make([]any, len(idx))
	for i, pos := range idx {
		data[i] = c.data[pos]
	}
	return &AnyColumn{name: c.name, data: data}
}

func (c *AnyColumn) Slice(start, end int) Column {
	return &AnyColumn{name: c.name, data: c.data[start:end]}
}

// Float64s succeeds only when every non-missing value coerces to float64.
func (c *AnyColumn) Float64s() ([]float64, bool) {
	out := make([]float64, len(c.data))
	for i, v := range c.data {
		if v == nil {
			out[i] = math.NaN()
			continue
		}
		f, ok := kernels.AsFloat64(v)
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

func (c *AnyColumn) WithName(name string) Column {
	return &AnyColumn{name: name, data: c.data}
}
