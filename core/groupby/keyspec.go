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

import (
	"fmt"

	"github.com/frrp/pandas/core/frame"
	"github.com/frrp/pandas/core/index"
	"github.com/frrp/pandas/core/kernels"
)

// Key names one grouping criterion. A grouping is one or more keys; each
// key yields one label per observation along the grouped axis.
type Key struct {
	name    string
	exclude string
	resolve func(ax index.Axis, lookup columnLookup, sorted bool) (keyLevel, error)
}

// keyLevel is one resolved key: dense codes into uniques, plus per-group
// occupancy counts. Codes of -1 mark missing observations.
type keyLevel struct {
	name    string
	labels  []int64
	uniques []any
	counts  []int64
	exclude string
}

// columnLookup resolves a column name to its data when grouping a frame.
// Series groupings pass nil.
type columnLookup func(name string) (frame.Column, bool)

// ByValues groups on an explicit slice of raw labels, one per observation.
// nil entries mark missing observations.
func ByValues(name string, values []any) Key {
	return Key{name: name, resolve: func(ax index.Axis, _ columnLookup, sorted bool) (keyLevel, error) {
		if len(values) != ax.Len() {
			return keyLevel{}, fmt.Errorf("%w: key %q has %d values, axis has %d", ErrConfiguration, name, len(values), ax.Len())
		}
		labels, uniques, counts := kernels.FactorizeAny(values, sorted)
		return keyLevel{name: name, labels: labels, uniques: uniques, counts: counts}, nil
	}}
}

// ByColumn groups a frame on one of its own columns. The column is
// excluded from aggregation output.
func ByColumn(name string) Key {
	return Key{name: name, exclude: name, resolve: func(ax index.Axis, lookup columnLookup, sorted bool) (keyLevel, error) {
		if lookup == nil {
			return keyLevel{}, fmt.Errorf("%w: column key %q requires a frame", ErrConfiguration, name)
		}
		col, ok := lookup(name)
		if !ok {
			return keyLevel{}, fmt.Errorf("%w: no column %q to group by", ErrConfiguration, name)
		}
		values := make([]any, col.Len())
		for i := range values {
			values[i] = col.At(i)
		}
		labels, uniques, counts := kernels.FactorizeAny(values, sorted)
		return keyLevel{name: name, labels: labels, uniques: uniques, counts: counts, exclude: name}, nil
	}}
}

// ByFunc groups on fn applied to each axis label.
func ByFunc(name string, fn func(label any) any) Key {
	return Key{name: name, resolve: func(ax index.Axis, _ columnLookup, sorted bool) (keyLevel, error) {
		values := make([]any, ax.Len())
		for i := range values {
			values[i] = fn(ax.At(i))
		}
		labels, uniques, counts := kernels.FactorizeAny(values, sorted)
		return keyLevel{name: name, labels: labels, uniques: uniques, counts: counts}, nil
	}}
}

// ByMap groups each axis label through a translation map. Labels absent
// from the map become missing observations.
func ByMap(name string, mapping map[any]any) Key {
	return ByFunc(name, func(label any) any {
		v, ok := mapping[label]
		if !ok {
			return nil
		}
		return v
	})
}

// ByLevel groups on one level of the object's index. Level 0 of a flat
// index is the index itself.
func ByLevel(level int) Key {
	return Key{name: fmt.Sprintf("level_%d", level), resolve: func(ax index.Axis, _ columnLookup, sorted bool) (keyLevel, error) {
		switch idx := ax.(type) {
		case *index.Multi:
			if level < 0 || level >= idx.NLevels() {
				return keyLevel{}, fmt.Errorf("%w: index has %d levels, no level %d", ErrConfiguration, idx.NLevels(), level)
			}
			name := idx.Names()[level]
			if name == "" {
				name = fmt.Sprintf("level_%d", level)
			}
			// Codes are already dense against the level values, so no
			// refactorization is needed; only the counts are recomputed.
			uniques := idx.Level(level)
			codes := idx.Codes(level)
			labels := make([]int64, len(codes))
			counts := make([]int64, len(uniques))
			for i, c := range codes {
				labels[i] = int64(c)
				if c >= 0 {
					counts[c]++
				}
			}
			return keyLevel{name: name, labels: labels, uniques: uniques, counts: counts}, nil
		default:
			if level != 0 {
				return keyLevel{}, fmt.Errorf("%w: flat index has only level 0, got %d", ErrConfiguration, level)
			}
			name := fmt.Sprintf("level_%d", level)
			if named, ok := ax.(*index.Index); ok && named.Name() != "" {
				name = named.Name()
			}
			values := make([]any, ax.Len())
			for i := range values {
				values[i] = ax.At(i)
			}
			labels, uniques, counts := kernels.FactorizeAny(values, sorted)
			return keyLevel{name: name, labels: labels, uniques: uniques, counts: counts}, nil
		}
	}}
}

// resolveKeys factorizes every key against the grouped axis.
func resolveKeys(keys []Key, ax index.Axis, lookup columnLookup, sorted bool) ([]keyLevel, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: at least one grouping key is required", ErrConfiguration)
	}
	levels := make([]keyLevel, len(keys))
	for i, k := range keys {
		lv, err := k.resolve(ax, lookup, sorted)
		if err != nil {
			return nil, err
		}
		if lv.name == "" {
			lv.name = fmt.Sprintf("key_%d", i)
		}
		levels[i] = lv
	}
	return levels, nil
}
