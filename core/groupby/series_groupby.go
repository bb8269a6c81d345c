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
	"math"
	"reflect"

	"github.com/frrp/pandas/core/frame"
	"github.com/frrp/pandas/core/index"
	"github.com/frrp/pandas/core/kernels"
)

// SeriesGroupBy runs grouped computations over a single series. The
// grouping is resolved at construction; every reduction afterwards
// reuses the same dense group ids and sort order.
type SeriesGroupBy struct {
	obj     *frame.Series
	grouper Grouper
	cfg     config

	indexer []int
	starts  []int
	ends    []int
}

// GroupSeries groups a series by the given keys.
func GroupSeries(s *frame.Series, keys []Key, opts ...Option) (*SeriesGroupBy, error) {
	cfg := applyOptions(opts)
	gi, err := newGroupIndex(keys, s.Index(), nil, cfg.sort)
	if err != nil {
		return nil, err
	}
	return GroupSeriesBy(s, gi, opts...)
}

// GroupSeriesBy groups a series with an already-built Grouper.
func GroupSeriesBy(s *frame.Series, g Grouper, opts ...Option) (*SeriesGroupBy, error) {
	cfg := applyOptions(opts)
	if !cfg.asIndex {
		// A series result has no columns to hold the keys.
		return nil, fmt.Errorf("%w: as-index can only be disabled when grouping a frame", ErrConfiguration)
	}
	ids := g.GroupIDs()
	if len(ids) != s.Len() {
		return nil, fmt.Errorf("%w: grouper covers %d observations, series has %d", ErrConfiguration, len(ids), s.Len())
	}
	indexer, starts, ends := kernels.GroupSort(ids, g.NGroups())
	return &SeriesGroupBy{obj: s, grouper: g, cfg: cfg, indexer: indexer, starts: starts, ends: ends}, nil
}

// Grouper returns the grouping behind this engine.
func (sg *SeriesGroupBy) Grouper() Grouper { return sg.grouper }

// Len returns the number of grouped observations.
func (sg *SeriesGroupBy) Len() int { return sg.obj.Len() }

// NGroups returns the number of groups, empty ones included.
func (sg *SeriesGroupBy) NGroups() int { return sg.grouper.NGroups() }

// Indices returns each group's original row positions, parallel to
// GroupKeys.
func (sg *SeriesGroupBy) Indices() [][]int {
	return groupIndices(sg.indexer, sg.starts, sg.ends)
}

func groupIndices(indexer, starts, ends []int) [][]int {
	out := make([][]int, len(starts))
	for g := range starts {
		out[g] = append([]int(nil), indexer[starts[g]:ends[g]]...)
	}
	return out
}

// Aggregate reduces each group to one value. Builtin reducers run as
// bulk kernels over the unsorted values; anything else runs once per
// group on a sorted window of the series.
func (sg *SeriesGroupBy) Aggregate(fn ReduceFunc) (*frame.Series, error) {
	if kind, ok := kindOf(fn); ok {
		return sg.aggregateKind(kind)
	}
	out, counts, err := sg.reduceEach(fn)
	if err != nil {
		return nil, err
	}
	return sg.wrapReduced(out, counts)
}

func (sg *SeriesGroupBy) aggregateKind(kind kernels.Kind) (*frame.Series, error) {
	flat, counts, err := sg.rawKind(kind)
	if err != nil {
		return nil, err
	}
	return sg.wrapReduced(flat, counts)
}

// rawKind runs a bulk kernel and returns one value and one non-missing
// count per group, before empty-group filtering.
func (sg *SeriesGroupBy) rawKind(kind kernels.Kind) ([]float64, []int64, error) {
	if kind.Arity() != 1 {
		return nil, nil, fmt.Errorf("%w: %s produces %d columns, want a series", ErrUnsupportedArity, kind, kind.Arity())
	}
	values, ok := sg.obj.Float64s()
	if !ok {
		return nil, nil, fmt.Errorf("series %q: %w", sg.obj.Name(), ErrNoEligibleData)
	}
	kern, ok := kernels.Lookup(kind)
	if !ok {
		return nil, nil, fmt.Errorf("%w: no kernel for %s", ErrConfiguration, kind)
	}
	ngroups := sg.grouper.NGroups()
	out := kernels.MakeOutput(ngroups, 1)
	counts := make([]int64, ngroups)
	kern(out, counts, values, sg.grouper.GroupIDs())
	kind.PostTransform(out)
	flat := make([]float64, ngroups)
	for g := range flat {
		flat[g] = out[g][0]
	}
	return flat, counts, nil
}

// reduceEach takes the series once in group order and hands each
// contiguous window to fn.
func (sg *SeriesGroupBy) reduceEach(fn ReduceFunc) ([]float64, []int64, error) {
	ordered := sg.obj.Take(sg.indexer)
	return kernels.ReduceGroups(sg.starts, sg.ends, func(start, end int) (float64, error) {
		return fn(ordered.Slice(start, end))
	})
}

// wrapReduced attaches the group index to one value per group, dropping
// empty groups when the grouper filters them.
func (sg *SeriesGroupBy) wrapReduced(out []float64, counts []int64) (*frame.Series, error) {
	idx := sg.grouper.ResultIndex()
	if sg.grouper.FilterEmpty() {
		if keep := occupiedGroups(counts); len(keep) < len(out) {
			filtered := make([]float64, len(keep))
			for i, g := range keep {
				filtered[i] = out[g]
			}
			out = filtered
			idx = idx.Take(keep)
		}
	}
	return frame.NewSeries(frame.NewFloat64Column(sg.obj.Name(), out), idx)
}

func occupiedGroups(counts []int64) []int {
	keep := make([]int, 0, len(counts))
	for g, c := range counts {
		if c > 0 {
			keep = append(keep, g)
		}
	}
	return keep
}

// Sum reduces each group to the sum of its non-missing values.
func (sg *SeriesGroupBy) Sum() (*frame.Series, error) { return sg.aggregateKind(kernels.KindSum) }

// Prod reduces each group to the product of its non-missing values.
func (sg *SeriesGroupBy) Prod() (*frame.Series, error) { return sg.aggregateKind(kernels.KindProd) }

// Mean reduces each group to its average.
func (sg *SeriesGroupBy) Mean() (*frame.Series, error) { return sg.aggregateKind(kernels.KindMean) }

// Min reduces each group to its smallest value.
func (sg *SeriesGroupBy) Min() (*frame.Series, error) { return sg.aggregateKind(kernels.KindMin) }

// Max reduces each group to its largest value.
func (sg *SeriesGroupBy) Max() (*frame.Series, error) { return sg.aggregateKind(kernels.KindMax) }

// Var reduces each group to its sample variance.
func (sg *SeriesGroupBy) Var() (*frame.Series, error) { return sg.aggregateKind(kernels.KindVar) }

// Std reduces each group to its sample standard deviation.
func (sg *SeriesGroupBy) Std() (*frame.Series, error) { return sg.aggregateKind(kernels.KindStd) }

// First reduces each group to its first non-missing value.
func (sg *SeriesGroupBy) First() (*frame.Series, error) { return sg.aggregateKind(kernels.KindFirst) }

// Last reduces each group to its last non-missing value.
func (sg *SeriesGroupBy) Last() (*frame.Series, error) { return sg.aggregateKind(kernels.KindLast) }

// Count reduces each group to its number of non-missing values.
func (sg *SeriesGroupBy) Count() (*frame.Series, error) { return sg.aggregateKind(kernels.KindCount) }

// OHLC reduces each group to open, high, low, and close columns.
func (sg *SeriesGroupBy) OHLC() (*frame.Frame, error) {
	values, ok := sg.obj.Float64s()
	if !ok {
		return nil, fmt.Errorf("series %q: %w", sg.obj.Name(), ErrNoEligibleData)
	}
	kern, ok := kernels.Lookup(kernels.KindOHLC)
	if !ok {
		return nil, fmt.Errorf("%w: no kernel for %s", ErrConfiguration, kernels.KindOHLC)
	}
	ngroups := sg.grouper.NGroups()
	arity := kernels.KindOHLC.Arity()
	out := kernels.MakeOutput(ngroups, arity)
	counts := make([]int64, ngroups)
	kern(out, counts, values, sg.grouper.GroupIDs())

	idx := sg.grouper.ResultIndex()
	keep := occupiedGroups(counts)
	filter := sg.grouper.FilterEmpty() && len(keep) < ngroups
	if filter {
		idx = idx.Take(keep)
	}
	names := kernels.KindOHLC.OutputNames()
	cols := make([]frame.Column, arity)
	for j := 0; j < arity; j++ {
		col := make([]float64, 0, ngroups)
		for g := 0; g < ngroups; g++ {
			if filter && counts[g] == 0 {
				continue
			}
			col = append(col, out[g][j])
		}
		cols[j] = frame.NewFloat64Column(names[j], col)
	}
	return frame.NewFrame(idx, cols...)
}

// Size reports observations per group, empty groups included.
func (sg *SeriesGroupBy) Size() (*frame.Series, error) {
	return frame.NewSeries(frame.NewInt64Column(sg.obj.Name(), groupSizes(sg.grouper)), sg.grouper.ResultIndex())
}

// Nth picks the value at position n within each group, counting missing
// values. Negative n counts from the end. Groups without a position n
// report missing.
func (sg *SeriesGroupBy) Nth(n int) (*frame.Series, error) {
	out := make([]float64, sg.grouper.NGroups())
	boxed := make([]any, sg.grouper.NGroups())
	numeric := true
	for g := range sg.starts {
		start, end := sg.starts[g], sg.ends[g]
		pos := n
		if pos < 0 {
			pos += end - start
		}
		if pos < 0 || pos >= end-start {
			out[g] = math.NaN()
			boxed[g] = nil
			continue
		}
		v := sg.obj.At(sg.indexer[start+pos])
		boxed[g] = v
		if v == nil {
			out[g] = math.NaN()
			continue
		}
		f, ok := kernels.AsFloat64(v)
		if !ok {
			numeric = false
		}
		out[g] = f
	}
	idx := sg.grouper.ResultIndex()
	if numeric {
		return frame.NewSeries(frame.NewFloat64Column(sg.obj.Name(), out), idx)
	}
	return frame.NewSeries(frame.NewAnyColumn(sg.obj.Name(), boxed), idx)
}

// Transform applies fn per group and writes each result back to the
// rows of that group, preserving the original axis. A scalar result
// broadcasts across the group; a series result must keep the group's
// length.
func (sg *SeriesGroupBy) Transform(fn func(*frame.Series) (any, error)) (*frame.Series, error) {
	buf := make([]any, sg.obj.Len())
	ordered := sg.obj.Take(sg.indexer)
	for g := range sg.starts {
		start, end := sg.starts[g], sg.ends[g]
		if start == end {
			continue
		}
		res, err := fn(ordered.Slice(start, end))
		if err != nil {
			return nil, err
		}
		switch v := res.(type) {
		case *frame.Series:
			if v.Len() != end-start {
				return nil, fmt.Errorf("%w: transform result has %d rows for a group of %d", ErrReductionShape, v.Len(), end-start)
			}
			for i := start; i < end; i++ {
				buf[sg.indexer[i]] = v.At(i - start)
			}
		default:
			for i := start; i < end; i++ {
				buf[sg.indexer[i]] = v
			}
		}
	}
	col := promoteColumn(sg.obj.Name(), buf)
	return frame.NewSeries(col, sg.obj.Index())
}

// Apply runs fn per group and combines the results: same-index results
// are stitched back onto the original axis, everything else is
// concatenated under the group keys.
func (sg *SeriesGroupBy) Apply(fn func(*frame.Series) (*frame.Series, error)) (*frame.Series, error) {
	ordered := sg.obj.Take(sg.indexer)
	keys := sg.grouper.GroupKeys()
	parts := make([]*frame.Series, 0, len(sg.starts))
	partKeys := make([]any, 0, len(sg.starts))
	aligned := true
	for g := range sg.starts {
		start, end := sg.starts[g], sg.ends[g]
		if start == end {
			continue
		}
		sub := ordered.Slice(start, end)
		res, err := fn(sub)
		if err != nil {
			return nil, err
		}
		if !res.Index().Equal(sub.Index()) {
			aligned = false
		}
		parts = append(parts, res)
		partKeys = append(partKeys, keys[g])
	}
	if len(parts) == 0 {
		return frame.NewSeries(frame.NewFloat64Column(sg.obj.Name(), nil), index.NewRange(0))
	}
	combined, err := frame.ConcatSeries(sg.obj.Name(), parts)
	if err != nil {
		return nil, err
	}
	if aligned {
		return combined.Reindex(sg.obj.Index()), nil
	}
	if !sg.cfg.groupKeys {
		return combined, nil
	}
	mi, err := prefixKeyLevel(sg.grouper, partKeys, parts, combined)
	if err != nil {
		return nil, err
	}
	return combined.WithIndex(mi)
}

// AggregateAny reduces each group with a scalar-valued function of any
// type. A result that is itself a series or slice is rejected.
func (sg *SeriesGroupBy) AggregateAny(fn func(*frame.Series) (any, error)) (*frame.Series, error) {
	ordered := sg.obj.Take(sg.indexer)
	ngroups := sg.grouper.NGroups()
	out := make([]any, ngroups)
	counts := make([]int64, ngroups)
	for g := range sg.starts {
		start, end := sg.starts[g], sg.ends[g]
		counts[g] = int64(end - start)
		if start == end {
			continue
		}
		res, err := fn(ordered.Slice(start, end))
		if err != nil {
			return nil, err
		}
		switch res.(type) {
		case *frame.Series, *frame.Frame, []any, []float64:
			return nil, fmt.Errorf("%w: got %T for group %d", ErrReductionShape, res, g)
		}
		out[g] = res
	}
	idx := sg.grouper.ResultIndex()
	if sg.grouper.FilterEmpty() {
		if keep := occupiedGroups(counts); len(keep) < ngroups {
			filtered := make([]any, len(keep))
			for i, g := range keep {
				filtered[i] = out[g]
			}
			out = filtered
			idx = idx.Take(keep)
		}
	}
	return frame.NewSeries(promoteColumn(sg.obj.Name(), out), idx)
}

// GroupKeys lists the key of each group in group order.
func (sg *SeriesGroupBy) GroupKeys() []any { return sg.grouper.GroupKeys() }

// Each visits every non-empty group in group order.
func (sg *SeriesGroupBy) Each(fn func(key any, sub *frame.Series) error) error {
	ordered := sg.obj.Take(sg.indexer)
	keys := sg.grouper.GroupKeys()
	for g := range sg.starts {
		start, end := sg.starts[g], sg.ends[g]
		if start == end {
			continue
		}
		if err := fn(keys[g], ordered.Slice(start, end)); err != nil {
			return err
		}
	}
	return nil
}

// GetGroup returns the rows of one group; multi-key groups match
// against an []any tuple.
func (sg *SeriesGroupBy) GetGroup(key any) (*frame.Series, error) {
	g, err := findGroup(sg.grouper, key)
	if err != nil {
		return nil, err
	}
	rows := sg.indexer[sg.starts[g]:sg.ends[g]]
	return sg.obj.Take(rows), nil
}

func findGroup(grouper Grouper, key any) (int, error) {
	for g, k := range grouper.GroupKeys() {
		if reflect.DeepEqual(k, key) {
			return g, nil
		}
	}
	return 0, fmt.Errorf("%w: no group %v", ErrConfiguration, key)
}

func groupSizes(g Grouper) []int64 {
	type sizer interface{ Sizes() []int64 }
	if s, ok := g.(sizer); ok {
		return s.Sizes()
	}
	sizes := make([]int64, g.NGroups())
	for _, c := range g.GroupIDs() {
		if c >= 0 {
			sizes[c]++
		}
	}
	return sizes
}

// promoteColumn keeps the numeric representation when every value
// coerces, falling back to a boxed column otherwise.
func promoteColumn(name string, values []any) frame.Column {
	col := frame.NewAnyColumn(name, values)
	if floats, ok := col.Float64s(); ok {
		return frame.NewFloat64Column(name, floats)
	}
	return col
}

// prefixKeyLevel builds the combined index of an arbitrary-shape apply:
// the group key as the outer level, each part's own index flattened
// inside it.
func prefixKeyLevel(grouper Grouper, partKeys []any, parts []*frame.Series, combined *frame.Series) (index.Axis, error) {
	names := grouper.Names()
	keyName := names[0]
	if len(names) > 1 {
		keyName = ""
	}
	keyCodes := make([]int, 0, combined.Len())
	for i, p := range parts {
		for j := 0; j < p.Len(); j++ {
			keyCodes = append(keyCodes, i)
		}
	}
	return index.PrefixLevels([][]any{partKeys}, [][]int{keyCodes}, []string{keyName}, combined.Index())
}
