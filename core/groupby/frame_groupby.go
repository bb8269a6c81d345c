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
	"errors"
	"fmt"

	"github.com/frrp/pandas/core/frame"
	"github.com/frrp/pandas/core/index"
	"github.com/frrp/pandas/core/kernels"
)

// FrameGroupBy runs grouped computations over every eligible column of
// a frame. Columns consumed as grouping keys are excluded; columns a
// reduction cannot handle are dropped from its output rather than
// failing the whole call.
type FrameGroupBy struct {
	obj     *frame.Frame
	grouper Grouper
	cfg     config

	indexer []int
	starts  []int
	ends    []int

	selection  []string
	exclusions map[string]bool
}

// GroupFrame groups a frame by the given keys. ByColumn keys resolve
// against the frame's own columns.
func GroupFrame(f *frame.Frame, keys []Key, opts ...Option) (*FrameGroupBy, error) {
	cfg := applyOptions(opts)
	lookup := func(name string) (frame.Column, bool) {
		col, err := f.ColumnData(name)
		if err != nil {
			return nil, false
		}
		return col, true
	}
	gi, err := newGroupIndex(keys, f.Index(), lookup, cfg.sort)
	if err != nil {
		return nil, err
	}
	fg, err := GroupFrameBy(f, gi, opts...)
	if err != nil {
		return nil, err
	}
	fg.exclusions = gi.exclusions()
	return fg, nil
}

// GroupFrameBy groups a frame with an already-built Grouper.
func GroupFrameBy(f *frame.Frame, g Grouper, opts ...Option) (*FrameGroupBy, error) {
	cfg := applyOptions(opts)
	ids := g.GroupIDs()
	if len(ids) != f.Len() {
		return nil, fmt.Errorf("%w: grouper covers %d observations, frame has %d", ErrConfiguration, len(ids), f.Len())
	}
	indexer, starts, ends := kernels.GroupSort(ids, g.NGroups())
	return &FrameGroupBy{
		obj:        f,
		grouper:    g,
		cfg:        cfg,
		indexer:    indexer,
		starts:     starts,
		ends:       ends,
		exclusions: map[string]bool{},
	}, nil
}

// Grouper returns the grouping behind this engine.
func (fg *FrameGroupBy) Grouper() Grouper { return fg.grouper }

// Len returns the number of grouped rows.
func (fg *FrameGroupBy) Len() int { return fg.obj.Len() }

// NGroups returns the number of groups, empty ones included.
func (fg *FrameGroupBy) NGroups() int { return fg.grouper.NGroups() }

// Indices returns each group's original row positions, parallel to
// GroupKeys.
func (fg *FrameGroupBy) Indices() [][]int {
	return groupIndices(fg.indexer, fg.starts, fg.ends)
}

// Select restricts subsequent computations to the named columns.
func (fg *FrameGroupBy) Select(names ...string) (*FrameGroupBy, error) {
	for _, name := range names {
		if !fg.obj.HasColumn(name) {
			return nil, fmt.Errorf("%w: no column %q", ErrConfiguration, name)
		}
	}
	out := *fg
	out.selection = names
	return &out, nil
}

// Col narrows the grouping to one column, reusing the already-computed
// group order.
func (fg *FrameGroupBy) Col(name string) (*SeriesGroupBy, error) {
	s, err := fg.obj.Col(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return &SeriesGroupBy{
		obj:     s,
		grouper: fg.grouper,
		cfg:     fg.cfg,
		indexer: fg.indexer,
		starts:  fg.starts,
		ends:    fg.ends,
	}, nil
}

// candidates lists the columns a computation runs over: the selection,
// or every column minus the grouping keys.
func (fg *FrameGroupBy) candidates() []string {
	if fg.selection != nil {
		return fg.selection
	}
	names := make([]string, 0, len(fg.obj.ColumnNames()))
	for _, name := range fg.obj.ColumnNames() {
		if fg.exclusions[name] {
			continue
		}
		names = append(names, name)
	}
	return names
}

// Aggregate reduces every eligible column with fn, one value per group
// per column. Columns fn cannot reduce are dropped; an output with no
// columns at all is an error.
func (fg *FrameGroupBy) Aggregate(fn ReduceFunc) (*frame.Frame, error) {
	return fg.aggregateNamed(fg.candidates(), func(name string) ([]reducedColumn, error) {
		sg, err := fg.Col(name)
		if err != nil {
			return nil, err
		}
		var out []float64
		var counts []int64
		if kind, ok := kindOf(fn); ok {
			out, counts, err = sg.rawKind(kind)
		} else {
			out, counts, err = sg.reduceEach(fn)
		}
		if err != nil {
			return nil, err
		}
		return []reducedColumn{{name: name, values: out, counts: counts}}, nil
	})
}

// AggregateKind reduces every numeric column with the named bulk
// kernel. Non-numeric columns are dropped from the output.
func (fg *FrameGroupBy) AggregateKind(kind kernels.Kind) (*frame.Frame, error) {
	return fg.aggregateNamed(fg.candidates(), func(name string) ([]reducedColumn, error) {
		sg, err := fg.Col(name)
		if err != nil {
			return nil, err
		}
		out, counts, err := sg.rawKind(kind)
		if err != nil {
			return nil, err
		}
		return []reducedColumn{{name: name, values: out, counts: counts}}, nil
	})
}

// reducedColumn is one output column before empty-group filtering.
type reducedColumn struct {
	name   string
	values []float64
	counts []int64
}

// aggregateNamed runs reduce per source column, drops ineligible
// columns, applies the empty-group mask shared by all columns, and
// assembles the result frame.
func (fg *FrameGroupBy) aggregateNamed(sources []string, reduce func(name string) ([]reducedColumn, error)) (*frame.Frame, error) {
	var reduced []reducedColumn
	for _, name := range sources {
		cols, err := reduce(name)
		if errors.Is(err, ErrNoEligibleData) {
			continue
		}
		if err != nil {
			return nil, err
		}
		reduced = append(reduced, cols...)
	}
	if len(reduced) == 0 {
		return nil, ErrNoEligibleData
	}

	idx := fg.grouper.ResultIndex()
	if fg.grouper.FilterEmpty() {
		// A group survives when any column saw a value in it, so every
		// output column keeps the same length.
		union := make([]int64, fg.grouper.NGroups())
		for _, rc := range reduced {
			for g, c := range rc.counts {
				union[g] += c
			}
		}
		if keep := occupiedGroups(union); len(keep) < fg.grouper.NGroups() {
			idx = idx.Take(keep)
			for i := range reduced {
				filtered := make([]float64, len(keep))
				for j, g := range keep {
					filtered[j] = reduced[i].values[g]
				}
				reduced[i].values = filtered
			}
		}
	}

	cols := make([]frame.Column, len(reduced))
	for i, rc := range reduced {
		cols[i] = frame.NewFloat64Column(rc.name, rc.values)
	}
	return fg.wrapResult(idx, cols)
}

// wrapResult builds the output frame, converting the group index into
// ordinary key columns when the engine was configured with
// WithAsIndex(false).
func (fg *FrameGroupBy) wrapResult(idx index.Axis, cols []frame.Column) (*frame.Frame, error) {
	if fg.cfg.asIndex {
		return frame.NewFrame(idx, cols...)
	}
	keyCols := keyColumns(idx, fg.grouper.Names())
	all := make([]frame.Column, 0, len(keyCols)+len(cols))
	all = append(all, keyCols...)
	all = append(all, cols...)
	return frame.NewFrame(index.NewRange(idx.Len()), all...)
}

// keyColumns materializes a group index as value columns.
func keyColumns(idx index.Axis, names []string) []frame.Column {
	if mi, ok := idx.(*index.Multi); ok {
		cols := make([]frame.Column, mi.NLevels())
		for k := 0; k < mi.NLevels(); k++ {
			values := make([]any, mi.Len())
			level, codes := mi.Level(k), mi.Codes(k)
			for i, c := range codes {
				if c >= 0 {
					values[i] = level[c]
				}
			}
			name := mi.Names()[k]
			if name == "" && k < len(names) {
				name = names[k]
			}
			cols[k] = promoteColumn(name, values)
		}
		return cols
	}
	name := ""
	if ix, ok := idx.(*index.Index); ok {
		name = ix.Name()
	}
	if name == "" && len(names) > 0 {
		name = names[0]
	}
	values := make([]any, idx.Len())
	for i := range values {
		values[i] = idx.At(i)
	}
	return []frame.Column{promoteColumn(name, values)}
}

// Sum reduces every numeric column to per-group sums.
func (fg *FrameGroupBy) Sum() (*frame.Frame, error) { return fg.AggregateKind(kernels.KindSum) }

// Prod reduces every numeric column to per-group products.
func (fg *FrameGroupBy) Prod() (*frame.Frame, error) { return fg.AggregateKind(kernels.KindProd) }

// Mean reduces every numeric column to per-group averages.
func (fg *FrameGroupBy) Mean() (*frame.Frame, error) { return fg.AggregateKind(kernels.KindMean) }

// Min reduces every numeric column to per-group minimums.
func (fg *FrameGroupBy) Min() (*frame.Frame, error) { return fg.AggregateKind(kernels.KindMin) }

// Max reduces every numeric column to per-group maximums.
func (fg *FrameGroupBy) Max() (*frame.Frame, error) { return fg.AggregateKind(kernels.KindMax) }

// Var reduces every numeric column to per-group sample variances.
func (fg *FrameGroupBy) Var() (*frame.Frame, error) { return fg.AggregateKind(kernels.KindVar) }

// Std reduces every numeric column to per-group sample standard
// deviations.
func (fg *FrameGroupBy) Std() (*frame.Frame, error) { return fg.AggregateKind(kernels.KindStd) }

// First reduces every numeric column to its first non-missing value per
// group.
func (fg *FrameGroupBy) First() (*frame.Frame, error) { return fg.AggregateKind(kernels.KindFirst) }

// Last reduces every numeric column to its last non-missing value per
// group.
func (fg *FrameGroupBy) Last() (*frame.Frame, error) { return fg.AggregateKind(kernels.KindLast) }

// Count reduces every numeric column to its non-missing count per
// group.
func (fg *FrameGroupBy) Count() (*frame.Frame, error) { return fg.AggregateKind(kernels.KindCount) }

// NamedAgg pairs a reduction with the suffix naming its output column.
type NamedAgg struct {
	Name string
	Fn   ReduceFunc
}

// AggregateMany reduces every eligible column with each of the given
// reductions. Output columns are named column_reduction.
func (fg *FrameGroupBy) AggregateMany(specs ...NamedAgg) (*frame.Frame, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: no reductions given", ErrConfiguration)
	}
	return fg.aggregateNamed(fg.candidates(), func(name string) ([]reducedColumn, error) {
		return fg.reduceSpecs(name, specs, true)
	})
}

// AggregateMap reduces specific columns with column-specific
// reductions. A column with a single reduction keeps its own name;
// multiple reductions produce column_reduction names.
func (fg *FrameGroupBy) AggregateMap(specs map[string][]NamedAgg) (*frame.Frame, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: no reductions given", ErrConfiguration)
	}
	// Column order follows the frame, not map iteration.
	sources := make([]string, 0, len(specs))
	for _, name := range fg.obj.ColumnNames() {
		if _, ok := specs[name]; ok {
			sources = append(sources, name)
		}
	}
	if len(sources) != len(specs) {
		for name := range specs {
			if !fg.obj.HasColumn(name) {
				return nil, fmt.Errorf("%w: no column %q", ErrConfiguration, name)
			}
		}
	}
	return fg.aggregateNamed(sources, func(name string) ([]reducedColumn, error) {
		return fg.reduceSpecs(name, specs[name], len(specs[name]) > 1)
	})
}

func (fg *FrameGroupBy) reduceSpecs(name string, specs []NamedAgg, suffix bool) ([]reducedColumn, error) {
	sg, err := fg.Col(name)
	if err != nil {
		return nil, err
	}
	out := make([]reducedColumn, 0, len(specs))
	for _, spec := range specs {
		var values []float64
		var counts []int64
		if kind, ok := kindOf(spec.Fn); ok {
			values, counts, err = sg.rawKind(kind)
		} else {
			values, counts, err = sg.reduceEach(spec.Fn)
		}
		if err != nil {
			return nil, err
		}
		colName := name
		if suffix {
			colName = fmt.Sprintf("%s_%s", name, spec.Name)
		}
		out = append(out, reducedColumn{name: colName, values: values, counts: counts})
	}
	return out, nil
}

// OHLC reduces a single eligible numeric column to open, high, low, and
// close columns. More than one eligible column is an error.
func (fg *FrameGroupBy) OHLC() (*frame.Frame, error) {
	var numeric []string
	for _, name := range fg.candidates() {
		col, err := fg.obj.ColumnData(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
		if _, ok := col.Float64s(); ok {
			numeric = append(numeric, name)
		}
	}
	if len(numeric) == 0 {
		return nil, ErrNoEligibleData
	}
	if len(numeric) > 1 {
		return nil, fmt.Errorf("%w: ohlc needs exactly one numeric column, have %d", ErrUnsupportedArity, len(numeric))
	}
	sg, err := fg.Col(numeric[0])
	if err != nil {
		return nil, err
	}
	return sg.OHLC()
}

// Size reports observations per group, empty groups included.
func (fg *FrameGroupBy) Size() (*frame.Series, error) {
	return frame.NewSeries(frame.NewInt64Column("size", groupSizes(fg.grouper)), fg.grouper.ResultIndex())
}

// Nth picks row n of every group, counting missing values. Negative n
// counts from the end.
func (fg *FrameGroupBy) Nth(n int) (*frame.Frame, error) {
	cols := make([]frame.Column, 0, len(fg.candidates()))
	for _, name := range fg.candidates() {
		sg, err := fg.Col(name)
		if err != nil {
			return nil, err
		}
		s, err := sg.Nth(n)
		if err != nil {
			return nil, err
		}
		cols = append(cols, s.Data())
	}
	return frame.NewFrame(fg.grouper.ResultIndex(), cols...)
}

// Transform applies fn per group per eligible column and writes results
// back onto the original axis. Columns fn cannot handle are dropped.
func (fg *FrameGroupBy) Transform(fn func(*frame.Series) (any, error)) (*frame.Frame, error) {
	var cols []frame.Column
	for _, name := range fg.candidates() {
		sg, err := fg.Col(name)
		if err != nil {
			return nil, err
		}
		s, err := sg.Transform(fn)
		if errors.Is(err, ErrNoEligibleData) {
			continue
		}
		if err != nil {
			return nil, err
		}
		cols = append(cols, s.Data())
	}
	if len(cols) == 0 {
		return nil, ErrNoEligibleData
	}
	return frame.NewFrame(fg.obj.Index(), cols...)
}

// ApplyKind tags the shape an Apply produced.
type ApplyKind int

const (
	// ApplyReduced: every group produced one row; the result has the
	// group index.
	ApplyReduced ApplyKind = iota
	// ApplyAligned: every group kept its own rows; the result has the
	// original axis.
	ApplyAligned
	// ApplyArbitrary: group results were concatenated under an outer
	// group-key level.
	ApplyArbitrary
)

// ApplyResult is a combined apply output together with the shape rule
// that assembled it.
type ApplyResult struct {
	Kind  ApplyKind
	Frame *frame.Frame
}

// Apply runs fn on each group's rows and combines the per-group frames:
// one-row results become one row per group, input-aligned results are
// stitched back onto the original axis, anything else is concatenated
// under the group keys.
func (fg *FrameGroupBy) Apply(fn func(*frame.Frame) (*frame.Frame, error)) (*ApplyResult, error) {
	ordered := fg.obj.Take(fg.indexer)
	keys := fg.grouper.GroupKeys()

	var parts []*frame.Frame
	var partKeys []any
	var partGroups []int
	reduced, aligned := true, true
	for g := range fg.starts {
		start, end := fg.starts[g], fg.ends[g]
		if start == end {
			continue
		}
		sub := ordered.Slice(start, end)
		res, err := fn(sub)
		if err != nil {
			return nil, err
		}
		if res.Len() != 1 {
			reduced = false
		}
		if !res.Index().Equal(sub.Index()) {
			aligned = false
		}
		parts = append(parts, res)
		partKeys = append(partKeys, keys[g])
		partGroups = append(partGroups, g)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: no groups to apply over", ErrNoEligibleData)
	}

	if reduced {
		combined, err := frame.ConcatFrames(parts)
		if err != nil {
			return nil, err
		}
		out, err := combined.WithIndex(fg.grouper.ResultIndex().Take(partGroups))
		if err != nil {
			return nil, err
		}
		return &ApplyResult{Kind: ApplyReduced, Frame: out}, nil
	}

	combined, err := frame.ConcatFrames(parts)
	if err != nil {
		return nil, err
	}
	if aligned {
		return &ApplyResult{Kind: ApplyAligned, Frame: combined.Reindex(fg.obj.Index())}, nil
	}
	if !fg.cfg.groupKeys {
		return &ApplyResult{Kind: ApplyArbitrary, Frame: combined}, nil
	}
	keyCodes := make([]int, 0, combined.Len())
	for i, p := range parts {
		for j := 0; j < p.Len(); j++ {
			keyCodes = append(keyCodes, i)
		}
	}
	names := fg.grouper.Names()
	keyName := names[0]
	if len(names) > 1 {
		keyName = ""
	}
	mi, err := index.PrefixLevels([][]any{partKeys}, [][]int{keyCodes}, []string{keyName}, combined.Index())
	if err != nil {
		return nil, err
	}
	out, err := combined.WithIndex(mi)
	if err != nil {
		return nil, err
	}
	return &ApplyResult{Kind: ApplyArbitrary, Frame: out}, nil
}

// GroupKeys lists the key of each group in group order.
func (fg *FrameGroupBy) GroupKeys() []any { return fg.grouper.GroupKeys() }

// Each visits every non-empty group in group order.
func (fg *FrameGroupBy) Each(fn func(key any, sub *frame.Frame) error) error {
	ordered := fg.obj.Take(fg.indexer)
	keys := fg.grouper.GroupKeys()
	for g := range fg.starts {
		start, end := fg.starts[g], fg.ends[g]
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
func (fg *FrameGroupBy) GetGroup(key any) (*frame.Frame, error) {
	g, err := findGroup(fg.grouper, key)
	if err != nil {
		return nil, err
	}
	return fg.obj.Take(fg.indexer[fg.starts[g]:fg.ends[g]]), nil
}
