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
	"testing"

	"github.com/frrp/pandas/core/frame"
	"github.com/frrp/pandas/core/index"
	"github.com/frrp/pandas/core/kernels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatSeries(t *testing.T, name string, values []float64) *frame.Series {
	t.Helper()
	s, err := frame.NewSeries(frame.NewFloat64Column(name, values), nil)
	require.NoError(t, err)
	return s
}

func seriesValues(t *testing.T, s *frame.Series) []float64 {
	t.Helper()
	values, ok := s.Float64s()
	require.True(t, ok)
	return values
}

func TestSeriesSumSingleKey(t *testing.T) {
	s := floatSeries(t, "v", []float64{1, 2, 2, 10})
	sg, err := GroupSeries(s, []Key{ByValues("k", []any{"a", "b", "a", "b"})})
	require.NoError(t, err)

	out, err := sg.Sum()
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 12}, seriesValues(t, out))
	assert.Equal(t, "a", out.Index().At(0))
	assert.Equal(t, "b", out.Index().At(1))

	// The identity-registered reducer routes to the same kernel.
	viaFunc, err := sg.Aggregate(SumOf)
	require.NoError(t, err)
	assert.True(t, out.Equal(viaFunc))
}

func TestSeriesAggregateCustomFunc(t *testing.T) {
	s := floatSeries(t, "v", []float64{1, 5, 2, 8})
	sg, err := GroupSeries(s, []Key{ByValues("k", []any{"a", "b", "a", "b"})})
	require.NoError(t, err)

	spread := func(sub *frame.Series) (float64, error) {
		values, _ := sub.Float64s()
		lo, hi := values[0], values[0]
		for _, v := range values[1:] {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		return hi - lo, nil
	}
	out, err := sg.Aggregate(spread)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3}, seriesValues(t, out))
}

func TestSeriesMeanTwoKeys(t *testing.T) {
	s := floatSeries(t, "v", []float64{10, 20, 30})
	sg, err := GroupSeries(s, []Key{
		ByValues("letter", []any{"x", "x", "y"}),
		ByValues("number", []any{1, 1, 2}),
	})
	require.NoError(t, err)

	out, err := sg.Mean()
	require.NoError(t, err)
	assert.Equal(t, []float64{15, 30}, seriesValues(t, out))

	mi, ok := out.Index().(*index.Multi)
	require.True(t, ok, "multi-key grouping produces a hierarchical index")
	assert.Equal(t, []string{"letter", "number"}, mi.Names())
	assert.Equal(t, []any{"x", 1}, mi.At(0))
	assert.Equal(t, []any{"y", 2}, mi.At(1))
}

func TestSeriesGroupOrderUnsorted(t *testing.T) {
	s := floatSeries(t, "v", []float64{1, 2, 3, 4})
	keys := []Key{ByValues("k", []any{"b", "a", "b", "c"})}

	sorted, err := GroupSeries(s, keys)
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b", "c"}, sorted.GroupKeys())

	unsorted, err := GroupSeries(s, keys, WithSort(false))
	require.NoError(t, err)
	assert.Equal(t, []any{"b", "a", "c"}, unsorted.GroupKeys())

	out, err := unsorted.Sum()
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 2, 4}, seriesValues(t, out))
}

func TestSeriesMissingKeysExcluded(t *testing.T) {
	s := floatSeries(t, "v", []float64{1, 100, 2})
	sg, err := GroupSeries(s, []Key{ByValues("k", []any{"a", nil, "a"})})
	require.NoError(t, err)

	out, err := sg.Sum()
	require.NoError(t, err)
	assert.Equal(t, []float64{3}, seriesValues(t, out))

	size, err := sg.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(2), size.At(0), "missing-key rows belong to no group")
}

func TestSeriesAllMissingGroupDropped(t *testing.T) {
	nan := math.NaN()
	s := floatSeries(t, "v", []float64{nan, nan, 7})
	sg, err := GroupSeries(s, []Key{ByValues("k", []any{"a", "a", "b"})})
	require.NoError(t, err)

	out, err := sg.Sum()
	require.NoError(t, err)
	assert.Equal(t, 1, out.Len(), "a group with no usable values is dropped")
	assert.Equal(t, "b", out.Index().At(0))
}

// Group sizes must partition the keyed observations.
func TestSizesSumToObservations(t *testing.T) {
	s := floatSeries(t, "v", []float64{1, 2, 3, 4, 5, 6})
	sg, err := GroupSeries(s, []Key{ByValues("k", []any{"a", "b", nil, "a", "c", "a"})})
	require.NoError(t, err)

	size, err := sg.Size()
	require.NoError(t, err)
	total := int64(0)
	for i := 0; i < size.Len(); i++ {
		total += size.At(i).(int64)
	}
	assert.Equal(t, int64(5), total)
}

func TestSeriesNth(t *testing.T) {
	s := floatSeries(t, "v", []float64{1, 2, 3})
	sg, err := GroupSeries(s, []Key{ByValues("k", []any{"a", "a", "a"})})
	require.NoError(t, err)

	out, err := sg.Nth(1)
	require.NoError(t, err)
	assert.Equal(t, 2.0, out.At(0))

	out, err = sg.Nth(5)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(out.At(0).(float64)), "position past the group is missing")

	out, err = sg.Nth(-1)
	require.NoError(t, err)
	assert.Equal(t, 3.0, out.At(0))
}

func TestSeriesVarStd(t *testing.T) {
	s := floatSeries(t, "v", []float64{1, 2, 3, 4, 7})
	sg, err := GroupSeries(s, []Key{ByValues("k", []any{"a", "a", "a", "b", "b"})})
	require.NoError(t, err)

	out, err := sg.Var()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, seriesValues(t, out)[0], 1e-12)
	assert.InDelta(t, 4.5, seriesValues(t, out)[1], 1e-12)

	out, err = sg.Std()
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(4.5), seriesValues(t, out)[1], 1e-12)
}

func TestSeriesTransformBroadcast(t *testing.T) {
	s := floatSeries(t, "v", []float64{1, 3, 10, 30})
	sg, err := GroupSeries(s, []Key{ByValues("k", []any{"a", "b", "a", "b"})})
	require.NoError(t, err)

	out, err := sg.Transform(func(sub *frame.Series) (any, error) {
		return MeanOf(sub)
	})
	require.NoError(t, err)

	assert.Equal(t, s.Len(), out.Len(), "transform preserves shape")
	assert.True(t, out.Index().Equal(s.Index()), "transform preserves the axis")
	assert.Equal(t, []float64{5.5, 16.5, 5.5, 16.5}, seriesValues(t, out))
}

func TestSeriesTransformSeriesResult(t *testing.T) {
	s := floatSeries(t, "v", []float64{1, 2, 10, 20})
	sg, err := GroupSeries(s, []Key{ByValues("k", []any{"a", "a", "b", "b"})})
	require.NoError(t, err)

	demean := func(sub *frame.Series) (any, error) {
		mean, err := MeanOf(sub)
		if err != nil {
			return nil, err
		}
		values, _ := sub.Float64s()
		out := make([]float64, len(values))
		for i, v := range values {
			out[i] = v - mean
		}
		return frame.NewSeries(frame.NewFloat64Column(sub.Name(), out), sub.Index())
	}
	out, err := sg.Transform(demean)
	require.NoError(t, err)
	assert.Equal(t, []float64{-0.5, 0.5, -5, 5}, seriesValues(t, out))
}

func TestSeriesTransformShapeMismatch(t *testing.T) {
	s := floatSeries(t, "v", []float64{1, 2, 3})
	sg, err := GroupSeries(s, []Key{ByValues("k", []any{"a", "a", "a"})})
	require.NoError(t, err)

	_, err = sg.Transform(func(sub *frame.Series) (any, error) {
		return sub.Slice(0, 1), nil
	})
	assert.ErrorIs(t, err, ErrReductionShape)
}

func TestSeriesApplyAligned(t *testing.T) {
	s := floatSeries(t, "v", []float64{1, 2, 10, 20})
	sg, err := GroupSeries(s, []Key{ByValues("k", []any{"a", "b", "a", "b"})})
	require.NoError(t, err)

	out, err := sg.Apply(func(sub *frame.Series) (*frame.Series, error) {
		mean, err := MeanOf(sub)
		if err != nil {
			return nil, err
		}
		values, _ := sub.Float64s()
		demeaned := make([]float64, len(values))
		for i, v := range values {
			demeaned[i] = v - mean
		}
		return frame.NewSeries(frame.NewFloat64Column(sub.Name(), demeaned), sub.Index())
	})
	require.NoError(t, err)

	assert.True(t, out.Index().Equal(s.Index()), "same-index results stitch back onto the original axis")
	assert.Equal(t, []float64{-4.5, -9, 4.5, 9}, seriesValues(t, out))
}

func TestSeriesApplyArbitrary(t *testing.T) {
	s, err := frame.NewSeries(
		frame.NewFloat64Column("v", []float64{3, 1, 20, 10}),
		index.FromStrings([]string{"r0", "r1", "r2", "r3"}, ""),
	)
	require.NoError(t, err)
	sg, err := GroupSeries(s, []Key{ByValues("k", []any{"a", "a", "b", "b"})})
	require.NoError(t, err)

	// Relabel each group's rows from zero, so results align with nothing.
	out, err := sg.Apply(func(sub *frame.Series) (*frame.Series, error) {
		values, _ := sub.Float64s()
		return frame.NewSeries(
			frame.NewFloat64Column(sub.Name(), values),
			index.NewRange(len(values)),
		)
	})
	require.NoError(t, err)

	mi, ok := out.Index().(*index.Multi)
	require.True(t, ok, "unaligned results concatenate under a key level")
	assert.Equal(t, []any{"a", 0}, mi.At(0))
	assert.Equal(t, []any{"b", 0}, mi.At(2))
	assert.Equal(t, []float64{3, 1, 20, 10}, seriesValues(t, out))
}

func TestSeriesAggregateAny(t *testing.T) {
	s := floatSeries(t, "v", []float64{1, 2, 3})
	sg, err := GroupSeries(s, []Key{ByValues("k", []any{"a", "a", "b"})})
	require.NoError(t, err)

	out, err := sg.AggregateAny(func(sub *frame.Series) (any, error) {
		return fmt.Sprintf("n=%d", sub.Len()), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "n=2", out.At(0))
	assert.Equal(t, "n=1", out.At(1))

	_, err = sg.AggregateAny(func(sub *frame.Series) (any, error) {
		return sub, nil
	})
	assert.ErrorIs(t, err, ErrReductionShape)
}

func TestSeriesOHLC(t *testing.T) {
	s := floatSeries(t, "v", []float64{3, 9, 1, 4, 8, 8})
	sg, err := GroupSeries(s, []Key{ByValues("k", []any{"a", "a", "a", "a", "b", "b"})})
	require.NoError(t, err)

	out, err := sg.OHLC()
	require.NoError(t, err)
	assert.Equal(t, []string{"open", "high", "low", "close"}, out.ColumnNames())
	for name, want := range map[string][]float64{
		"open": {3, 8}, "high": {9, 8}, "low": {1, 8}, "close": {4, 8},
	} {
		col, err := out.ColumnData(name)
		require.NoError(t, err)
		values, _ := col.Float64s()
		assert.Equal(t, want, values, name)
	}
}

func TestSeriesEachAndGetGroup(t *testing.T) {
	s := floatSeries(t, "v", []float64{1, 2, 3, 4})
	sg, err := GroupSeries(s, []Key{ByValues("k", []any{"b", "a", "b", "a"})})
	require.NoError(t, err)

	var visited []any
	err = sg.Each(func(key any, sub *frame.Series) error {
		visited = append(visited, key)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, visited)

	grp, err := sg.GetGroup("b")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3}, seriesValues(t, grp))

	_, err = sg.GetGroup("z")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestGetGroupTupleKey(t *testing.T) {
	s := floatSeries(t, "v", []float64{1, 2, 3})
	sg, err := GroupSeries(s, []Key{
		ByValues("letter", []any{"x", "x", "y"}),
		ByValues("number", []any{1, 2, 2}),
	})
	require.NoError(t, err)

	grp, err := sg.GetGroup([]any{"x", 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{2}, seriesValues(t, grp))
}

func TestByFuncAndByMap(t *testing.T) {
	s, err := frame.NewSeries(
		frame.NewFloat64Column("v", []float64{1, 2, 3, 4}),
		index.FromStrings([]string{"ant", "bee", "axolotl", "bat"}, ""),
	)
	require.NoError(t, err)

	sg, err := GroupSeries(s, []Key{ByFunc("initial", func(label any) any {
		return string(label.(string)[0])
	})})
	require.NoError(t, err)
	out, err := sg.Sum()
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 6}, seriesValues(t, out))
	assert.Equal(t, "a", out.Index().At(0))

	sg, err = GroupSeries(s, []Key{ByMap("side", map[any]any{
		"ant": "left", "bee": "right", "bat": "right",
	})})
	require.NoError(t, err)
	out, err = sg.Sum()
	require.NoError(t, err)
	// axolotl is absent from the mapping, so its row joins no group.
	assert.Equal(t, []float64{1, 6}, seriesValues(t, out))
}

func TestByLevelFlat(t *testing.T) {
	s, err := frame.NewSeries(
		frame.NewFloat64Column("v", []float64{1, 2, 3}),
		index.FromStrings([]string{"a", "b", "a"}, "lbl"),
	)
	require.NoError(t, err)

	sg, err := GroupSeries(s, []Key{ByLevel(0)})
	require.NoError(t, err)
	out, err := sg.Sum()
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 2}, seriesValues(t, out))

	ix, ok := out.Index().(*index.Index)
	require.True(t, ok)
	assert.Equal(t, "lbl", ix.Name(), "level key inherits the index name")

	_, err = GroupSeries(s, []Key{ByLevel(1)})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestByLevelMulti(t *testing.T) {
	mi, err := index.FromArrays([][]any{
		{"x", "x", "y", "y"},
		{1, 2, 1, 2},
	}, []string{"letter", "number"})
	require.NoError(t, err)
	s, err := frame.NewSeries(frame.NewFloat64Column("v", []float64{1, 2, 3, 4}), mi)
	require.NoError(t, err)

	sg, err := GroupSeries(s, []Key{ByLevel(1)})
	require.NoError(t, err)
	out, err := sg.Sum()
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 6}, seriesValues(t, out))
	assert.Equal(t, 1, out.Index().At(0))
	assert.Equal(t, 2, out.Index().At(1))
}

func TestGroupSeriesConfigurationErrors(t *testing.T) {
	s := floatSeries(t, "v", []float64{1, 2})

	_, err := GroupSeries(s, nil)
	assert.ErrorIs(t, err, ErrConfiguration, "no keys")

	_, err = GroupSeries(s, []Key{ByValues("k", []any{"a"})})
	assert.ErrorIs(t, err, ErrConfiguration, "key length mismatch")

	_, err = GroupSeries(s, []Key{ByColumn("c")})
	assert.ErrorIs(t, err, ErrConfiguration, "column keys need a frame")
}

// Grouping by many copies of one key overflows the cartesian key space
// and switches to tuple factorization; the groups and their order must
// match the plain single-key grouping exactly.
func TestOverflowFallbackMatchesDirectPath(t *testing.T) {
	const n = 100
	values := make([]float64, n)
	rawKeys := make([]any, n)
	for i := range values {
		values[i] = float64(i)
		rawKeys[i] = (i * 37) % n
	}
	s := floatSeries(t, "v", values)

	single, err := GroupSeries(s, []Key{ByValues("k", rawKeys)})
	require.NoError(t, err)

	// 100 distinct values over 11 keys: 100^11 cells, far past int64.
	wide := make([]Key, 11)
	for k := range wide {
		wide[k] = ByValues(fmt.Sprintf("k%d", k), rawKeys)
	}
	multi, err := GroupSeries(s, wide)
	require.NoError(t, err)

	wantSum, err := single.Sum()
	require.NoError(t, err)
	gotSum, err := multi.Sum()
	require.NoError(t, err)

	require.Equal(t, wantSum.Len(), gotSum.Len())
	assert.Equal(t, seriesValues(t, wantSum), seriesValues(t, gotSum))

	// Group keys agree componentwise: every tuple repeats the single key.
	singleKeys := single.GroupKeys()
	for g, key := range multi.GroupKeys() {
		tuple := key.([]any)
		require.Len(t, tuple, 11)
		for _, elem := range tuple {
			assert.Equal(t, singleKeys[g], elem)
		}
	}
}

// The mixed-radix path must reconstruct the original per-key codes from
// the compressed group ids.
func TestMultiKeyReconstruction(t *testing.T) {
	s := floatSeries(t, "v", []float64{1, 2, 3, 4, 5})
	sg, err := GroupSeries(s, []Key{
		ByValues("a", []any{"p", "q", "p", "q", "p"}),
		ByValues("b", []any{2, 2, 1, 1, 2}),
	})
	require.NoError(t, err)

	assert.Equal(t, []any{
		[]any{"p", 1},
		[]any{"p", 2},
		[]any{"q", 1},
		[]any{"q", 2},
	}, sg.GroupKeys())

	out, err := sg.Sum()
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 6, 4, 2}, seriesValues(t, out))
}

func TestBinGrouping(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6}
	bg, err := BinByEdges(values, []float64{0, 3, 6}, kernels.ClosedRight, false)
	require.NoError(t, err)

	s := floatSeries(t, "v", values)
	sg, err := GroupSeriesBy(s, bg)
	require.NoError(t, err)

	out, err := sg.Sum()
	require.NoError(t, err)
	assert.Equal(t, []float64{6, 15}, seriesValues(t, out))
	assert.Equal(t, 3.0, out.Index().At(0), "bins are labeled by their right edge")
	assert.Equal(t, 6.0, out.Index().At(1))
}

func TestBinGroupingKeepsEmptyBins(t *testing.T) {
	values := []float64{1, 9, 10}
	bg, err := BinByEdges(values, []float64{0, 4, 8, 10}, kernels.ClosedRight, false)
	require.NoError(t, err)

	s := floatSeries(t, "v", values)
	sg, err := GroupSeriesBy(s, bg)
	require.NoError(t, err)

	out, err := sg.Sum()
	require.NoError(t, err)
	require.Equal(t, 3, out.Len(), "empty bins stay in the output")
	assert.Equal(t, 1.0, seriesValues(t, out)[0])
	assert.True(t, math.IsNaN(seriesValues(t, out)[1]))
	assert.Equal(t, 19.0, seriesValues(t, out)[2])
}

func TestBinGroupingTailAttachesToLastBin(t *testing.T) {
	// Offsets stop before the end; trailing rows belong to the last bin.
	labels := index.New([]any{"lo", "hi"}, "bin")
	bg, err := NewBinGroupIndex([]int64{2, 4}, labels, 6, false)
	require.NoError(t, err)

	assert.Equal(t, []int64{0, 0, 1, 1, 1, 1}, bg.GroupIDs())
	assert.Equal(t, []int64{2, 4}, bg.Sizes())
}

func TestNewBinGroupIndexValidation(t *testing.T) {
	labels := index.New([]any{"a", "b"}, "")
	_, err := NewBinGroupIndex([]int64{2}, labels, 4, false)
	assert.ErrorIs(t, err, ErrConfiguration, "bins and labels must be parallel")

	_, err = NewBinGroupIndex([]int64{3, 2}, labels, 4, false)
	assert.ErrorIs(t, err, ErrConfiguration, "offsets must be non-decreasing")
}
