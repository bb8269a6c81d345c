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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runKernel(t *testing.T, kind Kind, values []float64, groupIDs []int64, ngroups int) ([][]float64, []int64) {
	t.Helper()
	kern, ok := Lookup(kind)
	require.True(t, ok, "no kernel for %s", kind)
	out := MakeOutput(ngroups, kind.Arity())
	counts := make([]int64, ngroups)
	kern(out, counts, values, groupIDs)
	kind.PostTransform(out)
	return out, counts
}

func TestGroupSum(t *testing.T) {
	values := []float64{1, 2, 2, 10}
	groupIDs := []int64{0, 1, 0, 1}
	out, counts := runKernel(t, KindSum, values, groupIDs, 2)
	assert.Equal(t, 3.0, out[0][0])
	assert.Equal(t, 12.0, out[1][0])
	assert.Equal(t, []int64{2, 2}, counts)
}

func TestKernelsSkipMissing(t *testing.T) {
	nan := math.NaN()
	values := []float64{1, nan, 3, nan}
	groupIDs := []int64{0, 0, 1, 1}

	out, counts := runKernel(t, KindSum, values, groupIDs, 2)
	assert.Equal(t, 1.0, out[0][0])
	assert.Equal(t, 3.0, out[1][0])
	assert.Equal(t, []int64{1, 1}, counts)

	out, _ = runKernel(t, KindCount, values, groupIDs, 2)
	assert.Equal(t, 1.0, out[0][0])
	assert.Equal(t, 1.0, out[1][0])
}

func TestKernelsAllMissingGroup(t *testing.T) {
	nan := math.NaN()
	values := []float64{nan, nan, 5}
	groupIDs := []int64{0, 0, 1}
	for _, kind := range []Kind{KindSum, KindProd, KindMin, KindMax, KindMean, KindFirst, KindLast} {
		out, counts := runKernel(t, kind, values, groupIDs, 2)
		assert.True(t, math.IsNaN(out[0][0]), "%s should leave an all-missing group NaN", kind)
		assert.Equal(t, int64(0), counts[0], "%s", kind)
		assert.Equal(t, 5.0, out[1][0], "%s single value", kind)
	}
}

func TestKernelsUngroupedObservations(t *testing.T) {
	values := []float64{1, 100, 2}
	groupIDs := []int64{0, -1, 0}
	out, counts := runKernel(t, KindSum, values, groupIDs, 1)
	assert.Equal(t, 3.0, out[0][0])
	assert.Equal(t, []int64{2}, counts)
}

func TestGroupMeanMinMax(t *testing.T) {
	values := []float64{10, 20, 5, -1}
	groupIDs := []int64{0, 0, 1, 1}

	out, _ := runKernel(t, KindMean, values, groupIDs, 2)
	assert.Equal(t, 15.0, out[0][0])
	assert.Equal(t, 2.0, out[1][0])

	out, _ = runKernel(t, KindMin, values, groupIDs, 2)
	assert.Equal(t, 10.0, out[0][0])
	assert.Equal(t, -1.0, out[1][0])

	out, _ = runKernel(t, KindMax, values, groupIDs, 2)
	assert.Equal(t, 20.0, out[0][0])
	assert.Equal(t, 5.0, out[1][0])
}

func TestGroupVarStd(t *testing.T) {
	values := []float64{1, 2, 3, 4, 7}
	groupIDs := []int64{0, 0, 0, 1, 1}

	out, _ := runKernel(t, KindVar, values, groupIDs, 2)
	assert.InDelta(t, 1.0, out[0][0], 1e-12)
	assert.InDelta(t, 4.5, out[1][0], 1e-12)

	out, _ = runKernel(t, KindStd, values, groupIDs, 2)
	assert.InDelta(t, 1.0, out[0][0], 1e-12)
	assert.InDelta(t, math.Sqrt(4.5), out[1][0], 1e-12)
}

func TestGroupVarSingleValue(t *testing.T) {
	values := []float64{5, 1, 2}
	groupIDs := []int64{0, 1, 1}
	out, _ := runKernel(t, KindVar, values, groupIDs, 2)
	assert.True(t, math.IsNaN(out[0][0]), "variance of one value is undefined")
	assert.InDelta(t, 0.5, out[1][0], 1e-12)
}

func TestGroupFirstLast(t *testing.T) {
	nan := math.NaN()
	values := []float64{nan, 2, 3, 9, nan}
	groupIDs := []int64{0, 0, 0, 1, 1}

	out, _ := runKernel(t, KindFirst, values, groupIDs, 2)
	assert.Equal(t, 2.0, out[0][0], "first skips leading missing values")
	assert.Equal(t, 9.0, out[1][0])

	out, _ = runKernel(t, KindLast, values, groupIDs, 2)
	assert.Equal(t, 3.0, out[0][0])
	assert.Equal(t, 9.0, out[1][0], "last skips trailing missing values")
}

func TestGroupOHLC(t *testing.T) {
	values := []float64{3, 9, 1, 4, 8, 8}
	groupIDs := []int64{0, 0, 0, 0, 1, 1}
	out, counts := runKernel(t, KindOHLC, values, groupIDs, 2)

	assert.Equal(t, []float64{3, 9, 1, 4}, out[0])
	assert.Equal(t, []float64{8, 8, 8, 8}, out[1])
	assert.Equal(t, []int64{4, 2}, counts)
}

func TestKindParse(t *testing.T) {
	cases := []struct {
		name string
		want Kind
	}{
		{"sum", KindSum},
		{"add", KindSum},
		{"prod", KindProd},
		{"product", KindProd},
		{"mean", KindMean},
		{"ohlc", KindOHLC},
	}
	for _, tc := range cases {
		got, err := ParseKind(tc.name)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.want, got, tc.name)
	}
	_, err := ParseKind("median")
	assert.Error(t, err)
}

func TestKindArityAndNames(t *testing.T) {
	assert.Equal(t, 1, KindSum.Arity())
	assert.Equal(t, 4, KindOHLC.Arity())
	assert.Equal(t, []string{"open", "high", "low", "close"}, KindOHLC.OutputNames())
}
