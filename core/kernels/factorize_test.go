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
)

func TestFactorizeFirstOccurrence(t *testing.T) {
	labels, uniques, counts := Factorize([]string{"b", "a", "b", "c", "a"}, false)
	assert.Equal(t, []int64{0, 1, 0, 2, 1}, labels)
	assert.Equal(t, []string{"b", "a", "c"}, uniques)
	assert.Equal(t, []int64{2, 2, 1}, counts)
}

func TestFactorizeSorted(t *testing.T) {
	labels, uniques, counts := Factorize([]string{"b", "a", "b", "c", "a"}, true)
	assert.Equal(t, []string{"a", "b", "c"}, uniques)
	assert.Equal(t, []int64{1, 0, 1, 2, 0}, labels)
	assert.Equal(t, []int64{2, 2, 1}, counts)
}

func TestFactorizeMissing(t *testing.T) {
	nan := math.NaN()
	labels, uniques, counts := Factorize([]float64{2, nan, 1, 2}, true)
	assert.Equal(t, []int64{1, -1, 0, 1}, labels)
	assert.Equal(t, []float64{1, 2}, uniques)
	assert.Equal(t, []int64{1, 2}, counts, "missing values are not counted")
}

func TestFactorizeAnyMixedTypes(t *testing.T) {
	labels, uniques, _ := FactorizeAny([]any{"x", 2, nil, "x", true}, true)
	// bool < number < string in the total order.
	assert.Equal(t, []any{true, 2, "x"}, uniques)
	assert.Equal(t, []int64{2, 1, -1, 2, 0}, labels)
}

func TestCompareTotalOrder(t *testing.T) {
	assert.Negative(t, Compare(false, true))
	assert.Negative(t, Compare(true, 0))
	assert.Negative(t, Compare(int64(3), 3.5))
	assert.Negative(t, Compare(7, "a"))
	assert.Zero(t, Compare(int64(3), 3.0))
	assert.Positive(t, Compare("b", "a"))
}

func TestFactorizeTuples(t *testing.T) {
	firsts := []int64{1, 0, 1, 0}
	seconds := []int64{0, 1, 0, 1}
	labels, uniques, counts := FactorizeTuples([][]int64{firsts, seconds}, true)
	assert.Equal(t, [][]int64{{0, 1}, {1, 0}}, uniques)
	assert.Equal(t, []int64{1, 0, 1, 0}, labels)
	assert.Equal(t, []int64{2, 2}, counts)
}

func TestFactorizeTuplesMissingComponent(t *testing.T) {
	firsts := []int64{0, -1, 0}
	seconds := []int64{1, 1, 1}
	labels, uniques, _ := FactorizeTuples([][]int64{firsts, seconds}, true)
	assert.Equal(t, []int64{0, -1, 0}, labels, "a -1 component marks the whole tuple missing")
	assert.Len(t, uniques, 1)
}

// Sorted tuple order must equal the ascending order of the mixed-radix
// encodings of the same tuples, so both grouping paths number groups the
// same way.
func TestFactorizeTuplesOrderMatchesEncoding(t *testing.T) {
	firsts := []int64{2, 0, 1, 2, 0}
	seconds := []int64{1, 2, 0, 0, 2}
	shape := []int64{3, 3}
	_, uniques, _ := FactorizeTuples([][]int64{firsts, seconds}, true)

	prev := int64(-1)
	for _, tuple := range uniques {
		enc := tuple[0]*shape[1] + tuple[1]
		assert.Greater(t, enc, prev)
		prev = enc
	}
}
