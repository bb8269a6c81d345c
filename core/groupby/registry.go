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
	"github.com/frrp/pandas/core/kernels"
)

// ReduceFunc reduces one group's values to a single number.
type ReduceFunc func(*frame.Series) (float64, error)

// The exported reducers below are usable directly and double as the fixed
// identity registry for Aggregate: passing one of them routes the call to
// the equivalent bulk kernel instead of per-group invocation.

// SumOf sums the non-missing values of a series.
func SumOf(s *frame.Series) (float64, error) {
	values, err := numericValues(s)
	if err != nil {
		return 0, err
	}
	sum, n := 0.0, 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN(), nil
	}
	return sum, nil
}

// ProdOf multiplies the non-missing values of a series.
func ProdOf(s *frame.Series) (float64, error) {
	values, err := numericValues(s)
	if err != nil {
		return 0, err
	}
	prod, n := 1.0, 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		prod *= v
		n++
	}
	if n == 0 {
		return math.NaN(), nil
	}
	return prod, nil
}

// MeanOf averages the non-missing values of a series.
func MeanOf(s *frame.Series) (float64, error) {
	values, err := numericValues(s)
	if err != nil {
		return 0, err
	}
	sum, n := 0.0, 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN(), nil
	}
	return sum / float64(n), nil
}

// MinOf returns the smallest non-missing value of a series.
func MinOf(s *frame.Series) (float64, error) {
	return extremumOf(s, func(v, best float64) bool { return v < best })
}

// MaxOf returns the largest non-missing value of a series.
func MaxOf(s *frame.Series) (float64, error) {
	return extremumOf(s, func(v, best float64) bool { return v > best })
}

func extremumOf(s *frame.Series, better func(v, best float64) bool) (float64, error) {
	values, err := numericValues(s)
	if err != nil {
		return 0, err
	}
	best, seen := math.NaN(), false
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if !seen || better(v, best) {
			best = v
			seen = true
		}
	}
	return best, nil
}

// VarOf returns the sample variance (ddof=1) of the non-missing values.
func VarOf(s *frame.Series) (float64, error) {
	values, err := numericValues(s)
	if err != nil {
		return 0, err
	}
	sum, sumsq, n := 0.0, 0.0, 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		sumsq += v * v
		n++
	}
	if n < 2 {
		return math.NaN(), nil
	}
	mean := sum / float64(n)
	variance := (sumsq - float64(n)*mean*mean) / float64(n-1)
	if variance < 0 {
		variance = 0
	}
	return variance, nil
}

// StdOf returns the sample standard deviation (ddof=1).
func StdOf(s *frame.Series) (float64, error) {
	variance, err := VarOf(s)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(variance), nil
}

// FirstOf returns the first non-missing value of a series.
func FirstOf(s *frame.Series) (float64, error) {
	values, err := numericValues(s)
	if err != nil {
		return 0, err
	}
	for _, v := range values {
		if !math.IsNaN(v) {
			return v, nil
		}
	}
	return math.NaN(), nil
}

// LastOf returns the last non-missing value of a series.
func LastOf(s *frame.Series) (float64, error) {
	values, err := numericValues(s)
	if err != nil {
		return 0, err
	}
	for i := len(values) - 1; i >= 0; i-- {
		if !math.IsNaN(values[i]) {
			return values[i], nil
		}
	}
	return math.NaN(), nil
}

func numericValues(s *frame.Series) ([]float64, error) {
	values, ok := s.Float64s()
	if !ok {
		return nil, fmt.Errorf("series %q is not numeric: %w", s.Name(), ErrNoEligibleData)
	}
	return values, nil
}

// builtinKinds maps the identity of each exported reducer to its kernel
// kind. Aggregate consults it instead of inspecting the function; anything
// not registered here runs through the per-group paths.
var builtinKinds = map[uintptr]kernels.Kind{
	reflect.ValueOf(SumOf).Pointer():   kernels.KindSum,
	reflect.ValueOf(ProdOf).Pointer():  kernels.KindProd,
	reflect.ValueOf(MeanOf).Pointer():  kernels.KindMean,
	reflect.ValueOf(MinOf).Pointer():   kernels.KindMin,
	reflect.ValueOf(MaxOf).Pointer():   kernels.KindMax,
	reflect.ValueOf(VarOf).Pointer():   kernels.KindVar,
	reflect.ValueOf(StdOf).Pointer():   kernels.KindStd,
	reflect.ValueOf(FirstOf).Pointer(): kernels.KindFirst,
	reflect.ValueOf(LastOf).Pointer():  kernels.KindLast,
}

func kindOf(fn ReduceFunc) (kernels.Kind, bool) {
	kind, ok := builtinKinds[reflect.ValueOf(fn).Pointer()]
	return kind, ok
}
