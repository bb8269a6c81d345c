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

// Package kernels provides the bulk numeric reduction kernels used by grouped
// computation, plus the factorization and sorting primitives the group engine
// is built on. Every kernel is a single sequential pass over contiguous
// memory with the fixed signature
//
//	kernel(out, counts, values, groupIDs)
//
// where out is a (ngroups x arity) buffer, counts receives the number of
// non-missing values seen per group, and groupIDs assigns each observation to
// a compact group id (-1 = no group, the observation is skipped). NaN input
// values are treated as missing and never contribute to a reduction; a group
// that contributes no values is left as NaN with a zero count.
package kernels

import (
	"fmt"
	"math"
)

// Kind identifies a built-in reduction.
type Kind int

const (
	KindSum Kind = iota
	KindProd
	KindMin
	KindMax
	KindMean
	KindVar
	KindStd
	KindFirst
	KindLast
	KindCount
	KindOHLC
)

var kindNames = map[Kind]string{
	KindSum:   "sum",
	KindProd:  "prod",
	KindMin:   "min",
	KindMax:   "max",
	KindMean:  "mean",
	KindVar:   "var",
	KindStd:   "std",
	KindFirst: "first",
	KindLast:  "last",
	KindCount: "count",
	KindOHLC:  "ohlc",
}

// String returns the canonical name of the reduction kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Arity returns the number of output values the kind produces per group.
func (k Kind) Arity() int {
	if k == KindOHLC {
		return 4
	}
	return 1
}

// OutputNames returns the per-column output names for multi-column kinds, or
// nil for single-value kinds.
func (k Kind) OutputNames() []string {
	if k == KindOHLC {
		return []string{"open", "high", "low", "close"}
	}
	return nil
}

// ParseKind resolves a reduction name to its Kind. "add" and "product" are
// accepted as aliases for sum and prod.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "add":
		return KindSum, nil
	case "product":
		return KindProd, nil
	}
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown reduction kind %q", name)
}

// Kernel is the fixed signature shared by all bulk reduction kernels.
type Kernel func(out [][]float64, counts []int64, values []float64, groupIDs []int64)

var kernelTable = map[Kind]Kernel{
	KindSum:   groupSum,
	KindProd:  groupProd,
	KindMin:   groupMin,
	KindMax:   groupMax,
	KindMean:  groupMean,
	KindVar:   groupVar,
	KindStd:   groupVar, // sqrt applied as post-transform
	KindFirst: groupNth(0),
	KindLast:  groupLast,
	KindCount: groupCount,
	KindOHLC:  groupOHLC,
}

// Lookup returns the kernel for the given kind.
func Lookup(k Kind) (Kernel, bool) {
	fn, ok := kernelTable[k]
	return fn, ok
}

// GroupNth returns a kernel selecting the n-th non-missing occurrence
// (0-based) within each group. KindFirst is GroupNth(0).
func GroupNth(n int64) Kernel {
	return groupNth(n)
}

// PostTransform applies the kind's elementwise output transform in place.
// Only std has one (variance -> standard deviation).
func (k Kind) PostTransform(out [][]float64) {
	if k != KindStd {
		return
	}
	for _, row := range out {
		for j, v := range row {
			row[j] = math.Sqrt(v)
		}
	}
}

// MakeOutput allocates a NaN-initialized (ngroups x arity) output buffer.
func MakeOutput(ngroups, arity int) [][]float64 {
	out := make([][]float64, ngroups)
	backing := make([]float64, ngroups*arity)
	for i := range backing {
		backing[i] = math.NaN()
	}
	for g := range out {
		out[g] = backing[g*arity : (g+1)*arity : (g+1)*arity]
	}
	return out
}

func groupSum(out [][]float64, counts []int64, values []float64, groupIDs []int64) {
	for i, v := range values {
		g := groupIDs[i]
		if g < 0 || math.IsNaN(v) {
			continue
		}
		if counts[g] == 0 {
			out[g][0] = v
		} else {
			out[g][0] += v
		}
		counts[g]++
	}
}

func groupProd(out [][]float64, counts []int64, values []float64, groupIDs []int64) {
	for i, v := range values {
		g := groupIDs[i]
		if g < 0 || math.IsNaN(v) {
			continue
		}
		if counts[g] == 0 {
			out[g][0] = v
		} else {
			out[g][0] *= v
		}
		counts[g]++
	}
}

func groupMin(out [][]float64, counts []int64, values []float64, groupIDs []int64) {
	for i, v := range values {
		g := groupIDs[i]
		if g < 0 || math.IsNaN(v) {
			continue
		}
		if counts[g] == 0 || v < out[g][0] {
			out[g][0] = v
		}
		counts[g]++
	}
}

func groupMax(out [][]float64, counts []int64, values []float64, groupIDs []int64) {
	for i, v := range values {
		g := groupIDs[i]
		if g < 0 || math.IsNaN(v) {
			continue
		}
		if counts[g] == 0 || v > out[g][0] {
			out[g][0] = v
		}
		counts[g]++
	}
}

func groupMean(out [][]float64, counts []int64, values []float64, groupIDs []int64) {
	groupSum(out, counts, values, groupIDs)
	for g := range out {
		if counts[g] > 0 {
			out[g][0] /= float64(counts[g])
		}
	}
}

// groupVar computes the sample variance (ddof=1) per group using shifted
// sums of squares. Groups with fewer than two values are left as NaN.
func groupVar(out [][]float64, counts []int64, values []float64, groupIDs []int64) {
	ngroups := len(out)
	sums := make([]float64, ngroups)
	sumsq := make([]float64, ngroups)
	for i, v := range values {
		g := groupIDs[i]
		if g < 0 || math.IsNaN(v) {
			continue
		}
		sums[g] += v
		sumsq[g] += v * v
		counts[g]++
	}
	for g := range out {
		n := float64(counts[g])
		if counts[g] < 2 {
			out[g][0] = math.NaN()
			continue
		}
		mean := sums[g] / n
		variance := (sumsq[g] - n*mean*mean) / (n - 1)
		if variance < 0 {
			variance = 0
		}
		out[g][0] = variance
	}
}

func groupNth(n int64) Kernel {
	return func(out [][]float64, counts []int64, values []float64, groupIDs []int64) {
		for i, v := range values {
			g := groupIDs[i]
			if g < 0 || math.IsNaN(v) {
				continue
			}
			if counts[g] == n {
				out[g][0] = v
			}
			counts[g]++
		}
	}
}

func groupLast(out [][]float64, counts []int64, values []float64, groupIDs []int64) {
	for i, v := range values {
		g := groupIDs[i]
		if g < 0 || math.IsNaN(v) {
			continue
		}
		out[g][0] = v
		counts[g]++
	}
}

func groupCount(out [][]float64, counts []int64, values []float64, groupIDs []int64) {
	for i, v := range values {
		g := groupIDs[i]
		if g < 0 || math.IsNaN(v) {
			continue
		}
		counts[g]++
	}
	for g := range out {
		out[g][0] = float64(counts[g])
	}
}

// groupOHLC fills out[g] with the open, high, low and close values seen per
// group, in observation order.
func groupOHLC(out [][]float64, counts []int64, values []float64, groupIDs []int64) {
	for i, v := range values {
		g := groupIDs[i]
		if g < 0 || math.IsNaN(v) {
			continue
		}
		if counts[g] == 0 {
			out[g][0] = v // open
			out[g][1] = v // high
			out[g][2] = v // low
		} else {
			if v > out[g][1] {
				out[g][1] = v
			}
			if v < out[g][2] {
				out[g][2] = v
			}
		}
		out[g][3] = v // close
		counts[g]++
	}
}
