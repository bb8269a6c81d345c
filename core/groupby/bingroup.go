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

	"github.com/frrp/pandas/core/index"
	"github.com/frrp/pandas/core/kernels"
)

// BinGroupIndex groups already-ordered observations into contiguous
// bins. bins[g] is the end offset (exclusive) of bin g; observations
// past the last offset fall into the last bin. Unlike key groupings,
// empty bins stay in reduction output unless filtering is requested.
type BinGroupIndex struct {
	bins        []int64
	labels      *index.Index
	n           int
	filterEmpty bool
}

// NewBinGroupIndex builds a bin grouping over n observations. bins must
// be non-decreasing end offsets, one per label.
func NewBinGroupIndex(bins []int64, labels *index.Index, n int, filterEmpty bool) (*BinGroupIndex, error) {
	if labels.Len() != len(bins) {
		return nil, fmt.Errorf("%w: %d bins but %d labels", ErrConfiguration, len(bins), labels.Len())
	}
	for i := 1; i < len(bins); i++ {
		if bins[i] < bins[i-1] {
			return nil, fmt.Errorf("%w: bin offsets must be non-decreasing, got %d after %d", ErrConfiguration, bins[i], bins[i-1])
		}
	}
	return &BinGroupIndex{bins: bins, labels: labels, n: n, filterEmpty: filterEmpty}, nil
}

// BinByEdges cuts sorted values at the given edges and labels each bin
// with its right edge. Values must lie within [edges[0], edges[last]].
func BinByEdges(values, edges []float64, closed kernels.Closed, filterEmpty bool) (*BinGroupIndex, error) {
	bins, err := kernels.GenerateBins(values, edges, closed)
	if err != nil {
		return nil, err
	}
	labels := make([]any, len(bins))
	for i := range labels {
		labels[i] = edges[i+1]
	}
	return NewBinGroupIndex(bins, index.New(labels, ""), len(values), filterEmpty)
}

// NGroups implements Grouper.
func (bg *BinGroupIndex) NGroups() int { return len(bg.bins) }

// Names implements Grouper.
func (bg *BinGroupIndex) Names() []string { return []string{bg.labels.Name()} }

// GroupIDs implements Grouper. Observations are already in group order,
// so ids are a run-length expansion of the bin offsets.
func (bg *BinGroupIndex) GroupIDs() []int64 {
	return kernels.BinGroupIDs(bg.bins, bg.n)
}

// GroupKeys implements Grouper.
func (bg *BinGroupIndex) GroupKeys() []any { return bg.labels.Labels() }

// ResultIndex implements Grouper.
func (bg *BinGroupIndex) ResultIndex() index.Axis { return bg.labels }

// FilterEmpty implements Grouper.
func (bg *BinGroupIndex) FilterEmpty() bool { return bg.filterEmpty }

// Sizes returns the number of observations per bin.
func (bg *BinGroupIndex) Sizes() []int64 {
	sizes := make([]int64, len(bg.bins))
	prev := int64(0)
	for g, end := range bg.bins {
		if end > int64(bg.n) {
			end = int64(bg.n)
		}
		sizes[g] = end - prev
		prev = end
	}
	// Trailing observations beyond the last offset belong to the last
	// bin.
	if len(bg.bins) > 0 && int64(bg.n) > bg.bins[len(bg.bins)-1] {
		sizes[len(bg.bins)-1] += int64(bg.n) - bg.bins[len(bg.bins)-1]
	}
	return sizes
}
