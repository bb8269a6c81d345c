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

// keyMapper recovers per-key codes from dense group ids by a single scan
// over the observations. It serves the factorized-tuple path, where no
// arithmetic decode exists; the mixed-radix path decodes by division
// instead.
type keyMapper struct {
	ngroups int
	tables  []map[int64]int64
}

func newKeyMapper(compIDs []int64, labelLists [][]int64, ngroups int) *keyMapper {
	m := &keyMapper{ngroups: ngroups, tables: make([]map[int64]int64, len(labelLists))}
	for k := range m.tables {
		m.tables[k] = make(map[int64]int64, ngroups)
	}
	for i, c := range compIDs {
		if c < 0 {
			continue
		}
		for k, labels := range labelLists {
			m.tables[k][c] = labels[i]
		}
	}
	return m
}

// Key returns the per-level codes of one group.
func (m *keyMapper) Key(compID int64) []int64 {
	out := make([]int64, len(m.tables))
	for k, table := range m.tables {
		out[k] = table[compID]
	}
	return out
}

// Codes lays the tables out as one slice per level, indexed by group id.
func (m *keyMapper) Codes() [][]int64 {
	out := make([][]int64, len(m.tables))
	for k, table := range m.tables {
		codes := make([]int64, m.ngroups)
		for c, code := range table {
			codes[c] = code
		}
		out[k] = codes
	}
	return out
}
