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

// config carries the grouping flags. Defaults: sorted group keys, keyed
// result index, group keys added when concatenating unaligned apply results.
type config struct {
	sort      bool
	asIndex   bool
	groupKeys bool
}

func defaultConfig() config {
	return config{sort: true, asIndex: true, groupKeys: true}
}

// Option adjusts grouping behavior.
type Option func(*config)

// WithSort controls whether group keys come out in ascending order (true,
// default) or first-observed order.
func WithSort(sort bool) Option {
	return func(c *config) { c.sort = sort }
}

// WithAsIndex controls whether aggregated output is indexed by the group
// keys (true, default) or keeps a positional index with the keys inserted as
// leading columns. Only frame grouping supports false.
func WithAsIndex(asIndex bool) Option {
	return func(c *config) { c.asIndex = asIndex }
}

// WithGroupKeys controls whether unaligned apply results are concatenated
// under an added outer key level (true, default).
func WithGroupKeys(groupKeys bool) Option {
	return func(c *config) { c.groupKeys = groupKeys }
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
