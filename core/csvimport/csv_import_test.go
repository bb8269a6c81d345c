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

package csvimport

import (
	"math"
	"strings"
	"testing"

	"github.com/frrp/pandas/core/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportTypeDetection(t *testing.T) {
	input := strings.Join([]string{
		"name,count,price,active",
		"alpha,3,1.5,true",
		"beta,7,2.25,false",
	}, "\n")

	f, err := ImportFromReader(strings.NewReader(input), DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, []string{"name", "count", "price", "active"}, f.ColumnNames())

	name, err := f.ColumnData("name")
	require.NoError(t, err)
	_, ok := name.(*frame.StringColumn)
	assert.True(t, ok)

	count, err := f.ColumnData("count")
	require.NoError(t, err)
	ic, ok := count.(*frame.Int64Column)
	require.True(t, ok)
	assert.Equal(t, []int64{3, 7}, ic.Values())

	price, err := f.ColumnData("price")
	require.NoError(t, err)
	fc, ok := price.(*frame.Float64Column)
	require.True(t, ok)
	assert.Equal(t, []float64{1.5, 2.25}, fc.Values())

	active, err := f.ColumnData("active")
	require.NoError(t, err)
	_, ok = active.(*frame.BoolColumn)
	assert.True(t, ok)
	assert.Equal(t, true, active.At(0))
}

func TestImportNumericOverBool(t *testing.T) {
	// 0/1 cells parse as booleans too; the numeric reading wins.
	input := "flag\n0\n1\n1\n"
	f, err := ImportFromReader(strings.NewReader(input), DefaultOptions())
	require.NoError(t, err)

	flag, err := f.ColumnData("flag")
	require.NoError(t, err)
	ic, ok := flag.(*frame.Int64Column)
	require.True(t, ok)
	assert.Equal(t, []int64{0, 1, 1}, ic.Values())
}

func TestImportEmptyCellsBecomeNaN(t *testing.T) {
	// A fully blank line would be skipped by the reader; an empty cell
	// next to a populated one is what forces float storage.
	input := "x,tag\n1,a\n,b\n3,c\n"
	f, err := ImportFromReader(strings.NewReader(input), DefaultOptions())
	require.NoError(t, err)

	x, err := f.ColumnData("x")
	require.NoError(t, err)
	fc, ok := x.(*frame.Float64Column)
	require.True(t, ok)
	values := fc.Values()
	assert.Equal(t, 1.0, values[0])
	assert.True(t, math.IsNaN(values[1]))
	assert.Equal(t, 3.0, values[2])
}

func TestImportWithoutHeader(t *testing.T) {
	opts := DefaultOptions()
	opts.HasHeader = false

	f, err := ImportFromReader(strings.NewReader("a,1\nb,2\n"), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"column_1", "column_2"}, f.ColumnNames())
	assert.Equal(t, 2, f.Len())
}

func TestImportIndexColumn(t *testing.T) {
	opts := DefaultOptions()
	opts.IndexColumn = "id"

	f, err := ImportFromReader(strings.NewReader("id,v\na,1\nb,2\n"), opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"v"}, f.ColumnNames())
	assert.Equal(t, "a", f.Index().At(0))
	assert.Equal(t, "b", f.Index().At(1))

	opts.IndexColumn = "missing"
	_, err = ImportFromReader(strings.NewReader("id,v\na,1\n"), opts)
	assert.Error(t, err)
}

func TestImportTypeOverride(t *testing.T) {
	opts := DefaultOptions()
	opts.ColumnTypes["code"] = ColumnTypeString

	f, err := ImportFromReader(strings.NewReader("code\n001\n002\n"), opts)
	require.NoError(t, err)

	code, err := f.ColumnData("code")
	require.NoError(t, err)
	sc, ok := code.(*frame.StringColumn)
	require.True(t, ok)
	assert.Equal(t, []string{"001", "002"}, sc.Values())
}

func TestImportCustomDelimiter(t *testing.T) {
	opts := DefaultOptions()
	opts.Delimiter = ';'

	f, err := ImportFromReader(strings.NewReader("a;b\n1;2\n"), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, f.ColumnNames())
}

func TestImportRejectsEmptyInput(t *testing.T) {
	_, err := ImportFromReader(strings.NewReader(""), DefaultOptions())
	assert.Error(t, err)

	_, err = ImportFromReader(strings.NewReader("only,a,header\n"), DefaultOptions())
	assert.Error(t, err)
}
