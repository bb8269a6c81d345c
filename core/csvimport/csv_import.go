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

// Package csvimport loads CSV data into frames, detecting a column type
// per header from a sample of the rows.
package csvimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/frrp/pandas/core/frame"
	"github.com/frrp/pandas/core/index"
)

// ColumnType selects the storage type for an imported column.
type ColumnType int

const (
	// ColumnTypeAuto detects the type from sampled data (default).
	ColumnTypeAuto ColumnType = iota
	// ColumnTypeString forces string storage.
	ColumnTypeString
	// ColumnTypeInt64 forces int64 storage; empty cells become 0.
	ColumnTypeInt64
	// ColumnTypeFloat64 forces float64 storage; empty cells become NaN.
	ColumnTypeFloat64
	// ColumnTypeBool forces bool storage.
	ColumnTypeBool
)

// ImportOptions configures CSV import behavior.
type ImportOptions struct {
	// HasHeader indicates whether the first row contains column headers.
	HasHeader bool
	// Delimiter is the field delimiter (defaults to comma).
	Delimiter rune
	// ColumnTypes overrides type detection for specific headers.
	ColumnTypes map[string]ColumnType
	// IndexColumn names the column to use as the frame's index. Empty
	// means a default 0..n-1 index.
	IndexColumn string
	// SampleSize is the number of rows to sample for type detection
	// (default 100).
	SampleSize int
}

// DefaultOptions returns default import options.
func DefaultOptions() ImportOptions {
	return ImportOptions{
		HasHeader:   true,
		Delimiter:   ',',
		ColumnTypes: make(map[string]ColumnType),
		SampleSize:  100,
	}
}

// ImportFromFile imports a CSV file into a frame.
func ImportFromFile(filepath string, options ImportOptions) (*frame.Frame, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ImportFromReader(file, options)
}

// ImportFromReader imports CSV data from an io.Reader into a frame.
func ImportFromReader(reader io.Reader, options ImportOptions) (*frame.Frame, error) {
	csvReader := csv.NewReader(reader)
	if options.Delimiter != 0 {
		csvReader.Comma = options.Delimiter
	}

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV input is empty")
	}

	var headers []string
	var dataRows [][]string
	if options.HasHeader {
		headers = records[0]
		dataRows = records[1:]
	} else {
		headers = make([]string, len(records[0]))
		for i := range headers {
			headers[i] = fmt.Sprintf("column_%d", i+1)
		}
		dataRows = records
	}
	if len(dataRows) == 0 {
		return nil, fmt.Errorf("CSV input has no data rows")
	}

	sampleSize := options.SampleSize
	if sampleSize <= 0 {
		sampleSize = 100
	}
	types := detectColumnTypes(headers, dataRows, sampleSize, options.ColumnTypes)

	cols := make([]frame.Column, len(headers))
	for i, header := range headers {
		col, err := buildColumn(header, i, types[i], dataRows)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}

	if options.IndexColumn == "" {
		return frame.NewFrame(index.NewRange(len(dataRows)), cols...)
	}

	var idx index.Axis
	kept := make([]frame.Column, 0, len(cols)-1)
	for _, col := range cols {
		if col.Name() == options.IndexColumn {
			labels := make([]any, col.Len())
			for j := range labels {
				labels[j] = col.At(j)
			}
			idx = index.New(labels, col.Name())
			continue
		}
		kept = append(kept, col)
	}
	if idx == nil {
		return nil, fmt.Errorf("no column %q to use as index", options.IndexColumn)
	}
	return frame.NewFrame(idx, kept...)
}

func buildColumn(header string, i int, typ ColumnType, dataRows [][]string) (frame.Column, error) {
	cell := func(row []string) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	switch typ {
	case ColumnTypeFloat64:
		data := make([]float64, len(dataRows))
		for j, row := range dataRows {
			v := cell(row)
			if v == "" {
				data[j] = math.NaN()
				continue
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				data[j] = math.NaN()
				continue
			}
			data[j] = f
		}
		return frame.NewFloat64Column(header, data), nil
	case ColumnTypeInt64:
		data := make([]int64, len(dataRows))
		for j, row := range dataRows {
			v := cell(row)
			if v == "" {
				continue
			}
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("column %q row %d: %w", header, j, err)
			}
			data[j] = n
		}
		return frame.NewInt64Column(header, data), nil
	case ColumnTypeBool:
		data := make([]bool, len(dataRows))
		for j, row := range dataRows {
			b, err := parseBool(cell(row))
			if err != nil {
				return nil, fmt.Errorf("column %q row %d: %w", header, j, err)
			}
			data[j] = b
		}
		return frame.NewBoolColumn(header, data), nil
	default:
		data := make([]string, len(dataRows))
		for j, row := range dataRows {
			data[j] = cell(row)
		}
		return frame.NewStringColumn(header, data), nil
	}
}

// detectColumnTypes samples rows to classify each column. A column where
// every sampled non-empty cell parses as an integer becomes int64, as a
// float becomes float64, as a boolean becomes bool; anything else stays
// string.
func detectColumnTypes(headers []string, dataRows [][]string, sampleSize int, overrides map[string]ColumnType) []ColumnType {
	types := make([]ColumnType, len(headers))
	rowsToSample := sampleSize
	if rowsToSample > len(dataRows) {
		rowsToSample = len(dataRows)
	}

	for i, header := range headers {
		if typ, ok := overrides[header]; ok && typ != ColumnTypeAuto {
			types[i] = typ
			continue
		}

		isInt, isFloat, isBool := true, true, true
		hasNonEmpty := false
		for j := 0; j < rowsToSample; j++ {
			if i >= len(dataRows[j]) {
				continue
			}
			v := strings.TrimSpace(dataRows[j][i])
			if v == "" {
				// Empty cells have no integer representation; a column
				// with holes stores floats so they can be NaN.
				isInt = false
				continue
			}
			hasNonEmpty = true
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				isInt = false
			}
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				isFloat = false
			}
			if _, err := parseBool(v); err != nil {
				isBool = false
			}
		}

		switch {
		case !hasNonEmpty:
			types[i] = ColumnTypeString
		case isInt:
			types[i] = ColumnTypeInt64
		case isFloat:
			types[i] = ColumnTypeFloat64
		case isBool:
			types[i] = ColumnTypeBool
		default:
			types[i] = ColumnTypeString
		}
	}
	return types
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "true", "t", "yes", "y", "1":
		return true, nil
	case "false", "f", "no", "n", "0", "":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean value: %q", v)
}
