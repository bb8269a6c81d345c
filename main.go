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

// Command pandas-group loads a CSV file, groups it by one or more of its
// columns, and prints a per-group reduction of every numeric column.
//
//	pandas-group -file orders.csv -by region,category -agg mean
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/frrp/pandas/core/csvimport"
	"github.com/frrp/pandas/core/frame"
	"github.com/frrp/pandas/core/groupby"
	"github.com/frrp/pandas/core/kernels"
)

func main() {
	file := flag.String("file", "", "CSV file to load")
	by := flag.String("by", "", "comma-separated key columns")
	agg := flag.String("agg", "sum", "reduction: sum, prod, mean, min, max, var, std, first, last, count")
	cols := flag.String("cols", "", "optional comma-separated columns to aggregate (default: all)")
	flag.Parse()

	if *file == "" || *by == "" {
		flag.Usage()
		log.Fatal("both -file and -by are required")
	}

	kind, err := kernels.ParseKind(*agg)
	if err != nil {
		log.Fatalf("bad -agg: %v", err)
	}

	f, err := csvimport.ImportFromFile(*file, csvimport.DefaultOptions())
	if err != nil {
		log.Fatalf("loading %s: %v", *file, err)
	}

	var keys []groupby.Key
	for _, name := range strings.Split(*by, ",") {
		keys = append(keys, groupby.ByColumn(strings.TrimSpace(name)))
	}

	fg, err := groupby.GroupFrame(f, keys)
	if err != nil {
		log.Fatalf("grouping: %v", err)
	}
	if *cols != "" {
		selected := strings.Split(*cols, ",")
		for i := range selected {
			selected[i] = strings.TrimSpace(selected[i])
		}
		if fg, err = fg.Select(selected...); err != nil {
			log.Fatalf("selecting columns: %v", err)
		}
	}

	result, err := fg.AggregateKind(kind)
	if err != nil {
		log.Fatalf("aggregating: %v", err)
	}
	printFrame(result)
}

func printFrame(f *frame.Frame) {
	names := f.ColumnNames()
	fmt.Printf("%-24s", "group")
	for _, name := range names {
		fmt.Printf("\t%s", name)
	}
	fmt.Println()
	for i := 0; i < f.Len(); i++ {
		fmt.Printf("%-24v", formatLabel(f.Index().At(i)))
		for _, name := range names {
			col, err := f.ColumnData(name)
			if err != nil {
				log.Fatalf("reading column %s: %v", name, err)
			}
			fmt.Printf("\t%v", col.At(i))
		}
		fmt.Println()
	}
}

func formatLabel(label any) string {
	if tuple, ok := label.([]any); ok {
		parts := make([]string, len(tuple))
		for i, elem := range tuple {
			parts[i] = fmt.Sprintf("%v", elem)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
	return fmt.Sprintf("%v", label)
}
