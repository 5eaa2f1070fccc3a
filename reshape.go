// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package cellfreq

import (
	"fmt"
)

// LongRow is the count and relative frequency of one population in
// one sample.
type LongRow struct {
	Sample     string  `csv:"sample"`
	TotalCount int64   `csv:"total_count"`
	Population string  `csv:"population"`
	Count      int64   `csv:"count"`
	Percentage float64 `csv:"percentage"`
}

// Melt converts per-sample frequencies to one row per (sample,
// population), ordered by sample and then by population.
func Melt(freqs []SampleFrequencies) []LongRow {
	rows := make([]LongRow, 0, len(freqs)*numPopulations)
	for _, f := range freqs {
		counts := f.Counts()
		for p, name := range Populations {
			rows = append(rows, LongRow{
				Sample:     f.ID,
				TotalCount: f.Total,
				Population: name,
				Count:      counts[p],
				Percentage: f.Percent[p],
			})
		}
	}
	return rows
}

// WideCounts holds one sample's counts in Populations order.
type WideCounts struct {
	Sample string
	Total  int64
	Counts [numPopulations]int64
}

// Regroup is the inverse of Melt: it collects long rows back into one
// record per sample, in order of first appearance. Every sample must
// have exactly one row per population.
func Regroup(rows []LongRow) ([]WideCounts, error) {
	popIndex := make(map[string]int, len(Populations))
	for i, name := range Populations {
		popIndex[name] = i
	}
	var out []WideCounts
	index := map[string]int{}
	seen := map[string]*[numPopulations]bool{}
	for _, row := range rows {
		p, ok := popIndex[row.Population]
		if !ok {
			return nil, fmt.Errorf("sample %q: unknown population %q", row.Sample, row.Population)
		}
		i, ok := index[row.Sample]
		if !ok {
			i = len(out)
			index[row.Sample] = i
			seen[row.Sample] = new([numPopulations]bool)
			out = append(out, WideCounts{Sample: row.Sample, Total: row.TotalCount})
		}
		if seen[row.Sample][p] {
			return nil, fmt.Errorf("sample %q: duplicate row for population %q", row.Sample, row.Population)
		}
		seen[row.Sample][p] = true
		out[i].Counts[p] = row.Count
	}
	for _, w := range out {
		for p, ok := range seen[w.Sample] {
			if !ok {
				return nil, fmt.Errorf("sample %q: no row for population %q", w.Sample, Populations[p])
			}
		}
	}
	return out, nil
}
