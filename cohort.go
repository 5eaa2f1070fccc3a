// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package cellfreq

import (
	"flag"
)

// Cohort selects samples by treatment, sample type, and response. An
// empty Treatment or SampleType matches any value.
type Cohort struct {
	Treatment  string
	SampleType string

	// Keep samples whose response is unknown. Comparisons between
	// responders and non-responders must leave this false.
	IncludeUnknownResponse bool
}

func (c *Cohort) Flags(flags *flag.FlagSet) {
	flags.StringVar(&c.Treatment, "treatment", "tr1", "select samples with treatment `label` (empty for any)")
	flags.StringVar(&c.SampleType, "sample-type", "PBMC", "select samples with sample type `label` (empty for any)")
}

// CohortRow is a long row annotated with its sample's response.
type CohortRow struct {
	LongRow
	Response Response `csv:"response"`
}

// Match reports whether a sample belongs to the cohort.
func (c *Cohort) Match(s *Sample) bool {
	if c.Treatment != "" && s.Treatment != c.Treatment {
		return false
	}
	if c.SampleType != "" && s.SampleType != c.SampleType {
		return false
	}
	if !c.IncludeUnknownResponse && s.Response == ResponseUnknown {
		return false
	}
	return true
}

// Select returns the cohort's samples, in input order.
func (c *Cohort) Select(freqs []SampleFrequencies) []SampleFrequencies {
	var out []SampleFrequencies
	for _, f := range freqs {
		if c.Match(&f.Sample) {
			out = append(out, f)
		}
	}
	return out
}

// Filter returns the rows whose sample is in the cohort, each
// annotated with the sample's response. Rows for samples not listed
// in samples are dropped.
func (c *Cohort) Filter(rows []LongRow, samples []Sample) []CohortRow {
	bySample := make(map[string]*Sample, len(samples))
	for i := range samples {
		bySample[samples[i].ID] = &samples[i]
	}
	var out []CohortRow
	for _, row := range rows {
		s, ok := bySample[row.Sample]
		if !ok || !c.Match(s) {
			continue
		}
		out = append(out, CohortRow{LongRow: row, Response: s.Response})
	}
	return out
}
