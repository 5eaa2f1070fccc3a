// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package cellfreq

import (
	"math"

	log "github.com/sirupsen/logrus"
)

// SampleFrequencies is a sample with its total cell count and the
// relative frequency (percent of total) of each population.
type SampleFrequencies struct {
	Sample
	Total   int64
	Percent [numPopulations]float64
}

// Frequencies returns the total count and per-population relative
// frequencies of each sample, in input order. Samples with a total
// count of zero get NaN percentages.
func Frequencies(samples []Sample) []SampleFrequencies {
	out := make([]SampleFrequencies, len(samples))
	for i, s := range samples {
		out[i].Sample = s
		counts := s.Counts()
		for _, n := range counts {
			out[i].Total += n
		}
		if out[i].Total == 0 {
			log.Warnf("sample %q has total cell count 0, relative frequencies are undefined", s.ID)
			for p := range out[i].Percent {
				out[i].Percent[p] = math.NaN()
			}
			continue
		}
		for p, n := range counts {
			out[i].Percent[p] = 100 * float64(n) / float64(out[i].Total)
		}
	}
	return out
}

// FrequencyMatrix returns the percentages of the given samples as a
// row-major samples x populations array.
func FrequencyMatrix(freqs []SampleFrequencies) (data []float64, rows, cols int) {
	rows, cols = len(freqs), numPopulations
	data = make([]float64, 0, rows*cols)
	for _, f := range freqs {
		data = append(data, f.Percent[:]...)
	}
	return
}
