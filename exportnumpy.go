// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package cellfreq

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/kshedden/gonpy"
	log "github.com/sirupsen/logrus"
)

type exportNumpy struct {
	cohort Cohort
}

func (cmd *exportNumpy) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return exitCode(cmd.run(prog, args, stdin, stdout, stderr), stderr)
}

func (cmd *exportNumpy) run(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	inputFilename := flags.String("i", "-", "input `file` (cell counts, delimited text, optionally .gz)")
	outputDir := flags.String("output-dir", "./out", "output `directory`")
	strict := flags.Bool("strict", false, "reject input columns other than the known sample table columns")
	cmd.cohort.Flags(flags)
	flags.BoolVar(&cmd.cohort.IncludeUnknownResponse, "include-unknown-response", true, "include samples with unknown response")
	err := parseFlags(flags, args)
	if err != nil {
		return err
	}
	if err = os.MkdirAll(*outputDir, 0777); err != nil {
		return err
	}

	samples, err := ReadSamples(*inputFilename, stdin, LoadOptions{Strict: *strict})
	if err != nil {
		return err
	}
	freqs := cmd.cohort.Select(Frequencies(samples))
	if len(freqs) == 0 {
		return fmt.Errorf("no samples match the selected treatment and sample type")
	}
	data, rows, cols := FrequencyMatrix(freqs)

	fnm := *outputDir + "/matrix.npy"
	log.Infof("writing numpy: %d rows, %d cols to %s", rows, cols, fnm)
	return writeOutputs(nil,
		output{fnm, numpyWriter(data, rows, cols)},
		output{*outputDir + "/samples.csv", sampleLabelWriter(freqs)})
}

func numpyWriter(data []float64, rows, cols int) func(io.Writer) error {
	return func(w io.Writer) error {
		npw, err := gonpy.NewWriter(nopCloser{w})
		if err != nil {
			return err
		}
		npw.Shape = []int{rows, cols}
		return npw.WriteFloat64(data)
	}
}

type sampleLabel struct {
	Index      int      `csv:"index"`
	Sample     string   `csv:"sample"`
	Treatment  string   `csv:"treatment"`
	SampleType string   `csv:"sample_type"`
	Response   Response `csv:"response"`
	TotalCount int64    `csv:"total_count"`
}

// sampleLabelWriter writes one row per matrix row, so rows of the
// numpy output can be matched to sample ids.
func sampleLabelWriter(freqs []SampleFrequencies) func(io.Writer) error {
	labels := make([]sampleLabel, len(freqs))
	for i, f := range freqs {
		labels[i] = sampleLabel{
			Index:      i,
			Sample:     f.ID,
			Treatment:  f.Treatment,
			SampleType: f.SampleType,
			Response:   f.Response,
			TotalCount: f.Total,
		}
	}
	return func(w io.Writer) error {
		return writeCSV(w, labels)
	}
}
