// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package cellfreq

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/james-bowman/nlp"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

type goPCA struct {
	cohort Cohort
}

func (cmd *goPCA) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return exitCode(cmd.run(prog, args, stdin, stdout, stderr), stderr)
}

func (cmd *goPCA) run(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	inputFilename := flags.String("i", "-", "input `file` (cell counts, delimited text, optionally .gz)")
	outputDir := flags.String("output-dir", "./out", "output `directory`")
	components := flags.Int("components", 2, "number of components")
	strict := flags.Bool("strict", false, "reject input columns other than the known sample table columns")
	cmd.cohort.Flags(flags)
	flags.BoolVar(&cmd.cohort.IncludeUnknownResponse, "include-unknown-response", true, "include samples with unknown response")
	err := parseFlags(flags, args)
	if err != nil {
		return err
	}
	if *components < 1 || *components > len(Populations) {
		return usageError{err: fmt.Errorf("invalid -components %d: must be between 1 and %d", *components, len(Populations))}
	}
	if err = os.MkdirAll(*outputDir, 0777); err != nil {
		return err
	}

	samples, err := ReadSamples(*inputFilename, stdin, LoadOptions{Strict: *strict})
	if err != nil {
		return err
	}
	var freqs []SampleFrequencies
	for _, f := range cmd.cohort.Select(Frequencies(samples)) {
		if f.Total == 0 {
			log.Warnf("excluding sample %q from PCA: total cell count is 0", f.ID)
			continue
		}
		freqs = append(freqs, f)
	}
	if len(freqs) < 2 {
		return errors.New("PCA needs at least 2 samples with non-zero cell counts")
	}

	out, rows, cols, err := frequencyPCA(freqs, *components)
	if err != nil {
		return err
	}
	fnm := *outputDir + "/pca.npy"
	log.Infof("writing numpy: %d rows, %d cols to %s", rows, cols, fnm)
	return writeOutputs(nil,
		output{fnm, numpyWriter(out, rows, cols)},
		output{*outputDir + "/samples.csv", sampleLabelWriter(freqs)})
}

// frequencyPCA projects each sample's relative frequencies onto the
// first n principal components. The result is a row-major samples x
// components array.
func frequencyPCA(freqs []SampleFrequencies, n int) (out []float64, rows, cols int, err error) {
	data, rows, cols := FrequencyMatrix(freqs)
	log.Printf("creating matrix backed by array: %d rows, %d cols", rows, cols)
	mtx := mat.NewDense(rows, cols, data).T()

	log.Print("fitting")
	transformer := nlp.NewPCA(n)
	transformer.Fit(mtx)
	pcs, err := transformer.Transform(mtx)
	if err != nil {
		return nil, 0, 0, err
	}
	pcs = pcs.T()

	rows, cols = pcs.Dims()
	out = make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out[i*cols+j] = pcs.At(i, j)
		}
	}
	return out, rows, cols, nil
}
