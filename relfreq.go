// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package cellfreq

import (
	"encoding/csv"
	"flag"
	"io"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"
)

type relFreq struct{}

func (cmd *relFreq) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return exitCode(cmd.run(prog, args, stdin, stdout, stderr), stderr)
}

func (cmd *relFreq) run(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	inputFilename := flags.String("i", "-", "input `file` (cell counts, delimited text, optionally .gz)")
	outputFilename := flags.String("o", "-", "output `file` (.csv or .csv.gz)")
	strict := flags.Bool("strict", false, "reject input columns other than the known sample table columns")
	err := parseFlags(flags, args)
	if err != nil {
		return err
	}

	samples, err := ReadSamples(*inputFilename, stdin, LoadOptions{Strict: *strict})
	if err != nil {
		return err
	}
	log.Infof("read %d samples from %s", len(samples), *inputFilename)
	rows := Melt(Frequencies(samples))
	log.Infof("writing %d rows to %s", len(rows), *outputFilename)
	return writeOutput(*outputFilename, stdout, func(w io.Writer) error {
		return writeCSV(w, rows)
	})
}

// writeCSV writes a slice of structs as CSV, with a header row taken
// from the fields' csv tags.
func writeCSV(w io.Writer, rows interface{}) error {
	return gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csv.NewWriter(w)))
}
