// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package cellfreq

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"strings"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// SignificanceLevel is the adjusted p-value threshold below which a
// population is reported as significantly different between
// responders and non-responders.
const SignificanceLevel = 0.05

type TestMethod string

const (
	TestStudentT TestMethod = "t-test"
	TestLogistic TestMethod = "logistic"
)

func (m TestMethod) test(responders, nonResponders []float64) (TestStatistic, error) {
	switch m {
	case TestStudentT, "":
		return StudentTTest(responders, nonResponders)
	case TestLogistic:
		return LogisticLRTest(responders, nonResponders)
	default:
		return TestStatistic{Statistic: math.NaN(), PValue: math.NaN()}, fmt.Errorf("unknown test method %q", m)
	}
}

// PopulationResult is the comparison of one population's relative
// frequencies between responders and non-responders.
type PopulationResult struct {
	Population        string  `csv:"population"`
	Responders        int     `csv:"responders"`
	NonResponders     int     `csv:"non_responders"`
	MeanResponders    float64 `csv:"mean_responders"`
	MeanNonResponders float64 `csv:"mean_non_responders"`
	Statistic         float64 `csv:"statistic"`
	DF                float64 `csv:"df"`
	PValue            float64 `csv:"pvalue"`
	AdjustedPValue    float64 `csv:"adjusted_pvalue"`
	Significant       bool    `csv:"significant"`
	Err               error   `csv:"-"`
	Note              string  `csv:"note"`
}

// Compare tests, for each population, whether the relative frequency
// differs between responders and non-responders, and corrects the
// resulting p-values for multiple comparisons. Results are in the
// order of populations.
//
// A population that cannot be tested (e.g., fewer than 2 samples in
// a group) gets a result with NaN p-values and a non-nil Err wrapping
// ErrInsufficientData or another reason; the other populations are
// still tested and corrected among themselves.
func Compare(rows []CohortRow, populations []string, method TestMethod) []PopulationResult {
	results := make([]PopulationResult, len(populations))
	pvalues := make([]float64, len(populations))
	for i, pop := range populations {
		var yes, no []float64
		for _, row := range rows {
			if row.Population != pop || math.IsNaN(row.Percentage) {
				continue
			}
			switch row.Response {
			case ResponseYes:
				yes = append(yes, row.Percentage)
			case ResponseNo:
				no = append(no, row.Percentage)
			}
		}
		res := PopulationResult{
			Population:        pop,
			Responders:        len(yes),
			NonResponders:     len(no),
			MeanResponders:    stat.Mean(yes, nil),
			MeanNonResponders: stat.Mean(no, nil),
		}
		ts, err := method.test(yes, no)
		res.Statistic, res.DF, res.PValue = ts.Statistic, ts.DF, ts.PValue
		if err != nil {
			res.Err = fmt.Errorf("%s: %w", pop, err)
			res.Note = err.Error()
			res.PValue = math.NaN()
			log.Warnf("%s: cannot compare responders (n=%d) and non-responders (n=%d): %s", pop, len(yes), len(no), err)
		}
		pvalues[i] = res.PValue
		results[i] = res
	}
	for i, adj := range BenjaminiHochberg(pvalues) {
		results[i].AdjustedPValue = adj
		results[i].Significant = adj < SignificanceLevel
	}
	return results
}

// Significant returns the names of the populations whose adjusted
// p-value is below SignificanceLevel.
func Significant(results []PopulationResult) []string {
	var names []string
	for _, r := range results {
		if r.Significant {
			names = append(names, r.Population)
		}
	}
	return names
}

type compareCmd struct {
	cohort Cohort
}

func (cmd *compareCmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return exitCode(cmd.run(prog, args, stdin, stdout, stderr), stderr)
}

func (cmd *compareCmd) run(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	inputFilename := flags.String("i", "-", "input `file` (cell counts, delimited text, optionally .gz)")
	outputFilename := flags.String("o", "-", "output `file` for per-population test results")
	cohortFilename := flags.String("cohort-output", "", "also write the selected samples' relative frequencies, with response, to `file`")
	method := flags.String("test", string(TestStudentT), "test `method`: t-test or logistic")
	strict := flags.Bool("strict", false, "reject input columns other than the known sample table columns")
	cmd.cohort.Flags(flags)
	err := parseFlags(flags, args)
	if err != nil {
		return err
	}
	switch TestMethod(*method) {
	case TestStudentT, TestLogistic:
	default:
		return usageError{err: fmt.Errorf("invalid -test method %q", *method)}
	}

	samples, err := ReadSamples(*inputFilename, stdin, LoadOptions{Strict: *strict})
	if err != nil {
		return err
	}
	rows := cmd.cohort.Filter(Melt(Frequencies(samples)), samples)
	if len(rows) == 0 {
		return errors.New("no samples with known response match the selected treatment and sample type")
	}
	log.Infof("selected %d of %d samples (treatment %q, sample type %q)", len(rows)/len(Populations), len(samples), cmd.cohort.Treatment, cmd.cohort.SampleType)

	results := Compare(rows, Populations, TestMethod(*method))
	var outputs []output
	if *cohortFilename != "" {
		outputs = append(outputs, output{*cohortFilename, func(w io.Writer) error {
			return writeCSV(w, rows)
		}})
	}
	outputs = append(outputs, output{*outputFilename, func(w io.Writer) error {
		return writeCSV(w, results)
	}})
	if err = writeOutputs(stdout, outputs...); err != nil {
		return err
	}
	log.Infof("populations showing significant difference between responders and non-responders: [%s]", strings.Join(Significant(results), ", "))
	return nil
}
