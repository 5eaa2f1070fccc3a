// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package cellfreq

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/csimplestring/go-csv/detector"
	"github.com/gocarina/gocsv"
)

// Populations lists the immune cell populations counted in each
// sample, in the order used for all derived tables.
var Populations = []string{"b_cell", "cd8_t_cell", "cd4_t_cell", "nk_cell", "monocyte"}

const numPopulations = 5

var (
	ErrMissingColumn    = errors.New("missing column")
	ErrUnexpectedColumn = errors.New("unexpected column")
	ErrDuplicateColumn  = errors.New("duplicate column")
	ErrDuplicateSample  = errors.New("duplicate sample id")
)

// Columns that must be present in a sample table. Any order is
// accepted.
var requiredColumns = append([]string{"sample", "treatment", "sample_type", "response"}, Populations...)

var optionalColumns = []string{"project", "subject", "condition", "age", "sex", "time_from_treatment_start"}

// ColumnError reports a header that does not match the sample table
// layout.
type ColumnError struct {
	Missing    []string
	Unexpected []string
	Duplicate  []string
}

func (e *ColumnError) Error() string {
	var msgs []string
	if len(e.Missing) > 0 {
		msgs = append(msgs, fmt.Sprintf("missing column(s) %q", e.Missing))
	}
	if len(e.Unexpected) > 0 {
		msgs = append(msgs, fmt.Sprintf("unexpected column(s) %q", e.Unexpected))
	}
	if len(e.Duplicate) > 0 {
		msgs = append(msgs, fmt.Sprintf("duplicate column(s) %q", e.Duplicate))
	}
	return strings.Join(msgs, ", ")
}

func (e *ColumnError) Is(target error) bool {
	return (target == ErrMissingColumn && len(e.Missing) > 0) ||
		(target == ErrUnexpectedColumn && len(e.Unexpected) > 0) ||
		(target == ErrDuplicateColumn && len(e.Duplicate) > 0)
}

// Response is a patient's response to treatment.
type Response int

const (
	ResponseUnknown Response = iota
	ResponseYes
	ResponseNo
)

func (r Response) String() string {
	switch r {
	case ResponseYes:
		return "y"
	case ResponseNo:
		return "n"
	default:
		return ""
	}
}

func (r Response) MarshalCSV() (string, error) {
	return r.String(), nil
}

func (r *Response) UnmarshalCSV(s string) error {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		*r = ResponseYes
	case "n", "no":
		*r = ResponseNo
	case "", "na", "nan", "none", "unknown":
		*r = ResponseUnknown
	default:
		return fmt.Errorf("invalid response %q (expected y, n, or empty)", s)
	}
	return nil
}

// Count is a non-negative cell count.
type Count int64

func (n Count) MarshalCSV() (string, error) {
	return strconv.FormatInt(int64(n), 10), nil
}

func (n *Count) UnmarshalCSV(s string) error {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid cell count %q", s)
	}
	if v < 0 {
		return fmt.Errorf("invalid cell count %d: must not be negative", v)
	}
	*n = Count(v)
	return nil
}

// Sample is one row of the input cell count table.
type Sample struct {
	ID         string   `csv:"sample"`
	Treatment  string   `csv:"treatment"`
	SampleType string   `csv:"sample_type"`
	Response   Response `csv:"response"`

	BCell    Count `csv:"b_cell"`
	CD8TCell Count `csv:"cd8_t_cell"`
	CD4TCell Count `csv:"cd4_t_cell"`
	NKCell   Count `csv:"nk_cell"`
	Monocyte Count `csv:"monocyte"`

	Project                string `csv:"project"`
	Subject                string `csv:"subject"`
	Condition              string `csv:"condition"`
	Age                    string `csv:"age"`
	Sex                    string `csv:"sex"`
	TimeFromTreatmentStart string `csv:"time_from_treatment_start"`
}

// Counts returns the sample's cell counts in Populations order.
func (s *Sample) Counts() [numPopulations]int64 {
	return [numPopulations]int64{int64(s.BCell), int64(s.CD8TCell), int64(s.CD4TCell), int64(s.NKCell), int64(s.Monocyte)}
}

// LoadOptions control LoadSamples.
type LoadOptions struct {
	// Delimiter overrides delimiter detection.
	Delimiter rune
	// Strict rejects columns other than the known sample table
	// columns.
	Strict bool
}

// LoadSamples reads a delimited sample table. Columns are matched by
// name. The whole table is validated before anything is returned.
func LoadSamples(r io.Reader, opts LoadOptions) ([]Sample, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(buf)) == 0 {
		return nil, errors.New("empty input: no header row")
	}
	delim := opts.Delimiter
	if delim == 0 {
		delim = determineDelimiter(buf)
	}
	newReader := func() *csv.Reader {
		rdr := csv.NewReader(bytes.NewReader(buf))
		rdr.Comma = delim
		rdr.LazyQuotes = true
		return rdr
	}

	header, err := newReader().Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if err := checkHeader(header, opts.Strict); err != nil {
		return nil, err
	}

	var samples []Sample
	if err := gocsv.UnmarshalCSV(newReader(), &samples); err != nil {
		return nil, fmt.Errorf("parsing sample table: %w", err)
	}
	seen := make(map[string]int, len(samples))
	for i, s := range samples {
		// line numbers are 1-based and the header is line 1
		if s.ID == "" {
			return nil, fmt.Errorf("line %d: empty sample id", i+2)
		}
		if prev, ok := seen[s.ID]; ok {
			return nil, fmt.Errorf("line %d: %w %q (first seen on line %d)", i+2, ErrDuplicateSample, s.ID, prev+2)
		}
		seen[s.ID] = i
	}
	return samples, nil
}

func checkHeader(header []string, strict bool) error {
	var cerr ColumnError
	have := map[string]bool{}
	for _, name := range header {
		name = strings.TrimSpace(name)
		if have[name] {
			cerr.Duplicate = append(cerr.Duplicate, name)
		}
		have[name] = true
	}
	known := map[string]bool{}
	for _, name := range requiredColumns {
		known[name] = true
	}
	for _, name := range optionalColumns {
		known[name] = true
	}
	for _, name := range requiredColumns {
		if !have[name] {
			cerr.Missing = append(cerr.Missing, name)
		}
	}
	if strict {
		for _, name := range header {
			if name = strings.TrimSpace(name); !known[name] {
				cerr.Unexpected = append(cerr.Unexpected, name)
			}
		}
	}
	if len(cerr.Missing) > 0 || len(cerr.Unexpected) > 0 || len(cerr.Duplicate) > 0 {
		return &cerr
	}
	return nil
}

// determineDelimiter returns the most likely delimiter of a CSV-like
// table. Only common field separators are considered: column names
// contain '_', which the detector would otherwise accept. If detection
// fails, the separator occurring most often in the header wins, with
// ',' as the default.
func determineDelimiter(buf []byte) rune {
	const separators = ",\t;|"
	d := detector.New()
	for _, delim := range d.DetectDelimiter(bytes.NewReader(buf), '"') {
		if len(delim) == 1 && strings.Contains(separators, delim) {
			return rune(delim[0])
		}
	}
	header := buf
	if i := bytes.IndexByte(buf, '\n'); i >= 0 {
		header = buf[:i]
	}
	best, bestN := ',', 0
	for _, c := range separators {
		if n := bytes.Count(header, []byte{byte(c)}); n > bestN {
			best, bestN = c, n
		}
	}
	return best
}

// ReadSamples loads a sample table from a file ("-" for stdin).
func ReadSamples(fnm string, stdin io.Reader, opts LoadOptions) ([]Sample, error) {
	f, err := zopen(fnm, stdin)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	samples, err := LoadSamples(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fnm, err)
	}
	return samples, f.Close()
}
