// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package cellfreq

import (
	"errors"
	"strings"

	"gopkg.in/check.v1"
)

type sampleSuite struct{}

var _ = check.Suite(&sampleSuite{})

func (s *sampleSuite) TestLoadFixture(c *check.C) {
	samples := loadFixture(c)
	c.Assert(samples, check.HasLen, 12)
	c.Check(samples[0].ID, check.Equals, "s1")
	c.Check(samples[0].Treatment, check.Equals, "tr1")
	c.Check(samples[0].SampleType, check.Equals, "PBMC")
	c.Check(samples[0].Response, check.Equals, ResponseYes)
	c.Check(samples[0].Counts(), check.Equals, [5]int64{100, 50, 30, 15, 5})
	c.Check(samples[0].Subject, check.Equals, "sbj1")
	c.Check(samples[0].Age, check.Equals, "70")
	c.Check(samples[4].Response, check.Equals, ResponseNo)
	c.Check(samples[8].Response, check.Equals, ResponseUnknown)
	c.Check(samples[11].Counts(), check.Equals, [5]int64{0, 0, 0, 0, 0})
}

func (s *sampleSuite) TestColumnsMatchedByName(c *check.C) {
	samples, err := LoadSamples(strings.NewReader(`monocyte,response,nk_cell,sample,cd4_t_cell,sample_type,cd8_t_cell,treatment,b_cell
5,n,15,x1,30,PBMC,50,tr1,100
`), LoadOptions{})
	c.Assert(err, check.IsNil)
	c.Assert(samples, check.HasLen, 1)
	c.Check(samples[0].ID, check.Equals, "x1")
	c.Check(samples[0].Response, check.Equals, ResponseNo)
	c.Check(samples[0].Counts(), check.Equals, [5]int64{100, 50, 30, 15, 5})
}

func (s *sampleSuite) TestTabDelimited(c *check.C) {
	samples, err := LoadSamples(strings.NewReader("sample\ttreatment\tsample_type\tresponse\tb_cell\tcd8_t_cell\tcd4_t_cell\tnk_cell\tmonocyte\n"+
		"x1\ttr1\tPBMC\ty\t1\t2\t3\t4\t5\n"+
		"x2\ttr2\tPBMC\t\t6\t7\t8\t9\t10\n"), LoadOptions{})
	c.Assert(err, check.IsNil)
	c.Assert(samples, check.HasLen, 2)
	c.Check(samples[1].ID, check.Equals, "x2")
	c.Check(samples[1].Response, check.Equals, ResponseUnknown)
	c.Check(samples[1].Counts(), check.Equals, [5]int64{6, 7, 8, 9, 10})
}

func (s *sampleSuite) TestMissingColumn(c *check.C) {
	_, err := LoadSamples(strings.NewReader(`sample,treatment,sample_type,response,b_cell,cd8_t_cell,cd4_t_cell,nk_cell
x1,tr1,PBMC,y,1,2,3,4
`), LoadOptions{})
	c.Assert(err, check.NotNil)
	c.Check(errors.Is(err, ErrMissingColumn), check.Equals, true)
	c.Check(errors.Is(err, ErrUnexpectedColumn), check.Equals, false)
	var cerr *ColumnError
	c.Assert(errors.As(err, &cerr), check.Equals, true)
	c.Check(cerr.Missing, check.DeepEquals, []string{"monocyte"})
}

func (s *sampleSuite) TestUnexpectedColumn(c *check.C) {
	input := `sample,treatment,sample_type,response,b_cell,cd8_t_cell,cd4_t_cell,nk_cell,monocyte,batch
x1,tr1,PBMC,y,1,2,3,4,5,b7
`
	samples, err := LoadSamples(strings.NewReader(input), LoadOptions{})
	c.Check(err, check.IsNil)
	c.Check(samples, check.HasLen, 1)

	_, err = LoadSamples(strings.NewReader(input), LoadOptions{Strict: true})
	c.Check(errors.Is(err, ErrUnexpectedColumn), check.Equals, true)
	c.Check(err, check.ErrorMatches, `.*unexpected column.*"batch".*`)
}

func (s *sampleSuite) TestDuplicateColumn(c *check.C) {
	input := `sample,treatment,sample_type,response,b_cell,cd8_t_cell,cd4_t_cell,nk_cell,monocyte,b_cell
x1,tr1,PBMC,y,1,2,3,4,5,999
`
	for _, strict := range []bool{false, true} {
		samples, err := LoadSamples(strings.NewReader(input), LoadOptions{Strict: strict})
		c.Check(samples, check.IsNil)
		c.Assert(err, check.NotNil)
		c.Check(errors.Is(err, ErrDuplicateColumn), check.Equals, true)
		c.Check(errors.Is(err, ErrMissingColumn), check.Equals, false)
		var cerr *ColumnError
		c.Assert(errors.As(err, &cerr), check.Equals, true)
		c.Check(cerr.Duplicate, check.DeepEquals, []string{"b_cell"})
	}
}

func (s *sampleSuite) TestDuplicateSample(c *check.C) {
	_, err := LoadSamples(strings.NewReader(`sample,treatment,sample_type,response,b_cell,cd8_t_cell,cd4_t_cell,nk_cell,monocyte
x1,tr1,PBMC,y,1,2,3,4,5
x2,tr1,PBMC,y,1,2,3,4,5
x1,tr1,PBMC,n,1,2,3,4,5
`), LoadOptions{})
	c.Check(errors.Is(err, ErrDuplicateSample), check.Equals, true)
	c.Check(err, check.ErrorMatches, `line 4: .*"x1".*line 2.*`)
}

func (s *sampleSuite) TestMalformedValues(c *check.C) {
	for _, trial := range []struct {
		row string
		err string
	}{
		{"x1,tr1,PBMC,y,-1,2,3,4,5", `.*must not be negative.*`},
		{"x1,tr1,PBMC,y,1,two,3,4,5", `.*invalid cell count "two".*`},
		{"x1,tr1,PBMC,y,1,2,,4,5", `.*invalid cell count "".*`},
		{"x1,tr1,PBMC,maybe,1,2,3,4,5", `.*invalid response "maybe".*`},
		{",tr1,PBMC,y,1,2,3,4,5", `line 2: empty sample id`},
	} {
		c.Logf("%s", trial.row)
		_, err := LoadSamples(strings.NewReader("sample,treatment,sample_type,response,b_cell,cd8_t_cell,cd4_t_cell,nk_cell,monocyte\n"+trial.row+"\n"), LoadOptions{})
		c.Check(err, check.ErrorMatches, trial.err)
	}
}

func (s *sampleSuite) TestEmptyInput(c *check.C) {
	_, err := LoadSamples(strings.NewReader("\n"), LoadOptions{})
	c.Check(err, check.ErrorMatches, `empty input.*`)
}

func (s *sampleSuite) TestResponseLabels(c *check.C) {
	for in, want := range map[string]Response{
		"y": ResponseYes, "Yes": ResponseYes, "n": ResponseNo, "NO": ResponseNo,
		"": ResponseUnknown, "NA": ResponseUnknown, "unknown": ResponseUnknown,
	} {
		var r Response
		c.Check(r.UnmarshalCSV(in), check.IsNil)
		c.Check(r, check.Equals, want, check.Commentf("%q", in))
	}
	c.Check(ResponseYes.String(), check.Equals, "y")
	c.Check(ResponseNo.String(), check.Equals, "n")
	c.Check(ResponseUnknown.String(), check.Equals, "")
}
