// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package cellfreq

import (
	"gopkg.in/check.v1"
)

type cohortSuite struct{}

var _ = check.Suite(&cohortSuite{})

func (s *cohortSuite) TestFilter(c *check.C) {
	samples := loadFixture(c)
	cohort := Cohort{Treatment: "tr1", SampleType: "PBMC"}
	rows := cohort.Filter(Melt(Frequencies(samples)), samples)
	c.Assert(rows, check.HasLen, 8*len(Populations))
	for i, row := range rows {
		id := []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8"}[i/5]
		c.Check(row.Sample, check.Equals, id)
		if i < 20 {
			c.Check(row.Response, check.Equals, ResponseYes)
		} else {
			c.Check(row.Response, check.Equals, ResponseNo)
		}
	}
}

func (s *cohortSuite) TestFilterIdempotent(c *check.C) {
	samples := loadFixture(c)
	for _, cohort := range []Cohort{
		{Treatment: "tr1", SampleType: "PBMC"},
		{Treatment: "tr2"},
		{SampleType: "tumor"},
		{},
	} {
		once := cohort.Filter(Melt(Frequencies(samples)), samples)
		var longRows []LongRow
		for _, row := range once {
			longRows = append(longRows, row.LongRow)
		}
		twice := cohort.Filter(longRows, samples)
		c.Check(twice, check.DeepEquals, once, check.Commentf("%+v", cohort))
	}
}

func (s *cohortSuite) TestUnknownResponseExcluded(c *check.C) {
	samples := loadFixture(c)
	rows := Melt(Frequencies(samples))
	for _, row := range (&Cohort{}).Filter(rows, samples) {
		c.Check(row.Response, check.Not(check.Equals), ResponseUnknown)
		c.Check(row.Sample, check.Not(check.Equals), "s9")
		c.Check(row.Sample, check.Not(check.Equals), "s12")
	}
	withUnknown := (&Cohort{Treatment: "tr1", SampleType: "PBMC", IncludeUnknownResponse: true}).Filter(rows, samples)
	c.Check(withUnknown, check.HasLen, 9*len(Populations))
}

func (s *cohortSuite) TestFilterDropsUnlistedSamples(c *check.C) {
	samples := loadFixture(c)
	rows := Melt(Frequencies(samples))
	filtered := (&Cohort{}).Filter(rows, samples[:2])
	c.Check(filtered, check.HasLen, 2*len(Populations))
}

func (s *cohortSuite) TestSelect(c *check.C) {
	samples := loadFixture(c)
	freqs := (&Cohort{Treatment: "tr1", SampleType: "PBMC", IncludeUnknownResponse: true}).Select(Frequencies(samples))
	var ids []string
	for _, f := range freqs {
		ids = append(ids, f.ID)
	}
	c.Check(ids, check.DeepEquals, []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9"})
}
