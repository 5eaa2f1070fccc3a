// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package cellfreq

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	ErrInsufficientData = errors.New("insufficient data for test")
	ErrZeroVariance     = errors.New("zero variance in both groups")
)

// TestStatistic is the outcome of a two-sample test.
type TestStatistic struct {
	Statistic float64
	DF        float64
	PValue    float64
}

// StudentTTest compares the means of a and b with a two-sided,
// equal-variance (pooled) Student's t-test. Each group needs at least
// two observations. If neither group varies, different means are an
// infinite statistic with p-value 0 and equal means are ErrZeroVariance.
func StudentTTest(a, b []float64) (TestStatistic, error) {
	na, nb := float64(len(a)), float64(len(b))
	if na < 2 || nb < 2 {
		return TestStatistic{PValue: math.NaN(), Statistic: math.NaN()}, ErrInsufficientData
	}
	meanA, varA := stat.MeanVariance(a, nil)
	meanB, varB := stat.MeanVariance(b, nil)
	df := na + nb - 2
	pooled := ((na-1)*varA + (nb-1)*varB) / df
	se := math.Sqrt(pooled * (1/na + 1/nb))
	if se == 0 && meanA != meanB {
		return TestStatistic{DF: df, PValue: 0, Statistic: math.Copysign(math.Inf(1), meanA-meanB)}, nil
	} else if se == 0 {
		return TestStatistic{DF: df, PValue: math.NaN(), Statistic: math.NaN()}, ErrZeroVariance
	}
	t := (meanA - meanB) / se
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return TestStatistic{
		Statistic: t,
		DF:        df,
		PValue:    2 * dist.Survival(math.Abs(t)),
	}, nil
}
