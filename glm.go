// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package cellfreq

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/kshedden/statmodel/glm"
	"github.com/kshedden/statmodel/statmodel"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var ErrModelFit = errors.New("logistic model fit failed")

var glmConfig = &glm.Config{
	Family:         glm.NewFamily(glm.BinomialFamily),
	FitMethod:      "IRLS",
	ConcurrentIRLS: 1000,
	Log:            log.New(io.Discard, "", 0),
}

func normalize(a []float64) {
	mean, std := stat.MeanStdDev(a, nil)
	for i, x := range a {
		a[i] = (x - mean) / std
	}
}

// LogisticLRTest fits a logistic regression of case status on x and
// compares it to the intercept-only model with a likelihood ratio
// test. The returned statistic is -2 log(L0/L1), with 1 degree of
// freedom.
func LogisticLRTest(cases, controls []float64) (ret TestStatistic, err error) {
	ret = TestStatistic{Statistic: math.NaN(), PValue: math.NaN(), DF: 1}
	if len(cases) < 2 || len(controls) < 2 {
		return ret, ErrInsufficientData
	}
	n := len(cases) + len(controls)
	x := make([]statmodel.Dtype, 0, n)
	outcome := make([]statmodel.Dtype, 0, n)
	constants := make([]statmodel.Dtype, 0, n)
	for _, v := range cases {
		x = append(x, v)
		outcome = append(outcome, 1)
		constants = append(constants, 1)
	}
	for _, v := range controls {
		x = append(x, v)
		outcome = append(outcome, 0)
		constants = append(constants, 1)
	}
	if stat.Variance(x, nil) == 0 {
		return ret, ErrZeroVariance
	}
	normalize(x)

	defer func() {
		if e := recover(); e != nil {
			// typically "matrix singular or near-singular with condition number +Inf"
			ret.Statistic, ret.PValue = math.NaN(), math.NaN()
			err = fmt.Errorf("%w: %v", ErrModelFit, e)
		}
	}()

	null, err := glm.NewGLM(statmodel.NewDataset([][]statmodel.Dtype{outcome, constants}, []string{"outcome", "constants"}), "outcome", []string{"constants"}, glmConfig)
	if err != nil {
		return ret, fmt.Errorf("%w: %s", ErrModelFit, err)
	}
	logNull := null.Fit().LogLike()

	names := []string{"outcome", "constants", "x"}
	full, err := glm.NewGLM(statmodel.NewDataset([][]statmodel.Dtype{outcome, constants, x}, names), "outcome", names[1:], glmConfig)
	if err != nil {
		return ret, fmt.Errorf("%w: %s", ErrModelFit, err)
	}
	logFull := full.Fit().LogLike()

	ret.Statistic = -2 * (logNull - logFull)
	if math.IsNaN(ret.Statistic) || math.IsInf(ret.Statistic, 0) {
		return ret, fmt.Errorf("%w: likelihood ratio statistic %v", ErrModelFit, ret.Statistic)
	}
	dist := distuv.ChiSquared{K: 1}
	ret.PValue = dist.Survival(ret.Statistic)
	return ret, nil
}
