// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package cellfreq

import (
	"math"
	"sort"
)

// BenjaminiHochberg returns false discovery rate adjusted p-values,
// aligned with p. NaN entries are left out of the correction (they do
// not count toward the number of tests) and stay NaN.
func BenjaminiHochberg(p []float64) []float64 {
	adj := make([]float64, len(p))
	var order []int
	for i, v := range p {
		if math.IsNaN(v) {
			adj[i] = math.NaN()
		} else {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return p[order[i]] < p[order[j]] })
	m := float64(len(order))
	min := 1.0
	for rank := len(order); rank > 0; rank-- {
		i := order[rank-1]
		// p*m/rank can round below p when rank == m
		if v := math.Max(p[i], p[i]*m/float64(rank)); v < min {
			min = v
		}
		adj[i] = min
	}
	return adj
}
