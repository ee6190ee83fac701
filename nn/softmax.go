// Copyright 2026 Dense ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Softmax computes a row-wise softmax of x and stores the result in dst.
// dst may alias x.
//
// Each output row is a probability distribution: entries are non-negative
// and sum to 1. The computation subtracts the row maximum before
// exponentiating (the log-sum-exp trick), so it does not overflow for
// large logits.
func Softmax(dst *mat.Dense, x *mat.Dense) {
	rows, cols := x.Dims()
	dr, dc := dst.Dims()
	if dr != rows || dc != cols {
		panic("nn: softmax destination shape does not match input")
	}
	for i := 0; i < rows; i++ {
		row := dst.RawRowView(i)
		copy(row, x.RawRowView(i))
		maxv := floats.Max(row)
		var sum float64
		for j, v := range row {
			e := math.Exp(v - maxv)
			row[j] = e
			sum += e
		}
		floats.Scale(1/sum, row)
	}
}
