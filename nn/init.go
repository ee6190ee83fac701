// Copyright 2026 Dense ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Uniform creates a rows×cols matrix with values drawn uniformly from [0, 1).
//
// This is the default weight initialization used by New.
func Uniform(rows, cols int) *mat.Dense {
	m := mat.NewDense(rows, cols, nil)
	data := m.RawMatrix().Data
	for i := range data {
		//nolint:gosec // math/rand is fine for weight initialization
		data[i] = rand.Float64()
	}
	return m
}

// Xavier creates a rows×cols matrix with Xavier (Glorot) initialization.
//
// Values are drawn from U(-b, b) with b = sqrt(6 / (fanIn + fanOut)),
// which keeps the variance of activations roughly constant across layers.
func Xavier(fanIn, fanOut, rows, cols int) *mat.Dense {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	m := mat.NewDense(rows, cols, nil)
	data := m.RawMatrix().Data
	for i := range data {
		//nolint:gosec // math/rand is fine for weight initialization
		data[i] = (rand.Float64()*2.0 - 1.0) * bound
	}
	return m
}

// Zeros creates a rows×cols matrix filled with zeros.
//
// This is used for bias initialization.
func Zeros(rows, cols int) *mat.Dense {
	return mat.NewDense(rows, cols, nil)
}
