// Copyright 2026 Dense ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// CrossEntropy computes the mean cross-entropy loss between predicted
// probabilities and one-hot (or soft) targets.
//
//	Loss = -(1/B) * Σ targets * log(probs)
//
// probs is expected to already be normalized (the output of a softmax);
// entries where the target is zero do not contribute, so a zero
// probability only matters where the target is nonzero.
//
// Parameters:
//   - probs: predicted distributions with shape [batch_size, num_classes]
//   - targets: target distributions with the same shape
//
// Panics if the shapes differ.
func CrossEntropy(probs, targets *mat.Dense) float64 {
	rows, cols := probs.Dims()
	tr, tc := targets.Dims()
	if tr != rows || tc != cols {
		panic("nn: cross-entropy probs and targets must have the same shape")
	}
	var loss float64
	for i := 0; i < rows; i++ {
		p := probs.RawRowView(i)
		t := targets.RawRowView(i)
		for j, tv := range t {
			if tv == 0 {
				continue
			}
			loss -= tv * math.Log(p[j])
		}
	}
	return loss / float64(rows)
}

// CrossEntropyGrad computes the gradient of the mean cross-entropy loss
// with respect to the *pre-softmax* logits:
//
//	∂L/∂logits = (probs - targets) / B
//
// This is the combined softmax + cross-entropy gradient; it is the output
// delta that seeds backpropagation.
func CrossEntropyGrad(probs, targets *mat.Dense) *mat.Dense {
	rows, cols := probs.Dims()
	tr, tc := targets.Dims()
	if tr != rows || tc != cols {
		panic("nn: cross-entropy probs and targets must have the same shape")
	}
	grad := mat.NewDense(rows, cols, nil)
	grad.Sub(probs, targets)
	grad.Scale(1/float64(rows), grad)
	return grad
}
