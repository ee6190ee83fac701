// Copyright 2026 Dense ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSoftmaxRowsSumToOne(t *testing.T) {
	x := mat.NewDense(3, 4, []float64{
		1, 2, 3, 4,
		-1, 0, 1, 2,
		100, 100, 100, 100,
	})
	out := mat.NewDense(3, 4, nil)
	Softmax(out, x)

	for i := 0; i < 3; i++ {
		var sum float64
		for _, v := range out.RawRowView(i) {
			assert.GreaterOrEqual(t, v, 0.0)
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-12)
	}

	// uniform logits give a uniform distribution
	for _, v := range out.RawRowView(2) {
		assert.InDelta(t, 0.25, v, 1e-12)
	}
}

func TestSoftmaxLargeLogits(t *testing.T) {
	// would overflow exp without the max subtraction
	x := mat.NewDense(1, 3, []float64{1000, 1001, 1002})
	out := mat.NewDense(1, 3, nil)
	Softmax(out, x)

	var sum float64
	for _, v := range out.RawRowView(0) {
		require.False(t, math.IsNaN(v))
		require.False(t, math.IsInf(v, 0))
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
	assert.Greater(t, out.At(0, 2), out.At(0, 1))
}

func TestSoftmaxInPlace(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	Softmax(x, x)

	for i := 0; i < 2; i++ {
		sum := x.At(i, 0) + x.At(i, 1)
		assert.InDelta(t, 1.0, sum, 1e-12)
	}
}

func TestCrossEntropyPerfectPrediction(t *testing.T) {
	probs := mat.NewDense(2, 3, []float64{
		1, 0, 0,
		0, 1, 0,
	})
	targets := mat.NewDense(2, 3, []float64{
		1, 0, 0,
		0, 1, 0,
	})
	assert.InDelta(t, 0.0, CrossEntropy(probs, targets), 1e-12)
}

func TestCrossEntropyUniform(t *testing.T) {
	// uniform prediction over 4 classes: loss is log(4)
	probs := mat.NewDense(1, 4, []float64{0.25, 0.25, 0.25, 0.25})
	targets := mat.NewDense(1, 4, []float64{0, 0, 1, 0})
	assert.InDelta(t, math.Log(4), CrossEntropy(probs, targets), 1e-12)
}

func TestCrossEntropyGrad(t *testing.T) {
	probs := mat.NewDense(2, 2, []float64{
		0.7, 0.3,
		0.4, 0.6,
	})
	targets := mat.NewDense(2, 2, []float64{
		1, 0,
		0, 1,
	})
	grad := CrossEntropyGrad(probs, targets)

	// (probs - targets) / batch_size
	assert.InDelta(t, (0.7-1.0)/2, grad.At(0, 0), 1e-12)
	assert.InDelta(t, (0.3-0.0)/2, grad.At(0, 1), 1e-12)
	assert.InDelta(t, (0.4-0.0)/2, grad.At(1, 0), 1e-12)
	assert.InDelta(t, (0.6-1.0)/2, grad.At(1, 1), 1e-12)
}

func TestCrossEntropyShapeMismatchPanics(t *testing.T) {
	probs := mat.NewDense(1, 3, nil)
	targets := mat.NewDense(1, 2, nil)
	assert.Panics(t, func() { CrossEntropy(probs, targets) })
	assert.Panics(t, func() { CrossEntropyGrad(probs, targets) })
}
