// Copyright 2026 Dense ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestParameterGradLifecycle(t *testing.T) {
	p := NewParameter("w", mat.NewDense(2, 2, []float64{1, 2, 3, 4}))
	assert.Equal(t, "w", p.Name())
	assert.Nil(t, p.Grad(), "gradient starts unallocated")

	p.AddGrad(mat.NewDense(2, 2, []float64{1, 1, 1, 1}))
	p.AddGrad(mat.NewDense(2, 2, []float64{1, 0, 0, 1}))
	assert.Equal(t, 2.0, p.Grad().At(0, 0))
	assert.Equal(t, 1.0, p.Grad().At(0, 1))

	p.ZeroGrad()
	assert.Nil(t, p.Grad())
}

func TestParameterAddGradShapePanics(t *testing.T) {
	p := NewParameter("w", mat.NewDense(2, 2, nil))
	assert.Panics(t, func() { p.AddGrad(mat.NewDense(2, 3, nil)) })
}
