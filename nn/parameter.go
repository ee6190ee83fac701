// Copyright 2026 Dense ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"gonum.org/v1/gonum/mat"
)

// Parameter represents a trainable parameter of a network.
//
// Parameters pair a value matrix with its gradient. They typically
// represent weights and biases of layer transitions. Bias vectors are
// stored as 1×n row matrices so that weights and biases share one type.
//
// Example:
//
//	weight := nn.NewParameter("layer0.weight", w)
//	// ... after a backward pass:
//	grad := weight.Grad() // nil until a gradient has been accumulated
type Parameter struct {
	name  string
	value *mat.Dense
	grad  *mat.Dense
}

// NewParameter creates a new trainable parameter.
//
// The value matrix should be initialized before creating the Parameter.
// The gradient is allocated on the first AddGrad call.
func NewParameter(name string, value *mat.Dense) *Parameter {
	return &Parameter{
		name:  name,
		value: value,
	}
}

// Name returns the parameter name (e.g. "layer0.weight").
func (p *Parameter) Name() string {
	return p.name
}

// Value returns the parameter matrix.
//
// The returned matrix is the live storage: optimizers update it in place.
func (p *Parameter) Value() *mat.Dense {
	return p.value
}

// Grad returns the accumulated gradient.
//
// Returns nil if no gradient has been accumulated since the last ZeroGrad,
// meaning the parameter did not participate in a backward pass.
func (p *Parameter) Grad() *mat.Dense {
	return p.grad
}

// AddGrad accumulates delta into the gradient, allocating it on first use.
//
// Panics if delta's shape does not match the parameter value.
func (p *Parameter) AddGrad(delta mat.Matrix) {
	rows, cols := p.value.Dims()
	dr, dc := delta.Dims()
	if dr != rows || dc != cols {
		panic("nn: gradient shape does not match parameter shape")
	}
	if p.grad == nil {
		p.grad = mat.NewDense(rows, cols, nil)
	}
	p.grad.Add(p.grad, delta)
}

// ZeroGrad clears the gradient.
//
// This should be called between training iterations to avoid accumulating
// gradients across batches. Optimizers call it via their own ZeroGrad.
func (p *Parameter) ZeroGrad() {
	p.grad = nil
}
