// Copyright 2026 Dense ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Activation is an elementwise nonlinearity applied after a hidden layer's
// linear transformation.
//
// An Activation is a value, not an interface: it carries the function, its
// derivative with respect to the pre-activation, and an optional scalar
// parameter (e.g. the slope of LeakyReLU). This keeps the forward loop's
// call site uniform whether or not the function takes an extra argument.
//
// Example:
//
//	acts := []nn.Activation{nn.ReLU(), nn.LeakyReLU(0.1)}
type Activation struct {
	name     string
	param    float64
	hasParam bool
	fn       func(x, p float64) float64
	deriv    func(x, p float64) float64
}

// Name returns the activation's name (e.g. "relu").
func (a Activation) Name() string {
	return a.name
}

// Param returns the scalar parameter and whether the activation has one.
func (a Activation) Param() (float64, bool) {
	return a.param, a.hasParam
}

// String implements fmt.Stringer, including the parameter when present.
func (a Activation) String() string {
	if a.hasParam {
		return fmt.Sprintf("%s(%g)", a.name, a.param)
	}
	return a.name
}

// Apply computes the activation elementwise over x and stores the result in
// dst. dst may alias x.
func (a Activation) Apply(dst *mat.Dense, x *mat.Dense) {
	dst.Apply(func(_, _ int, v float64) float64 {
		return a.fn(v, a.param)
	}, x)
}

// Derivative computes the activation's derivative with respect to the
// pre-activation, elementwise over x, and stores the result in dst.
// dst may alias x.
func (a Activation) Derivative(dst *mat.Dense, x *mat.Dense) {
	dst.Apply(func(_, _ int, v float64) float64 {
		return a.deriv(v, a.param)
	}, x)
}

// ReLU returns the rectified linear unit activation: f(x) = max(0, x).
func ReLU() Activation {
	return Activation{
		name: "relu",
		fn: func(x, _ float64) float64 {
			if x > 0 {
				return x
			}
			return 0
		},
		deriv: func(x, _ float64) float64 {
			if x > 0 {
				return 1
			}
			return 0
		},
	}
}

// Sigmoid returns the logistic activation: σ(x) = 1 / (1 + exp(-x)).
func Sigmoid() Activation {
	return Activation{
		name:  "sigmoid",
		fn:    func(x, _ float64) float64 { return sigmoid(x) },
		deriv: func(x, _ float64) float64 { s := sigmoid(x); return s * (1 - s) },
	}
}

// Tanh returns the hyperbolic tangent activation.
func Tanh() Activation {
	return Activation{
		name: "tanh",
		fn:   func(x, _ float64) float64 { return math.Tanh(x) },
		deriv: func(x, _ float64) float64 {
			t := math.Tanh(x)
			return 1 - t*t
		},
	}
}

// LeakyReLU returns a rectifier with the given slope for negative inputs:
// f(x) = x for x > 0, slope*x otherwise.
func LeakyReLU(slope float64) Activation {
	return Activation{
		name:     "leaky_relu",
		param:    slope,
		hasParam: true,
		fn: func(x, p float64) float64 {
			if x > 0 {
				return x
			}
			return p * x
		},
		deriv: func(x, p float64) float64 {
			if x > 0 {
				return 1
			}
			return p
		},
	}
}

// ELU returns the exponential linear unit activation:
// f(x) = x for x > 0, alpha*(exp(x)-1) otherwise.
func ELU(alpha float64) Activation {
	return Activation{
		name:     "elu",
		param:    alpha,
		hasParam: true,
		fn: func(x, p float64) float64 {
			if x > 0 {
				return x
			}
			return p * (math.Exp(x) - 1)
		},
		deriv: func(x, p float64) float64 {
			if x > 0 {
				return 1
			}
			return p * math.Exp(x)
		},
	}
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
