// Copyright 2026 Dense ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/dense-ml/dense/nn"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Adam keeps exponential moving averages of gradients (first moment) and
// squared gradients (second moment), with bias correction for their zero
// initialization:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²
//	m_hat = m_t / (1 - beta1^t)
//	v_hat = v_t / (1 - beta2^t)
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014).
//
// Example:
//
//	optimizer := optim.NewAdam(net.Parameters(), optim.AdamConfig{LR: 0.001})
type Adam struct {
	params []*nn.Parameter
	lr     float64
	beta1  float64
	beta2  float64
	eps    float64
	t      int // timestep for bias correction
	m      map[*nn.Parameter]*mat.Dense
	v      map[*nn.Parameter]*mat.Dense
}

// AdamConfig holds configuration for the Adam optimizer.
type AdamConfig struct {
	LR    float64    // learning rate (default: 0.001)
	Betas [2]float64 // moving-average coefficients (default: [0.9, 0.999])
	Eps   float64    // numerical stability term (default: 1e-8)
}

// NewAdam creates a new Adam optimizer with defaults filled in for any
// zero-valued config field.
func NewAdam(params []*nn.Parameter, config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	return &Adam{
		params: params,
		lr:     config.LR,
		beta1:  config.Betas[0],
		beta2:  config.Betas[1],
		eps:    config.Eps,
		m:      make(map[*nn.Parameter]*mat.Dense),
		v:      make(map[*nn.Parameter]*mat.Dense),
	}
}

// Step performs a single Adam optimization step.
//
// The timestep advances once per call, not per parameter, so bias
// correction stays consistent across the parameter list.
func (a *Adam) Step() {
	a.t++
	correction1 := 1 - math.Pow(a.beta1, float64(a.t))
	correction2 := 1 - math.Pow(a.beta2, float64(a.t))

	for _, param := range a.params {
		grad := param.Grad()
		if grad == nil {
			continue
		}

		m, v := a.moments(param, grad)

		// m = beta1*m + (1-beta1)*grad
		m.Apply(func(i, j int, mv float64) float64 {
			return a.beta1*mv + (1-a.beta1)*grad.At(i, j)
		}, m)

		// v = beta2*v + (1-beta2)*grad²
		v.Apply(func(i, j int, vv float64) float64 {
			g := grad.At(i, j)
			return a.beta2*vv + (1-a.beta2)*g*g
		}, v)

		// param -= lr * m_hat / (sqrt(v_hat) + eps)
		value := param.Value()
		value.Apply(func(i, j int, pv float64) float64 {
			mHat := m.At(i, j) / correction1
			vHat := v.At(i, j) / correction2
			return pv - a.lr*mHat/(math.Sqrt(vHat)+a.eps)
		}, value)
	}
}

// moments returns the first and second moment buffers for a parameter,
// allocating zero buffers on first use.
func (a *Adam) moments(param *nn.Parameter, grad *mat.Dense) (m, v *mat.Dense) {
	m, ok := a.m[param]
	if !ok {
		rows, cols := grad.Dims()
		m = mat.NewDense(rows, cols, nil)
		v = mat.NewDense(rows, cols, nil)
		a.m[param] = m
		a.v[param] = v
		return m, v
	}
	return m, a.v[param]
}

// ZeroGrad clears gradients for all parameters.
func (a *Adam) ZeroGrad() {
	zeroGrad(a.params)
}

// LR returns the current learning rate.
func (a *Adam) LR() float64 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adam) SetLR(lr float64) {
	a.lr = lr
}

// StateDict returns the optimizer state for serialization: moment buffers
// keyed by parameter index ("m.0", "v.0", ...) plus the timestep encoded
// as a 1×1 matrix under "t".
func (a *Adam) StateDict() map[string]*mat.Dense {
	stateDict := make(map[string]*mat.Dense, 2*len(a.params)+1)
	for i, param := range a.params {
		if m, ok := a.m[param]; ok {
			stateDict[fmt.Sprintf("m.%d", i)] = m
		}
		if v, ok := a.v[param]; ok {
			stateDict[fmt.Sprintf("v.%d", i)] = v
		}
	}
	stateDict["t"] = mat.NewDense(1, 1, []float64{float64(a.t)})
	return stateDict
}

// LoadStateDict restores moment buffers and the timestep from
// serialization. Missing buffers are reinitialized on the next Step;
// shape mismatches are an error.
func (a *Adam) LoadStateDict(stateDict map[string]*mat.Dense) error {
	a.m = make(map[*nn.Parameter]*mat.Dense)
	a.v = make(map[*nn.Parameter]*mat.Dense)
	for i, param := range a.params {
		pr, pc := param.Value().Dims()
		m, mok := stateDict[fmt.Sprintf("m.%d", i)]
		v, vok := stateDict[fmt.Sprintf("v.%d", i)]
		if mok != vok {
			return fmt.Errorf("optim: incomplete Adam moments for parameter %d", i)
		}
		if !mok {
			continue
		}
		mr, mc := m.Dims()
		vr, vc := v.Dims()
		if mr != pr || mc != pc || vr != pr || vc != pc {
			return fmt.Errorf("optim: moment shape mismatch for parameter %d: expected (%d, %d)", i, pr, pc)
		}
		a.m[param] = m
		a.v[param] = v
	}
	if t, ok := stateDict["t"]; ok {
		a.t = int(t.At(0, 0))
	}
	return nil
}
