// Copyright 2026 Dense ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/dense-ml/dense/nn"
)

// SGD implements stochastic gradient descent with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// Momentum accelerates descent along consistent gradient directions and
// dampens oscillations.
//
// Example:
//
//	optimizer := optim.NewSGD(net.Parameters(), optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
type SGD struct {
	params     []*nn.Parameter
	lr         float64
	momentum   float64
	velocities map[*nn.Parameter]*mat.Dense
}

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LR       float64 // learning rate (default: 0.01)
	Momentum float64 // momentum factor (default: 0, range [0, 1))
}

// NewSGD creates a new SGD optimizer over the given parameters.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*nn.Parameter]*mat.Dense),
	}
}

// Step performs a single optimization step.
//
// Parameters whose gradient is nil (did not participate in a backward
// pass) are skipped.
func (s *SGD) Step() {
	for _, param := range s.params {
		grad := param.Grad()
		if grad == nil {
			continue
		}

		update := grad
		if s.momentum != 0 {
			velocity, ok := s.velocities[param]
			if !ok {
				rows, cols := grad.Dims()
				velocity = mat.NewDense(rows, cols, nil)
				s.velocities[param] = velocity
			}
			// velocity = momentum * velocity + grad
			velocity.Scale(s.momentum, velocity)
			velocity.Add(velocity, grad)
			update = velocity
		}

		// param -= lr * update
		var scaled mat.Dense
		scaled.Scale(s.lr, update)
		param.Value().Sub(param.Value(), &scaled)
	}
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD) ZeroGrad() {
	zeroGrad(s.params)
}

// LR returns the current learning rate.
func (s *SGD) LR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}

// StateDict returns the optimizer state for serialization.
//
// For SGD with momentum this exports the velocity buffers keyed by
// parameter index ("velocity.0", "velocity.1", ...). Without momentum the
// map is empty.
func (s *SGD) StateDict() map[string]*mat.Dense {
	stateDict := make(map[string]*mat.Dense)
	if s.momentum == 0 {
		return stateDict
	}
	for i, param := range s.params {
		velocity, ok := s.velocities[param]
		if !ok {
			continue // not used in training yet
		}
		stateDict[fmt.Sprintf("velocity.%d", i)] = velocity
	}
	return stateDict
}

// LoadStateDict restores velocity buffers from serialization.
//
// With momentum disabled the provided state is ignored. Missing buffers
// are reinitialized on the next Step; shape mismatches are an error.
func (s *SGD) LoadStateDict(stateDict map[string]*mat.Dense) error {
	if s.momentum == 0 {
		return nil
	}
	s.velocities = make(map[*nn.Parameter]*mat.Dense)
	for i, param := range s.params {
		velocity, ok := stateDict[fmt.Sprintf("velocity.%d", i)]
		if !ok {
			continue
		}
		vr, vc := velocity.Dims()
		pr, pc := param.Value().Dims()
		if vr != pr || vc != pc {
			return fmt.Errorf("optim: velocity shape mismatch for parameter %d: expected (%d, %d), got (%d, %d)",
				i, pr, pc, vr, vc)
		}
		s.velocities[param] = velocity
	}
	return nil
}
