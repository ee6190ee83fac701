// Copyright 2026 Dense ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim implements optimization algorithms for training
// feed-forward networks.
//
// This package provides:
//   - Optimizer: the base interface for all optimizers
//   - SGD: stochastic gradient descent with optional momentum
//   - Adam: adaptive moment estimation
//
// Optimizers read gradients accumulated on parameters by Network.Backward
// and update parameter values in place:
//
//	optimizer := optim.NewSGD(net.Parameters(), optim.SGDConfig{LR: 0.01, Momentum: 0.9})
//
//	for epoch := 0; epoch < epochs; epoch++ {
//	    loss := net.Backward(batch, targets)
//	    optimizer.Step()
//	    optimizer.ZeroGrad()
//	}
package optim

import (
	"github.com/dense-ml/dense/nn"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies one gradient update to all parameters in place.
	//
	// Parameters with no accumulated gradient are skipped.
	Step()

	// ZeroGrad clears all parameter gradients.
	//
	// Call between iterations to prevent gradient accumulation across
	// batches.
	ZeroGrad()

	// LR returns the current learning rate.
	LR() float64

	// SetLR updates the learning rate, for scheduling during training.
	SetLR(lr float64)
}

// zeroGrad clears gradients of all given parameters.
func zeroGrad(params []*nn.Parameter) {
	for _, p := range params {
		p.ZeroGrad()
	}
}
