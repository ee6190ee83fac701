// Copyright 2026 Dense ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn implements a feed-forward neural network (multi-layer
// perceptron) on top of gonum matrices.
//
// The central type is Network: an ordered list of weight matrices and bias
// vectors with a configurable activation function per hidden transition and
// a fixed softmax normalization over the output layer.
//
// Basic usage:
//
//	net, err := nn.New(300, []int{50, 30}, []nn.Activation{nn.ReLU(), nn.Sigmoid()}, 10)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	probs := net.Forward(batch) // [batch_size, 10], rows sum to 1
//
// Training uses explicit backpropagation rather than a tape-based autodiff:
//
//	loss := net.Backward(batch, targets) // accumulates gradients
//	optimizer.Step()
//	optimizer.ZeroGrad()
//
// All matrix algebra is delegated to gonum.org/v1/gonum/mat. The package is
// not safe for concurrent use; callers running parameter updates from
// multiple goroutines must synchronize externally.
package nn
