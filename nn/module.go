// Copyright 2026 Dense ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"gonum.org/v1/gonum/mat"
)

// Module is the interface satisfied by trainable network components.
//
// It is what checkpoints and optimizers program against:
//   - Forward: compute output from input
//   - Parameters: return all trainable parameters
//   - StateDict: export parameters for serialization
//   - LoadStateDict: import parameters from serialization
type Module interface {
	// Forward computes the module output for a batch input with shape
	// [batch_size, input_size].
	Forward(input *mat.Dense) *mat.Dense

	// Parameters returns all trainable parameters of this module.
	Parameters() []*Parameter

	// StateDict returns a map of parameter names to value matrices.
	//
	// The returned matrices are the live parameter storage, not copies.
	StateDict() map[string]*mat.Dense

	// LoadStateDict copies parameter values from a state dictionary.
	//
	// Returns an error if a required parameter is missing or has the
	// wrong shape.
	LoadStateDict(stateDict map[string]*mat.Dense) error
}
