// Copyright 2026 Dense ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/mat"
)

// Network is a feed-forward neural network (multi-layer perceptron).
//
// The network is a chain of linear transitions. For layer sizes
// [in, h1, ..., hk, out] it holds one weight matrix per consecutive pair of
// sizes, shaped (n_i, n_i+1), and one bias row vector per transition. Each
// hidden transition applies a configurable Activation; the final transition
// always applies a softmax, so Forward outputs are row probability
// distributions.
//
// Example:
//
//	net, err := nn.New(300, []int{50, 30}, []nn.Activation{nn.ReLU(), nn.Sigmoid()}, 10)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	probs := net.Forward(batch) // [batch_size, 10]
//
// Network is not safe for concurrent mutation; see the package comment.
type Network struct {
	sizes       []int        // [in, h1, ..., hk, out]
	weights     []*Parameter // len(sizes)-1, weights[i] is (sizes[i], sizes[i+1])
	biases      []*Parameter // len(sizes)-1, biases[i] is (1, sizes[i+1])
	activations []Activation // len(sizes)-2, one per hidden transition
}

// initFunc builds a rows×cols weight matrix for a transition with the given
// fan-in and fan-out.
type initFunc func(fanIn, fanOut, rows, cols int) *mat.Dense

// New creates a feed-forward network with uniform-random weights in [0, 1)
// and zero biases.
//
// Parameters:
//   - inputSize: number of input features (must be positive)
//   - hiddenSizes: sizes of the hidden layers (each must be positive)
//   - activations: one activation per hidden layer
//   - outputSize: number of output classes (must be at least 2)
//
// Returns an error if any size constraint is violated or if the activation
// list length does not match the number of hidden layers.
func New(inputSize int, hiddenSizes []int, activations []Activation, outputSize int) (*Network, error) {
	return newNetwork(inputSize, hiddenSizes, activations, outputSize,
		func(_, _, rows, cols int) *mat.Dense { return Uniform(rows, cols) })
}

// NewXavier creates a feed-forward network like New but with Xavier
// (Glorot) weight initialization, which trains better for deeper networks.
func NewXavier(inputSize int, hiddenSizes []int, activations []Activation, outputSize int) (*Network, error) {
	return newNetwork(inputSize, hiddenSizes, activations, outputSize, Xavier)
}

func newNetwork(inputSize int, hiddenSizes []int, activations []Activation, outputSize int, init initFunc) (*Network, error) {
	if inputSize <= 0 {
		return nil, fmt.Errorf("nn: input size must be positive, got %d", inputSize)
	}
	for i, h := range hiddenSizes {
		if h <= 0 {
			return nil, fmt.Errorf("nn: hidden layer %d size must be positive, got %d", i, h)
		}
	}
	if outputSize < 2 {
		return nil, fmt.Errorf("nn: output size must be at least 2, got %d", outputSize)
	}
	if len(activations) != len(hiddenSizes) {
		return nil, fmt.Errorf("nn: got %d activations for %d hidden layers",
			len(activations), len(hiddenSizes))
	}

	sizes := make([]int, 0, len(hiddenSizes)+2)
	sizes = append(sizes, inputSize)
	sizes = append(sizes, hiddenSizes...)
	sizes = append(sizes, outputSize)

	n := &Network{
		sizes:       sizes,
		weights:     make([]*Parameter, len(sizes)-1),
		biases:      make([]*Parameter, len(sizes)-1),
		activations: append([]Activation(nil), activations...),
	}
	for i := 0; i < len(sizes)-1; i++ {
		fanIn, fanOut := sizes[i], sizes[i+1]
		n.weights[i] = NewParameter(fmt.Sprintf("layer%d.weight", i), init(fanIn, fanOut, fanIn, fanOut))
		n.biases[i] = NewParameter(fmt.Sprintf("layer%d.bias", i), Zeros(1, fanOut))
	}
	return n, nil
}

// InputSize returns the number of input features.
func (n *Network) InputSize() int {
	return n.sizes[0]
}

// OutputSize returns the number of output classes.
func (n *Network) OutputSize() int {
	return n.sizes[len(n.sizes)-1]
}

// Sizes returns the layer size sequence [in, h1, ..., hk, out].
func (n *Network) Sizes() []int {
	return append([]int(nil), n.sizes...)
}

// NumParams returns the total number of scalar parameters.
func (n *Network) NumParams() int64 {
	var total int64
	for _, p := range n.Parameters() {
		r, c := p.Value().Dims()
		total += int64(r * c)
	}
	return total
}

// Forward computes the network output for a batch.
//
// Parameters:
//   - input: batch with shape [batch_size, input_size]
//
// Returns a [batch_size, output_size] matrix whose rows are probability
// distributions. Panics if the input width does not match the network's
// input size.
func (n *Network) Forward(input *mat.Dense) *mat.Dense {
	_, acts := n.forwardTrace(input)
	return acts[len(acts)-1]
}

// Backward runs a forward pass, computes the cross-entropy loss against
// one-hot targets, and backpropagates, accumulating gradients into the
// network's parameters.
//
// Parameters:
//   - input: batch with shape [batch_size, input_size]
//   - targets: one-hot targets with shape [batch_size, output_size]
//
// Returns the mean cross-entropy loss for the batch. Gradients accumulate
// across calls until ZeroGrad is called (directly or via an optimizer).
func (n *Network) Backward(input, targets *mat.Dense) float64 {
	preacts, acts := n.forwardTrace(input)
	probs := acts[len(acts)-1]

	tr, tc := targets.Dims()
	batch, _ := input.Dims()
	if tr != batch || tc != n.OutputSize() {
		panic(fmt.Sprintf("nn: targets must have shape [%d, %d], got [%d, %d]",
			batch, n.OutputSize(), tr, tc))
	}

	loss := CrossEntropy(probs, targets)

	// Output delta: combined softmax + cross-entropy gradient, (probs - targets)/B.
	delta := CrossEntropyGrad(probs, targets)

	for l := len(n.weights) - 1; l >= 0; l-- {
		// dL/dW[l] = acts[l]^T · delta
		var gradW mat.Dense
		gradW.Mul(acts[l].T(), delta)
		n.weights[l].AddGrad(&gradW)

		// dL/db[l] = column sums of delta
		_, cols := delta.Dims()
		gradB := mat.NewDense(1, cols, nil)
		for i := 0; i < batch; i++ {
			row := delta.RawRowView(i)
			out := gradB.RawRowView(0)
			for j, v := range row {
				out[j] += v
			}
		}
		n.biases[l].AddGrad(gradB)

		if l == 0 {
			break
		}

		// Propagate: delta = (delta · W[l]^T) ⊙ act'(preact[l-1])
		var next mat.Dense
		next.Mul(delta, n.weights[l].Value().T())
		dr, dc := next.Dims()
		dact := mat.NewDense(dr, dc, nil)
		n.activations[l-1].Derivative(dact, preacts[l-1])
		next.MulElem(&next, dact)
		delta = &next
	}

	return loss
}

// forwardTrace runs the forward pass keeping per-transition pre-activations
// and activations for backpropagation.
//
// preacts[l] is the linear output of transition l before the nonlinearity;
// acts[0] is the input and acts[l+1] the post-activation output of
// transition l. The last activation is the softmax output.
func (n *Network) forwardTrace(input *mat.Dense) (preacts, acts []*mat.Dense) {
	_, cols := input.Dims()
	if cols != n.InputSize() {
		panic(fmt.Sprintf("nn: input must have %d columns, got %d", n.InputSize(), cols))
	}

	preacts = make([]*mat.Dense, len(n.weights))
	acts = make([]*mat.Dense, len(n.weights)+1)
	acts[0] = input

	out := input
	for l := range n.weights {
		var z mat.Dense
		z.Mul(out, n.weights[l].Value())
		addRowVector(&z, n.biases[l].Value())

		pre := mat.DenseCopyOf(&z)
		preacts[l] = pre

		if l < len(n.weights)-1 {
			n.activations[l].Apply(&z, &z)
		} else {
			Softmax(&z, &z)
		}
		out = &z
		acts[l+1] = out
	}
	return preacts, acts
}

// ZeroGrad clears the gradients of all parameters.
func (n *Network) ZeroGrad() {
	for _, p := range n.Parameters() {
		p.ZeroGrad()
	}
}

// Parameters returns all trainable parameters, ordered by transition with
// each weight followed by its bias.
func (n *Network) Parameters() []*Parameter {
	params := make([]*Parameter, 0, 2*len(n.weights))
	for i := range n.weights {
		params = append(params, n.weights[i], n.biases[i])
	}
	return params
}

// Weights returns the weight matrices in layer order.
//
// The returned matrices are the live parameter storage, matching the
// in-place update lifecycle of optimizers.
func (n *Network) Weights() []*mat.Dense {
	ws := make([]*mat.Dense, len(n.weights))
	for i, p := range n.weights {
		ws[i] = p.Value()
	}
	return ws
}

// SetWeights replaces all weight matrices wholesale.
//
// The supplied matrices must match the network's transition shapes exactly;
// otherwise an error is returned and the network is left unchanged.
// Gradients of the replaced parameters are discarded.
func (n *Network) SetWeights(weights []*mat.Dense) error {
	if len(weights) != len(n.weights) {
		return fmt.Errorf("nn: expected %d weight matrices, got %d", len(n.weights), len(weights))
	}
	for i, w := range weights {
		r, c := w.Dims()
		if r != n.sizes[i] || c != n.sizes[i+1] {
			return fmt.Errorf("nn: weight %d must have shape (%d, %d), got (%d, %d)",
				i, n.sizes[i], n.sizes[i+1], r, c)
		}
	}
	for i, w := range weights {
		n.weights[i] = NewParameter(fmt.Sprintf("layer%d.weight", i), w)
	}
	return nil
}

// Biases returns the bias row vectors in layer order.
//
// Like Weights, the returned matrices are the live parameter storage.
func (n *Network) Biases() []*mat.Dense {
	bs := make([]*mat.Dense, len(n.biases))
	for i, p := range n.biases {
		bs[i] = p.Value()
	}
	return bs
}

// SetBiases replaces all bias vectors wholesale.
//
// Each bias must be a 1×n row matrix matching its transition's output
// width; otherwise an error is returned and the network is left unchanged.
func (n *Network) SetBiases(biases []*mat.Dense) error {
	if len(biases) != len(n.biases) {
		return fmt.Errorf("nn: expected %d bias vectors, got %d", len(n.biases), len(biases))
	}
	for i, b := range biases {
		r, c := b.Dims()
		if r != 1 || c != n.sizes[i+1] {
			return fmt.Errorf("nn: bias %d must have shape (1, %d), got (%d, %d)",
				i, n.sizes[i+1], r, c)
		}
	}
	for i, b := range biases {
		n.biases[i] = NewParameter(fmt.Sprintf("layer%d.bias", i), b)
	}
	return nil
}

// Activations returns a copy of the hidden-layer activation list.
func (n *Network) Activations() []Activation {
	return append([]Activation(nil), n.activations...)
}

// SetActivations replaces the hidden-layer activation list wholesale.
//
// The list length must equal the number of hidden layers.
func (n *Network) SetActivations(activations []Activation) error {
	if len(activations) != len(n.activations) {
		return fmt.Errorf("nn: expected %d activations, got %d", len(n.activations), len(activations))
	}
	n.activations = append([]Activation(nil), activations...)
	return nil
}

// StateDict returns a map of parameter names to value matrices.
func (n *Network) StateDict() map[string]*mat.Dense {
	stateDict := make(map[string]*mat.Dense, 2*len(n.weights))
	for _, p := range n.Parameters() {
		stateDict[p.Name()] = p.Value()
	}
	return stateDict
}

// LoadStateDict copies parameter values from a state dictionary.
//
// Every parameter of the network must be present with a matching shape.
// Values are copied into the existing parameter storage, so matrices
// previously returned by Weights or Biases observe the new values.
func (n *Network) LoadStateDict(stateDict map[string]*mat.Dense) error {
	for _, p := range n.Parameters() {
		src, ok := stateDict[p.Name()]
		if !ok {
			return fmt.Errorf("nn: state dict is missing parameter %q", p.Name())
		}
		pr, pc := p.Value().Dims()
		sr, sc := src.Dims()
		if sr != pr || sc != pc {
			return fmt.Errorf("nn: parameter %q has shape (%d, %d), state dict has (%d, %d)",
				p.Name(), pr, pc, sr, sc)
		}
	}
	for _, p := range n.Parameters() {
		p.Value().Copy(stateDict[p.Name()])
	}
	return nil
}

// Summary writes a human-readable description of the network: the layer
// size sequence, per-transition activations, and the parameter count.
func (n *Network) Summary(w io.Writer) {
	fmt.Fprintf(w, "Feed-forward network: %v\n", n.sizes)
	for i := range n.weights {
		name := "softmax"
		if i < len(n.activations) {
			name = n.activations[i].String()
		}
		fmt.Fprintf(w, "\tLayer %d: (%d, %d) %s\n", i, n.sizes[i], n.sizes[i+1], name)
	}
	fmt.Fprintf(w, "Parameters: %s\n", humanize.Comma(n.NumParams()))
}

// PrintWeights writes a summary of the weight shapes.
func (n *Network) PrintWeights(w io.Writer) {
	fmt.Fprintln(w, "Weights:")
	for i, p := range n.weights {
		r, c := p.Value().Dims()
		fmt.Fprintf(w, "\tLayer %d: (%d, %d)\n", i, r, c)
	}
}

// PrintBiases writes a summary of the bias shapes.
func (n *Network) PrintBiases(w io.Writer) {
	fmt.Fprintln(w, "Biases:")
	for i, p := range n.biases {
		_, c := p.Value().Dims()
		fmt.Fprintf(w, "\tLayer %d: (%d,)\n", i, c)
	}
}

// PrintActivations writes a summary of the activation functions.
func (n *Network) PrintActivations(w io.Writer) {
	fmt.Fprintln(w, "Activation functions:")
	for i, a := range n.activations {
		fmt.Fprintf(w, "\tLayer %d: %s\n", i, a)
	}
}

// addRowVector adds a 1×n row vector to every row of dst.
func addRowVector(dst *mat.Dense, row *mat.Dense) {
	rows, cols := dst.Dims()
	_, rc := row.Dims()
	if rc != cols {
		panic("nn: bias width does not match matrix width")
	}
	r := row.RawRowView(0)
	for i := 0; i < rows; i++ {
		d := dst.RawRowView(i)
		for j := range d {
			d[j] += r[j]
		}
	}
}
