// Package main provides the dense CLI: training and evaluation of
// feed-forward networks on MNIST-style IDX datasets.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"

	"github.com/dense-ml/dense/loader"
	"github.com/dense-ml/dense/nn"
	"github.com/dense-ml/dense/optim"
)

const version = "v0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "train":
		if err := runTrain(os.Args[2:]); err != nil {
			klog.Exitf("train: %v", err)
		}
	case "eval":
		if err := runEval(os.Args[2:]); err != nil {
			klog.Exitf("eval: %v", err)
		}
	case "version":
		fmt.Printf("dense %s\n", version)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("dense - feed-forward network training on IDX datasets")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  train      Train a network on an MNIST-style dataset")
	fmt.Println("  eval       Evaluate a checkpoint on the test set")
	fmt.Println("  version    Show version")
}

func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	dataDir := fs.String("data", "data", "directory containing the IDX files")
	hidden := fs.String("hidden", "128", "comma-separated hidden layer sizes")
	activation := fs.String("activation", "relu", "activation per hidden layer (one name, or comma-separated list)")
	epochs := fs.Int("epochs", 5, "number of training epochs")
	batchSize := fs.Int("batch-size", 64, "mini-batch size")
	lr := fs.Float64("lr", 0.01, "learning rate")
	momentum := fs.Float64("momentum", 0.9, "SGD momentum (ignored for adam)")
	optimizerName := fs.String("optimizer", "sgd", "optimizer: sgd or adam")
	checkpointPath := fs.String("checkpoint", "dense.ckpt", "where to write checkpoints")
	maxSamples := fs.Int("max-samples", 0, "limit on training samples (0 = all)")
	klog.InitFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	train, err := loader.LoadMNIST(*dataDir, true, *maxSamples)
	if err != nil {
		return err
	}
	test, err := loader.LoadMNIST(*dataDir, false, 0)
	if err != nil {
		return err
	}
	klog.Infof("loaded %d training and %d test samples", train.Len(), test.Len())

	hiddenSizes, err := parseSizes(*hidden)
	if err != nil {
		return err
	}
	activations, err := parseActivations(*activation, len(hiddenSizes))
	if err != nil {
		return err
	}

	net, err := nn.NewXavier(train.NumFeatures(), hiddenSizes, activations, train.NumClasses)
	if err != nil {
		return err
	}
	net.Summary(os.Stdout)

	var optimizer optim.Optimizer
	switch *optimizerName {
	case "sgd":
		optimizer = optim.NewSGD(net.Parameters(), optim.SGDConfig{LR: *lr, Momentum: *momentum})
	case "adam":
		optimizer = optim.NewAdam(net.Parameters(), optim.AdamConfig{LR: *lr})
	default:
		return fmt.Errorf("unknown optimizer %q", *optimizerName)
	}

	var step int64
	for epoch := 1; epoch <= *epochs; epoch++ {
		batches := train.Batches(*batchSize, true)
		bar := progressbar.Default(int64(len(batches)), fmt.Sprintf("epoch %d/%d", epoch, *epochs))

		var epochLoss float64
		for _, batch := range batches {
			loss := net.Backward(batch.Inputs, batch.Targets)
			optimizer.Step()
			optimizer.ZeroGrad()
			epochLoss += loss
			step++
			_ = bar.Add(1)
		}
		epochLoss /= float64(len(batches))

		acc := accuracy(net, test)
		klog.Infof("epoch %d: loss=%.4f test_accuracy=%.2f%%", epoch, epochLoss, 100*acc)

		ck := nn.Checkpoint{
			Epoch:     epoch,
			Step:      step,
			Loss:      epochLoss,
			Metadata:  networkMetadata(net, activations),
			CreatedAt: time.Now(),
		}
		state, _ := optimizer.(nn.OptimizerState)
		if err := nn.SaveCheckpoint(*checkpointPath, net, state, ck); err != nil {
			return err
		}
	}

	klog.Infof("training done, checkpoint written to %s", *checkpointPath)
	return nil
}

func runEval(args []string) error {
	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	dataDir := fs.String("data", "data", "directory containing the IDX files")
	checkpointPath := fs.String("checkpoint", "dense.ckpt", "checkpoint to evaluate")
	hidden := fs.String("hidden", "128", "comma-separated hidden layer sizes")
	activation := fs.String("activation", "relu", "activation per hidden layer")
	klog.InitFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	test, err := loader.LoadMNIST(*dataDir, false, 0)
	if err != nil {
		return err
	}

	hiddenSizes, err := parseSizes(*hidden)
	if err != nil {
		return err
	}
	activations, err := parseActivations(*activation, len(hiddenSizes))
	if err != nil {
		return err
	}

	net, err := nn.New(test.NumFeatures(), hiddenSizes, activations, test.NumClasses)
	if err != nil {
		return err
	}
	ck, err := nn.LoadCheckpoint(*checkpointPath, net, nil)
	if err != nil {
		return err
	}
	klog.Infof("loaded checkpoint from epoch %d (loss %.4f, created %s)",
		ck.Epoch, ck.Loss, ck.CreatedAt.Format(time.RFC3339))

	fmt.Printf("test accuracy: %.2f%%\n", 100*accuracy(net, test))
	return nil
}

// accuracy computes top-1 accuracy of the network over a dataset,
// evaluating in chunks to bound memory.
func accuracy(net *nn.Network, ds *loader.Dataset) float64 {
	var correct int
	for _, batch := range ds.Batches(256, false) {
		probs := net.Forward(batch.Inputs)
		rows, _ := probs.Dims()
		for i := 0; i < rows; i++ {
			if argmax(probs.RawRowView(i)) == argmax(batch.Targets.RawRowView(i)) {
				correct++
			}
		}
	}
	return float64(correct) / float64(ds.Len())
}

func argmax(row []float64) int {
	best := 0
	for i, v := range row {
		if v > row[best] {
			best = i
		}
	}
	return best
}

// networkMetadata records the architecture in checkpoint metadata so a
// checkpoint is self-describing.
func networkMetadata(net *nn.Network, activations []nn.Activation) map[string]string {
	sizes := net.Sizes()
	sizeStrs := make([]string, len(sizes))
	for i, s := range sizes {
		sizeStrs[i] = strconv.Itoa(s)
	}
	actStrs := make([]string, len(activations))
	for i, a := range activations {
		actStrs[i] = a.String()
	}
	return map[string]string{
		"sizes":       strings.Join(sizeStrs, ","),
		"activations": strings.Join(actStrs, ","),
	}
}

func parseSizes(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	sizes := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid layer size %q", p)
		}
		sizes[i] = n
	}
	return sizes, nil
}

// parseActivations parses a comma-separated activation list. A single name
// is broadcast to all hidden layers. Parameterized activations take their
// argument in parentheses, e.g. "leaky_relu(0.1)".
func parseActivations(s string, count int) ([]nn.Activation, error) {
	names := strings.Split(s, ",")
	if len(names) == 1 && count > 1 {
		expanded := make([]string, count)
		for i := range expanded {
			expanded[i] = names[0]
		}
		names = expanded
	}
	if len(names) != count {
		return nil, fmt.Errorf("got %d activations for %d hidden layers", len(names), count)
	}

	activations := make([]nn.Activation, len(names))
	for i, name := range names {
		act, err := parseActivation(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		activations[i] = act
	}
	return activations, nil
}

func parseActivation(name string) (nn.Activation, error) {
	base := name
	param := 0.0
	hasParam := false
	if open := strings.Index(name, "("); open >= 0 && strings.HasSuffix(name, ")") {
		base = name[:open]
		p, err := strconv.ParseFloat(name[open+1:len(name)-1], 64)
		if err != nil {
			return nn.Activation{}, fmt.Errorf("invalid activation parameter in %q", name)
		}
		param, hasParam = p, true
	}

	switch base {
	case "relu":
		return nn.ReLU(), nil
	case "sigmoid":
		return nn.Sigmoid(), nil
	case "tanh":
		return nn.Tanh(), nil
	case "leaky_relu":
		if !hasParam {
			param = 0.01
		}
		return nn.LeakyReLU(param), nil
	case "elu":
		if !hasParam {
			param = 1.0
		}
		return nn.ELU(param), nil
	default:
		return nn.Activation{}, fmt.Errorf("unknown activation %q", name)
	}
}
