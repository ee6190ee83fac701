// Copyright 2026 Dense ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package loader

import (
	"math/rand"
	"path/filepath"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Dataset holds a classification dataset as a normalized feature matrix
// and integer class labels.
type Dataset struct {
	Inputs     *mat.Dense // [num_samples, num_features], values in [0, 1]
	Labels     []int      // [num_samples], values in [0, NumClasses)
	NumClasses int
}

// Batch is one training mini-batch: a feature matrix and the matching
// one-hot target matrix.
type Batch struct {
	Inputs  *mat.Dense // [batch_size, num_features]
	Targets *mat.Dense // [batch_size, num_classes], one-hot rows
}

// LoadMNIST loads the MNIST dataset from IDX files in dir.
//
// Expected files:
//   - train: train-images-idx3-ubyte and train-labels-idx1-ubyte
//   - test: t10k-images-idx3-ubyte and t10k-labels-idx1-ubyte
//
// Pixels are normalized from 0-255 to [0, 1]. maxSamples limits the number
// of samples loaded (0 loads everything).
//
// Download MNIST from: http://yann.lecun.com/exdb/mnist/
func LoadMNIST(dir string, train bool, maxSamples int) (*Dataset, error) {
	imageFile, labelFile := "t10k-images-idx3-ubyte", "t10k-labels-idx1-ubyte"
	if train {
		imageFile, labelFile = "train-images-idx3-ubyte", "train-labels-idx1-ubyte"
	}

	images, err := ReadImages(filepath.Join(dir, imageFile))
	if err != nil {
		return nil, errors.Wrap(err, "loading MNIST images")
	}
	labels, err := ReadLabels(filepath.Join(dir, labelFile))
	if err != nil {
		return nil, errors.Wrap(err, "loading MNIST labels")
	}

	return FromBytes(images, labels, 10, maxSamples)
}

// FromBytes builds a Dataset from raw byte images and labels, normalizing
// byte values to [0, 1].
//
// Returns an error if the image and label counts differ, the image list is
// empty, or a label falls outside [0, numClasses).
func FromBytes(images [][]byte, labels []byte, numClasses, maxSamples int) (*Dataset, error) {
	if len(images) != len(labels) {
		return nil, errors.Errorf("got %d images but %d labels", len(images), len(labels))
	}
	if len(images) == 0 {
		return nil, errors.New("dataset is empty")
	}

	numSamples := len(images)
	if maxSamples > 0 && numSamples > maxSamples {
		numSamples = maxSamples
	}
	numFeatures := len(images[0])

	inputs := mat.NewDense(numSamples, numFeatures, nil)
	intLabels := make([]int, numSamples)
	for i := 0; i < numSamples; i++ {
		if len(images[i]) != numFeatures {
			return nil, errors.Errorf("image %d has %d pixels, want %d", i, len(images[i]), numFeatures)
		}
		label := int(labels[i])
		if label >= numClasses {
			return nil, errors.Errorf("label %d out of range [0, %d) at sample %d", label, numClasses, i)
		}
		intLabels[i] = label

		row := inputs.RawRowView(i)
		for j, pixel := range images[i] {
			row[j] = float64(pixel) / 255.0
		}
	}

	return &Dataset{
		Inputs:     inputs,
		Labels:     intLabels,
		NumClasses: numClasses,
	}, nil
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Labels)
}

// NumFeatures returns the feature width of the dataset.
func (d *Dataset) NumFeatures() int {
	_, cols := d.Inputs.Dims()
	return cols
}

// Targets returns the full one-hot target matrix for the dataset.
func (d *Dataset) Targets() *mat.Dense {
	targets := mat.NewDense(d.Len(), d.NumClasses, nil)
	for i, label := range d.Labels {
		targets.Set(i, label, 1)
	}
	return targets
}

// Batches splits the dataset into mini-batches, optionally shuffling the
// sample order first. The final batch may be smaller than batchSize.
//
// Batch matrices are copies; mutating them does not affect the dataset.
func (d *Dataset) Batches(batchSize int, shuffle bool) []Batch {
	if batchSize <= 0 {
		panic("loader: batch size must be positive")
	}

	order := make([]int, d.Len())
	for i := range order {
		order[i] = i
	}
	if shuffle {
		//nolint:gosec // math/rand is fine for batch shuffling
		rand.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	numFeatures := d.NumFeatures()
	batches := make([]Batch, 0, (d.Len()+batchSize-1)/batchSize)
	for start := 0; start < d.Len(); start += batchSize {
		end := start + batchSize
		if end > d.Len() {
			end = d.Len()
		}
		size := end - start

		inputs := mat.NewDense(size, numFeatures, nil)
		targets := mat.NewDense(size, d.NumClasses, nil)
		for i := 0; i < size; i++ {
			src := order[start+i]
			copy(inputs.RawRowView(i), d.Inputs.RawRowView(src))
			targets.Set(i, d.Labels[src], 1)
		}
		batches = append(batches, Batch{Inputs: inputs, Targets: targets})
	}
	return batches
}
