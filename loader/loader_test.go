// Copyright 2026 Dense ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package loader

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeIDXImages writes a minimal IDX image file for tests.
func writeIDXImages(t *testing.T, path string, images [][]byte, rows, cols int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, binary.Write(f, binary.BigEndian, uint32(imagesMagic)))
	require.NoError(t, binary.Write(f, binary.BigEndian, uint32(len(images))))
	require.NoError(t, binary.Write(f, binary.BigEndian, uint32(rows)))
	require.NoError(t, binary.Write(f, binary.BigEndian, uint32(cols)))
	for _, img := range images {
		_, err := f.Write(img)
		require.NoError(t, err)
	}
}

// writeIDXLabels writes a minimal IDX label file for tests.
func writeIDXLabels(t *testing.T, path string, labels []byte) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, binary.Write(f, binary.BigEndian, uint32(labelsMagic)))
	require.NoError(t, binary.Write(f, binary.BigEndian, uint32(len(labels))))
	_, err = f.Write(labels)
	require.NoError(t, err)
}

func writeTestSet(t *testing.T, dir string, train bool, images [][]byte, labels []byte) {
	t.Helper()
	imageFile, labelFile := "t10k-images-idx3-ubyte", "t10k-labels-idx1-ubyte"
	if train {
		imageFile, labelFile = "train-images-idx3-ubyte", "train-labels-idx1-ubyte"
	}
	writeIDXImages(t, filepath.Join(dir, imageFile), images, 2, 2)
	writeIDXLabels(t, filepath.Join(dir, labelFile), labels)
}

func TestReadImages(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "images")
	writeIDXImages(t, path, [][]byte{{0, 128, 255, 64}, {1, 2, 3, 4}}, 2, 2)

	images, err := ReadImages(path)
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, []byte{0, 128, 255, 64}, images[0])
}

func TestReadImagesBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad")
	require.NoError(t, os.WriteFile(path, []byte{0, 0, 0, 1, 0, 0, 0, 0}, 0o644))

	_, err := ReadImages(path)
	assert.ErrorContains(t, err, "magic")
}

func TestReadImagesTruncated(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trunc")
	writeIDXImages(t, path, [][]byte{{1, 2, 3, 4}}, 2, 2)

	// claim two images but provide one
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	binary.BigEndian.PutUint32(data[4:8], 2)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = ReadImages(path)
	assert.Error(t, err)
}

func TestReadLabelsBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad")
	require.NoError(t, os.WriteFile(path, []byte{0, 0, 7, 211, 0, 0, 0, 0}, 0o644))

	_, err := ReadLabels(path)
	assert.ErrorContains(t, err, "magic")
}

func TestLoadMNIST(t *testing.T) {
	dir := t.TempDir()
	writeTestSet(t, dir, true, [][]byte{
		{0, 51, 102, 255},
		{255, 204, 153, 0},
		{10, 20, 30, 40},
	}, []byte{3, 1, 9})

	ds, err := LoadMNIST(dir, true, 0)
	require.NoError(t, err)

	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, 4, ds.NumFeatures())
	assert.Equal(t, []int{3, 1, 9}, ds.Labels)

	// pixels normalized to [0, 1]
	assert.InDelta(t, 0.0, ds.Inputs.At(0, 0), 1e-12)
	assert.InDelta(t, 0.2, ds.Inputs.At(0, 1), 1e-12)
	assert.InDelta(t, 1.0, ds.Inputs.At(0, 3), 1e-12)
}

func TestLoadMNISTMaxSamples(t *testing.T) {
	dir := t.TempDir()
	writeTestSet(t, dir, false, [][]byte{
		{1, 1, 1, 1}, {2, 2, 2, 2}, {3, 3, 3, 3},
	}, []byte{0, 1, 2})

	ds, err := LoadMNIST(dir, false, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
}

func TestFromBytesValidation(t *testing.T) {
	_, err := FromBytes([][]byte{{1}}, []byte{0, 1}, 10, 0)
	assert.Error(t, err, "image and label counts must match")

	_, err = FromBytes(nil, nil, 10, 0)
	assert.Error(t, err, "empty dataset must fail")

	_, err = FromBytes([][]byte{{1}}, []byte{10}, 10, 0)
	assert.Error(t, err, "out-of-range label must fail")

	_, err = FromBytes([][]byte{{1, 2}, {3}}, []byte{0, 1}, 10, 0)
	assert.Error(t, err, "ragged image sizes must fail")
}

func TestTargetsOneHot(t *testing.T) {
	ds, err := FromBytes([][]byte{{1}, {2}}, []byte{1, 3}, 4, 0)
	require.NoError(t, err)

	targets := ds.Targets()
	rows, cols := targets.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 4, cols)
	assert.Equal(t, 1.0, targets.At(0, 1))
	assert.Equal(t, 1.0, targets.At(1, 3))
	assert.Equal(t, 0.0, targets.At(0, 0))
}

func TestBatches(t *testing.T) {
	images := make([][]byte, 10)
	labels := make([]byte, 10)
	for i := range images {
		images[i] = []byte{byte(i)}
		labels[i] = byte(i % 3)
	}
	ds, err := FromBytes(images, labels, 3, 0)
	require.NoError(t, err)

	batches := ds.Batches(4, false)
	require.Len(t, batches, 3)

	r0, _ := batches[0].Inputs.Dims()
	r2, _ := batches[2].Inputs.Dims()
	assert.Equal(t, 4, r0)
	assert.Equal(t, 2, r2, "final batch holds the remainder")

	// unshuffled batches preserve order
	assert.InDelta(t, 4.0/255.0, batches[1].Inputs.At(0, 0), 1e-12)

	// every batch row has exactly one hot target
	for _, b := range batches {
		rows, cols := b.Targets.Dims()
		for i := 0; i < rows; i++ {
			var sum float64
			for j := 0; j < cols; j++ {
				sum += b.Targets.At(i, j)
			}
			assert.Equal(t, 1.0, sum)
		}
	}
}

func TestBatchesShuffleCoversAll(t *testing.T) {
	images := make([][]byte, 20)
	labels := make([]byte, 20)
	for i := range images {
		images[i] = []byte{byte(i)}
		labels[i] = 0
	}
	ds, err := FromBytes(images, labels, 2, 0)
	require.NoError(t, err)

	seen := make(map[byte]bool)
	for _, b := range ds.Batches(6, true) {
		rows, _ := b.Inputs.Dims()
		for i := 0; i < rows; i++ {
			seen[byte(b.Inputs.At(i, 0)*255.0+0.5)] = true
		}
	}
	assert.Len(t, seen, 20, "shuffling must not drop or duplicate samples")
}
