// Copyright 2026 Dense ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package loader reads MNIST-style datasets in the IDX binary format and
// exposes them as gonum matrices ready for training.
package loader

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

// IDX magic numbers.
const (
	imagesMagic = 2051 // 0x00000803: unsigned-byte 3D tensor (images)
	labelsMagic = 2049 // 0x00000801: unsigned-byte 1D tensor (labels)
)

// ReadImages reads an IDX image file.
//
// IDX image format:
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes
//	number of rows: 4 bytes
//	number of cols: 4 bytes
//	pixel data: unsigned bytes (0-255)
//
// Returns one byte slice per image of length rows*cols.
func ReadImages(path string) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening image file")
	}
	defer f.Close()

	var magic uint32
	if err := binary.Read(f, binary.BigEndian, &magic); err != nil {
		return nil, errors.Wrap(err, "reading image magic")
	}
	if magic != imagesMagic {
		return nil, errors.Errorf("invalid image magic number: got %d, want %d", magic, imagesMagic)
	}

	var numImages, numRows, numCols uint32
	if err := binary.Read(f, binary.BigEndian, &numImages); err != nil {
		return nil, errors.Wrap(err, "reading image count")
	}
	if err := binary.Read(f, binary.BigEndian, &numRows); err != nil {
		return nil, errors.Wrap(err, "reading row count")
	}
	if err := binary.Read(f, binary.BigEndian, &numCols); err != nil {
		return nil, errors.Wrap(err, "reading column count")
	}

	imageSize := int(numRows * numCols)
	images := make([][]byte, numImages)
	for i := range images {
		images[i] = make([]byte, imageSize)
		if _, err := io.ReadFull(f, images[i]); err != nil {
			return nil, errors.Wrapf(err, "reading image %d", i)
		}
	}
	return images, nil
}

// ReadLabels reads an IDX label file.
//
// IDX label format:
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes
//	label data: unsigned bytes
func ReadLabels(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening label file")
	}
	defer f.Close()

	var magic uint32
	if err := binary.Read(f, binary.BigEndian, &magic); err != nil {
		return nil, errors.Wrap(err, "reading label magic")
	}
	if magic != labelsMagic {
		return nil, errors.Errorf("invalid label magic number: got %d, want %d", magic, labelsMagic)
	}

	var numLabels uint32
	if err := binary.Read(f, binary.BigEndian, &numLabels); err != nil {
		return nil, errors.Wrap(err, "reading label count")
	}

	labels := make([]byte, numLabels)
	if _, err := io.ReadFull(f, labels); err != nil {
		return nil, errors.Wrap(err, "reading labels")
	}
	return labels, nil
}
