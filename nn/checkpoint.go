// Copyright 2026 Dense ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"encoding/gob"
	"os"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// OptimizerState is implemented by optimizers that can save and restore
// their internal buffers (momentum velocities, Adam moments).
//
// It is declared here rather than in the optim package so that checkpoints
// can serialize optimizer state without an import cycle.
type OptimizerState interface {
	// StateDict returns the optimizer state for serialization.
	StateDict() map[string]*mat.Dense

	// LoadStateDict restores optimizer state from serialization.
	LoadStateDict(stateDict map[string]*mat.Dense) error
}

// Checkpoint is a training snapshot: model parameters, optimizer buffers,
// and bookkeeping metadata. It allows an interrupted training run to be
// resumed from the epoch it stopped at.
type Checkpoint struct {
	Epoch     int               // epoch the snapshot was taken after
	Step      int64             // global step count
	Loss      float64           // loss at snapshot time
	Metadata  map[string]string // free-form training metadata
	CreatedAt time.Time         // when the checkpoint was written
}

// matrixRecord is the gob wire form of a matrix. mat.Dense is not
// registered with gob, so shapes and backing data are stored explicitly.
type matrixRecord struct {
	Rows, Cols int
	Data       []float64
}

// checkpointRecord is the gob wire form of a full checkpoint file.
type checkpointRecord struct {
	Model     map[string]matrixRecord
	Optimizer map[string]matrixRecord
	Epoch     int
	Step      int64
	Loss      float64
	Metadata  map[string]string
	CreatedAt time.Time
}

// SaveCheckpoint writes a checkpoint file containing the model's state
// dictionary, the optimizer's state (opt may be nil for inference-only
// snapshots), and the checkpoint metadata.
func SaveCheckpoint(path string, model Module, opt OptimizerState, ck Checkpoint) error {
	record := checkpointRecord{
		Model:     toRecords(model.StateDict()),
		Epoch:     ck.Epoch,
		Step:      ck.Step,
		Loss:      ck.Loss,
		Metadata:  ck.Metadata,
		CreatedAt: ck.CreatedAt,
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	if opt != nil {
		record.Optimizer = toRecords(opt.StateDict())
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating checkpoint file")
	}
	if err := gob.NewEncoder(f).Encode(record); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "encoding checkpoint")
	}
	return errors.Wrap(f.Close(), "writing checkpoint")
}

// LoadCheckpoint reads a checkpoint file, loads the model parameters (and
// optimizer state when opt is non-nil), and returns the checkpoint
// metadata.
//
// The model must already have the architecture the checkpoint was saved
// from; parameter names and shapes are validated by LoadStateDict.
func LoadCheckpoint(path string, model Module, opt OptimizerState) (*Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening checkpoint file")
	}
	defer f.Close()

	var record checkpointRecord
	if err := gob.NewDecoder(f).Decode(&record); err != nil {
		return nil, errors.Wrap(err, "decoding checkpoint")
	}

	if err := model.LoadStateDict(fromRecords(record.Model)); err != nil {
		return nil, errors.Wrap(err, "loading model state")
	}
	if opt != nil && record.Optimizer != nil {
		if err := opt.LoadStateDict(fromRecords(record.Optimizer)); err != nil {
			return nil, errors.Wrap(err, "loading optimizer state")
		}
	}

	return &Checkpoint{
		Epoch:     record.Epoch,
		Step:      record.Step,
		Loss:      record.Loss,
		Metadata:  record.Metadata,
		CreatedAt: record.CreatedAt,
	}, nil
}

func toRecords(stateDict map[string]*mat.Dense) map[string]matrixRecord {
	records := make(map[string]matrixRecord, len(stateDict))
	for name, m := range stateDict {
		rows, cols := m.Dims()
		data := make([]float64, rows*cols)
		for i := 0; i < rows; i++ {
			copy(data[i*cols:(i+1)*cols], m.RawRowView(i))
		}
		records[name] = matrixRecord{Rows: rows, Cols: cols, Data: data}
	}
	return records
}

func fromRecords(records map[string]matrixRecord) map[string]*mat.Dense {
	stateDict := make(map[string]*mat.Dense, len(records))
	for name, r := range records {
		stateDict[name] = mat.NewDense(r.Rows, r.Cols, r.Data)
	}
	return stateDict
}
