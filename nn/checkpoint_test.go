// Copyright 2026 Dense ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// fakeOptimizer records state dict calls for checkpoint tests.
type fakeOptimizer struct {
	state  map[string]*mat.Dense
	loaded map[string]*mat.Dense
}

func (f *fakeOptimizer) StateDict() map[string]*mat.Dense { return f.state }
func (f *fakeOptimizer) LoadStateDict(s map[string]*mat.Dense) error {
	f.loaded = s
	return nil
}

func TestCheckpointRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.ckpt")

	src, err := NewXavier(6, []int{4}, []Activation{Tanh()}, 3)
	require.NoError(t, err)

	ck := Checkpoint{
		Epoch:    7,
		Step:     4200,
		Loss:     0.1234,
		Metadata: map[string]string{"sizes": "6,4,3"},
	}
	require.NoError(t, SaveCheckpoint(path, src, nil, ck))

	dst, err := NewXavier(6, []int{4}, []Activation{Tanh()}, 3)
	require.NoError(t, err)
	loaded, err := LoadCheckpoint(path, dst, nil)
	require.NoError(t, err)

	assert.Equal(t, 7, loaded.Epoch)
	assert.Equal(t, int64(4200), loaded.Step)
	assert.InDelta(t, 0.1234, loaded.Loss, 1e-12)
	assert.Equal(t, "6,4,3", loaded.Metadata["sizes"])
	assert.False(t, loaded.CreatedAt.IsZero())

	in := randomBatch(2, 6)
	assert.True(t, mat.EqualApprox(src.Forward(in), dst.Forward(in), 1e-12),
		"restored network must produce identical outputs")
}

func TestCheckpointOptimizerState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opt.ckpt")

	net, err := New(4, []int{3}, []Activation{ReLU()}, 2)
	require.NoError(t, err)

	opt := &fakeOptimizer{state: map[string]*mat.Dense{
		"velocity.0": mat.NewDense(4, 3, []float64{
			1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12,
		}),
	}}
	require.NoError(t, SaveCheckpoint(path, net, opt, Checkpoint{Epoch: 1}))

	restored := &fakeOptimizer{}
	_, err = LoadCheckpoint(path, net, restored)
	require.NoError(t, err)
	require.Contains(t, restored.loaded, "velocity.0")
	assert.True(t, mat.EqualApprox(opt.state["velocity.0"], restored.loaded["velocity.0"], 1e-12))
}

func TestCheckpointArchitectureMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mismatch.ckpt")

	src, err := New(6, []int{4}, []Activation{Tanh()}, 3)
	require.NoError(t, err)
	require.NoError(t, SaveCheckpoint(path, src, nil, Checkpoint{}))

	other, err := New(6, []int{5}, []Activation{Tanh()}, 3)
	require.NoError(t, err)
	_, err = LoadCheckpoint(path, other, nil)
	assert.Error(t, err, "loading into a different architecture must fail")
}

func TestLoadCheckpointMissingFile(t *testing.T) {
	net, err := New(4, []int{3}, []Activation{ReLU()}, 2)
	require.NoError(t, err)
	_, err = LoadCheckpoint(filepath.Join(t.TempDir(), "nope.ckpt"), net, nil)
	assert.Error(t, err)
}
