// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package history

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// EnvSpec is the external dimensionality source a History is built from.
// A vector environment typically implements it.
type EnvSpec interface {
	// NumEnvs returns the number of parallel environments N.
	NumEnvs() int

	// ObsDim returns the flattened observation dimensionality.
	ObsDim() int
}

// History is a preallocated, batched rollout buffer across N parallel
// environments for a fixed horizon T.
//
// Storage layout:
//
//   - observations: (N, T+1, obsDim), with one extra slot for the bootstrap
//     or final observation
//   - rewards: (N, T)
//   - dones: (N, T)
//   - infos: length-T list, each element nil until filled with N
//     per-environment info mappings
//
// All arrays are zero-filled at construction. History performs no stepping
// itself: the external rollout driver fills cells slot by slot.
//
// # Row Ownership
//
// The buffer is safely fan-in-writable without locks as long as the driver
// enforces that environment index n writes only to row n of every array,
// one write per (n, t) cell. The per-timestep SetInfos and the one-shot
// field setters cut across rows and must be called from a single goroutine.
type History struct {
	spec    EnvSpec
	n       int
	horizon int
	obsDim  int

	observations []float64 // flat (N, T+1, obsDim), row-major
	rewards      *mat.Dense
	dones        []bool   // flat (N, T), row-major
	infos        [][]Info // length T; nil until filled

	extraInfo  Info
	fields     Info
	stepFields map[string][]*Value
}

// NewHistory preallocates a zero-filled buffer for spec.NumEnvs()
// environments over horizon T.
func NewHistory(spec EnvSpec, horizon int) (*History, error) {
	if horizon <= 0 {
		return nil, fmt.Errorf("%w: horizon %d", ErrIndexOutOfRange, horizon)
	}
	n, d := spec.NumEnvs(), spec.ObsDim()
	if n <= 0 || d <= 0 {
		return nil, fmt.Errorf("%w: %d envs, obs dim %d", ErrShapeMismatch, n, d)
	}
	return &History{
		spec:         spec,
		n:            n,
		horizon:      horizon,
		obsDim:       d,
		observations: make([]float64, n*(horizon+1)*d),
		rewards:      mat.NewDense(n, horizon, nil),
		dones:        make([]bool, n*horizon),
		infos:        make([][]Info, horizon),
		extraInfo:    make(Info),
		fields:       make(Info),
		stepFields:   make(map[string][]*Value),
	}, nil
}

// Spec returns the dimensionality source the buffer was built from.
func (h *History) Spec() EnvSpec { return h.spec }

// N returns the number of parallel environments.
func (h *History) N() int { return h.n }

// T returns the horizon.
func (h *History) T() int { return h.horizon }

// ObsDim returns the flattened observation dimensionality.
func (h *History) ObsDim() int { return h.obsDim }

func (h *History) checkRow(n int) error {
	if n < 0 || n >= h.n {
		return fmt.Errorf("%w: env %d not in [0, %d)", ErrIndexOutOfRange, n, h.n)
	}
	return nil
}

func (h *History) checkStep(t, limit int) error {
	if t < 0 || t >= limit {
		return fmt.Errorf("%w: t %d not in [0, %d)", ErrIndexOutOfRange, t, limit)
	}
	return nil
}

// SetObservation writes the observation for environment n at slot t.
// Valid slots are [0, T]: slot T holds the bootstrap/final observation.
// Returns ErrShapeMismatch if obs does not match the observation dim.
func (h *History) SetObservation(n, t int, obs []float64) error {
	if err := h.checkRow(n); err != nil {
		return err
	}
	if err := h.checkStep(t, h.horizon+1); err != nil {
		return err
	}
	if len(obs) != h.obsDim {
		return fmt.Errorf("%w: obs dim %d, want %d", ErrShapeMismatch, len(obs), h.obsDim)
	}
	copy(h.observations[(n*(h.horizon+1)+t)*h.obsDim:], obs)
	return nil
}

// Observation returns a view of the observation for environment n at slot t.
func (h *History) Observation(n, t int) ([]float64, error) {
	if err := h.checkRow(n); err != nil {
		return nil, err
	}
	if err := h.checkStep(t, h.horizon+1); err != nil {
		return nil, err
	}
	off := (n*(h.horizon+1) + t) * h.obsDim
	return h.observations[off : off+h.obsDim], nil
}

// SetReward writes the reward for environment n at step t.
func (h *History) SetReward(n, t int, r float64) error {
	if err := h.checkRow(n); err != nil {
		return err
	}
	if err := h.checkStep(t, h.horizon); err != nil {
		return err
	}
	h.rewards.Set(n, t, r)
	return nil
}

// SetDone writes the done flag for environment n at step t.
func (h *History) SetDone(n, t int, done bool) error {
	if err := h.checkRow(n); err != nil {
		return err
	}
	if err := h.checkStep(t, h.horizon); err != nil {
		return err
	}
	h.dones[n*h.horizon+t] = done
	return nil
}

// Done reads the done flag for environment n at step t.
func (h *History) Done(n, t int) (bool, error) {
	if err := h.checkRow(n); err != nil {
		return false, err
	}
	if err := h.checkStep(t, h.horizon); err != nil {
		return false, err
	}
	return h.dones[n*h.horizon+t], nil
}

// Rewards returns the (N, T) reward matrix. The matrix is the live buffer,
// handed to metrics consumers for reading only.
func (h *History) Rewards() *mat.Dense {
	return h.rewards
}

// SetInfos fills the per-environment info mappings for step t.
// Returns ErrShapeMismatch unless exactly N mappings are supplied.
func (h *History) SetInfos(t int, infos []Info) error {
	if err := h.checkStep(t, h.horizon); err != nil {
		return err
	}
	if len(infos) != h.n {
		return fmt.Errorf("%w: %d infos, want %d", ErrShapeMismatch, len(infos), h.n)
	}
	h.infos[t] = infos
	return nil
}

// Infos returns the info mappings for step t, or nil if the slot has not
// been filled yet.
func (h *History) Infos(t int) ([]Info, error) {
	if err := h.checkStep(t, h.horizon); err != nil {
		return nil, err
	}
	return h.infos[t], nil
}

// Masks derives the (N, T) validity-mask matrix.
//
// A step is valid unless its environment already terminated at a strictly
// earlier step within the window: masks[n, 0] = 1, and once dones[n, t] is
// observed true every masks[n, t'] for t' > t is 0. The matrix is computed
// fresh on each call; it is never stored.
func (h *History) Masks() *mat.Dense {
	masks := mat.NewDense(h.n, h.horizon, nil)
	for n := 0; n < h.n; n++ {
		alive := 1.0
		for t := 0; t < h.horizon; t++ {
			masks.Set(n, t, alive)
			if h.dones[n*h.horizon+t] {
				alive = 0
			}
		}
	}
	return masks
}

// Add attaches a one-shot object-level field to the buffer.
// Returns ErrDuplicateKey on a second call with the same name.
func (h *History) Add(name string, v Value) error {
	return h.fields.Add(name, v)
}

// Get reads an object-level field.
// Returns ErrMissingKey if the name was never added.
func (h *History) Get(name string) (Value, error) {
	return h.fields.Get(name)
}

// AddT attaches a named per-timestep value at step t.
//
// The first call for a name allocates a length-T array unset at every other
// index. Returns ErrIndexOutOfRange unless 0 <= t < T, and ErrDuplicateKey
// if slot t for that name was already set.
func (h *History) AddT(name string, v Value, t int) error {
	if err := h.checkStep(t, h.horizon); err != nil {
		return err
	}
	slots, ok := h.stepFields[name]
	if !ok {
		slots = make([]*Value, h.horizon)
		h.stepFields[name] = slots
	}
	if slots[t] != nil {
		return fmt.Errorf("%w: %q at t %d", ErrDuplicateKey, name, t)
	}
	slots[t] = &v
	return nil
}

// GetT reads a named per-timestep value at step t. A nil result with no
// error means the slot exists but was never set.
// Returns ErrMissingKey if the name was never added at any step.
func (h *History) GetT(name string, t int) (*Value, error) {
	if err := h.checkStep(t, h.horizon); err != nil {
		return nil, err
	}
	slots, ok := h.stepFields[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingKey, name)
	}
	return slots[t], nil
}

// FieldT returns the full length-T slot array for a per-timestep name;
// unset slots are nil.
// Returns ErrMissingKey if the name was never added.
func (h *History) FieldT(name string) ([]*Value, error) {
	slots, ok := h.stepFields[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingKey, name)
	}
	return slots, nil
}

// ExtraInfo returns the free-form annotation mapping. Unlike the one-shot
// fields, callers may overwrite entries at will.
func (h *History) ExtraInfo() Info {
	return h.extraInfo
}
