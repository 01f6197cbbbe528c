// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package envs

import "fmt"

// SerialVecEnv steps a batch of homogeneous environments in a single
// goroutine, auto-resetting each one as it terminates.
//
// The wrapper satisfies the batched-buffer dimensionality contract
// (NumEnvs/ObsDim) so it can size a history.History directly, and exposes its
// members via Env(i) for drivers that want one environment per goroutine
// instead of batched stepping.
type SerialVecEnv struct {
	envs []Env
	spec Spec
}

// NewSerialVecEnv wraps the given environments. All environments must share
// the same spec; the batch must be non-empty.
func NewSerialVecEnv(members []Env) (*SerialVecEnv, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrSpecMismatch)
	}
	spec := members[0].Spec()
	for i, e := range members {
		if e.Spec() != spec {
			return nil, fmt.Errorf("%w: env %d has %+v, want %+v", ErrSpecMismatch, i, e.Spec(), spec)
		}
	}
	return &SerialVecEnv{envs: members, spec: spec}, nil
}

// NumEnvs returns the batch size.
func (v *SerialVecEnv) NumEnvs() int { return len(v.envs) }

// ObsDim returns the shared observation dimensionality.
func (v *SerialVecEnv) ObsDim() int { return v.spec.ObsDim }

// Spec returns the shared per-environment spec.
func (v *SerialVecEnv) Spec() Spec { return v.spec }

// Env returns member i for drivers that step environments independently.
func (v *SerialVecEnv) Env(i int) Env { return v.envs[i] }

// Reset restarts every member environment and returns the batch of initial
// observations.
func (v *SerialVecEnv) Reset() [][]float64 {
	obs := make([][]float64, len(v.envs))
	for i, e := range v.envs {
		obs[i] = e.Reset()
	}
	return obs
}

// Step advances every member by one timestep.
//
// When member i terminates, it is reset immediately: next[i] is the fresh
// episode's initial observation and terminals[i] holds the terminal
// observation the reset replaced. For surviving members terminals[i] is nil.
func (v *SerialVecEnv) Step(actions [][]float64) (next [][]float64, rewards []float64, dones []bool, terminals [][]float64, err error) {
	if len(actions) != len(v.envs) {
		return nil, nil, nil, nil, fmt.Errorf("%w: got %d actions for %d envs",
			ErrSpecMismatch, len(actions), len(v.envs))
	}
	next = make([][]float64, len(v.envs))
	rewards = make([]float64, len(v.envs))
	dones = make([]bool, len(v.envs))
	terminals = make([][]float64, len(v.envs))
	for i, e := range v.envs {
		obs, r, done, stepErr := e.Step(actions[i])
		if stepErr != nil {
			return nil, nil, nil, nil, fmt.Errorf("env %d: %w", i, stepErr)
		}
		rewards[i] = r
		dones[i] = done
		if done {
			terminals[i] = obs
			obs = e.Reset()
		}
		next[i] = obs
	}
	return next, rewards, dones, terminals, nil
}
