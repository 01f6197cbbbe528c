// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package envs provides simulation environments for the rollout drivers.
//
// An Env produces observation vectors and consumes action vectors, matching
// the float64-slice boundary of the history package. The package ships one
// classic-control environment (CartPole) and a serial vectorized wrapper so
// batched collection can be exercised end to end without an external
// simulator.
//
// # Thread Safety
//
// Environments are single-stepper structures and are NOT safe for concurrent
// use. SerialVecEnv hands out its member environments via Env(i) so parallel
// drivers can own one environment per goroutine.
package envs

import "errors"

// Sentinel errors for environment interaction.
var (
	// ErrActionShape is returned when an action vector has the wrong
	// dimensionality for the environment.
	ErrActionShape = errors.New("action vector has wrong dimensionality")

	// ErrActionDomain is returned when a discrete action index lies outside
	// the environment's action set.
	ErrActionDomain = errors.New("action outside the valid action set")

	// ErrSpecMismatch is returned when vectorizing environments whose specs
	// disagree, or when a batched call has the wrong batch size.
	ErrSpecMismatch = errors.New("environment specs or batch size disagree")
)

// Spec describes the observation and action interface of an environment.
type Spec struct {
	// ObsDim is the length of every observation vector.
	ObsDim int

	// ActDim is the length of every action vector.
	ActDim int

	// NumActions is the size of the discrete action set, or 0 for a
	// continuous action space.
	NumActions int
}

// Env is a single simulation environment.
//
// Reset starts a fresh episode and returns its initial observation. Step
// advances one timestep and reports the next observation, the scalar reward
// and whether the episode terminated. After a terminal step the caller must
// Reset before stepping again.
type Env interface {
	Reset() []float64
	Step(action []float64) (next []float64, reward float64, done bool, err error)
	Spec() Spec
}
