// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package metrics computes the return and advantage quantities an RL update
// consumes: bootstrapped returns, one-step TD targets/errors, and
// generalized advantage estimates.
//
// Every computation exists in three forms: a pure kernel over plain
// []float64 sequences (this file), a Trajectory-flavored entry point, and a
// Segment-flavored entry point. The flavored pairs agree step for step; the
// Segment flavor applies the kernel independently within each partition and
// concatenates, so no return or advantage ever leaks across an episode
// boundary. Flavor safety is enforced by Go's type system: a Trajectory
// cannot be passed where a Segment is expected, so the mismatch cannot be
// written.
//
// The package never computes a value estimate itself; callers supply
// externally computed values (V(s) sequences and per-episode bootstrap
// values) as plain numeric sequences.
package metrics

import (
	"fmt"

	"github.com/mikepsn/lagom/pkg/history"
)

func checkUnit(name string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: %s %v not in [0, 1]", history.ErrDiscountDomain, name, v)
	}
	return nil
}

// BootstrappedReturns computes Monte-Carlo-with-bootstrap returns by the
// backward recurrence
//
//	out[T-1] = rewards[T-1] + gamma*vLast   (vLast dropped when terminal)
//	out[i]   = rewards[i] + gamma*out[i+1]
//
// When terminal is true the episode ended at the last step and vLast
// contributes nothing; otherwise vLast substitutes the value of the rewards
// beyond the window.
// Returns ErrDiscountDomain unless 0 <= gamma <= 1.
func BootstrappedReturns(rewards []float64, vLast, gamma float64, terminal bool) ([]float64, error) {
	if err := checkUnit("gamma", gamma); err != nil {
		return nil, err
	}
	out := make([]float64, len(rewards))
	acc := vLast
	if terminal {
		acc = 0
	}
	for i := len(rewards) - 1; i >= 0; i-- {
		acc = rewards[i] + gamma*acc
		out[i] = acc
	}
	return out, nil
}

// TD0Target computes one-step temporal-difference targets:
//
//	target[i] = rewards[i] + gamma*values[i+1]
//
// values must be one element longer than rewards; the final entry is the
// bootstrap value and must already be zeroed by the caller when the
// underlying transition is terminal.
// Returns ErrShapeMismatch unless len(values) == len(rewards)+1, and
// ErrDiscountDomain unless 0 <= gamma <= 1.
func TD0Target(rewards, values []float64, gamma float64) ([]float64, error) {
	if len(values) != len(rewards)+1 {
		return nil, fmt.Errorf("%w: %d values for %d rewards, want %d",
			history.ErrShapeMismatch, len(values), len(rewards), len(rewards)+1)
	}
	if err := checkUnit("gamma", gamma); err != nil {
		return nil, err
	}
	out := make([]float64, len(rewards))
	for i := range rewards {
		out[i] = rewards[i] + gamma*values[i+1]
	}
	return out, nil
}

// TD0Error computes one-step TD errors, target[i] - values[i], using the
// same target computation and validation as TD0Target.
func TD0Error(rewards, values []float64, gamma float64) ([]float64, error) {
	targets, err := TD0Target(rewards, values, gamma)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(targets))
	for i := range targets {
		out[i] = targets[i] - values[i]
	}
	return out, nil
}

// GAE applies the generalized-advantage backward recurrence to a sequence
// of one-step TD errors:
//
//	out[T-1] = deltas[T-1]
//	out[i]   = deltas[i] + gamma*lambda*out[i+1]
//
// Returns ErrDiscountDomain unless both gamma and lambda lie in [0, 1].
func GAE(deltas []float64, gamma, lambda float64) ([]float64, error) {
	if err := checkUnit("gamma", gamma); err != nil {
		return nil, err
	}
	if err := checkUnit("lambda", lambda); err != nil {
		return nil, err
	}
	out := make([]float64, len(deltas))
	acc := 0.0
	for i := len(deltas) - 1; i >= 0; i-- {
		acc = deltas[i] + gamma*lambda*acc
		out[i] = acc
	}
	return out, nil
}
