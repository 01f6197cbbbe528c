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

// Transition is one environment step: (state, action, reward, next-state,
// done) plus an info side channel for auxiliary values such as a value
// estimate or a log-probability.
//
// A Transition is owned exclusively by the Trajectory or Segment it is
// appended to. The step fields are set at construction and not meant to be
// modified afterwards, with one deliberate exception: Done is an exported
// field so boundary conditions can be simulated by flipping it post-hoc.
// Derived views downstream recompute from the current transitions, so a
// flip is never observed through a stale result.
type Transition struct {
	// State is the observation the action was taken from.
	State []float64

	// Action is the action taken. Discrete actions are encoded as a
	// single-element vector.
	Action []float64

	// Reward is the scalar reward received for the step.
	Reward float64

	// NextState is the observation after the step.
	NextState []float64

	// Done reports whether the episode terminated at this step.
	Done bool

	info Info
}

// NewTransition constructs a step record with an empty info side channel.
func NewTransition(state, action []float64, reward float64, nextState []float64, done bool) *Transition {
	return &Transition{
		State:     state,
		Action:    action,
		Reward:    reward,
		NextState: nextState,
		Done:      done,
		info:      make(Info),
	}
}

// AddInfo attaches an auxiliary value to the step.
// Returns ErrDuplicateKey if the key is already present.
func (tr *Transition) AddInfo(key string, v Value) error {
	return tr.info.Add(key, v)
}

// Info reads an auxiliary value.
// Returns ErrMissingKey if the key was never added.
func (tr *Transition) Info(key string) (Value, error) {
	return tr.info.Get(key)
}

// HasInfo reports whether the step carries the given key.
func (tr *Transition) HasInfo(key string) bool {
	_, ok := tr.info[key]
	return ok
}

// InfoLen returns the number of auxiliary values on the step.
func (tr *Transition) InfoLen() int {
	return len(tr.info)
}
