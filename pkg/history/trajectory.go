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

import "fmt"

// Trajectory is an ordered, append-only sequence of transitions belonging to
// one uninterrupted episode attempt, plus a trajectory-level info mapping for
// annotations not tied to a single step (e.g. an episode id).
//
// A trajectory becomes logically closed once a transition with Done = true
// has been appended; further appends fail with ErrTrajectoryClosed. All
// derived views are recomputed on demand from the current transitions.
type Trajectory struct {
	transitions []*Transition
	info        Info
}

// NewTrajectory constructs an empty, open trajectory.
func NewTrajectory() *Trajectory {
	return &Trajectory{info: make(Info)}
}

// AddTransition appends a step to the trajectory.
// Returns ErrTrajectoryClosed if the trajectory is already complete.
func (t *Trajectory) AddTransition(tr *Transition) error {
	if t.Complete() {
		return fmt.Errorf("%w: length %d", ErrTrajectoryClosed, len(t.transitions))
	}
	t.transitions = append(t.transitions, tr)
	return nil
}

// T returns the number of transitions.
func (t *Trajectory) T() int {
	return len(t.transitions)
}

// Complete reports whether the last appended transition terminated the
// episode. An empty trajectory is not complete.
func (t *Trajectory) Complete() bool {
	n := len(t.transitions)
	return n > 0 && t.transitions[n-1].Done
}

// Transitions returns the underlying transition sequence.
//
// The slice is shared, not copied: the trajectory owns its transitions and
// callers must not append through the returned slice. Mutating a
// transition's Done flag through it is the supported way to simulate
// different boundary conditions.
func (t *Trajectory) Transitions() []*Transition {
	return t.transitions
}

// AddInfo attaches a trajectory-level annotation.
// Returns ErrDuplicateKey if the key is already present.
func (t *Trajectory) AddInfo(key string, v Value) error {
	return t.info.Add(key, v)
}

// Info reads a trajectory-level annotation.
// Returns ErrMissingKey if the key was never added.
func (t *Trajectory) Info(key string) (Value, error) {
	return t.info.Get(key)
}

// InfoLen returns the number of trajectory-level annotations.
func (t *Trajectory) InfoLen() int {
	return len(t.info)
}

// States returns the sequence of the T step states together with the single
// trailing next-state.
//
// The trailing state is kept separate rather than folded into one array
// because its presence does not imply termination: for an incomplete
// trajectory it is a bootstrap point, not a terminal observation.
func (t *Trajectory) States() ([][]float64, []float64) {
	if len(t.transitions) == 0 {
		return nil, nil
	}
	states := make([][]float64, len(t.transitions))
	for i, tr := range t.transitions {
		states[i] = tr.State
	}
	return states, t.transitions[len(t.transitions)-1].NextState
}

// Actions returns the per-step actions in order.
func (t *Trajectory) Actions() [][]float64 {
	actions := make([][]float64, len(t.transitions))
	for i, tr := range t.transitions {
		actions[i] = tr.Action
	}
	return actions
}

// Rewards returns the per-step rewards in order.
func (t *Trajectory) Rewards() []float64 {
	rewards := make([]float64, len(t.transitions))
	for i, tr := range t.transitions {
		rewards[i] = tr.Reward
	}
	return rewards
}

// Dones returns the per-step done flags in order.
func (t *Trajectory) Dones() []bool {
	dones := make([]bool, len(t.transitions))
	for i, tr := range t.transitions {
		dones[i] = tr.Done
	}
	return dones
}

// Returns computes the un-discounted suffix returns:
// out[i] = sum of rewards[i:].
func (t *Trajectory) Returns() []float64 {
	out := make([]float64, len(t.transitions))
	acc := 0.0
	for i := len(t.transitions) - 1; i >= 0; i-- {
		acc += t.transitions[i].Reward
		out[i] = acc
	}
	return out
}

// DiscountedReturns computes the discounted suffix returns:
// out[i] = sum over j >= i of gamma^(j-i) * rewards[j].
//
// Any gamma >= 0 is accepted (the data model places no upper bound here;
// the metrics functions impose [0, 1] where the recurrences require it).
// Returns ErrDiscountDomain for a negative gamma.
func (t *Trajectory) DiscountedReturns(gamma float64) ([]float64, error) {
	if gamma < 0 {
		return nil, fmt.Errorf("%w: gamma %v < 0", ErrDiscountDomain, gamma)
	}
	out := make([]float64, len(t.transitions))
	acc := 0.0
	for i := len(t.transitions) - 1; i >= 0; i-- {
		acc = t.transitions[i].Reward + gamma*acc
		out[i] = acc
	}
	return out, nil
}

// AllInfo stacks the per-transition info values for key, in step order.
// Returns ErrMissingKey if any transition lacks the key.
func (t *Trajectory) AllInfo(key string) ([]Value, error) {
	out := make([]Value, len(t.transitions))
	for i, tr := range t.transitions {
		v, err := tr.Info(key)
		if err != nil {
			return nil, fmt.Errorf("transition %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
