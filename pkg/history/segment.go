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

// Segment is a fixed-length window of transitions from one environment. The
// window may contain zero, one, or several episode boundaries due to resets;
// the segment partitions itself back into Trajectories at done boundaries.
//
// Unlike a Trajectory, a Segment has no terminal state: AddTransition always
// appends, and the external rollout driver decides when the window is full.
// The segment carries its own info mapping, separate from both its
// transitions' and its partitions' info.
type Segment struct {
	transitions []*Transition
	info        Info
}

// NewSegment constructs an empty segment.
func NewSegment() *Segment {
	return &Segment{info: make(Info)}
}

// AddTransition appends a step to the window unconditionally.
func (s *Segment) AddTransition(tr *Transition) {
	s.transitions = append(s.transitions, tr)
}

// T returns the number of transitions in the window.
func (s *Segment) T() int {
	return len(s.transitions)
}

// Transitions returns the underlying transition sequence (shared, not
// copied; see Trajectory.Transitions).
func (s *Segment) Transitions() []*Transition {
	return s.transitions
}

// AddInfo attaches a segment-level annotation.
// Returns ErrDuplicateKey if the key is already present.
func (s *Segment) AddInfo(key string, v Value) error {
	return s.info.Add(key, v)
}

// Info reads a segment-level annotation.
// Returns ErrMissingKey if the key was never added.
func (s *Segment) Info(key string) (Value, error) {
	return s.info.Get(key)
}

// InfoLen returns the number of segment-level annotations.
func (s *Segment) InfoLen() int {
	return len(s.info)
}

// Trajectories partitions the window into per-episode trajectories.
//
// A new partition starts at index 0 and immediately after every transition
// with Done = true (unless that transition is the last). Partitions share
// the segment's transitions rather than copying them, and concatenating the
// partitions in order reproduces the segment's own sequence exactly. The
// last partition is incomplete unless the final transition has Done = true.
//
// The partitioning is recomputed on each call.
func (s *Segment) Trajectories() []*Trajectory {
	var out []*Trajectory
	start := 0
	for i, tr := range s.transitions {
		if tr.Done || i == len(s.transitions)-1 {
			out = append(out, &Trajectory{
				transitions: s.transitions[start : i+1],
				info:        make(Info),
			})
			start = i + 1
		}
	}
	return out
}

// States returns the stacked states across the whole window together with
// the trailing next-state of every partition, one per partition in order.
// The trailing list's length equals the number of partitions, including a
// possibly-incomplete final one.
func (s *Segment) States() ([][]float64, [][]float64) {
	if len(s.transitions) == 0 {
		return nil, nil
	}
	states := make([][]float64, len(s.transitions))
	for i, tr := range s.transitions {
		states[i] = tr.State
	}
	parts := s.Trajectories()
	trailing := make([][]float64, len(parts))
	for i, part := range parts {
		_, last := part.States()
		trailing[i] = last
	}
	return states, trailing
}

// Actions returns the per-step actions over the whole window.
func (s *Segment) Actions() [][]float64 {
	actions := make([][]float64, len(s.transitions))
	for i, tr := range s.transitions {
		actions[i] = tr.Action
	}
	return actions
}

// Rewards returns the per-step rewards over the whole window.
func (s *Segment) Rewards() []float64 {
	rewards := make([]float64, len(s.transitions))
	for i, tr := range s.transitions {
		rewards[i] = tr.Reward
	}
	return rewards
}

// Dones returns the per-step done flags over the whole window.
func (s *Segment) Dones() []bool {
	dones := make([]bool, len(s.transitions))
	for i, tr := range s.transitions {
		dones[i] = tr.Done
	}
	return dones
}

// Returns computes un-discounted suffix returns per partition and
// concatenates them back into one per-step sequence. Returns reset at every
// episode boundary and never leak across one.
func (s *Segment) Returns() []float64 {
	out := make([]float64, 0, len(s.transitions))
	for _, part := range s.Trajectories() {
		out = append(out, part.Returns()...)
	}
	return out
}

// DiscountedReturns computes discounted suffix returns per partition and
// concatenates them, resetting at every episode boundary.
// Returns ErrDiscountDomain for a negative gamma.
func (s *Segment) DiscountedReturns(gamma float64) ([]float64, error) {
	if gamma < 0 {
		return nil, fmt.Errorf("%w: gamma %v < 0", ErrDiscountDomain, gamma)
	}
	out := make([]float64, 0, len(s.transitions))
	for _, part := range s.Trajectories() {
		ret, err := part.DiscountedReturns(gamma)
		if err != nil {
			return nil, err
		}
		out = append(out, ret...)
	}
	return out, nil
}

// AllInfo stacks the per-transition info values for key over the whole
// window, in step order.
// Returns ErrMissingKey if any transition lacks the key.
func (s *Segment) AllInfo(key string) ([]Value, error) {
	out := make([]Value, len(s.transitions))
	for i, tr := range s.transitions {
		v, err := tr.Info(key)
		if err != nil {
			return nil, fmt.Errorf("transition %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
