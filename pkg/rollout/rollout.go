// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package rollout drives environments with an agent and records the
// interaction into the history containers.
//
// Three collection shapes are supported, one per container:
//
//   - Trajectory: one episode from reset to termination (or a step cap).
//   - Segment: a fixed-length window with auto-reset at episode boundaries.
//   - History: a batched (N, T) buffer filled by one goroutine per
//     environment, each writing only its own row.
//
// Per-step agent annotations (value estimates, log probabilities) travel in
// Decision.Extras and are attached to each recorded transition's info, so
// the metrics layer can read them back without the collector knowing what
// they mean.
//
// # Thread Safety
//
// A Collector is safe for concurrent use only through FillHistory, which
// gives every goroutine its own environment and agent. The single-stream
// collectors (Trajectory, Segment) drive one environment and must not be
// called concurrently with the same agent.
package rollout

import (
	"math/rand"

	"github.com/mikepsn/lagom/pkg/envs"
	"github.com/mikepsn/lagom/pkg/history"
)

// Decision is an agent's response to an observation: the action to execute
// and optional per-step annotations to record alongside the transition.
type Decision struct {
	Action []float64

	// Extras are attached to the recorded transition's info under their own
	// keys. May be nil. Well-known keys live in the history package
	// (history.KeyStateValue, history.KeyLogProb, ...).
	Extras history.Info
}

// Agent maps observations to decisions.
type Agent interface {
	Act(obs []float64) (Decision, error)
}

// RandomAgent samples uniformly from a discrete action set, or from a
// standard normal per action dimension for continuous spaces. Useful as a
// collection baseline and in tests.
type RandomAgent struct {
	spec envs.Spec
	rng  *rand.Rand
}

// NewRandomAgent constructs a random agent for the given spec. A nil rng
// falls back to an unseeded source.
func NewRandomAgent(spec envs.Spec, rng *rand.Rand) *RandomAgent {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &RandomAgent{spec: spec, rng: rng}
}

// Act ignores the observation and samples an action.
func (a *RandomAgent) Act(obs []float64) (Decision, error) {
	action := make([]float64, a.spec.ActDim)
	if a.spec.NumActions > 0 {
		for i := range action {
			action[i] = float64(a.rng.Intn(a.spec.NumActions))
		}
	} else {
		for i := range action {
			action[i] = a.rng.NormFloat64()
		}
	}
	return Decision{Action: action}, nil
}
