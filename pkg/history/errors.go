// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package history provides the episodic rollout data model for
// reinforcement-learning experiments.
//
// The package turns raw environment interaction (state, action, reward,
// next-state, done) into the structures a training update consumes. It offers
// three container shapes:
//
//   - Trajectory: one uninterrupted episode attempt, closed by a terminal
//     transition.
//   - Segment: a fixed-length window from one environment that may cross
//     zero or more episode boundaries, partitioned back into Trajectories.
//   - History: a preallocated batched buffer across N parallel environments
//     for a fixed horizon T, with validity masks for padded steps.
//
// The numeric recurrences (returns, TD targets/errors, GAE) live in the
// metrics subpackage and produce identical per-step results regardless of
// which container shape feeds them.
//
// # Design Principles
//
// Derived views (stacked states, returns, partitions) are recomputed on
// demand from the current transition sequence; nothing is cached, so
// mutating a Transition's Done flag is always consistent with every later
// view call. All numeric data at the package boundary is float64 scalars and
// []float64 vectors; conversion to framework tensor types is the caller's
// responsibility.
//
// # Thread Safety
//
// Trajectory and Segment are single-writer structures and are NOT safe for
// concurrent mutation. History supports lock-free fan-in writes under the
// row-ownership contract documented on the type: each environment index n
// writes only to row n, one write per (n, t) cell.
package history

import "errors"

// Sentinel errors for the rollout data model.
//
// The taxonomy mirrors the failure classes of the core: structural
// violations (appending after closure, key collisions), shape mismatches
// (value sequences that do not line up with rewards or partitions), and
// domain violations (discount factors outside their valid range). Every
// failure is reported synchronously at the violating call; nothing is
// retried or recovered internally.
var (
	// ErrDuplicateKey is returned when adding an info key or a one-shot
	// History field that is already present.
	ErrDuplicateKey = errors.New("key already present")

	// ErrMissingKey is returned when reading an info key or History field
	// that was never added.
	ErrMissingKey = errors.New("key not present")

	// ErrTrajectoryClosed is returned when appending a transition to a
	// trajectory whose last transition already has Done set. A closed
	// trajectory is terminal; no operation reopens it.
	ErrTrajectoryClosed = errors.New("trajectory already closed by terminal transition")

	// ErrShapeMismatch is returned when a value sequence does not match the
	// required length relationship with the rewards or partitions it
	// accompanies (typically len(values) == len(rewards)+1, or one bootstrap
	// value per partition).
	ErrShapeMismatch = errors.New("sequence length mismatch")

	// ErrDiscountDomain is returned when a discount factor or trace-decay
	// coefficient lies outside its valid range.
	ErrDiscountDomain = errors.New("discount factor out of range")

	// ErrIndexOutOfRange is returned when a timestep index falls outside
	// the buffer horizon [0, T).
	ErrIndexOutOfRange = errors.New("timestep index out of range")

	// ErrValueKind is returned when an auxiliary Value holds a different
	// kind than the accessor expects.
	ErrValueKind = errors.New("unexpected value kind")
)
