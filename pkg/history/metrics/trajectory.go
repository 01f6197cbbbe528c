// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package metrics

import (
	"fmt"

	"github.com/mikepsn/lagom/pkg/history"
)

// TerminalStateFromTrajectory returns the trajectory's trailing next-state
// if the episode actually terminated, and nil otherwise. An incomplete
// trajectory has no terminal state.
func TerminalStateFromTrajectory(t *history.Trajectory) []float64 {
	if !t.Complete() {
		return nil
	}
	_, last := t.States()
	return last
}

// FinalStateFromTrajectory returns the trailing next-state unconditionally,
// complete or not. For an incomplete trajectory this is the bootstrap
// observation, not a terminal one.
func FinalStateFromTrajectory(t *history.Trajectory) []float64 {
	_, last := t.States()
	return last
}

// BootstrappedReturnsFromTrajectory computes bootstrapped returns over the
// trajectory's rewards. vLast contributes only when the trajectory is
// incomplete; for a complete trajectory the final step uses its reward
// alone.
func BootstrappedReturnsFromTrajectory(t *history.Trajectory, vLast, gamma float64) ([]float64, error) {
	return BootstrappedReturns(t.Rewards(), vLast, gamma, t.Complete())
}

// bootstrapValues extends a length-T value sequence with the bootstrap
// entry: vLast for an open episode, zero for a terminated one.
func bootstrapValues(t *history.Trajectory, values []float64, vLast float64) ([]float64, error) {
	if len(values) != t.T() {
		return nil, fmt.Errorf("%w: %d values for trajectory of length %d",
			history.ErrShapeMismatch, len(values), t.T())
	}
	full := make([]float64, 0, len(values)+1)
	full = append(full, values...)
	if t.Complete() {
		full = append(full, 0)
	} else {
		full = append(full, vLast)
	}
	return full, nil
}

// TD0TargetFromTrajectory computes one-step TD targets over the trajectory.
//
// values holds V(s) for each of the T states; vLast is the bootstrap value
// for the trailing next-state and is zeroed out of the final target exactly
// when the trajectory is complete.
// Returns ErrShapeMismatch unless len(values) == t.T().
func TD0TargetFromTrajectory(t *history.Trajectory, values []float64, vLast, gamma float64) ([]float64, error) {
	full, err := bootstrapValues(t, values, vLast)
	if err != nil {
		return nil, err
	}
	return TD0Target(t.Rewards(), full, gamma)
}

// TD0ErrorFromTrajectory computes one-step TD errors over the trajectory,
// with the same value/bootstrap handling as TD0TargetFromTrajectory.
func TD0ErrorFromTrajectory(t *history.Trajectory, values []float64, vLast, gamma float64) ([]float64, error) {
	full, err := bootstrapValues(t, values, vLast)
	if err != nil {
		return nil, err
	}
	return TD0Error(t.Rewards(), full, gamma)
}

// GAEFromTrajectory computes generalized advantage estimates over the
// trajectory: one-step TD errors first, then the gamma*lambda backward
// recurrence.
func GAEFromTrajectory(t *history.Trajectory, values []float64, vLast, gamma, lambda float64) ([]float64, error) {
	deltas, err := TD0ErrorFromTrajectory(t, values, vLast, gamma)
	if err != nil {
		return nil, err
	}
	return GAE(deltas, gamma, lambda)
}
