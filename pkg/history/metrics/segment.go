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

// TerminalStatesFromSegment returns one terminal state per partition that is
// itself complete. Partitions that end the window without a done are
// skipped, not padded, so the result may be shorter than the partition
// count.
func TerminalStatesFromSegment(s *history.Segment) [][]float64 {
	var out [][]float64
	for _, part := range s.Trajectories() {
		if st := TerminalStateFromTrajectory(part); st != nil {
			out = append(out, st)
		}
	}
	return out
}

// FinalStatesFromSegment returns the trailing next-state of every partition
// unconditionally; the result length equals the partition count, including
// a possibly-incomplete trailing partition.
//
// For an open trailing partition the reported state is a bootstrap point,
// not a terminal observation: consumers must supply a matching bootstrap
// value for that partition (the bundled rollout drivers do).
func FinalStatesFromSegment(s *history.Segment) [][]float64 {
	parts := s.Trajectories()
	out := make([][]float64, len(parts))
	for i, part := range parts {
		out[i] = FinalStateFromTrajectory(part)
	}
	return out
}

func checkPartitions(what string, got, want int) error {
	if got != want {
		return fmt.Errorf("%w: %d %s for %d partitions",
			history.ErrShapeMismatch, got, what, want)
	}
	return nil
}

// BootstrappedReturnsFromSegment computes bootstrapped returns per partition
// with that partition's own bootstrap value, then concatenates in partition
// order. vLast must hold exactly one value per partition; the value
// contributes only when its partition is incomplete (at most the trailing
// one can be).
// Returns ErrShapeMismatch unless len(vLast) equals the partition count.
func BootstrappedReturnsFromSegment(s *history.Segment, vLast []float64, gamma float64) ([]float64, error) {
	parts := s.Trajectories()
	if err := checkPartitions("bootstrap values", len(vLast), len(parts)); err != nil {
		return nil, err
	}
	out := make([]float64, 0, s.T())
	for i, part := range parts {
		ret, err := BootstrappedReturnsFromTrajectory(part, vLast[i], gamma)
		if err != nil {
			return nil, err
		}
		out = append(out, ret...)
	}
	return out, nil
}

// TD0TargetFromSegment computes one-step TD targets per partition, using
// that partition's own value sequence and bootstrap value, then
// concatenates.
// Returns ErrShapeMismatch unless values and vLast both hold exactly one
// entry per partition (and each values[i] matches its partition's length).
func TD0TargetFromSegment(s *history.Segment, values [][]float64, vLast []float64, gamma float64) ([]float64, error) {
	parts := s.Trajectories()
	if err := checkPartitions("value sequences", len(values), len(parts)); err != nil {
		return nil, err
	}
	if err := checkPartitions("bootstrap values", len(vLast), len(parts)); err != nil {
		return nil, err
	}
	out := make([]float64, 0, s.T())
	for i, part := range parts {
		targets, err := TD0TargetFromTrajectory(part, values[i], vLast[i], gamma)
		if err != nil {
			return nil, err
		}
		out = append(out, targets...)
	}
	return out, nil
}

// TD0ErrorFromSegment computes one-step TD errors per partition and
// concatenates, with the same validation as TD0TargetFromSegment.
func TD0ErrorFromSegment(s *history.Segment, values [][]float64, vLast []float64, gamma float64) ([]float64, error) {
	parts := s.Trajectories()
	if err := checkPartitions("value sequences", len(values), len(parts)); err != nil {
		return nil, err
	}
	if err := checkPartitions("bootstrap values", len(vLast), len(parts)); err != nil {
		return nil, err
	}
	out := make([]float64, 0, s.T())
	for i, part := range parts {
		errs, err := TD0ErrorFromTrajectory(part, values[i], vLast[i], gamma)
		if err != nil {
			return nil, err
		}
		out = append(out, errs...)
	}
	return out, nil
}

// GAEFromSegment computes generalized advantage estimates within each
// partition independently and concatenates; advantages never cross an
// episode boundary.
func GAEFromSegment(s *history.Segment, values [][]float64, vLast []float64, gamma, lambda float64) ([]float64, error) {
	parts := s.Trajectories()
	if err := checkPartitions("value sequences", len(values), len(parts)); err != nil {
		return nil, err
	}
	if err := checkPartitions("bootstrap values", len(vLast), len(parts)); err != nil {
		return nil, err
	}
	out := make([]float64, 0, s.T())
	for i, part := range parts {
		adv, err := GAEFromTrajectory(part, values[i], vLast[i], gamma, lambda)
		if err != nil {
			return nil, err
		}
		out = append(out, adv...)
	}
	return out, nil
}
