// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package transform

import "fmt"

// LinearSchedule interpolates a hyperparameter (learning rate, exploration
// epsilon, entropy coefficient) from an initial to a final value over a
// fixed number of steps, holding the initial value until start and the
// final value after start+steps.
type LinearSchedule struct {
	initial float64
	final   float64
	steps   int
	start   int
}

// NewLinearSchedule validates and builds a schedule. steps must be positive
// and start non-negative.
func NewLinearSchedule(initial, final float64, steps, start int) (*LinearSchedule, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("%w: steps %d must be positive", ErrScheduleDomain, steps)
	}
	if start < 0 {
		return nil, fmt.Errorf("%w: start %d must be non-negative", ErrScheduleDomain, start)
	}
	return &LinearSchedule{initial: initial, final: final, steps: steps, start: start}, nil
}

// Value returns the scheduled value at step x.
func (s *LinearSchedule) Value(x int) float64 {
	if x < s.start {
		return s.initial
	}
	progress := float64(x-s.start) / float64(s.steps)
	if progress > 1 {
		progress = 1
	}
	return s.initial + (s.final-s.initial)*progress
}
