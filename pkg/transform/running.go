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

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// RunningMeanStd tracks per-dimension mean and standard deviation over a
// stream of observation batches, using the parallel-variance merge so a
// batch of any size folds in with one pass. Used for online observation
// normalization during collection.
//
// Not safe for concurrent use.
type RunningMeanStd struct {
	dim   int
	count float64
	mean  []float64
	m2    []float64
}

// NewRunningMeanStd tracks statistics over vectors of the given dimension.
func NewRunningMeanStd(dim int) (*RunningMeanStd, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: dimension %d must be positive", ErrShapeMismatch, dim)
	}
	return &RunningMeanStd{
		dim:  dim,
		mean: make([]float64, dim),
		m2:   make([]float64, dim),
	}, nil
}

// Update folds a batch of observation vectors into the running statistics.
func (r *RunningMeanStd) Update(batch [][]float64) error {
	if len(batch) == 0 {
		return ErrEmptyInput
	}
	for i, obs := range batch {
		if len(obs) != r.dim {
			return fmt.Errorf("%w: batch element %d has dim %d, want %d", ErrShapeMismatch, i, len(obs), r.dim)
		}
	}

	bn := float64(len(batch))
	column := make([]float64, len(batch))
	for d := 0; d < r.dim; d++ {
		for i, obs := range batch {
			column[i] = obs[d]
		}
		batchMean := stat.Mean(column, nil)
		batchM2 := stat.PopVariance(column, nil) * bn

		delta := batchMean - r.mean[d]
		total := r.count + bn
		r.mean[d] += delta * bn / total
		r.m2[d] += batchM2 + delta*delta*r.count*bn/total
	}
	r.count += bn
	return nil
}

// Count returns the number of vectors folded in so far.
func (r *RunningMeanStd) Count() float64 { return r.count }

// Mean returns a copy of the per-dimension mean.
func (r *RunningMeanStd) Mean() []float64 {
	out := make([]float64, r.dim)
	copy(out, r.mean)
	return out
}

// Std returns a copy of the per-dimension population standard deviation.
// Before any update it is all zeros.
func (r *RunningMeanStd) Std() []float64 {
	out := make([]float64, r.dim)
	if r.count == 0 {
		return out
	}
	for d := range out {
		out[d] = math.Sqrt(r.m2[d] / r.count)
	}
	return out
}
