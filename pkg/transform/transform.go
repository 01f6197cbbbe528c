// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package transform provides numeric utilities that sit next to the rollout
// core: discounted cumulative sums, fitness shaping via rank transforms,
// value-function diagnostics, online normalization statistics, and
// hyperparameter schedules.
//
// Everything operates on float64 slices, matching the numeric boundary of
// the history package.
package transform

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Sentinel errors for the numeric utilities.
var (
	// ErrEmptyInput is returned when a computation needs at least one
	// element and got none.
	ErrEmptyInput = errors.New("input sequence is empty")

	// ErrShapeMismatch is returned when paired sequences differ in length.
	ErrShapeMismatch = errors.New("sequence length mismatch")

	// ErrScheduleDomain is returned when schedule parameters lie outside
	// their valid range.
	ErrScheduleDomain = errors.New("schedule parameter out of range")
)

// GeometricCumsum computes the right-to-left geometrically discounted
// cumulative sum: out[t] = x[t] + alpha*out[t+1]. With alpha set to a
// discount factor this is the discounted-return recurrence; with alpha set
// to gamma*lambda it is the GAE recurrence over TD errors.
func GeometricCumsum(alpha float64, xs []float64) []float64 {
	out := make([]float64, len(xs))
	running := 0.0
	for i := len(xs) - 1; i >= 0; i-- {
		running = xs[i] + alpha*running
		out[i] = running
	}
	return out
}

// RankTransform replaces each element by its rank in the sorted order,
// mapped to the interval [-0.5, 0.5]. Rank-based fitness shaping makes
// evolutionary updates invariant to reward scaling and robust to outliers.
//
// Requires at least two elements, since the centering divides by len(xs)-1.
func RankTransform(xs []float64) ([]float64, error) {
	ranks, err := Ranks(xs)
	if err != nil {
		return nil, err
	}
	if len(xs) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 elements to center", ErrEmptyInput)
	}
	out := make([]float64, len(ranks))
	for i, r := range ranks {
		out[i] = r/float64(len(xs)-1) - 0.5
	}
	return out, nil
}

// Ranks returns the integer rank (0-based, as float64) of each element in
// the ascending sorted order. Ties keep their original relative order.
func Ranks(xs []float64) ([]float64, error) {
	if len(xs) == 0 {
		return nil, ErrEmptyInput
	}
	order := make([]int, len(xs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return xs[order[a]] < xs[order[b]] })

	ranks := make([]float64, len(xs))
	for rank, idx := range order {
		ranks[idx] = float64(rank)
	}
	return ranks, nil
}

// ExplainedVariance measures how much of the variance in actual is captured
// by predicted: 1 - Var(actual - predicted)/Var(actual). A value of 1 means
// perfect prediction, 0 means no better than predicting the mean, negative
// means worse.
//
// Degenerate cases follow the usual scoring convention: when actual has zero
// variance the score is 1 for an exact match and 0 otherwise.
func ExplainedVariance(actual, predicted []float64) (float64, error) {
	if len(actual) == 0 {
		return 0, ErrEmptyInput
	}
	if len(actual) != len(predicted) {
		return 0, fmt.Errorf("%w: %d actual vs %d predicted", ErrShapeMismatch, len(actual), len(predicted))
	}

	residual := make([]float64, len(actual))
	for i := range actual {
		residual[i] = actual[i] - predicted[i]
	}
	varResidual := stat.PopVariance(residual, nil)
	varActual := stat.PopVariance(actual, nil)

	if varActual == 0 {
		if varResidual == 0 {
			return 1, nil
		}
		return 0, nil
	}
	return 1 - varResidual/varActual, nil
}

// Normalize returns (xs - mean)/(std + eps) without mutating the input.
// A zero-variance input comes back as all zeros (up to eps).
func Normalize(xs []float64, eps float64) ([]float64, error) {
	if len(xs) == 0 {
		return nil, ErrEmptyInput
	}
	mean := stat.Mean(xs, nil)
	std := math.Sqrt(stat.PopVariance(xs, nil))
	out := make([]float64, len(xs))
	for i, v := range xs {
		out[i] = (v - mean) / (std + eps)
	}
	return out, nil
}
