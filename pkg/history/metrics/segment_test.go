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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikepsn/lagom/pkg/history"
)

// twoEpisodeSegment is a five-step window holding one complete episode and
// a second that terminates iff lastDone. Per-step V(s) and trailing
// V(s_next) info is attached so the value plumbing mirrors a real driver.
func twoEpisodeSegment(t *testing.T, lastDone bool) *history.Segment {
	t.Helper()
	seg := history.NewSegment()
	steps := []struct {
		s, a, r, sNext float64
		done           bool
		v              float64
	}{
		{1, 10, 0.1, 2, false, 1},
		{2, 20, 0.2, 3, false, 2},
		{3, 30, 0.3, 4, true, 3},
		{5, 50, 0.5, 6, false, 1},
		{6, 60, 0.6, 7, lastDone, 2},
	}
	for i, st := range steps {
		tr := step(st.s, st.a, st.r, st.sNext, st.done)
		require.NoError(t, tr.AddInfo(history.KeyStateValue, history.Scalar(st.v)))
		if i == 2 {
			require.NoError(t, tr.AddInfo(history.KeyNextStateValue, history.Scalar(4)))
		}
		if i == 4 {
			require.NoError(t, tr.AddInfo(history.KeyNextStateValue, history.Scalar(3)))
		}
		seg.AddTransition(tr)
	}
	return seg
}

// segmentValues gathers the per-partition V(s) sequences and bootstrap
// values from the transitions' info, the way a rollout driver hands them to
// the metrics functions.
func segmentValues(t *testing.T, seg *history.Segment) ([][]float64, []float64) {
	t.Helper()
	parts := seg.Trajectories()
	values := make([][]float64, len(parts))
	vLast := make([]float64, len(parts))
	for i, part := range parts {
		vs, err := part.AllInfo(history.KeyStateValue)
		require.NoError(t, err)
		values[i], err = history.Scalars(vs)
		require.NoError(t, err)
		v, err := part.Transitions()[part.T()-1].Info(history.KeyNextStateValue)
		require.NoError(t, err)
		s, ok := v.Scalar()
		require.True(t, ok)
		vLast[i] = s
	}
	return values, vLast
}

func TestTerminalStatesFromSegment(t *testing.T) {
	seg := twoEpisodeSegment(t, true)
	assert.Equal(t, [][]float64{{4}, {7}}, TerminalStatesFromSegment(seg))

	// The open trailing partition is skipped, not padded.
	seg = twoEpisodeSegment(t, false)
	assert.Equal(t, [][]float64{{4}}, TerminalStatesFromSegment(seg))
}

func TestFinalStatesFromSegment(t *testing.T) {
	seg := twoEpisodeSegment(t, true)
	assert.Equal(t, [][]float64{{4}, {7}}, FinalStatesFromSegment(seg))

	// One entry per partition regardless of completion.
	seg = twoEpisodeSegment(t, false)
	assert.Equal(t, [][]float64{{4}, {7}}, FinalStatesFromSegment(seg))
}

func TestBootstrappedReturnsFromSegment(t *testing.T) {
	seg := twoEpisodeSegment(t, true)
	vLast := []float64{50, 100}

	out, err := BootstrappedReturnsFromSegment(seg, vLast, 1.0)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.6, 0.5, 0.3, 1.1, 0.6}, out, 1e-12)

	out, err = BootstrappedReturnsFromSegment(seg, vLast, 0.1)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.123, 0.23, 0.3, 0.56, 0.6}, out, 1e-12)

	seg = twoEpisodeSegment(t, false)

	out, err = BootstrappedReturnsFromSegment(seg, vLast, 1.0)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.6, 0.5, 0.3, 101.1, 100.6}, out, 1e-12)

	out, err = BootstrappedReturnsFromSegment(seg, vLast, 0.1)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.123, 0.23, 0.3, 1.56, 10.6}, out, 1e-12)

	// One bootstrap value per partition, exactly.
	_, err = BootstrappedReturnsFromSegment(seg, []float64{50}, 1.0)
	assert.ErrorIs(t, err, history.ErrShapeMismatch)
}

func TestTD0TargetFromSegment(t *testing.T) {
	seg := twoEpisodeSegment(t, true)
	values, vLast := segmentValues(t, seg)

	_, err := TD0TargetFromSegment(seg, append(values, []float64{0}), vLast, 0.1)
	assert.ErrorIs(t, err, history.ErrShapeMismatch)
	_, err = TD0TargetFromSegment(seg, values, append(vLast, 0), 0.1)
	assert.ErrorIs(t, err, history.ErrShapeMismatch)

	out, err := TD0TargetFromSegment(seg, values, vLast, 0.1)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.3, 0.5, 0.3, 0.7, 0.6}, out, 1e-12)

	// Reopening the window's last transition turns the final value back
	// into a bootstrap.
	seg.Transitions()[4].Done = false
	out, err = TD0TargetFromSegment(seg, values, vLast, 0.1)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.3, 0.5, 0.3, 0.7, 0.9}, out, 1e-12)
}

func TestTD0ErrorFromSegment(t *testing.T) {
	seg := twoEpisodeSegment(t, true)
	values, vLast := segmentValues(t, seg)

	out, err := TD0ErrorFromSegment(seg, values, vLast, 0.1)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-0.7, -1.5, -2.7, -0.3, -1.4}, out, 1e-12)

	seg.Transitions()[4].Done = false
	out, err = TD0ErrorFromSegment(seg, values, vLast, 0.1)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-0.7, -1.5, -2.7, -0.3, -1.1}, out, 1e-12)
}

func TestGAEFromSegment(t *testing.T) {
	seg := twoEpisodeSegment(t, true)
	values, vLast := segmentValues(t, seg)

	out, err := GAEFromSegment(seg, values, vLast, 0.2, 0.5)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-0.647, -1.47, -2.7, -0.24, -1.4}, out, 1e-12)

	// Advantages stay within partitions even after the boundary flip.
	seg.Transitions()[4].Done = false
	values, vLast = segmentValues(t, seg)
	out, err = GAEFromSegment(seg, values, vLast, 0.2, 0.5)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-0.647, -1.47, -2.7, -0.18, -0.8}, out, 1e-12)

	_, err = GAEFromSegment(seg, values, vLast[:1], 0.2, 0.5)
	assert.ErrorIs(t, err, history.ErrShapeMismatch)
}
