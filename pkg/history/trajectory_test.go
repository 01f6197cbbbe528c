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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// step builds a scalar-state transition, the shape most boundary tests use.
func step(s, a, r, sNext float64, done bool) *Transition {
	return NewTransition([]float64{s}, []float64{a}, r, []float64{sNext}, done)
}

func TestTrajectoryAppendAndViews(t *testing.T) {
	tr1 := step(1, 0.1, 0.5, 2, false)
	require.NoError(t, tr1.AddInfo(KeyStateValue, Scalar(10.0)))
	tr2 := step(2, 0.2, 0.5, 3, false)
	require.NoError(t, tr2.AddInfo(KeyStateValue, Scalar(20.0)))
	tr3 := step(3, 0.3, 1.0, 4, true)
	require.NoError(t, tr3.AddInfo(KeyStateValue, Scalar(30.0)))
	require.NoError(t, tr3.AddInfo(KeyNextStateValue, Scalar(40.0)))

	traj := NewTrajectory()
	assert.Equal(t, 0, traj.T())
	assert.Equal(t, 0, traj.InfoLen())
	assert.False(t, traj.Complete())

	require.NoError(t, traj.AddInfo("extra", Vector([]float64{1, 2, 3})))
	assert.Equal(t, 1, traj.InfoLen())

	require.NoError(t, traj.AddTransition(tr1))
	require.NoError(t, traj.AddTransition(tr2))
	require.NoError(t, traj.AddTransition(tr3))
	assert.Equal(t, 3, traj.T())
	assert.True(t, traj.Complete())

	// Closed by the terminal transition: further appends are a structural
	// violation.
	err := traj.AddTransition(step(0.1, 0.1, 1.0, 0.2, false))
	assert.ErrorIs(t, err, ErrTrajectoryClosed)
	assert.Equal(t, 3, traj.T())

	states, last := traj.States()
	assert.Equal(t, [][]float64{{1}, {2}, {3}}, states)
	assert.Equal(t, []float64{4}, last)

	assert.Equal(t, [][]float64{{0.1}, {0.2}, {0.3}}, traj.Actions())
	assert.Equal(t, []float64{0.5, 0.5, 1.0}, traj.Rewards())
	assert.Equal(t, []bool{false, false, true}, traj.Dones())
	assert.InDeltaSlice(t, []float64{2.0, 1.5, 1.0}, traj.Returns(), 1e-12)

	ret, err := traj.DiscountedReturns(0.1)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.56, 0.6, 1.0}, ret, 1e-12)

	vs, err := traj.AllInfo(KeyStateValue)
	require.NoError(t, err)
	scalars, err := Scalars(vs)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30}, scalars)

	_, err = traj.AllInfo(KeyNextStateValue) // only the last step has it
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestTrajectoryDiscountedReturnsDomain(t *testing.T) {
	traj := NewTrajectory()
	require.NoError(t, traj.AddTransition(step(1, 0, 1.0, 2, false)))

	_, err := traj.DiscountedReturns(-0.1)
	assert.ErrorIs(t, err, ErrDiscountDomain)

	// Gamma above one is allowed here; only the metrics recurrences restrict
	// to [0, 1].
	_, err = traj.DiscountedReturns(1.5)
	assert.NoError(t, err)
}

func TestTrajectoryZeroDiscountEqualsRewards(t *testing.T) {
	traj := NewTrajectory()
	require.NoError(t, traj.AddTransition(step(1, 0, 0.5, 2, false)))
	require.NoError(t, traj.AddTransition(step(2, 0, -0.25, 3, false)))
	require.NoError(t, traj.AddTransition(step(3, 0, 2.0, 4, true)))

	ret, err := traj.DiscountedReturns(0)
	require.NoError(t, err)
	assert.Equal(t, traj.Rewards(), ret)
}

func TestTrajectoryDoneFlipRecomputes(t *testing.T) {
	traj := NewTrajectory()
	require.NoError(t, traj.AddTransition(step(1, 10, 0.1, 2, false)))
	require.NoError(t, traj.AddTransition(step(2, 20, 0.2, 3, false)))
	require.NoError(t, traj.AddTransition(step(3, 30, 0.3, 4, true)))
	require.True(t, traj.Complete())

	// Derived views are recomputed on demand, so a post-hoc Done flip is
	// immediately visible.
	traj.Transitions()[2].Done = false
	assert.False(t, traj.Complete())
	assert.Equal(t, []bool{false, false, false}, traj.Dones())
}

func TestTrajectoryEmptyViews(t *testing.T) {
	traj := NewTrajectory()

	states, last := traj.States()
	assert.Nil(t, states)
	assert.Nil(t, last)
	assert.Empty(t, traj.Returns())

	ret, err := traj.DiscountedReturns(0.9)
	require.NoError(t, err)
	assert.Empty(t, ret)
}
