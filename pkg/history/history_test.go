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

// stubSpec is a minimal EnvSpec for buffer tests.
type stubSpec struct {
	n, d int
}

func (s stubSpec) NumEnvs() int { return s.n }
func (s stubSpec) ObsDim() int  { return s.d }

func TestHistoryConstruction(t *testing.T) {
	h, err := NewHistory(stubSpec{n: 3, d: 4}, 5)
	require.NoError(t, err)

	assert.Equal(t, 3, h.N())
	assert.Equal(t, 5, h.T())
	assert.Equal(t, 4, h.ObsDim())

	// observations: (3, 5+1, 4); rewards: (3, 5).
	obs, err := h.Observation(2, 5)
	require.NoError(t, err)
	assert.Len(t, obs, 4)
	_, err = h.Observation(0, 6)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	r, c := h.Rewards().Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 5, c)

	// All arrays start zero-filled; info slots start unfilled.
	assert.Equal(t, 0.0, h.Rewards().At(2, 4))
	for tt := 0; tt < 5; tt++ {
		infos, err := h.Infos(tt)
		require.NoError(t, err)
		assert.Nil(t, infos)
	}
	assert.Empty(t, h.ExtraInfo())
}

func TestHistoryConstructionErrors(t *testing.T) {
	_, err := NewHistory(stubSpec{n: 3, d: 4}, 0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = NewHistory(stubSpec{n: 0, d: 4}, 5)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestHistoryWrites(t *testing.T) {
	h, err := NewHistory(stubSpec{n: 2, d: 2}, 3)
	require.NoError(t, err)

	require.NoError(t, h.SetObservation(0, 0, []float64{1, 2}))
	require.NoError(t, h.SetObservation(0, 1, []float64{3, 4}))
	require.NoError(t, h.SetReward(0, 0, 1.5))
	require.NoError(t, h.SetDone(0, 0, true))
	require.NoError(t, h.SetInfos(0, []Info{{}, {}}))

	obs, err := h.Observation(0, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4}, obs)
	assert.Equal(t, 1.5, h.Rewards().At(0, 0))

	done, err := h.Done(0, 0)
	require.NoError(t, err)
	assert.True(t, done)

	infos, err := h.Infos(0)
	require.NoError(t, err)
	assert.Len(t, infos, 2)

	// Shape and index violations.
	assert.ErrorIs(t, h.SetObservation(0, 0, []float64{1}), ErrShapeMismatch)
	assert.ErrorIs(t, h.SetObservation(2, 0, []float64{1, 2}), ErrIndexOutOfRange)
	assert.ErrorIs(t, h.SetReward(0, 3, 1.0), ErrIndexOutOfRange)
	assert.ErrorIs(t, h.SetInfos(0, []Info{{}}), ErrShapeMismatch)
}

func TestHistoryMasks(t *testing.T) {
	h, err := NewHistory(stubSpec{n: 3, d: 1}, 5)
	require.NoError(t, err)

	// Before any termination every step is valid.
	masks := h.Masks()
	for n := 0; n < 3; n++ {
		for tt := 0; tt < 5; tt++ {
			assert.Equal(t, 1.0, masks.At(n, tt))
		}
	}

	// Terminating env 1 at t=0 invalidates every later step of that row
	// only; the first step always stays valid.
	require.NoError(t, h.SetDone(1, 0, true))
	masks = h.Masks()
	for n := 0; n < 3; n++ {
		assert.Equal(t, 1.0, masks.At(n, 0))
	}
	for tt := 1; tt < 5; tt++ {
		assert.Equal(t, 1.0, masks.At(0, tt))
		assert.Equal(t, 0.0, masks.At(1, tt))
		assert.Equal(t, 1.0, masks.At(2, tt))
	}

	// Suppression is cumulative within the window: a later done=false write
	// does not resurrect the row.
	require.NoError(t, h.SetDone(1, 2, false))
	masks = h.Masks()
	assert.Equal(t, 0.0, masks.At(1, 3))

	// A mid-window termination masks only strictly later steps.
	require.NoError(t, h.SetDone(2, 2, true))
	masks = h.Masks()
	assert.Equal(t, 1.0, masks.At(2, 2))
	assert.Equal(t, 0.0, masks.At(2, 3))
	assert.Equal(t, 0.0, masks.At(2, 4))
}

func TestHistoryFields(t *testing.T) {
	h, err := NewHistory(stubSpec{n: 2, d: 1}, 5)
	require.NoError(t, err)

	require.NoError(t, h.Add("one", Scalar(1)))
	v, err := h.Get("one")
	require.NoError(t, err)
	s, ok := v.Scalar()
	require.True(t, ok)
	assert.Equal(t, 1.0, s)

	assert.ErrorIs(t, h.Add("one", Scalar(2)), ErrDuplicateKey)
	_, err = h.Get("absent")
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestHistoryStepFields(t *testing.T) {
	h, err := NewHistory(stubSpec{n: 2, d: 1}, 5)
	require.NoError(t, err)

	assert.ErrorIs(t, h.AddT("oh", Scalar(-5), -1), ErrIndexOutOfRange)
	assert.ErrorIs(t, h.AddT("oh", Scalar(-5), 5), ErrIndexOutOfRange)

	require.NoError(t, h.AddT("oh", Scalar(-5), 3))

	slots, err := h.FieldT("oh")
	require.NoError(t, err)
	require.Len(t, slots, 5)
	for i, slot := range slots {
		if i == 3 {
			require.NotNil(t, slot)
			s, ok := slot.Scalar()
			require.True(t, ok)
			assert.Equal(t, -5.0, s)
		} else {
			assert.Nil(t, slot)
		}
	}

	v, err := h.GetT("oh", 3)
	require.NoError(t, err)
	require.NotNil(t, v)

	unset, err := h.GetT("oh", 0)
	require.NoError(t, err)
	assert.Nil(t, unset)

	assert.ErrorIs(t, h.AddT("oh", Scalar(1), 3), ErrDuplicateKey)

	_, err = h.GetT("absent", 0)
	assert.ErrorIs(t, err, ErrMissingKey)
	_, err = h.FieldT("absent")
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestHistoryExtraInfo(t *testing.T) {
	h, err := NewHistory(stubSpec{n: 2, d: 1}, 5)
	require.NoError(t, err)

	// Free-form: overwriting is allowed, unlike the one-shot fields.
	h.ExtraInfo()["roger"] = Scalar(20)
	h.ExtraInfo()["roger"] = Scalar(21)
	s, ok := h.ExtraInfo()["roger"].Scalar()
	require.True(t, ok)
	assert.Equal(t, 21.0, s)
}
