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

func TestTransitionFields(t *testing.T) {
	tr := NewTransition([]float64{1.2}, []float64{2.0}, -1.0, []float64{1.5}, true)

	assert.Equal(t, []float64{1.2}, tr.State)
	assert.Equal(t, []float64{2.0}, tr.Action)
	assert.Equal(t, -1.0, tr.Reward)
	assert.Equal(t, []float64{1.5}, tr.NextState)
	assert.True(t, tr.Done)
	assert.Equal(t, 0, tr.InfoLen())
}

func TestTransitionInfo(t *testing.T) {
	tr := NewTransition([]float64{1.2}, []float64{2.0}, -1.0, []float64{1.5}, true)

	require.NoError(t, tr.AddInfo(KeyStateValue, Scalar(0.3)))
	require.NoError(t, tr.AddInfo(KeyNextStateValue, Scalar(10.0)))
	require.NoError(t, tr.AddInfo("extra", Vector([]float64{1, 2, 3, 4})))
	assert.Equal(t, 3, tr.InfoLen())

	v, err := tr.Info(KeyStateValue)
	require.NoError(t, err)
	s, ok := v.Scalar()
	require.True(t, ok)
	assert.Equal(t, 0.3, s)

	v, err = tr.Info("extra")
	require.NoError(t, err)
	vec, ok := v.Vector()
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3, 4}, vec)

	err = tr.AddInfo(KeyStateValue, Scalar(0.0))
	assert.ErrorIs(t, err, ErrDuplicateKey)

	_, err = tr.Info("absent")
	assert.ErrorIs(t, err, ErrMissingKey)

	assert.True(t, tr.HasInfo("extra"))
	assert.False(t, tr.HasInfo("absent"))
}

func TestValueKinds(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		kind ValueKind
	}{
		{"scalar", Scalar(1.5), KindScalar},
		{"vector", Vector([]float64{1, 2}), KindVector},
		{"opaque", Opaque("episode-7"), KindOpaque},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.v.Kind())
		})
	}

	_, ok := Scalar(1).Vector()
	assert.False(t, ok)
	_, ok = Vector(nil).Scalar()
	assert.False(t, ok)

	op, ok := Opaque("id").Opaque()
	require.True(t, ok)
	assert.Equal(t, "id", op)
}

func TestScalars(t *testing.T) {
	out, err := Scalars([]Value{Scalar(10), Scalar(20), Scalar(30)})
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30}, out)

	_, err = Scalars([]Value{Scalar(10), Vector([]float64{1})})
	assert.ErrorIs(t, err, ErrValueKind)
}
