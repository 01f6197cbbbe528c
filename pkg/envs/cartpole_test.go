// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package envs

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartPoleSpec(t *testing.T) {
	env := NewCartPole(rand.New(rand.NewSource(1)))
	assert.Equal(t, Spec{ObsDim: 4, ActDim: 1, NumActions: 2}, env.Spec())
}

func TestCartPoleResetBounds(t *testing.T) {
	env := NewCartPole(rand.New(rand.NewSource(7)))
	for trial := 0; trial < 20; trial++ {
		obs := env.Reset()
		require.Len(t, obs, 4)
		for _, v := range obs {
			assert.GreaterOrEqual(t, v, -0.05)
			assert.Less(t, v, 0.05)
		}
	}
}

func TestCartPoleDeterministicUnderSeed(t *testing.T) {
	a := NewCartPole(rand.New(rand.NewSource(3)))
	b := NewCartPole(rand.New(rand.NewSource(3)))
	require.Equal(t, a.Reset(), b.Reset())
	for i := 0; i < 50; i++ {
		action := []float64{float64(i % 2)}
		oa, ra, da, err := a.Step(action)
		require.NoError(t, err)
		ob, rb, db, err := b.Step(action)
		require.NoError(t, err)
		assert.Equal(t, oa, ob)
		assert.Equal(t, ra, rb)
		assert.Equal(t, da, db)
	}
}

func TestCartPoleActionValidation(t *testing.T) {
	env := NewCartPole(rand.New(rand.NewSource(1)))
	_, _, _, err := env.Step([]float64{0, 1})
	assert.ErrorIs(t, err, ErrActionShape)
	_, _, _, err = env.Step(nil)
	assert.ErrorIs(t, err, ErrActionShape)
	_, _, _, err = env.Step([]float64{2})
	assert.ErrorIs(t, err, ErrActionDomain)
}

func TestCartPoleEpisodeTerminates(t *testing.T) {
	env := NewCartPole(rand.New(rand.NewSource(11)))
	env.Reset()

	// Pushing in one direction only tips the pole over quickly.
	steps := 0
	for {
		obs, reward, done, err := env.Step([]float64{1})
		require.NoError(t, err)
		steps++
		if done {
			assert.Equal(t, 0.0, reward)
			assert.True(t, math.Abs(obs[0]) > xThreshold || math.Abs(obs[2]) > thetaThreshold)
			break
		}
		assert.Equal(t, 1.0, reward)
		require.Less(t, steps, CartPoleMaxSteps+1)
	}
	assert.Less(t, steps, 100)
}
