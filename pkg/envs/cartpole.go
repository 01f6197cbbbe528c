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
	"fmt"
	"math"
	"math/rand"
)

// Classic cart-pole dynamics constants (Barto, Sutton & Anderson 1983).
const (
	gravity        = 9.81
	massCart       = 1.0
	massPole       = 0.1
	poleHalfLength = 0.5
	totalMass      = massCart + massPole
	poleMassLength = massPole * poleHalfLength
	forceMax       = 10.0
	tau            = 0.02

	xThreshold     = 2.4
	thetaThreshold = 12.0 * math.Pi / 180.0

	// CartPoleMaxSteps truncates an episode that never fails.
	CartPoleMaxSteps = 500
)

// CartPole balances a pole on a cart driven left or right by a fixed force.
//
// Observations are [x, xDot, theta, thetaDot]; the action set is {0, 1}
// (push left, push right), encoded as a one-element action vector. Reward is
// 1 per surviving step and 0 on the failing step; an episode also terminates
// after CartPoleMaxSteps.
type CartPole struct {
	state [4]float64
	steps int
	rng   *rand.Rand
}

// NewCartPole constructs a cart-pole environment using the given random
// source for reset noise. A nil rng falls back to an unseeded source.
func NewCartPole(rng *rand.Rand) *CartPole {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	c := &CartPole{rng: rng}
	c.Reset()
	return c
}

// Spec reports the observation and action interface.
func (c *CartPole) Spec() Spec {
	return Spec{ObsDim: 4, ActDim: 1, NumActions: 2}
}

// Reset starts a fresh episode with all state components drawn uniformly
// from [-0.05, 0.05) and returns the initial observation.
func (c *CartPole) Reset() []float64 {
	for i := range c.state {
		c.state[i] = c.rng.Float64()*0.1 - 0.05
	}
	c.steps = 0
	return c.observation()
}

// Step applies one Euler integration step of the cart-pole dynamics.
func (c *CartPole) Step(action []float64) ([]float64, float64, bool, error) {
	if len(action) != 1 {
		return nil, 0, false, fmt.Errorf("%w: got %d, want 1", ErrActionShape, len(action))
	}
	var force float64
	switch action[0] {
	case 0:
		force = -forceMax
	case 1:
		force = forceMax
	default:
		return nil, 0, false, fmt.Errorf("%w: %v not in {0, 1}", ErrActionDomain, action[0])
	}

	x, xDot, theta, thetaDot := c.state[0], c.state[1], c.state[2], c.state[3]
	cosTheta := math.Cos(theta)
	sinTheta := math.Sin(theta)

	temp := (force + poleMassLength*thetaDot*thetaDot*sinTheta) / totalMass
	thetaAcc := (gravity*sinTheta - cosTheta*temp) /
		(poleHalfLength * (4.0/3.0 - massPole*cosTheta*cosTheta/totalMass))
	xAcc := temp - poleMassLength*thetaAcc*cosTheta/totalMass

	c.state[0] = x + tau*xDot
	c.state[1] = xDot + tau*xAcc
	c.state[2] = theta + tau*thetaDot
	c.state[3] = thetaDot + tau*thetaAcc
	c.steps++

	failed := c.state[0] < -xThreshold || c.state[0] > xThreshold ||
		c.state[2] < -thetaThreshold || c.state[2] > thetaThreshold
	done := failed || c.steps >= CartPoleMaxSteps

	reward := 1.0
	if failed {
		reward = 0.0
	}
	return c.observation(), reward, done, nil
}

func (c *CartPole) observation() []float64 {
	obs := make([]float64, 4)
	copy(obs, c.state[:])
	return obs
}
