// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package rollout

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mikepsn/lagom/pkg/envs"
	"github.com/mikepsn/lagom/pkg/history"
	"github.com/mikepsn/lagom/pkg/logging"
)

// Collector records agent/environment interaction into history containers.
//
// Telemetry and Log are optional; a zero Collector with just an Agent works.
type Collector struct {
	Agent     Agent
	Telemetry *Telemetry
	Log       *logging.Logger
}

// Trajectory collects one episode from reset up to termination or maxSteps,
// whichever comes first. A step-capped episode leaves the trajectory open.
//
// The trajectory info carries a fresh episode id under
// history.KeyEpisodeID. Decision extras are attached per transition.
func (c *Collector) Trajectory(env envs.Env, maxSteps int) (*history.Trajectory, error) {
	traj := history.NewTrajectory()
	episodeID := uuid.NewString()
	if err := traj.AddInfo(history.KeyEpisodeID, history.Opaque(episodeID)); err != nil {
		return nil, fmt.Errorf("tag episode: %w", err)
	}

	obs := env.Reset()
	var episodeReturn float64
	for step := 0; step < maxSteps; step++ {
		tr, done, err := c.step(env, obs)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", step, err)
		}
		if err := traj.AddTransition(tr); err != nil {
			return nil, fmt.Errorf("step %d: %w", step, err)
		}
		episodeReturn += tr.Reward
		if done {
			c.Telemetry.ObserveEpisode(episodeReturn)
			if c.Log != nil {
				c.Log.Debug("episode complete",
					"episode_id", episodeID,
					"steps", traj.T(),
					"return", episodeReturn,
				)
			}
			break
		}
		obs = tr.NextState
	}
	return traj, nil
}

// Segment collects a fixed window of horizon transitions, resetting the
// environment whenever an episode terminates inside the window.
func (c *Collector) Segment(env envs.Env, horizon int) (*history.Segment, error) {
	seg := history.NewSegment()
	obs := env.Reset()
	var episodeReturn float64
	for step := 0; step < horizon; step++ {
		tr, done, err := c.step(env, obs)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", step, err)
		}
		seg.AddTransition(tr)
		episodeReturn += tr.Reward
		if done {
			c.Telemetry.ObserveEpisode(episodeReturn)
			episodeReturn = 0
			obs = env.Reset()
		} else {
			obs = tr.NextState
		}
	}
	return seg, nil
}

// step runs one agent decision and one environment step, returning the
// recorded transition with extras attached.
func (c *Collector) step(env envs.Env, obs []float64) (*history.Transition, bool, error) {
	dec, err := c.Agent.Act(obs)
	if err != nil {
		return nil, false, fmt.Errorf("agent: %w", err)
	}
	next, reward, done, err := env.Step(dec.Action)
	if err != nil {
		return nil, false, fmt.Errorf("env: %w", err)
	}
	tr := history.NewTransition(obs, dec.Action, reward, next, done)
	for key, value := range dec.Extras {
		if err := tr.AddInfo(key, value); err != nil {
			return nil, false, fmt.Errorf("extra %q: %w", key, err)
		}
	}
	c.Telemetry.ObserveStep()
	return tr, done, nil
}
