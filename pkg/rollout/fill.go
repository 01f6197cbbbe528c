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
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mikepsn/lagom/pkg/envs"
	"github.com/mikepsn/lagom/pkg/history"
)

// FillHistory fills the batched buffer by running one goroutine per
// environment, each stepping its own member and writing only its own row.
// This is the row-ownership contract the History type documents, made
// literal: no write from goroutine n ever touches row m != n.
//
// Each row starts with a fresh episode. A row whose episode terminates
// before the horizon stops stepping; the remaining cells stay zero and
// h.Masks() marks them invalid.
//
// agents supplies one agent per environment so stateful policies never
// share a random source across goroutines. The first error cancels the
// remaining rows through the group context.
func (c *Collector) FillHistory(ctx context.Context, vec *envs.SerialVecEnv, agents []Agent, h *history.History) error {
	if len(agents) != vec.NumEnvs() {
		return fmt.Errorf("%w: %d agents for %d envs", envs.ErrSpecMismatch, len(agents), vec.NumEnvs())
	}

	g, ctx := errgroup.WithContext(ctx)
	for n := 0; n < vec.NumEnvs(); n++ {
		n := n
		g.Go(func() error {
			return c.fillRow(ctx, n, vec.Env(n), agents[n], h)
		})
	}
	return g.Wait()
}

// fillRow steps one environment for up to h.T() steps, writing row n.
func (c *Collector) fillRow(ctx context.Context, n int, env envs.Env, agent Agent, h *history.History) error {
	obs := env.Reset()
	if err := h.SetObservation(n, 0, obs); err != nil {
		return fmt.Errorf("row %d: %w", n, err)
	}

	var episodeReturn float64
	for t := 0; t < h.T(); t++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		dec, err := agent.Act(obs)
		if err != nil {
			return fmt.Errorf("row %d step %d: agent: %w", n, t, err)
		}
		next, reward, done, err := env.Step(dec.Action)
		if err != nil {
			return fmt.Errorf("row %d step %d: env: %w", n, t, err)
		}
		if err := h.SetReward(n, t, reward); err != nil {
			return fmt.Errorf("row %d step %d: %w", n, t, err)
		}
		if err := h.SetDone(n, t, done); err != nil {
			return fmt.Errorf("row %d step %d: %w", n, t, err)
		}
		if err := h.SetObservation(n, t+1, next); err != nil {
			return fmt.Errorf("row %d step %d: %w", n, t, err)
		}
		c.Telemetry.ObserveStep()
		episodeReturn += reward
		if done {
			c.Telemetry.ObserveEpisode(episodeReturn)
			break
		}
		obs = next
	}
	return nil
}
