// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/mikepsn/lagom/pkg/config"
	"github.com/mikepsn/lagom/pkg/envs"
	"github.com/mikepsn/lagom/pkg/history"
	"github.com/mikepsn/lagom/pkg/history/metrics"
	"github.com/mikepsn/lagom/pkg/logging"
	"github.com/mikepsn/lagom/pkg/rollout"
	"github.com/mikepsn/lagom/pkg/transform"
)

var (
	configPath string

	collectCmd = &cobra.Command{
		Use:   "collect",
		Short: "Collect rollout data and report return/advantage statistics",
		RunE:  runCollect,
	}
)

func init() {
	collectCmd.Flags().StringVar(&configPath, "config", "", "Path to YAML config file")
	rootCmd.AddCommand(collectCmd)
}

// baselineAgent wraps a random policy with a zero value estimate so the
// advantage pipeline has a baseline to work against.
type baselineAgent struct {
	inner rollout.Agent
}

func (a *baselineAgent) Act(obs []float64) (rollout.Decision, error) {
	dec, err := a.inner.Act(obs)
	if err != nil {
		return rollout.Decision{}, err
	}
	if dec.Extras == nil {
		dec.Extras = make(history.Info)
	}
	if err := dec.Extras.Add(history.KeyStateValue, history.Scalar(0)); err != nil {
		return rollout.Decision{}, err
	}
	return dec, nil
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Logging("collect"))
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Info("collection starting",
		"env", cfg.Env,
		"num_envs", cfg.NumEnvs,
		"horizon", cfg.Horizon,
		"seed", seed,
	)

	vec, agents, err := buildEnvs(cfg, seed)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	tel := rollout.NewTelemetry(reg)
	if cfg.MetricsAddr != "" {
		serveMetrics(ctx, cfg.MetricsAddr, reg, logger)
	}

	collector := &rollout.Collector{
		Agent:     agents[0],
		Telemetry: tel,
		Log:       logger,
	}

	// Batched collection across all envs, one goroutine per row.
	h, err := history.NewHistory(vec, cfg.Horizon)
	if err != nil {
		return err
	}
	if err := collector.FillHistory(ctx, vec, agents, h); err != nil {
		return fmt.Errorf("fill history: %w", err)
	}
	masks := h.Masks()
	valid := 0.0
	for n := 0; n < h.N(); n++ {
		for t := 0; t < h.T(); t++ {
			valid += masks.At(n, t)
		}
	}
	logger.Info("batched collection complete",
		"rows", h.N(),
		"horizon", h.T(),
		"valid_fraction", valid/float64(h.N()*h.T()),
	)

	// One fixed window from a single env for the advantage pipeline.
	seg, err := collector.Segment(vec.Env(0), cfg.Horizon)
	if err != nil {
		return fmt.Errorf("collect segment: %w", err)
	}
	return reportSegment(seg, cfg, logger)
}

// buildEnvs constructs the configured environment batch and one agent per
// member, each with its own derived random source.
func buildEnvs(cfg config.Config, seed int64) (*envs.SerialVecEnv, []rollout.Agent, error) {
	members := make([]envs.Env, cfg.NumEnvs)
	agents := make([]rollout.Agent, cfg.NumEnvs)
	for i := range members {
		envRng := rand.New(rand.NewSource(seed + int64(2*i)))
		agentRng := rand.New(rand.NewSource(seed + int64(2*i+1)))
		switch cfg.Env {
		case "cartpole":
			members[i] = envs.NewCartPole(envRng)
		default:
			return nil, nil, fmt.Errorf("unknown env %q", cfg.Env)
		}
		agents[i] = &baselineAgent{inner: rollout.NewRandomAgent(members[i].Spec(), agentRng)}
	}
	vec, err := envs.NewSerialVecEnv(members)
	if err != nil {
		return nil, nil, err
	}
	return vec, agents, nil
}

// reportSegment runs the return/advantage pipeline over one segment and
// logs summary statistics.
func reportSegment(seg *history.Segment, cfg config.Config, logger *logging.Logger) error {
	parts := seg.Trajectories()

	values := make([][]float64, len(parts))
	vLast := make([]float64, len(parts))
	for i, part := range parts {
		vs, err := part.AllInfo(history.KeyStateValue)
		if err != nil {
			return fmt.Errorf("partition %d: %w", i, err)
		}
		values[i], err = history.Scalars(vs)
		if err != nil {
			return fmt.Errorf("partition %d: %w", i, err)
		}
	}

	returns, err := metrics.BootstrappedReturnsFromSegment(seg, vLast, cfg.Gamma)
	if err != nil {
		return fmt.Errorf("bootstrapped returns: %w", err)
	}
	advantages, err := metrics.GAEFromSegment(seg, values, vLast, cfg.Gamma, cfg.Lambda)
	if err != nil {
		return fmt.Errorf("gae: %w", err)
	}

	// How much of the return the (zero) baseline explains; a real critic
	// would push this toward 1.
	flatValues := make([]float64, 0, len(returns))
	for _, vs := range values {
		flatValues = append(flatValues, vs...)
	}
	ev, err := transform.ExplainedVariance(returns, flatValues)
	if err != nil {
		return fmt.Errorf("explained variance: %w", err)
	}

	// Observation normalization statistics over the window.
	states, _ := seg.States()
	obsStats, err := transform.NewRunningMeanStd(len(states[0]))
	if err != nil {
		return err
	}
	if err := obsStats.Update(states); err != nil {
		return err
	}

	logger.Info("segment statistics",
		"steps", seg.T(),
		"episodes", len(metrics.TerminalStatesFromSegment(seg)),
		"mean_return", stat.Mean(returns, nil),
		"mean_advantage", stat.Mean(advantages, nil),
		"explained_variance", ev,
		"obs_mean", obsStats.Mean(),
		"obs_std", obsStats.Std(),
	)
	return nil
}

// serveMetrics exposes the registry on addr until the context is canceled.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		logger.Info("metrics endpoint listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics endpoint failed", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
