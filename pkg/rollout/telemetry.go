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

import "github.com/prometheus/client_golang/prometheus"

// Telemetry exposes collection progress as prometheus metrics.
//
// All observer methods are nil-safe so collectors can carry a nil
// *Telemetry when metrics are disabled.
type Telemetry struct {
	steps             prometheus.Counter
	episodes          prometheus.Counter
	lastEpisodeReturn prometheus.Gauge
}

// NewTelemetry builds the metric set and registers it with reg. A nil
// registerer builds unregistered metrics, which is what tests want.
func NewTelemetry(reg prometheus.Registerer) *Telemetry {
	t := &Telemetry{
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lagom",
			Subsystem: "rollout",
			Name:      "steps_total",
			Help:      "Environment steps executed across all collectors.",
		}),
		episodes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lagom",
			Subsystem: "rollout",
			Name:      "episodes_total",
			Help:      "Episodes completed across all collectors.",
		}),
		lastEpisodeReturn: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lagom",
			Subsystem: "rollout",
			Name:      "last_episode_return",
			Help:      "Undiscounted return of the most recently completed episode.",
		}),
	}
	if reg != nil {
		reg.MustRegister(t.steps, t.episodes, t.lastEpisodeReturn)
	}
	return t
}

// ObserveStep counts one environment step.
func (t *Telemetry) ObserveStep() {
	if t == nil {
		return
	}
	t.steps.Inc()
}

// ObserveEpisode counts a completed episode and records its return.
func (t *Telemetry) ObserveEpisode(episodeReturn float64) {
	if t == nil {
		return
	}
	t.episodes.Inc()
	t.lastEpisodeReturn.Set(episodeReturn)
}
