// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command lagom collects rollout data from simulation environments and
// reports return and advantage statistics.
//
// Usage:
//
//	go run ./cmd/lagom collect
//	go run ./cmd/lagom collect --config configs/collect.yaml
//
// With a prometheus scrape endpoint:
//
//	LAGOM_METRICS_ADDR=:9090 go run ./cmd/lagom collect
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lagom",
	Short: "Episodic rollout collection and return/advantage computation",
	Long: `lagom drives simulation environments with an agent, records the
interaction as trajectories, segments, and batched histories, and computes
returns, TD errors, and generalized advantage estimates over them.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
