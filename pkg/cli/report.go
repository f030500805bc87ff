// Copyright (c) 2026, vmic authors.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/4erdenko/vmic/pkg/adapter"
	"github.com/4erdenko/vmic/pkg/collector/registry"
	"github.com/4erdenko/vmic/pkg/config"
	"github.com/4erdenko/vmic/pkg/defaults"
	"github.com/4erdenko/vmic/pkg/reporter"
	"github.com/4erdenko/vmic/pkg/serializer"
)

func reportCmd() *cli.Command {
	return &cli.Command{
		Name:                  "report",
		EnableShellCompletion: true,
		Usage:                 "Capture one diagnostic report of this host",
		Description: `Runs every supported collector concurrently and writes one report.

A failing collector never aborts the run: its section carries status
"error" and the health digest promotes it to a critical finding.
Collectors whose preconditions are not met on this host (no docker
socket, no sar binary) are skipped entirely.

Thresholds accept ratios or percents: --disk-warning 0.9 and
--disk-warning 90 are the same value. Memory thresholds are available
headroom, so --memory-critical 5 means "critical below 5% available".

# Examples

Full report to stdout:
  vmic report

Table summary for terminals:
  vmic report --format table

Only storage and network, with tighter disk thresholds:
  vmic report --enable storage,network --disk-warning 80 --disk-critical 90`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"t"},
				Usage:   "output format: json, yaml, table",
				Sources: cli.EnvVars("VMIC_FORMAT"),
				Value:   string(serializer.FormatJSON),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output file path (default: stdout)",
				Sources: cli.EnvVars("VMIC_OUTPUT"),
			},
			&cli.StringFlag{
				Name:    "since",
				Usage:   "journal window, journalctl --since syntax",
				Sources: cli.EnvVars("VMIC_SINCE"),
			},
			&cli.StringFlag{
				Name:    "disk-warning",
				Usage:   "disk usage warning threshold (ratio or percent)",
				Sources: cli.EnvVars("VMIC_DISK_WARNING"),
			},
			&cli.StringFlag{
				Name:    "disk-critical",
				Usage:   "disk usage critical threshold (ratio or percent)",
				Sources: cli.EnvVars("VMIC_DISK_CRITICAL"),
			},
			&cli.StringFlag{
				Name:    "memory-warning",
				Usage:   "available memory warning threshold (ratio or percent)",
				Sources: cli.EnvVars("VMIC_MEMORY_WARNING"),
			},
			&cli.StringFlag{
				Name:    "memory-critical",
				Usage:   "available memory critical threshold (ratio or percent)",
				Sources: cli.EnvVars("VMIC_MEMORY_CRITICAL"),
			},
			&cli.StringSliceFlag{
				Name:    "enable",
				Usage:   "run only these collectors (can be repeated or comma-separated)",
				Sources: cli.EnvVars("VMIC_ENABLE"),
			},
			&cli.StringSliceFlag{
				Name:    "disable",
				Usage:   "skip these collectors (can be repeated or comma-separated)",
				Sources: cli.EnvVars("VMIC_DISABLE"),
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Usage:   "overall run timeout",
				Sources: cli.EnvVars("VMIC_TIMEOUT"),
				Value:   defaults.ReportTimeout,
			},
			&cli.DurationFlag{
				Name:    "collector-timeout",
				Usage:   "per-collector timeout",
				Sources: cli.EnvVars("VMIC_COLLECTOR_TIMEOUT"),
				Value:   defaults.CollectorTimeout,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Resolve(config.Inputs{
				Format:           cmd.String("format"),
				Output:           cmd.String("output"),
				Since:            cmd.String("since"),
				DiskWarning:      cmd.String("disk-warning"),
				DiskCritical:     cmd.String("disk-critical"),
				MemoryWarning:    cmd.String("memory-warning"),
				MemoryCritical:   cmd.String("memory-critical"),
				Enable:           cmd.StringSlice("enable"),
				Disable:          cmd.StringSlice("disable"),
				Timeout:          cmd.Duration("timeout"),
				CollectorTimeout: cmd.Duration("collector-timeout"),
			})
			if err != nil {
				return err
			}
			return runReport(ctx, cfg, adapter.NewHostSources())
		},
	}
}

// runReport is the report action with its sources injected, so tests can run
// it against fakes.
func runReport(ctx context.Context, cfg *config.Configuration, sources *adapter.Sources) error {
	r := reporter.New(sources, reporter.Options{
		Registry:         registry.Default(),
		Selection:        cfg.Selection,
		Thresholds:       cfg.Thresholds,
		Timeout:          cfg.Timeout,
		CollectorTimeout: cfg.CollectorTimeout,
		Since:            cfg.Since,
	})
	rep, err := r.Run(ctx)
	if err != nil {
		return err
	}

	w := serializer.NewFileWriterOrStdout(cfg.Format, cfg.Output)
	if err := w.Serialize(ctx, rep); err != nil {
		_ = w.Close()
		return err
	}
	// A failed close loses the report's tail; that must fail the run.
	return w.Close()
}
