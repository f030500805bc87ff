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

package config

import (
	"time"

	"github.com/4erdenko/vmic/pkg/collector"
	"github.com/4erdenko/vmic/pkg/defaults"
	"github.com/4erdenko/vmic/pkg/digest"
	"github.com/4erdenko/vmic/pkg/errors"
	"github.com/4erdenko/vmic/pkg/serializer"
)

// Inputs carries the raw flag and environment values before resolution.
type Inputs struct {
	Format string
	Output string
	Since  string

	DiskWarning    string
	DiskCritical   string
	MemoryWarning  string
	MemoryCritical string

	Enable  []string
	Disable []string

	Timeout          time.Duration
	CollectorTimeout time.Duration
}

// Configuration is the resolved, validated run configuration. It is built
// once before the run starts and never mutated afterwards; configuration
// problems surface here as fatal errors, never mid-run.
type Configuration struct {
	Format     serializer.Format
	Output     string
	Since      string
	Thresholds digest.Thresholds
	Selection  collector.Selection

	Timeout          time.Duration
	CollectorTimeout time.Duration
}

// Resolve validates the inputs and fills defaults.
func Resolve(in Inputs) (*Configuration, error) {
	format := serializer.Format(in.Format)
	if in.Format == "" {
		format = serializer.FormatJSON
	}
	if format.IsUnknown() {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidConfig,
			"unknown output format "+in.Format,
			map[string]any{"format": in.Format, "supported": serializer.SupportedFormats()})
	}

	thresholds, err := digest.Resolve(digest.Inputs{
		DiskWarning:    in.DiskWarning,
		DiskCritical:   in.DiskCritical,
		MemoryWarning:  in.MemoryWarning,
		MemoryCritical: in.MemoryCritical,
	})
	if err != nil {
		return nil, err
	}

	cfg := &Configuration{
		Format:     format,
		Output:     in.Output,
		Since:      in.Since,
		Thresholds: thresholds,
		Selection: collector.Selection{
			Enable:  in.Enable,
			Disable: in.Disable,
		},
		Timeout:          in.Timeout,
		CollectorTimeout: in.CollectorTimeout,
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.ReportTimeout
	}
	if cfg.CollectorTimeout <= 0 {
		cfg.CollectorTimeout = defaults.CollectorTimeout
	}
	if cfg.CollectorTimeout > cfg.Timeout {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidConfig,
			"collector timeout exceeds the run timeout",
			map[string]any{"collector_timeout": cfg.CollectorTimeout.String(), "timeout": cfg.Timeout.String()})
	}
	return cfg, nil
}
