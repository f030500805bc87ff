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

package reporter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/4erdenko/vmic/pkg/adapter"
	"github.com/4erdenko/vmic/pkg/collector"
	"github.com/4erdenko/vmic/pkg/defaults"
	"github.com/4erdenko/vmic/pkg/digest"
	"github.com/4erdenko/vmic/pkg/report"
)

// Options configures one report run.
type Options struct {
	// Registry is the full descriptor list; nil is invalid.
	Registry  []collector.Descriptor
	Selection collector.Selection
	// Thresholds feed the digest engine.
	Thresholds digest.Thresholds
	// Timeout bounds the whole run, CollectorTimeout each collector. Zero
	// values take the package defaults.
	Timeout          time.Duration
	CollectorTimeout time.Duration
	// Since bounds the journal window.
	Since string
	// Concurrency caps parallel collectors, zero takes the default.
	Concurrency int
}

// Reporter executes collectors concurrently and assembles the report.
type Reporter struct {
	sources *adapter.Sources
	opts    Options
}

// New creates a Reporter over the given sources.
func New(sources *adapter.Sources, opts Options) *Reporter {
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.ReportTimeout
	}
	if opts.CollectorTimeout <= 0 {
		opts.CollectorTimeout = defaults.CollectorTimeout
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaults.CollectorConcurrency
	}
	return &Reporter{sources: sources, opts: opts}
}

// Run executes one collection pass. The only error paths are configuration
// problems (unknown collector keys) and an expired run context; a failing
// collector becomes an error section, never a failed run.
func (r *Reporter) Run(ctx context.Context) (*report.Report, error) {
	started := time.Now()
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	rt := collector.NewRuntime(r.sources)
	rt.Since = r.opts.Since

	enabled, err := r.opts.Selection.Apply(r.opts.Registry, rt)
	if err != nil {
		return nil, err
	}
	slog.Info("starting report run", "collectors", len(enabled))

	// Each collector owns one pre-assigned slot, so section order equals
	// registry order no matter how execution interleaves.
	sections := make([]report.Section, len(enabled))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for i, desc := range enabled {
		i, desc := i, desc
		g.Go(func() error {
			sections[i] = r.collectOne(gctx, rt, desc)
			return nil
		})
	}
	// Goroutines never return errors; Wait is a join.
	_ = g.Wait()

	d := digest.NewEngine(r.opts.Thresholds).Evaluate(sections)
	rep := report.New(sections, d, time.Now(), uuid.NewString())

	runDuration.Observe(time.Since(started).Seconds())
	runsTotal.WithLabelValues(d.Overall.String()).Inc()
	slog.Info("report run finished",
		"sections", len(sections),
		"overall", d.Overall.String(),
		"elapsed", time.Since(started))
	return rep, nil
}

// collectOne runs a single collector under its own deadline. A collector
// that overruns is abandoned: its goroutine keeps running until it notices
// the context, but the slot is filled with an error section immediately.
func (r *Reporter) collectOne(ctx context.Context, rt *collector.Runtime, desc collector.Descriptor) report.Section {
	started := time.Now()
	ctx, cancel := context.WithTimeout(ctx, r.opts.CollectorTimeout)
	defer cancel()

	done := make(chan *report.Section, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("collector panicked", "collector", desc.Key, "panic", rec)
				s := report.Error(desc.Key, desc.Title, fmt.Sprintf("collector panicked: %v", rec))
				done <- s
			}
		}()
		done <- desc.New(rt).Collect(ctx)
	}()

	section, timedOut := awaitSection(ctx, done)
	if timedOut {
		collectorTimeouts.WithLabelValues(desc.Key).Inc()
		slog.Warn("collector abandoned at deadline", "collector", desc.Key, "timeout", r.opts.CollectorTimeout)
		section = report.Error(desc.Key, desc.Title,
			fmt.Sprintf("collection exceeded the %s deadline", r.opts.CollectorTimeout))
		section.Note("timeout")
	} else if section == nil {
		section = report.Error(desc.Key, desc.Title, "collector returned no section")
	}

	collectorDuration.WithLabelValues(desc.Key, section.Status.String()).Observe(time.Since(started).Seconds())
	return *section
}

// awaitSection blocks for the collector result. The deadline and a finishing
// collector can race; when both are ready the completed section wins and is
// never discarded for a synthesized timeout.
func awaitSection(ctx context.Context, done <-chan *report.Section) (*report.Section, bool) {
	select {
	case s := <-done:
		return s, false
	case <-ctx.Done():
		select {
		case s := <-done:
			return s, false
		default:
			return nil, true
		}
	}
}
