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

package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/4erdenko/vmic/pkg/collector"
	"github.com/4erdenko/vmic/pkg/report"
)

const (
	Key   = "services"
	Title = "System Services"
)

// Descriptor registers the collector. It requires a systemd unit source;
// hosts without one (minimal containers) skip the section.
func Descriptor() collector.Descriptor {
	return collector.Descriptor{
		Key:   Key,
		Title: Title,
		Supported: func(rt *collector.Runtime) bool {
			return rt.Sources.Systemd != nil
		},
		New: func(rt *collector.Runtime) collector.Collector { return &Collector{rt: rt} },
	}
}

// Collector lists systemd service units and summarizes their states.
type Collector struct {
	rt *collector.Runtime
}

func (c *Collector) Collect(ctx context.Context) *report.Section {
	slog.Debug("collecting systemd services")

	units, err := c.rt.Sources.Systemd.ListUnits(ctx)
	if err != nil {
		return report.Error(Key, Title, "cannot list systemd units: "+err.Error())
	}

	byState := map[string]int{}
	var failed []string
	rows := []any{}
	for _, u := range units {
		if !strings.HasSuffix(u.Name, ".service") {
			continue
		}
		byState[u.ActiveState]++
		if u.ActiveState == "failed" || u.SubState == "failed" {
			failed = append(failed, u.Name)
		}
		rows = append(rows, report.Body{
			"name":         u.Name,
			"description":  u.Description,
			"load_state":   u.LoadState,
			"active_state": u.ActiveState,
			"sub_state":    u.SubState,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].(report.Body)["name"].(string) < rows[j].(report.Body)["name"].(string)
	})
	sort.Strings(failed)

	states := report.Body{}
	for state, n := range byState {
		states[state] = n
	}

	s := report.Ok(Key, Title, report.Body{
		"total":    len(rows),
		"by_state": states,
		"failed":   toAny(failed),
		"units":    rows,
	})
	for _, name := range failed {
		s.Note("unit %s is in a failed state", name)
	}
	if len(failed) > 0 {
		s.Status = report.StatusDegraded
		s.Summary = fmt.Sprintf("%d service unit(s) failed", len(failed))
	}
	return s
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
