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

package proc

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/4erdenko/vmic/pkg/collector"
	"github.com/4erdenko/vmic/pkg/correlate"
	"github.com/4erdenko/vmic/pkg/errors"
	"github.com/4erdenko/vmic/pkg/report"
)

const (
	Key   = "proc"
	Title = "Processes and Memory"
)

var (
	meminfoPath    = "/proc/meminfo"
	loadavgPath    = "/proc/loadavg"
	swapsPath      = "/proc/swaps"
	selfCgroupPath = "/proc/self/cgroup"
	cgroupMount    = "/sys/fs/cgroup"
)

// meminfoFields are the rows lifted into the memory summary, keyed by their
// kernel names.
var meminfoFields = map[string]string{
	"MemTotal":     "total_kb",
	"MemFree":      "free_kb",
	"MemAvailable": "available_kb",
	"Buffers":      "buffers_kb",
	"Cached":       "cached_kb",
	"SwapTotal":    "swap_total_kb",
	"SwapFree":     "swap_free_kb",
}

// Descriptor registers the collector.
func Descriptor() collector.Descriptor {
	return collector.Descriptor{
		Key:   Key,
		Title: Title,
		New:   func(rt *collector.Runtime) collector.Collector { return &Collector{rt: rt} },
	}
}

// Collector summarizes host memory from /proc/meminfo, load from
// /proc/loadavg, and the process population from the shared index.
type Collector struct {
	rt *collector.Runtime
}

func (c *Collector) Collect(ctx context.Context) *report.Section {
	slog.Debug("collecting process and memory state")
	fs := c.rt.Sources.FS

	data, err := fs.ReadFile(ctx, meminfoPath)
	if err != nil {
		return report.Error(Key, Title, "cannot read "+meminfoPath+": "+err.Error())
	}
	memory, err := parseMeminfo(string(data))
	if err != nil {
		return report.Error(Key, Title, err.Error())
	}

	body := report.Body{"memory": memory}
	s := report.Ok(Key, Title, body)

	if data, err := fs.ReadFile(ctx, loadavgPath); err == nil {
		if load := parseLoadavg(string(data)); load != nil {
			body["load"] = load
		}
	} else {
		s.Status = report.StatusDegraded
		s.Summary = "loadavg unavailable"
		s.Note("loadavg: %v", err)
	}

	// Best-effort extras: hosts without swap or without a unified cgroup
	// hierarchy simply omit these fields.
	if data, err := fs.ReadFile(ctx, swapsPath); err == nil {
		if swaps := parseSwaps(string(data)); len(swaps) > 0 {
			body["swaps"] = swaps
		}
	} else if !errors.IsCode(err, errors.ErrCodeNotFound) {
		s.Note("swaps: %v", err)
	}
	if cg := c.collectCgroupMemory(ctx); cg != nil {
		body["cgroup"] = cg
	}

	idx, err := c.rt.ProcessIndex(ctx)
	if err != nil {
		if s.Status == report.StatusOk {
			s.Status = report.StatusDegraded
			s.Summary = "process scan unavailable"
		}
		s.Note("process scan: %v", err)
		return s
	}
	procs := idx.Processes()
	body["processes"] = report.Body{
		"total":         len(procs),
		"containerized": len(idx.Containerized()),
	}
	if idx.SkippedPIDs > 0 {
		s.Note("%d process(es) skipped, fd tables unreadable", idx.SkippedPIDs)
	}
	return s
}

// parseMeminfo lifts the summary rows and derives the used ratio from
// MemTotal and MemAvailable.
func parseMeminfo(content string) (report.Body, error) {
	memory := report.Body{}
	for _, line := range strings.Split(content, "\n") {
		name, rest, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key, wanted := meminfoFields[strings.TrimSpace(name)]
		if !wanted {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		kb, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			continue
		}
		memory[key] = kb
	}

	total, okT := memory["total_kb"].(uint64)
	avail, okA := memory["available_kb"].(uint64)
	if !okT || !okA || total == 0 {
		return nil, errors.New(errors.ErrCodeMalformed, meminfoPath+" is missing MemTotal or MemAvailable")
	}
	memory["used_ratio"] = float64(total-avail) / float64(total)
	return memory, nil
}

// parseSwaps reads the active swap devices. The first line is a header.
func parseSwaps(content string) []report.Body {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) < 2 {
		return nil
	}
	var swaps []report.Body
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}
		size, errS := strconv.ParseUint(fields[2], 10, 64)
		used, errU := strconv.ParseUint(fields[3], 10, 64)
		if errS != nil || errU != nil {
			continue
		}
		swaps = append(swaps, report.Body{
			"device":   fields[0],
			"type":     fields[1],
			"size_kb":  size,
			"used_kb":  used,
			"priority": fields[4],
		})
	}
	return swaps
}

// collectCgroupMemory reads this process's unified-hierarchy memory usage and
// limit. Returns nil on cgroup v1 hosts or when the controller files are
// absent.
func (c *Collector) collectCgroupMemory(ctx context.Context) report.Body {
	fs := c.rt.Sources.FS
	data, err := fs.ReadFile(ctx, selfCgroupPath)
	if err != nil {
		return nil
	}
	path := correlate.ParseCgroupPath(string(data))
	if path == "" {
		return nil
	}
	current, err := fs.ReadFile(ctx, cgroupMount+path+"/memory.current")
	if err != nil {
		return nil
	}
	usage, err := strconv.ParseUint(strings.TrimSpace(string(current)), 10, 64)
	if err != nil {
		return nil
	}
	cg := report.Body{"path": path, "memory_current_bytes": usage}
	if max, err := fs.ReadFile(ctx, cgroupMount+path+"/memory.max"); err == nil {
		if limit, err := strconv.ParseUint(strings.TrimSpace(string(max)), 10, 64); err == nil {
			cg["memory_limit_bytes"] = limit
		}
	}
	return cg
}

// parseLoadavg reads the three load averages and the runnable/total entity
// counts.
func parseLoadavg(content string) report.Body {
	fields := strings.Fields(content)
	if len(fields) < 4 {
		return nil
	}
	one, err1 := strconv.ParseFloat(fields[0], 64)
	five, err5 := strconv.ParseFloat(fields[1], 64)
	fifteen, err15 := strconv.ParseFloat(fields[2], 64)
	if err1 != nil || err5 != nil || err15 != nil {
		return nil
	}
	load := report.Body{"load1": one, "load5": five, "load15": fifteen}
	if runnable, total, found := strings.Cut(fields[3], "/"); found {
		if r, err := strconv.Atoi(runnable); err == nil {
			load["runnable"] = r
		}
		if t, err := strconv.Atoi(total); err == nil {
			load["entities"] = t
		}
	}
	return load
}
