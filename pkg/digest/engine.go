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

package digest

import (
	"fmt"

	"github.com/4erdenko/vmic/pkg/report"
)

// Section keys the engine applies numeric rules to.
const (
	storageKey    = "storage"
	procKey       = "proc"
	containersKey = "containers"
)

// Engine synthesizes the health digest from finished sections. Evaluation is
// a pure function of its inputs: same sections and thresholds, same digest.
type Engine struct {
	thresholds Thresholds
}

// NewEngine creates an Engine with resolved thresholds.
func NewEngine(t Thresholds) *Engine {
	return &Engine{thresholds: t}
}

// Evaluate walks sections in report order and produces the digest. Each
// section contributes status-promotion findings first, then any numeric rule
// findings, so finding order is reproducible.
func (e *Engine) Evaluate(sections []report.Section) report.Digest {
	findings := []report.Finding{}
	for i := range sections {
		s := &sections[i]
		findings = append(findings, e.promoteStatus(s)...)
		switch s.Key {
		case storageKey:
			findings = append(findings, e.evaluateStorage(s)...)
		case procKey:
			findings = append(findings, e.evaluateMemory(s)...)
		case containersKey:
			findings = append(findings, e.evaluateCgroups(s)...)
		}
	}

	overall := report.SeverityInfo
	for _, f := range findings {
		overall = overall.Max(f.Severity)
	}
	return report.Digest{Overall: overall, Findings: findings}
}

// promoteStatus turns a failed or degraded section into a finding so a
// collector failure is always visible at the digest level.
func (e *Engine) promoteStatus(s *report.Section) []report.Finding {
	switch s.Status {
	case report.StatusError:
		msg := s.Summary
		if msg == "" {
			msg = "collector failed"
		}
		return []report.Finding{finding(report.SeverityCritical, s, msg)}
	case report.StatusDegraded:
		msg := s.Summary
		if msg == "" {
			msg = "collector degraded"
		}
		return []report.Finding{finding(report.SeverityWarning, s, msg)}
	default:
		return nil
	}
}

// evaluateStorage applies the disk usage thresholds to every mount the
// storage section reported.
func (e *Engine) evaluateStorage(s *report.Section) []report.Finding {
	var out []report.Finding
	for _, entry := range asSlice(s.Body["mounts"]) {
		mount := asMap(entry)
		if mount == nil {
			continue
		}
		ratio, ok := asFloat(mount["usage_ratio"])
		if !ok {
			continue
		}
		point, _ := mount["mount_point"].(string)
		if point == "" {
			point = "unknown"
		}
		switch {
		case ratio >= e.thresholds.DiskCritical:
			out = append(out, finding(report.SeverityCritical, s,
				fmt.Sprintf("mount %s at %.0f%% capacity (critical threshold %.0f%%)",
					point, ratio*100, e.thresholds.DiskCritical*100)))
		case ratio >= e.thresholds.DiskWarning:
			out = append(out, finding(report.SeverityWarning, s,
				fmt.Sprintf("mount %s at %.0f%% capacity (warning threshold %.0f%%)",
					point, ratio*100, e.thresholds.DiskWarning*100)))
		}
	}
	return out
}

// evaluateMemory applies the host memory thresholds to the proc section's
// memory summary. Thresholds are already inverted to used-space ratios.
func (e *Engine) evaluateMemory(s *report.Section) []report.Finding {
	mem := asMap(s.Body["memory"])
	if mem == nil {
		return nil
	}
	ratio, ok := asFloat(mem["used_ratio"])
	if !ok {
		total, okT := asFloat(mem["total_kb"])
		avail, okA := asFloat(mem["available_kb"])
		if !okT || !okA || total <= 0 {
			return nil
		}
		ratio = (total - avail) / total
	}
	switch {
	case ratio >= e.thresholds.MemoryCritical:
		return []report.Finding{finding(report.SeverityCritical, s,
			fmt.Sprintf("host memory %.0f%% used, %.0f%% available (critical threshold %.0f%% available)",
				ratio*100, (1-ratio)*100, (1-e.thresholds.MemoryCritical)*100))}
	case ratio >= e.thresholds.MemoryWarning:
		return []report.Finding{finding(report.SeverityWarning, s,
			fmt.Sprintf("host memory %.0f%% used, %.0f%% available (warning threshold %.0f%% available)",
				ratio*100, (1-ratio)*100, (1-e.thresholds.MemoryWarning)*100))}
	default:
		return nil
	}
}

// evaluateCgroups flags containers running close to their memory limit.
// Containers without a limit are skipped.
func (e *Engine) evaluateCgroups(s *report.Section) []report.Finding {
	var out []report.Finding
	for _, entry := range asSlice(s.Body["containers"]) {
		c := asMap(entry)
		if c == nil {
			continue
		}
		usage, okU := asFloat(c["memory_usage_bytes"])
		limit, okL := asFloat(c["memory_limit_bytes"])
		if !okU || !okL || limit <= 0 {
			continue
		}
		name, _ := c["name"].(string)
		if name == "" {
			name = "unknown"
		}
		ratio := usage / limit
		switch {
		case ratio >= e.thresholds.CgroupCritical:
			out = append(out, finding(report.SeverityCritical, s,
				fmt.Sprintf("container %s at %.0f%% of its memory limit", name, ratio*100)))
		case ratio >= e.thresholds.CgroupWarning:
			out = append(out, finding(report.SeverityWarning, s,
				fmt.Sprintf("container %s at %.0f%% of its memory limit", name, ratio*100)))
		}
	}
	return out
}

func finding(sev report.Severity, s *report.Section, msg string) report.Finding {
	return report.Finding{
		Severity:    sev,
		SourceKey:   s.Key,
		SourceTitle: s.Title,
		Message:     msg,
	}
}

// asSlice tolerates both the collector-built and the JSON-decoded shapes of a
// section body.
func asSlice(v any) []any {
	switch s := v.(type) {
	case []any:
		return s
	case []report.Body:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out
	default:
		return nil
	}
}

func asMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	default:
		return nil
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	default:
		return 0, false
	}
}
