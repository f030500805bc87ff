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
	"strconv"
	"strings"

	"github.com/4erdenko/vmic/pkg/errors"
)

// Default threshold inputs. Disk values are used-space ratios; memory values
// are available-headroom ratios, matching how operators quote them ("warn
// below 10% free").
const (
	DefaultDiskWarning     = 0.90
	DefaultDiskCritical    = 0.95
	DefaultMemoryWarning   = 0.10
	DefaultMemoryCritical  = 0.05
	DefaultCgroupWarning   = 0.90
	DefaultCgroupCritical  = 0.95
	maxMeaningfulThreshold = 1.0
)

// Thresholds is the resolved, internally consistent set the engine evaluates
// against. Every field is a used-space ratio in (0, 1] and every pair
// satisfies warning <= critical; memory headroom inputs are inverted during
// resolution so the engine applies one uniform comparison.
type Thresholds struct {
	DiskWarning    float64
	DiskCritical   float64
	MemoryWarning  float64
	MemoryCritical float64
	CgroupWarning  float64
	CgroupCritical float64
}

// Inputs carries raw threshold strings before resolution. Empty fields fall
// back to the defaults.
type Inputs struct {
	DiskWarning    string
	DiskCritical   string
	MemoryWarning  string
	MemoryCritical string
}

// ParseRatio parses one threshold value. A % suffix always marks a percent in
// (0, 100]; bare values above 1 are read as percents and divided by 100;
// bare values in (0, 1] pass through. Zero, negatives, and values above 100
// are rejected rather than clamped.
func ParseRatio(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	percent := strings.HasSuffix(trimmed, "%")
	trimmed = strings.TrimSuffix(trimmed, "%")
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidConfig, fmt.Sprintf("threshold %q is not numeric", raw), err)
	}
	if percent {
		if v <= 0 || v > 100 {
			return 0, errors.NewWithContext(errors.ErrCodeInvalidConfig,
				fmt.Sprintf("threshold %q outside (0%%, 100%%]", raw),
				map[string]any{"value": raw})
		}
		return v / 100, nil
	}
	if v > maxMeaningfulThreshold {
		v /= 100
	}
	if v <= 0 || v > maxMeaningfulThreshold {
		return 0, errors.NewWithContext(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("threshold %q outside (0, 100]", raw),
			map[string]any{"value": raw})
	}
	return v, nil
}

// Resolve turns raw inputs into a validated Thresholds. Memory inputs are
// headroom ratios and get inverted into used-space ratios here.
func Resolve(in Inputs) (Thresholds, error) {
	diskW, err := resolveOne("disk-warning", in.DiskWarning, DefaultDiskWarning)
	if err != nil {
		return Thresholds{}, err
	}
	diskC, err := resolveOne("disk-critical", in.DiskCritical, DefaultDiskCritical)
	if err != nil {
		return Thresholds{}, err
	}
	memW, err := resolveOne("memory-warning", in.MemoryWarning, DefaultMemoryWarning)
	if err != nil {
		return Thresholds{}, err
	}
	memC, err := resolveOne("memory-critical", in.MemoryCritical, DefaultMemoryCritical)
	if err != nil {
		return Thresholds{}, err
	}

	t := Thresholds{
		DiskWarning:    diskW,
		DiskCritical:   diskC,
		MemoryWarning:  1 - memW,
		MemoryCritical: 1 - memC,
		CgroupWarning:  DefaultCgroupWarning,
		CgroupCritical: DefaultCgroupCritical,
	}
	if err := t.Validate(); err != nil {
		return Thresholds{}, err
	}
	return t, nil
}

func resolveOne(name, raw string, fallback float64) (float64, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	v, err := ParseRatio(raw)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidConfig, "invalid "+name+" threshold", err)
	}
	return v, nil
}

// Validate enforces warning <= critical on every resolved pair.
func (t Thresholds) Validate() error {
	pairs := []struct {
		name              string
		warning, critical float64
	}{
		{"disk", t.DiskWarning, t.DiskCritical},
		{"memory", t.MemoryWarning, t.MemoryCritical},
		{"cgroup", t.CgroupWarning, t.CgroupCritical},
	}
	for _, p := range pairs {
		if p.warning > p.critical {
			return errors.NewWithContext(errors.ErrCodeInvalidConfig,
				fmt.Sprintf("%s warning threshold %.4f exceeds critical %.4f", p.name, p.warning, p.critical),
				map[string]any{"warning": p.warning, "critical": p.critical})
		}
	}
	return nil
}

// DefaultThresholds returns the resolved defaults.
func DefaultThresholds() Thresholds {
	t, err := Resolve(Inputs{})
	if err != nil {
		// Defaults are compile-time constants; a failure here is a bug.
		panic(err)
	}
	return t
}
