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

package collector

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/4erdenko/vmic/pkg/adapter"
	"github.com/4erdenko/vmic/pkg/correlate"
	"github.com/4erdenko/vmic/pkg/errors"
	"github.com/4erdenko/vmic/pkg/report"
)

// Collector produces one report section. Collect always returns a section:
// partial data yields a degraded one, a failed primary source an error one.
// A collector never aborts the run.
type Collector interface {
	Collect(ctx context.Context) *report.Section
}

// Runtime is the run-scoped environment handed to every collector: the data
// sources, the container matchers, and the shared process index built at most
// once per run.
type Runtime struct {
	Sources  *adapter.Sources
	Matchers []correlate.ContainerMatcher
	// Since bounds the journal window, in journalctl --since syntax.
	Since string

	indexOnce sync.Once
	index     *correlate.ProcessIndex
	indexErr  error
}

// NewRuntime creates a Runtime with the default container matchers.
func NewRuntime(sources *adapter.Sources) *Runtime {
	return &Runtime{
		Sources:  sources,
		Matchers: correlate.DefaultMatchers(),
	}
}

// ProcessIndex builds the /proc scan on first use and shares it across
// collectors. Concurrent callers block on the single build.
func (rt *Runtime) ProcessIndex(ctx context.Context) (*correlate.ProcessIndex, error) {
	rt.indexOnce.Do(func() {
		rt.index, rt.indexErr = correlate.BuildProcessIndex(ctx, rt.Sources.FS, rt.Matchers)
	})
	return rt.index, rt.indexErr
}

// Descriptor registers one collector: its stable key, section title, an
// optional precondition, and its factory.
type Descriptor struct {
	Key   string
	Title string
	// Supported gates the collector on host preconditions, nil means always
	// supported. An unsupported collector is excluded from the run, it does
	// not produce a section.
	Supported func(rt *Runtime) bool
	New       func(rt *Runtime) Collector
}

// Selection narrows a registry to the collectors one run executes.
type Selection struct {
	// Enable, when non-empty, restricts the run to exactly these keys.
	Enable []string
	// Disable removes keys after Enable is applied.
	Disable []string
}

// Apply filters descriptors by selection and host support, preserving
// registry order. Unknown keys in either list are fatal configuration
// errors.
func (sel Selection) Apply(registry []Descriptor, rt *Runtime) ([]Descriptor, error) {
	known := map[string]bool{}
	for _, d := range registry {
		known[d.Key] = true
	}
	if err := checkKeys("enable", sel.Enable, known); err != nil {
		return nil, err
	}
	if err := checkKeys("disable", sel.Disable, known); err != nil {
		return nil, err
	}

	enabled := map[string]bool{}
	for _, k := range sel.Enable {
		enabled[k] = true
	}
	disabled := map[string]bool{}
	for _, k := range sel.Disable {
		disabled[k] = true
	}

	var out []Descriptor
	for _, d := range registry {
		if len(sel.Enable) > 0 && !enabled[d.Key] {
			continue
		}
		if disabled[d.Key] {
			continue
		}
		if d.Supported != nil && !d.Supported(rt) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func checkKeys(list string, keys []string, known map[string]bool) error {
	var unknown []string
	for _, k := range keys {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return errors.NewWithContext(errors.ErrCodeInvalidConfig,
		fmt.Sprintf("unknown collector key(s) in --%s: %s", list, strings.Join(unknown, ", ")),
		map[string]any{"keys": unknown})
}
