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

package correlate

import (
	"regexp"
	"strings"
)

// ContainerRef identifies the container a cgroup path belongs to.
type ContainerRef struct {
	Runtime string `json:"runtime"`
	ID      string `json:"id"`
	// PodScoped marks processes under a kubepods slice, whichever runtime
	// manages the container itself.
	PodScoped bool `json:"pod_scoped,omitempty"`
}

// ShortID returns the familiar 12-character form of the container ID.
func (c ContainerRef) ShortID() string {
	if len(c.ID) > 12 {
		return c.ID[:12]
	}
	return c.ID
}

// ContainerMatcher extracts a container identity from one cgroup path. New
// runtimes plug in by appending a matcher, existing mappings stay untouched.
type ContainerMatcher interface {
	Match(cgroupPath string) (ContainerRef, bool)
}

type regexpMatcher struct {
	runtime string
	pattern *regexp.Regexp
}

func (m regexpMatcher) Match(cgroupPath string) (ContainerRef, bool) {
	groups := m.pattern.FindStringSubmatch(cgroupPath)
	if groups == nil {
		return ContainerRef{}, false
	}
	return ContainerRef{Runtime: m.runtime, ID: groups[1]}, true
}

// DefaultMatchers covers the runtimes seen in the wild, most specific first:
// containerd's CRI scopes and podman's libpod scopes both contain hex IDs
// that the generic docker pattern would also match.
func DefaultMatchers() []ContainerMatcher {
	return []ContainerMatcher{
		regexpMatcher{"containerd", regexp.MustCompile(`cri-containerd[-:]([0-9a-f]{12,64})`)},
		regexpMatcher{"podman", regexp.MustCompile(`libpod-([0-9a-f]{12,64})`)},
		regexpMatcher{"docker", regexp.MustCompile(`docker[-/]([0-9a-f]{12,64})(?:\.scope)?`)},
	}
}

// ResolveContainer runs the matchers against a cgroup path. The bool result
// is false for plain host processes.
func ResolveContainer(cgroupPath string, matchers []ContainerMatcher) (ContainerRef, bool) {
	for _, m := range matchers {
		if ref, ok := m.Match(cgroupPath); ok {
			ref.PodScoped = strings.Contains(cgroupPath, "kubepods")
			return ref, true
		}
	}
	return ContainerRef{}, false
}

// ParseCgroupPath extracts the unified-hierarchy path from /proc/PID/cgroup
// content. v2 hosts have a single "0::/path" line; on hybrid hosts the v2
// line still wins, with the first v1 line as fallback.
func ParseCgroupPath(content string) string {
	fallback := ""
	for _, line := range strings.Split(content, "\n") {
		parts := strings.SplitN(strings.TrimSpace(line), ":", 3)
		if len(parts) != 3 || parts[2] == "" {
			continue
		}
		if parts[0] == "0" {
			return parts[2]
		}
		if fallback == "" {
			fallback = parts[2]
		}
	}
	return fallback
}
