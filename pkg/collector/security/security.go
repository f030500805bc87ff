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

package security

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/4erdenko/vmic/pkg/collector"
	"github.com/4erdenko/vmic/pkg/report"
)

const (
	Key   = "security"
	Title = "Security Posture"
)

var (
	sshdConfigPath = "/etc/ssh/sshd_config"
	sudoersPath    = "/etc/sudoers"
	sudoersDropIn  = "/etc/sudoers.d"
)

// hardeningSysctls are kernel knobs worth surfacing, with the value that
// warrants a note.
var hardeningSysctls = []struct {
	path string
	name string
	bad  string
	note string
}{
	{"/proc/sys/kernel/randomize_va_space", "randomize_va_space", "0", "address space randomization is disabled"},
	{"/proc/sys/net/ipv4/ip_forward", "ip_forward", "1", "IPv4 forwarding is enabled"},
	{"/proc/sys/kernel/dmesg_restrict", "dmesg_restrict", "0", "kernel log is readable by unprivileged users"},
}

// sshdSettings are the directives lifted from sshd_config, with their
// OpenSSH defaults when the directive is absent.
var sshdSettings = map[string]string{
	"permitrootlogin":        "prohibit-password",
	"passwordauthentication": "yes",
	"permitemptypasswords":   "no",
	"x11forwarding":          "no",
}

// Descriptor registers the collector.
func Descriptor() collector.Descriptor {
	return collector.Descriptor{
		Key:   Key,
		Title: Title,
		New:   func(rt *collector.Runtime) collector.Collector { return &Collector{rt: rt} },
	}
}

// Collector inspects login and kernel hardening posture: sshd directives,
// passwordless sudo grants, and a small set of sysctls.
type Collector struct {
	rt *collector.Runtime
}

func (c *Collector) Collect(ctx context.Context) *report.Section {
	slog.Debug("collecting security posture")
	fs := c.rt.Sources.FS

	s := report.Ok(Key, Title, report.Body{})

	sshd, err := c.collectSSHD(ctx)
	if err != nil {
		s.Note("sshd_config: %v", err)
		sshd = report.Body{}
	}
	s.Body["sshd"] = sshd
	if v, ok := sshd["permitrootlogin"].(string); ok && v == "yes" {
		s.Note("sshd permits root login with a password")
	}
	if v, ok := sshd["permitemptypasswords"].(string); ok && v == "yes" {
		s.Note("sshd permits empty passwords")
	}

	nopasswd, sudoErr := c.collectNoPasswdSudo(ctx)
	if sudoErr != nil {
		s.Status = report.StatusDegraded
		s.Summary = "sudoers unreadable"
		s.Note("sudoers: %v", sudoErr)
	} else {
		s.Body["nopasswd_sudo"] = toAny(nopasswd)
		for _, rule := range nopasswd {
			s.Note("passwordless sudo: %s", rule)
		}
	}

	sysctls := report.Body{}
	for _, sc := range hardeningSysctls {
		data, err := fs.ReadFile(ctx, sc.path)
		if err != nil {
			continue
		}
		value := strings.TrimSpace(string(data))
		sysctls[sc.name] = value
		if value == sc.bad {
			s.Note("%s", sc.note)
		}
	}
	s.Body["sysctls"] = sysctls

	// cgroup2 exposes cgroup.controllers at the mount root; its absence means
	// the host still runs the legacy split hierarchy.
	unified := fs.Exists("/sys/fs/cgroup/cgroup.controllers")
	s.Body["cgroup_unified_hierarchy"] = unified
	if !unified {
		s.Note("cgroup v2 unified hierarchy is not mounted")
	}

	if err != nil && sudoErr != nil && len(sysctls) == 0 {
		return report.Error(Key, Title, "no security source is readable")
	}
	return s
}

// collectSSHD reads the effective values of the watched sshd directives.
// Later occurrences lose in sshd_config, the first match wins.
func (c *Collector) collectSSHD(ctx context.Context) (report.Body, error) {
	data, err := c.rt.Sources.FS.ReadFile(ctx, sshdConfigPath)
	if err != nil {
		return nil, err
	}

	settings := report.Body{}
	for name, def := range sshdSettings {
		settings[name] = def
	}
	seen := map[string]bool{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		name := strings.ToLower(fields[0])
		if _, watched := sshdSettings[name]; !watched || seen[name] {
			continue
		}
		seen[name] = true
		settings[name] = strings.ToLower(fields[1])
	}
	return settings, nil
}

// collectNoPasswdSudo scans sudoers and its drop-ins for NOPASSWD grants.
func (c *Collector) collectNoPasswdSudo(ctx context.Context) ([]string, error) {
	fs := c.rt.Sources.FS

	data, err := fs.ReadFile(ctx, sudoersPath)
	if err != nil {
		return nil, err
	}
	rules := scanNoPasswd(string(data), sudoersPath)

	if names, err := fs.ReadDir(ctx, sudoersDropIn); err == nil {
		for _, name := range names {
			path := sudoersDropIn + "/" + name
			if data, err := fs.ReadFile(ctx, path); err == nil {
				rules = append(rules, scanNoPasswd(string(data), path)...)
			}
		}
	}
	return rules, nil
}

func scanNoPasswd(content, source string) []string {
	var rules []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.Contains(line, "NOPASSWD") {
			rules = append(rules, fmt.Sprintf("%s (%s)", line, source))
		}
	}
	return rules
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
