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

package users

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/4erdenko/vmic/pkg/collector"
	"github.com/4erdenko/vmic/pkg/report"
)

const (
	Key   = "users"
	Title = "Users and Logins"
)

var (
	passwdPath = "/etc/passwd"
	groupPath  = "/etc/group"
)

// privilegedGroups grant administrative access through group membership.
var privilegedGroups = map[string]bool{
	"sudo":  true,
	"wheel": true,
	"admin": true,
	"adm":   true,
}

// nologinShells do not grant an interactive session.
var nologinShells = map[string]bool{
	"/usr/sbin/nologin": true,
	"/sbin/nologin":     true,
	"/bin/false":        true,
	"/usr/bin/false":    true,
}

// Descriptor registers the collector.
func Descriptor() collector.Descriptor {
	return collector.Descriptor{
		Key:   Key,
		Title: Title,
		New:   func(rt *collector.Runtime) collector.Collector { return &Collector{rt: rt} },
	}
}

// Collector parses the account database and flags anomalies such as extra
// uid-0 accounts. Active sessions come from who(1) when available.
type Collector struct {
	rt *collector.Runtime
}

func (c *Collector) Collect(ctx context.Context) *report.Section {
	slog.Debug("collecting user accounts")

	data, err := c.rt.Sources.FS.ReadFile(ctx, passwdPath)
	if err != nil {
		return report.Error(Key, Title, "cannot read "+passwdPath+": "+err.Error())
	}

	rows := []any{}
	var rootAccounts []string
	loginAccounts := 0
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) < 7 {
			continue
		}
		uid, err := strconv.Atoi(fields[2])
		if err != nil {
			continue
		}
		gid, _ := strconv.Atoi(fields[3])
		shell := fields[6]
		canLogin := !nologinShells[shell] && shell != ""
		if canLogin {
			loginAccounts++
		}
		if uid == 0 {
			rootAccounts = append(rootAccounts, fields[0])
		}
		rows = append(rows, report.Body{
			"name":      fields[0],
			"uid":       uid,
			"gid":       gid,
			"home":      fields[5],
			"shell":     shell,
			"can_login": canLogin,
		})
	}

	s := report.Ok(Key, Title, report.Body{
		"total":          len(rows),
		"login_accounts": loginAccounts,
		"root_accounts":  toAny(rootAccounts),
		"users":          rows,
	})

	for _, name := range rootAccounts {
		if name != "root" {
			s.Note("account %q has uid 0", name)
		}
	}
	if len(rootAccounts) > 1 {
		s.Status = report.StatusDegraded
		s.Summary = fmt.Sprintf("%d accounts with uid 0", len(rootAccounts))
	}

	c.collectPrivilegedGroups(ctx, s)
	c.collectSessions(ctx, s)
	return s
}

// collectPrivilegedGroups lists members of the administrative groups from
// /etc/group. The file is optional input; its absence only produces a note.
func (c *Collector) collectPrivilegedGroups(ctx context.Context, s *report.Section) {
	data, err := c.rt.Sources.FS.ReadFile(ctx, groupPath)
	if err != nil {
		s.Note("group membership unavailable: %v", err)
		return
	}
	groups := []any{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) < 4 || !privilegedGroups[fields[0]] {
			continue
		}
		gid, err := strconv.Atoi(fields[2])
		if err != nil {
			continue
		}
		var members []string
		if fields[3] != "" {
			members = strings.Split(fields[3], ",")
		}
		groups = append(groups, report.Body{
			"name":    fields[0],
			"gid":     gid,
			"members": toAny(members),
		})
	}
	s.Body["privileged_groups"] = groups
}

// collectSessions adds active login sessions from who(1). The command is
// optional; its absence only produces a note.
func (c *Collector) collectSessions(ctx context.Context, s *report.Section) {
	out, err := c.rt.Sources.Runner.Run(ctx, "who")
	if err != nil {
		s.Note("active sessions unavailable: %v", err)
		return
	}
	sessions := []any{}
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		sessions = append(sessions, report.Body{"user": fields[0], "tty": fields[1]})
	}
	s.Body["sessions"] = sessions
	s.Body["session_count"] = len(sessions)
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
