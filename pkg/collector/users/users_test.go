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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/4erdenko/vmic/pkg/adapter"
	"github.com/4erdenko/vmic/pkg/collector"
	"github.com/4erdenko/vmic/pkg/report"
)

const samplePasswd = `root:x:0:0:root:/root:/bin/bash
daemon:x:1:1:daemon:/usr/sbin:/usr/sbin/nologin
sshd:x:105:65534::/run/sshd:/usr/sbin/nologin
alice:x:1000:1000:Alice:/home/alice:/bin/zsh
toor:x:0:0:backdoor:/root:/bin/sh
malformed line without colons
`

const sampleGroup = `root:x:0:
sudo:x:27:alice,bob
adm:x:4:alice
users:x:100:alice,carol
`

func collect(t *testing.T, passwd string, runner *adapter.FakeRunner) *report.Section {
	t.Helper()
	ffs := adapter.NewFakeFS()
	if passwd != "" {
		ffs.Files["/etc/passwd"] = passwd
	}
	ffs.Files["/etc/group"] = sampleGroup
	if runner == nil {
		runner = &adapter.FakeRunner{}
	}
	rt := collector.NewRuntime(&adapter.Sources{FS: ffs, Runner: runner})
	return Descriptor().New(rt).Collect(context.Background())
}

func TestCollectFlagsExtraRootAccount(t *testing.T) {
	runner := &adapter.FakeRunner{Outputs: map[string]string{
		"who": "alice    pts/0        2025-08-23 09:14 (10.0.0.9)\n",
	}}
	s := collect(t, samplePasswd, runner)

	assert.Equal(t, report.StatusDegraded, s.Status)
	assert.Equal(t, "2 accounts with uid 0", s.Summary)
	assert.Contains(t, s.Notes, `account "toor" has uid 0`)

	assert.Equal(t, 5, s.Body["total"], "malformed lines are skipped")
	assert.Equal(t, 3, s.Body["login_accounts"])
	assert.Equal(t, []any{"root", "toor"}, s.Body["root_accounts"])

	users := s.Body["users"].([]any)
	alice := users[3].(report.Body)
	assert.Equal(t, "alice", alice["name"])
	assert.Equal(t, 1000, alice["uid"])
	assert.Equal(t, true, alice["can_login"])

	require.Equal(t, 1, s.Body["session_count"])
	session := s.Body["sessions"].([]any)[0].(report.Body)
	assert.Equal(t, "alice", session["user"])
	assert.Equal(t, "pts/0", session["tty"])
}

func TestCollectSingleRootIsOk(t *testing.T) {
	passwd := "root:x:0:0:root:/root:/bin/bash\nalice:x:1000:1000::/home/alice:/bin/bash\n"
	s := collect(t, passwd, &adapter.FakeRunner{Outputs: map[string]string{"who": ""}})

	assert.Equal(t, report.StatusOk, s.Status)
	assert.Equal(t, []any{"root"}, s.Body["root_accounts"])
}

func TestCollectSessionsOptional(t *testing.T) {
	passwd := "root:x:0:0:root:/root:/bin/bash\n"
	s := collect(t, passwd, &adapter.FakeRunner{})

	assert.Equal(t, report.StatusOk, s.Status, "missing who(1) never degrades the section")
	require.Len(t, s.Notes, 1)
	assert.Contains(t, s.Notes[0], "active sessions unavailable")
	assert.NotContains(t, s.Body, "sessions")
}

func TestCollectPrivilegedGroups(t *testing.T) {
	s := collect(t, samplePasswd, &adapter.FakeRunner{Outputs: map[string]string{"who": ""}})

	groups := s.Body["privileged_groups"].([]any)
	require.Len(t, groups, 2, "only administrative groups are listed")
	sudo := groups[0].(report.Body)
	assert.Equal(t, "sudo", sudo["name"])
	assert.Equal(t, 27, sudo["gid"])
	assert.Equal(t, []any{"alice", "bob"}, sudo["members"])
	adm := groups[1].(report.Body)
	assert.Equal(t, "adm", adm["name"])
}

func TestCollectGroupFileOptional(t *testing.T) {
	ffs := adapter.NewFakeFS()
	ffs.Files["/etc/passwd"] = "root:x:0:0:root:/root:/bin/bash\n"
	rt := collector.NewRuntime(&adapter.Sources{FS: ffs, Runner: &adapter.FakeRunner{Outputs: map[string]string{"who": ""}}})
	s := Descriptor().New(rt).Collect(context.Background())

	assert.Equal(t, report.StatusOk, s.Status)
	require.Len(t, s.Notes, 1)
	assert.Contains(t, s.Notes[0], "group membership unavailable")
}

func TestCollectErrorsWithoutPasswd(t *testing.T) {
	s := collect(t, "", nil)
	assert.Equal(t, report.StatusError, s.Status)
}
