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

package defaults

import "time"

// Collection timeouts.
const (
	// ReportTimeout is the global budget for a full report run.
	ReportTimeout = 2 * time.Minute

	// CollectorTimeout is the default per-collector budget. Collectors
	// should respect parent context deadlines when shorter.
	CollectorTimeout = 10 * time.Second

	// CollectorConcurrency bounds how many collectors run at once. Most
	// collectors block on file reads or external commands, so a small
	// pool keeps the load observable without serializing the run.
	CollectorConcurrency = 4
)

// Adapter timeouts for external calls.
const (
	// CommandTimeout is the budget for one external command invocation.
	CommandTimeout = 10 * time.Second

	// DaemonDialTimeout is the budget for connecting to a local daemon socket.
	DaemonDialTimeout = 2 * time.Second

	// DaemonRequestTimeout is the total budget for one daemon API request.
	DaemonRequestTimeout = 5 * time.Second
)
