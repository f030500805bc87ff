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

import "testing"

func TestCollectorTimeoutWithinReportTimeout(t *testing.T) {
	if CollectorTimeout >= ReportTimeout {
		t.Errorf("collector timeout %v must be shorter than report timeout %v",
			CollectorTimeout, ReportTimeout)
	}
}

func TestAdapterTimeoutsWithinCollectorTimeout(t *testing.T) {
	if CommandTimeout > CollectorTimeout {
		t.Errorf("command timeout %v must not exceed collector timeout %v",
			CommandTimeout, CollectorTimeout)
	}
	if DaemonDialTimeout+DaemonRequestTimeout > CollectorTimeout {
		t.Errorf("daemon dial %v + request %v must fit collector timeout %v",
			DaemonDialTimeout, DaemonRequestTimeout, CollectorTimeout)
	}
}

func TestConcurrencyPositive(t *testing.T) {
	if CollectorConcurrency < 1 {
		t.Errorf("concurrency must be at least 1, got %d", CollectorConcurrency)
	}
}
