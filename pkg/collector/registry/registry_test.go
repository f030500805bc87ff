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

package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOrderIsStable(t *testing.T) {
	assert.Equal(t, []string{
		"os", "proc", "storage", "network", "services", "users",
		"cron", "journal", "docker", "containers", "sar", "security",
	}, Keys())
}

func TestDescriptorsAreComplete(t *testing.T) {
	seen := map[string]bool{}
	for _, d := range Default() {
		require.NotEmpty(t, d.Key)
		require.NotEmpty(t, d.Title)
		require.NotNil(t, d.New)
		require.False(t, seen[d.Key], "duplicate key %s", d.Key)
		seen[d.Key] = true
	}
}
