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

// Package registry assembles every collector descriptor in report order. The
// order is stable across releases so section positions never move between
// runs or versions.
package registry

import (
	"github.com/4erdenko/vmic/pkg/collector"
	"github.com/4erdenko/vmic/pkg/collector/containers"
	"github.com/4erdenko/vmic/pkg/collector/cron"
	"github.com/4erdenko/vmic/pkg/collector/docker"
	"github.com/4erdenko/vmic/pkg/collector/journal"
	"github.com/4erdenko/vmic/pkg/collector/network"
	"github.com/4erdenko/vmic/pkg/collector/os"
	"github.com/4erdenko/vmic/pkg/collector/proc"
	"github.com/4erdenko/vmic/pkg/collector/sar"
	"github.com/4erdenko/vmic/pkg/collector/security"
	"github.com/4erdenko/vmic/pkg/collector/services"
	"github.com/4erdenko/vmic/pkg/collector/storage"
	"github.com/4erdenko/vmic/pkg/collector/users"
)

// Default returns the full descriptor list in report order.
func Default() []collector.Descriptor {
	return []collector.Descriptor{
		os.Descriptor(),
		proc.Descriptor(),
		storage.Descriptor(),
		network.Descriptor(),
		services.Descriptor(),
		users.Descriptor(),
		cron.Descriptor(),
		journal.Descriptor(),
		docker.Descriptor(),
		containers.Descriptor(),
		sar.Descriptor(),
		security.Descriptor(),
	}
}

// Keys returns the collector keys in report order.
func Keys() []string {
	descs := Default()
	keys := make([]string, 0, len(descs))
	for _, d := range descs {
		keys = append(keys, d.Key)
	}
	return keys
}
