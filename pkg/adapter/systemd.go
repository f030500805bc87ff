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

package adapter

import (
	"context"

	sddbus "github.com/coreos/go-systemd/v22/dbus"
)

// systemdSource lists units through the service manager D-Bus API. The
// connection is opened per call so a restarted systemd never leaves a stale
// handle behind; one list per report run keeps that cheap.
type systemdSource struct{}

// NewSystemdSource creates the production UnitSource.
func NewSystemdSource() UnitSource {
	return systemdSource{}
}

func (systemdSource) ListUnits(ctx context.Context) ([]UnitStatus, error) {
	conn, err := sddbus.NewWithContext(ctx)
	if err != nil {
		return nil, Classify(err, "systemd bus")
	}
	defer conn.Close()

	units, err := conn.ListUnitsContext(ctx)
	if err != nil {
		return nil, Classify(err, "systemd unit list")
	}
	out := make([]UnitStatus, 0, len(units))
	for _, u := range units {
		out = append(out, UnitStatus{
			Name:        u.Name,
			Description: u.Description,
			LoadState:   u.LoadState,
			ActiveState: u.ActiveState,
			SubState:    u.SubState,
		})
	}
	return out, nil
}
