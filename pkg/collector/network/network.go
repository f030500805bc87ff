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

package network

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/4erdenko/vmic/pkg/collector"
	"github.com/4erdenko/vmic/pkg/correlate"
	"github.com/4erdenko/vmic/pkg/report"
)

const (
	Key   = "network"
	Title = "Network Listeners"
)

var netDevPath = "/proc/net/dev"

// Descriptor registers the collector.
func Descriptor() collector.Descriptor {
	return collector.Descriptor{
		Key:   Key,
		Title: Title,
		New:   func(rt *collector.Runtime) collector.Collector { return &Collector{rt: rt} },
	}
}

// Collector reads the kernel socket tables and joins listeners against the
// shared process index.
type Collector struct {
	rt *collector.Runtime
}

func (c *Collector) Collect(ctx context.Context) *report.Section {
	slog.Debug("collecting network listeners")
	fs := c.rt.Sources.FS

	var sockets []correlate.Socket
	var failedTables []string
	for _, proto := range correlate.Protocols() {
		data, err := fs.ReadFile(ctx, proto.TablePath())
		if err != nil {
			failedTables = append(failedTables, string(proto))
			continue
		}
		parsed, err := correlate.ParseSocketTable(proto, data)
		if err != nil {
			failedTables = append(failedTables, string(proto))
			continue
		}
		sockets = append(sockets, parsed...)
	}
	if len(failedTables) == len(correlate.Protocols()) {
		return report.Error(Key, Title, "no socket table under /proc/net is readable")
	}

	s := report.Ok(Key, Title, report.Body{})
	if len(failedTables) > 0 {
		s.Status = report.StatusDegraded
		s.Summary = fmt.Sprintf("socket table(s) unreadable: %s", strings.Join(failedTables, ", "))
	}

	idx, err := c.rt.ProcessIndex(ctx)
	if err != nil {
		idx = nil
		if s.Status == report.StatusOk {
			s.Status = report.StatusDegraded
			s.Summary = "listener ownership unresolved"
		}
		s.Note("process scan: %v", err)
	}

	listeners := correlate.CorrelateListeners(sockets, idx)
	rows := make([]any, 0, len(listeners))
	wildcard := 0
	var insecure []string
	for _, l := range listeners {
		if l.Wildcard {
			wildcard++
		}
		if l.Insecure {
			insecure = append(insecure, fmt.Sprintf("%s/%d (%s)", l.Protocol, l.Port, l.Service))
		}
		rows = append(rows, listenerRow(l))
	}
	s.Body["listeners"] = rows
	s.Body["listener_count"] = len(rows)
	s.Body["wildcard_count"] = wildcard

	if data, err := fs.ReadFile(ctx, netDevPath); err == nil {
		if ifaces := parseNetDev(string(data)); len(ifaces) > 0 {
			s.Body["interfaces"] = ifaces
		}
	} else {
		s.Note("interface counters: %v", err)
	}

	if wildcard > 0 {
		s.Note("%d listener(s) bound to all interfaces", wildcard)
	}
	for _, svc := range insecure {
		s.Note("insecure legacy service listening on %s", svc)
	}
	if idx != nil && idx.SkippedPIDs > 0 {
		s.Note("listener ownership may be incomplete, %d process(es) unreadable", idx.SkippedPIDs)
	}
	return s
}

// parseNetDev reads per-interface receive and transmit counters. The first
// two lines are headers.
func parseNetDev(content string) []report.Body {
	var ifaces []report.Body
	for _, line := range strings.Split(content, "\n") {
		name, counters, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		fields := strings.Fields(counters)
		if len(fields) < 12 {
			continue
		}
		row := report.Body{"name": strings.TrimSpace(name)}
		for key, idx := range map[string]int{
			"rx_bytes": 0, "rx_packets": 1, "rx_errors": 2, "rx_dropped": 3,
			"tx_bytes": 8, "tx_packets": 9, "tx_errors": 10, "tx_dropped": 11,
		} {
			v, err := strconv.ParseUint(fields[idx], 10, 64)
			if err != nil {
				continue
			}
			row[key] = v
		}
		ifaces = append(ifaces, row)
	}
	sort.Slice(ifaces, func(i, j int) bool {
		return ifaces[i]["name"].(string) < ifaces[j]["name"].(string)
	})
	return ifaces
}

func listenerRow(l correlate.Listener) report.Body {
	row := report.Body{
		"protocol":  string(l.Protocol),
		"address":   l.Address,
		"port":      int(l.Port),
		"state":     l.State,
		"uid":       int(l.UID),
		"process":   l.Process,
		"container": l.Container,
		"service":   l.Service,
		"wildcard":  l.Wildcard,
		"insecure":  l.Insecure,
	}
	if l.PID > 0 {
		row["pid"] = l.PID
	}
	return row
}
