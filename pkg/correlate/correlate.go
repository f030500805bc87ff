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

import "sort"

// wellKnownPorts maps listener ports to service names for classification.
var wellKnownPorts = map[uint16]string{
	21:    "ftp",
	22:    "ssh",
	23:    "telnet",
	25:    "smtp",
	53:    "dns",
	69:    "tftp",
	80:    "http",
	110:   "pop3",
	111:   "rpcbind",
	123:   "ntp",
	143:   "imap",
	389:   "ldap",
	443:   "https",
	465:   "smtps",
	512:   "rexec",
	513:   "rlogin",
	514:   "rsh",
	631:   "ipp",
	873:   "rsync",
	993:   "imaps",
	995:   "pop3s",
	2049:  "nfs",
	3306:  "mysql",
	3389:  "rdp",
	5432:  "postgresql",
	6379:  "redis",
	8080:  "http-alt",
	9090:  "prometheus",
	11211: "memcached",
	27017: "mongodb",
}

// insecureServices are plaintext legacy protocols that warrant a note when a
// listener is found on their port.
var insecureServices = map[string]bool{
	"ftp":    true,
	"telnet": true,
	"tftp":   true,
	"rexec":  true,
	"rlogin": true,
	"rsh":    true,
}

// ServiceForPort returns the conventional service name for a port, or
// "unknown".
func ServiceForPort(port uint16) string {
	if name, ok := wellKnownPorts[port]; ok {
		return name
	}
	return "unknown"
}

// IsInsecureService reports whether the named service is a plaintext legacy
// protocol.
func IsInsecureService(name string) bool {
	return insecureServices[name]
}

// Listener is one inbound socket joined with its owning process and
// container. Fields that could not be resolved hold the explicit "unknown"
// marker (or 0 for the PID) rather than being omitted.
type Listener struct {
	Protocol  Protocol `json:"protocol"`
	Address   string   `json:"address"`
	Port      uint16   `json:"port"`
	State     string   `json:"state"`
	UID       uint32   `json:"uid"`
	PID       int      `json:"pid,omitempty"`
	Process   string   `json:"process"`
	Container string   `json:"container"`
	Service   string   `json:"service"`
	Wildcard  bool     `json:"wildcard"`
	Insecure  bool     `json:"insecure"`
}

// CorrelateListeners joins listening sockets against the process index. The
// result is sorted by protocol, port, then address, so repeated runs over the
// same snapshot produce identical rows.
func CorrelateListeners(sockets []Socket, idx *ProcessIndex) []Listener {
	listeners := []Listener{}
	for _, s := range sockets {
		if !s.IsListener() {
			continue
		}
		l := Listener{
			Protocol:  s.Protocol,
			Address:   s.LocalAddr,
			Port:      s.LocalPort,
			State:     s.State,
			UID:       s.UID,
			Process:   "unknown",
			Container: "unknown",
			Service:   ServiceForPort(s.LocalPort),
			Wildcard:  s.IsWildcard(),
		}
		l.Insecure = IsInsecureService(l.Service)
		if idx != nil {
			if owner := idx.OwnerOf(s.Inode); owner != nil {
				l.PID = owner.PID
				l.Process = owner.Comm
				if owner.Container != nil {
					l.Container = owner.Container.Runtime + ":" + owner.Container.ShortID()
				} else {
					l.Container = "host"
				}
			}
		}
		listeners = append(listeners, l)
	}

	sort.Slice(listeners, func(i, j int) bool {
		if listeners[i].Protocol != listeners[j].Protocol {
			return listeners[i].Protocol < listeners[j].Protocol
		}
		if listeners[i].Port != listeners[j].Port {
			return listeners[i].Port < listeners[j].Port
		}
		return listeners[i].Address < listeners[j].Address
	})
	return listeners
}
