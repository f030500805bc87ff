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

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/4erdenko/vmic/pkg/errors"
)

// Protocol names a kernel socket table.
type Protocol string

const (
	ProtocolTCP  Protocol = "tcp"
	ProtocolTCP6 Protocol = "tcp6"
	ProtocolUDP  Protocol = "udp"
	ProtocolUDP6 Protocol = "udp6"
)

// TablePath returns the procfs path of the protocol's socket table.
func (p Protocol) TablePath() string {
	return "/proc/net/" + string(p)
}

// Protocols lists every table the network collector reads, in report order.
func Protocols() []Protocol {
	return []Protocol{ProtocolTCP, ProtocolTCP6, ProtocolUDP, ProtocolUDP6}
}

// Socket is one row of a kernel socket table.
type Socket struct {
	Protocol   Protocol
	LocalAddr  string
	LocalPort  uint16
	RemoteAddr string
	RemotePort uint16
	State      string
	UID        uint32
	Inode      uint64
}

// IsListener reports whether the socket accepts inbound traffic: LISTEN for
// TCP, any unconnected socket for UDP.
func (s Socket) IsListener() bool {
	switch s.Protocol {
	case ProtocolTCP, ProtocolTCP6:
		return s.State == "LISTEN"
	default:
		return s.RemotePort == 0
	}
}

// IsWildcard reports whether the socket is bound to all interfaces.
func (s Socket) IsWildcard() bool {
	return s.LocalAddr == "0.0.0.0" || s.LocalAddr == "::"
}

// tcpStates maps the kernel's hex state codes. UDP sockets reuse the table;
// in practice they show 07 (TCP_CLOSE), rendered as UNCONN like ss does.
var tcpStates = map[uint8]string{
	0x01: "ESTABLISHED",
	0x02: "SYN_SENT",
	0x03: "SYN_RECV",
	0x04: "FIN_WAIT1",
	0x05: "FIN_WAIT2",
	0x06: "TIME_WAIT",
	0x07: "CLOSE",
	0x08: "CLOSE_WAIT",
	0x09: "LAST_ACK",
	0x0A: "LISTEN",
	0x0B: "CLOSING",
}

// ParseSocketTable parses one /proc/net table. Malformed rows are skipped
// rather than failing the table; a missing header fails it outright.
func ParseSocketTable(proto Protocol, data []byte) ([]Socket, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	if !scanner.Scan() {
		return nil, errors.New(errors.ErrCodeMalformed, string(proto)+" table is empty")
	}
	if !strings.Contains(scanner.Text(), "local_address") {
		return nil, errors.New(errors.ErrCodeMalformed, string(proto)+" table header not recognized")
	}

	var sockets []Socket
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		// sl local_address rem_address st tx:rx tr:when retrnsmt uid timeout inode ...
		if len(fields) < 10 {
			continue
		}
		local, localPort, err := parseHexAddr(fields[1])
		if err != nil {
			continue
		}
		remote, remotePort, err := parseHexAddr(fields[2])
		if err != nil {
			continue
		}
		stateCode, err := strconv.ParseUint(fields[3], 16, 8)
		if err != nil {
			continue
		}
		uid, err := strconv.ParseUint(fields[7], 10, 32)
		if err != nil {
			continue
		}
		inode, err := strconv.ParseUint(fields[9], 10, 64)
		if err != nil {
			continue
		}
		state := tcpStates[uint8(stateCode)]
		if state == "" {
			state = fmt.Sprintf("UNKNOWN(%02X)", stateCode)
		}
		if (proto == ProtocolUDP || proto == ProtocolUDP6) && state == "CLOSE" {
			state = "UNCONN"
		}
		sockets = append(sockets, Socket{
			Protocol:   proto,
			LocalAddr:  local,
			LocalPort:  localPort,
			RemoteAddr: remote,
			RemotePort: remotePort,
			State:      state,
			UID:        uint32(uid),
			Inode:      inode,
		})
	}
	return sockets, nil
}

// parseHexAddr decodes the kernel's ADDR:PORT hex form. IPv4 addresses are a
// little-endian 32-bit word; IPv6 addresses are four little-endian words.
func parseHexAddr(raw string) (string, uint16, error) {
	addrHex, portHex, found := strings.Cut(raw, ":")
	if !found {
		return "", 0, errors.New(errors.ErrCodeMalformed, "address field missing port: "+raw)
	}
	port, err := strconv.ParseUint(portHex, 16, 16)
	if err != nil {
		return "", 0, errors.Wrap(errors.ErrCodeMalformed, "bad port in "+raw, err)
	}

	switch len(addrHex) {
	case 8:
		word, err := strconv.ParseUint(addrHex, 16, 32)
		if err != nil {
			return "", 0, errors.Wrap(errors.ErrCodeMalformed, "bad IPv4 address in "+raw, err)
		}
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(word))
		return net.IP(b[:]).String(), uint16(port), nil
	case 32:
		var b [16]byte
		for i := 0; i < 4; i++ {
			word, err := strconv.ParseUint(addrHex[i*8:(i+1)*8], 16, 32)
			if err != nil {
				return "", 0, errors.Wrap(errors.ErrCodeMalformed, "bad IPv6 address in "+raw, err)
			}
			binary.LittleEndian.PutUint32(b[i*4:(i+1)*4], uint32(word))
		}
		return net.IP(b[:]).String(), uint16(port), nil
	default:
		return "", 0, errors.New(errors.ErrCodeMalformed, "unrecognized address width in "+raw)
	}
}
