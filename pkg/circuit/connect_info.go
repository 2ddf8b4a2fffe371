// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package circuit

import (
	"fmt"
	"net"
	"strconv"

	"github.com/google/uuid"
)

// ConnectInfo is handed out by the login service and identifies both the simulator and the agent's session.
type ConnectInfo struct {
	Host string
	Port uint16

	AgentID     uuid.UUID
	SessionID   uuid.UUID
	CircuitCode uint32
}

// ParseConnectInfo from a "host:port" address and the session's identifiers.
func ParseConnectInfo(address, agentID, sessionID string, circuitCode uint32) (info ConnectInfo, err error) {
	host, portStr, splitErr := net.SplitHostPort(address)
	if splitErr != nil {
		err = fmt.Errorf("invalid simulator address %q: %w", address, splitErr)
		return
	}

	port, portErr := strconv.ParseUint(portStr, 10, 16)
	if portErr != nil {
		err = fmt.Errorf("invalid simulator port %q: %w", portStr, portErr)
		return
	}

	info = ConnectInfo{Host: host, Port: uint16(port), CircuitCode: circuitCode}

	if info.AgentID, err = uuid.Parse(agentID); err != nil {
		err = fmt.Errorf("invalid agent id %q: %w", agentID, err)
		return
	}
	if info.SessionID, err = uuid.Parse(sessionID); err != nil {
		err = fmt.Errorf("invalid session id %q: %w", sessionID, err)
		return
	}

	return
}

// Address of the simulator in the "host:port" notation.
func (info ConnectInfo) Address() string {
	return net.JoinHostPort(info.Host, strconv.Itoa(int(info.Port)))
}

func (info ConnectInfo) String() string {
	return fmt.Sprintf("ConnectInfo(sim=%s, agent=%v, code=%d)", info.Address(), info.AgentID, info.CircuitCode)
}
