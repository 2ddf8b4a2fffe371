// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package messages

import (
	"fmt"
	"io"
)

// StartPingCheckPingID is StartPingCheck's only block.
type StartPingCheckPingID struct {
	PingID uint8

	// OldestUnacked is the sender's oldest reliable sequence number still waiting for an acknowledgement.
	OldestUnacked uint32
}

// StartPingCheck is sent by the simulator to measure the round-trip time. It must be answered by a
// CompletePingCheck carrying the same PingID.
type StartPingCheck struct {
	PingID StartPingCheckPingID
}

func (_ *StartPingCheck) Type() MessageType { return TypeStartPingCheck }

func (m StartPingCheck) String() string {
	return fmt.Sprintf("StartPingCheck(PingID=%d, OldestUnacked=%d)", m.PingID.PingID, m.PingID.OldestUnacked)
}

func (m *StartPingCheck) Marshal(w io.Writer) error {
	return writeFields(w, m.PingID)
}

func (m *StartPingCheck) Unmarshal(r io.Reader) error {
	return readFields(r, &m.PingID)
}

// CompletePingCheckPingID is CompletePingCheck's only block.
type CompletePingCheckPingID struct {
	PingID uint8
}

// CompletePingCheck answers a StartPingCheck.
type CompletePingCheck struct {
	PingID CompletePingCheckPingID
}

func (_ *CompletePingCheck) Type() MessageType { return TypeCompletePingCheck }

func (m CompletePingCheck) String() string {
	return fmt.Sprintf("CompletePingCheck(PingID=%d)", m.PingID.PingID)
}

func (m *CompletePingCheck) Marshal(w io.Writer) error {
	return writeFields(w, m.PingID)
}

func (m *CompletePingCheck) Unmarshal(r io.Reader) error {
	return readFields(r, &m.PingID)
}
