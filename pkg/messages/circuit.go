// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package messages

import (
	"fmt"
	"io"

	"github.com/google/uuid"
)

// UseCircuitCodeCircuitCode is UseCircuitCode's only block.
type UseCircuitCodeCircuitCode struct {
	Code      uint32
	SessionID uuid.UUID
	ID        uuid.UUID
}

// UseCircuitCode activates a circuit with the circuit code handed out by the login service.
type UseCircuitCode struct {
	CircuitCode UseCircuitCodeCircuitCode
}

func (_ *UseCircuitCode) Type() MessageType { return TypeUseCircuitCode }

func (m UseCircuitCode) String() string {
	return fmt.Sprintf("UseCircuitCode(Code=%d, SessionID=%v, ID=%v)",
		m.CircuitCode.Code, m.CircuitCode.SessionID, m.CircuitCode.ID)
}

func (m *UseCircuitCode) Marshal(w io.Writer) error {
	return writeFields(w, m.CircuitCode)
}

func (m *UseCircuitCode) Unmarshal(r io.Reader) error {
	return readFields(r, &m.CircuitCode)
}

// PacketAckPackets is one acknowledged sequence number.
type PacketAckPackets struct {
	ID uint32
}

// PacketAck acknowledges reliable packets when there is no outgoing packet to append the acknowledgements to.
type PacketAck struct {
	Packets []PacketAckPackets
}

// NewPacketAck creates a PacketAck for the given sequence numbers.
func NewPacketAck(ids []uint32) *PacketAck {
	pa := &PacketAck{Packets: make([]PacketAckPackets, len(ids))}
	for i, id := range ids {
		pa.Packets[i].ID = id
	}
	return pa
}

func (_ *PacketAck) Type() MessageType { return TypePacketAck }

func (m PacketAck) String() string {
	return fmt.Sprintf("PacketAck(%v)", m.IDs())
}

// IDs returns all acknowledged sequence numbers.
func (m *PacketAck) IDs() []uint32 {
	ids := make([]uint32, len(m.Packets))
	for i, p := range m.Packets {
		ids[i] = p.ID
	}
	return ids
}

func (m *PacketAck) Marshal(w io.Writer) error {
	if err := writeBlockCount(w, len(m.Packets)); err != nil {
		return err
	}
	for _, p := range m.Packets {
		if err := writeFields(w, p); err != nil {
			return err
		}
	}
	return nil
}

func (m *PacketAck) Unmarshal(r io.Reader) error {
	n, err := readBlockCount(r)
	if err != nil {
		return err
	}

	m.Packets = make([]PacketAckPackets, n)
	for i := range m.Packets {
		if err := readFields(r, &m.Packets[i]); err != nil {
			return err
		}
	}
	return nil
}

// OpenCircuitCircuitInfo is OpenCircuit's only block.
type OpenCircuitCircuitInfo struct {
	IP   IPAddr
	Port IPPort
}

// OpenCircuit announces a circuit to a peer.
type OpenCircuit struct {
	CircuitInfo OpenCircuitCircuitInfo
}

func (_ *OpenCircuit) Type() MessageType { return TypeOpenCircuit }

func (m OpenCircuit) String() string {
	return fmt.Sprintf("OpenCircuit(%v:%d)", m.CircuitInfo.IP, m.CircuitInfo.Port)
}

func (m *OpenCircuit) Marshal(w io.Writer) error {
	return writeFields(w, m.CircuitInfo.IP, m.CircuitInfo.Port)
}

func (m *OpenCircuit) Unmarshal(r io.Reader) error {
	return readFields(r, &m.CircuitInfo.IP, &m.CircuitInfo.Port)
}

// CloseCircuit tells the peer that this circuit is going away. It has no blocks.
type CloseCircuit struct{}

func (_ *CloseCircuit) Type() MessageType { return TypeCloseCircuit }

func (_ CloseCircuit) String() string { return "CloseCircuit" }

func (_ *CloseCircuit) Marshal(_ io.Writer) error { return nil }

func (_ *CloseCircuit) Unmarshal(_ io.Reader) error { return nil }
