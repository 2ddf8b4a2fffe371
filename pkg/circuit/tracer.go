// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package circuit

// Direction of a datagram, seen from this endpoint.
type Direction uint8

const (
	Inbound Direction = iota
	Outbound
)

func (d Direction) String() string {
	switch d {
	case Inbound:
		return "inbound"
	case Outbound:
		return "outbound"
	default:
		return "INVALID"
	}
}

// PacketTracer observes each datagram of a Circuit.
//
// TracePacket is called for every received datagram, even for undecodable ones, and for every transmission. The
// packet is nil if the datagram could not be decoded. The raw bytes must not be modified or retained after the
// call returns. TracePacket might be called while the Circuit holds its internal lock and must not call back into
// the Circuit.
type PacketTracer interface {
	TracePacket(dir Direction, packet *Packet, raw []byte)
}

// Stats is a snapshot of a Circuit's counters.
type Stats struct {
	// Sent counts transmitted datagrams, excluding retransmissions.
	Sent uint64
	// Resent counts retransmissions of reliable packets.
	Resent uint64
	// Received counts decodable inbound datagrams.
	Received uint64
	// Duplicates counts inbound reliable packets which were already dispatched.
	Duplicates uint64
	// Acked counts reliable sends resolved by an acknowledgement.
	Acked uint64
	// Failed counts reliable sends without an acknowledgement after all attempts.
	Failed uint64
	// Undecodable counts dropped inbound datagrams.
	Undecodable uint64
	// Undispatched counts messages dropped due to neither a waiting reader nor a handler.
	Undispatched uint64
	// Pending is the current amount of unacknowledged reliable sends.
	Pending int
}
