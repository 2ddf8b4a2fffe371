// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package messages

import (
	"fmt"
	"io"
)

// Frequency of a message type, which determines the length of its encoded MessageType.
type Frequency uint8

const (
	// High frequency messages are identified by a single octet.
	High Frequency = iota

	// Medium frequency messages are prefixed by 0xFF and one octet.
	Medium

	// Low frequency messages are prefixed by 0xFFFF and a big endian two octet number.
	Low

	// Fixed messages share the low frequency layout with a 0xFFFFFF prefix.
	Fixed
)

func (f Frequency) String() string {
	switch f {
	case High:
		return "High"
	case Medium:
		return "Medium"
	case Low:
		return "Low"
	case Fixed:
		return "Fixed"
	default:
		return "INVALID"
	}
}

// MessageType is the full numeric identifier of a message.
//
// High frequency messages are 0x000000NN, medium ones 0x0000FFNN, low ones 0xFFFFNNNN and fixed ones 0xFFFFFFNN.
// This equals the octets written on the wire, read as a big endian number.
type MessageType uint32

const (
	TypeStartPingCheck    MessageType = 0x00000001
	TypeCompletePingCheck MessageType = 0x00000002
	TypeAgentUpdate       MessageType = 0x00000004
	TypeLayerData         MessageType = 0x0000000B

	TypeUseCircuitCode        MessageType = 0xFFFF0003
	TypeRegionHandshake       MessageType = 0xFFFF0094
	TypeRegionHandshakeReply  MessageType = 0xFFFF0095
	TypeCompleteAgentMovement MessageType = 0xFFFF00F9
	TypeAgentMovementComplete MessageType = 0xFFFF00FA

	TypePacketAck    MessageType = 0xFFFFFFFB
	TypeOpenCircuit  MessageType = 0xFFFFFFFC
	TypeCloseCircuit MessageType = 0xFFFFFFFD
)

// NewMessageType creates a MessageType from its frequency and number within this frequency.
func NewMessageType(freq Frequency, number uint16) (t MessageType, err error) {
	switch freq {
	case High:
		if number == 0 || number >= 0xFF {
			err = fmt.Errorf("high frequency number %d out of range", number)
			return
		}
		t = MessageType(number)

	case Medium:
		if number == 0 || number >= 0xFF {
			err = fmt.Errorf("medium frequency number %d out of range", number)
			return
		}
		t = MessageType(0xFF00 | uint32(number))

	case Low:
		t = MessageType(0xFFFF0000 | uint32(number))

	case Fixed:
		if number > 0xFF {
			err = fmt.Errorf("fixed number %d out of range", number)
			return
		}
		t = MessageType(0xFFFFFF00 | uint32(number))

	default:
		err = fmt.Errorf("invalid frequency %d", freq)
	}
	return
}

// Frequency of this MessageType.
func (t MessageType) Frequency() Frequency {
	switch {
	case t&0xFFFFFF00 == 0xFFFFFF00:
		return Fixed
	case t&0xFFFF0000 == 0xFFFF0000:
		return Low
	case t&0xFFFFFF00 == 0x0000FF00:
		return Medium
	default:
		return High
	}
}

// Number of this MessageType within its Frequency.
func (t MessageType) Number() uint16 {
	switch t.Frequency() {
	case Low:
		return uint16(t)
	default:
		return uint16(t & 0xFF)
	}
}

// Len is the amount of octets of this MessageType's wire representation.
func (t MessageType) Len() int {
	switch t.Frequency() {
	case High:
		return 1
	case Medium:
		return 2
	default:
		return 4
	}
}

// Bytes returns the wire representation.
func (t MessageType) Bytes() []byte {
	switch t.Frequency() {
	case High:
		return []byte{byte(t)}
	case Medium:
		return []byte{0xFF, byte(t)}
	default:
		return []byte{0xFF, 0xFF, byte(t >> 8), byte(t)}
	}
}

// WriteTo writes the wire representation into w.
func (t MessageType) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(t.Bytes())
	return int64(n), err
}

func (t MessageType) String() string {
	if info, ok := registry[t]; ok {
		return info.name
	}
	return fmt.Sprintf("%v(%d)", t.Frequency(), t.Number())
}

// ReadMessageType parses the next MessageType from the Reader.
func ReadMessageType(r io.Reader) (t MessageType, err error) {
	var buf = make([]byte, 4)

	if _, err = io.ReadFull(r, buf[:1]); err != nil {
		return
	} else if buf[0] != 0xFF {
		t = MessageType(buf[0])
		return
	}

	if _, err = io.ReadFull(r, buf[1:2]); err != nil {
		return
	} else if buf[1] != 0xFF {
		t = MessageType(0xFF00 | uint32(buf[1]))
		return
	}

	if _, err = io.ReadFull(r, buf[2:4]); err != nil {
		return
	}
	t = MessageType(0xFFFF0000 | uint32(buf[2])<<8 | uint32(buf[3]))
	return
}
