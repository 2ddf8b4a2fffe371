// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package circuit

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/dsrich/opensim-networking/pkg/messages"
)

const (
	flagZerocoded byte = 0x80
	flagReliable  byte = 0x40
	flagResent    byte = 0x20
	flagAcks      byte = 0x10

	// headerLen is the length of the fixed header: flags, sequence number and extra header length.
	headerLen = 6

	// maxAcks is the maximum amount of acknowledgements appended to one packet.
	maxAcks = math.MaxUint8
)

// Packet is the wire envelope around exactly one message.
type Packet struct {
	Sequence  uint32
	Reliable  bool
	Resent    bool
	Zerocoded bool

	// Acks contains the sequence numbers acknowledged by this packet.
	Acks []uint32

	Message messages.Message
}

func (p Packet) String() string {
	var b strings.Builder

	_, _ = fmt.Fprintf(&b, "Packet(seq=%d, ", p.Sequence)
	if p.Message != nil {
		_, _ = fmt.Fprintf(&b, "message=%v, ", p.Message.Type())
	}
	if p.Reliable {
		_, _ = fmt.Fprintf(&b, "reliable, ")
	}
	if p.Resent {
		_, _ = fmt.Fprintf(&b, "resent, ")
	}
	_, _ = fmt.Fprintf(&b, "acks=%v)", p.Acks)

	return b.String()
}

// Catalog maps message types to their bodies' encoding. It is implemented by *messages.Catalog.
type Catalog interface {
	Decode(t messages.MessageType, body []byte) (messages.Message, error)
	Encode(msg messages.Message) (messages.MessageType, []byte, error)
	IsZerocoded(t messages.MessageType) bool
}

// DecodeErrorKind classifies why a datagram could not be decoded.
type DecodeErrorKind int

const (
	// Truncated datagrams are shorter than their header or trailer claims.
	Truncated DecodeErrorKind = iota

	// UnknownMessageType is reported for message types missing in the Catalog.
	UnknownMessageType

	// MalformedBody is reported if the Catalog rejected the message's body.
	MalformedBody
)

func (kind DecodeErrorKind) String() string {
	switch kind {
	case Truncated:
		return "truncated"
	case UnknownMessageType:
		return "unknown message type"
	case MalformedBody:
		return "malformed body"
	default:
		return "INVALID"
	}
}

// DecodeError is returned by the Codec for an undecodable datagram.
type DecodeError struct {
	Kind  DecodeErrorKind
	Cause error
}

func (de *DecodeError) Error() string {
	if de.Cause == nil {
		return fmt.Sprintf("decoding packet failed: %v", de.Kind)
	}
	return fmt.Sprintf("decoding packet failed: %v: %v", de.Kind, de.Cause)
}

func (de *DecodeError) Unwrap() error {
	return de.Cause
}

func newDecodeError(kind DecodeErrorKind, format string, a ...interface{}) *DecodeError {
	return &DecodeError{Kind: kind, Cause: fmt.Errorf(format, a...)}
}

// Codec converts Packets from and to datagrams. A Codec is stateless and might be used concurrently.
type Codec struct {
	Catalog Catalog
}

// NewCodec for the given Catalog.
func NewCodec(catalog Catalog) Codec {
	return Codec{Catalog: catalog}
}

// Encode a Packet into a datagram.
//
// The message is zero-coded if its type is marked as such in the Catalog and the zero-coding shrinks it.
// Errors are only returned for messages which cannot be marshalled or too many acknowledgements.
func (codec Codec) Encode(p Packet) ([]byte, error) {
	if p.Message == nil {
		return nil, fmt.Errorf("packet %d has no message", p.Sequence)
	}
	if len(p.Acks) > maxAcks {
		return nil, fmt.Errorf("%d acknowledgements exceed the maximum of %d", len(p.Acks), maxAcks)
	}

	msgType, body, err := codec.Catalog.Encode(p.Message)
	if err != nil {
		return nil, err
	}

	payload := make([]byte, 0, msgType.Len()+len(body))
	payload = append(payload, msgType.Bytes()...)
	payload = append(payload, body...)

	var flags byte
	if p.Reliable {
		flags |= flagReliable
	}
	if p.Resent {
		flags |= flagResent
	}
	if codec.Catalog.IsZerocoded(msgType) {
		if zc := zeroEncode(payload); len(zc) < len(payload) {
			payload = zc
			flags |= flagZerocoded
		}
	}
	if len(p.Acks) > 0 {
		flags |= flagAcks
	}

	buff := bytes.NewBuffer(make([]byte, 0, headerLen+len(payload)+4*len(p.Acks)+1))
	buff.WriteByte(flags)
	_ = binary.Write(buff, binary.BigEndian, p.Sequence)
	buff.WriteByte(0)
	buff.Write(payload)

	if len(p.Acks) > 0 {
		for _, ack := range p.Acks {
			_ = binary.Write(buff, binary.BigEndian, ack)
		}
		buff.WriteByte(byte(len(p.Acks)))
	}

	return buff.Bytes(), nil
}

// Decode a datagram into a Packet. Errors are always of the type *DecodeError.
func (codec Codec) Decode(data []byte) (p Packet, err error) {
	if len(data) < headerLen {
		err = newDecodeError(Truncated, "%d octets are shorter than the header", len(data))
		return
	}

	flags := data[0]
	p.Sequence = binary.BigEndian.Uint32(data[1:5])
	p.Reliable = flags&flagReliable != 0
	p.Resent = flags&flagResent != 0
	p.Zerocoded = flags&flagZerocoded != 0

	start := headerLen + int(data[5])
	end := len(data)
	if start > end {
		err = newDecodeError(Truncated, "extra header of %d octets exceeds the datagram", data[5])
		return
	}

	if flags&flagAcks != 0 {
		if end <= start {
			err = newDecodeError(Truncated, "missing acknowledgement count")
			return
		}

		ackCount := int(data[end-1])
		ackStart := end - 1 - 4*ackCount
		if ackStart < start {
			err = newDecodeError(Truncated, "%d acknowledgements exceed the datagram", ackCount)
			return
		}

		p.Acks = make([]uint32, ackCount)
		for i := range p.Acks {
			p.Acks[i] = binary.BigEndian.Uint32(data[ackStart+4*i:])
		}
		end = ackStart
	}

	payload := data[start:end]
	if p.Zerocoded {
		if payload, err = zeroDecode(payload); err != nil {
			err = &DecodeError{Kind: Truncated, Cause: err}
			return
		}
	}

	payloadReader := bytes.NewReader(payload)
	msgType, typeErr := messages.ReadMessageType(payloadReader)
	if typeErr != nil {
		err = newDecodeError(Truncated, "reading message type failed: %v", typeErr)
		return
	}

	body := payload[len(payload)-payloadReader.Len():]
	if p.Message, err = codec.Catalog.Decode(msgType, body); err != nil {
		kind := MalformedBody
		if errors.Is(err, messages.ErrUnknownMessageType) {
			kind = UnknownMessageType
		}
		err = &DecodeError{Kind: kind, Cause: err}
		return
	}

	return
}

// markResent sets the resent flag of an encoded datagram.
func markResent(data []byte) {
	if len(data) > 0 {
		data[0] |= flagResent
	}
}
