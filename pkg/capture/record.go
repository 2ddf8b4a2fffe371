// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package capture records a Circuit's datagrams into a file of CBOR records and reads them back.
package capture

import (
	"fmt"
	"io"
	"time"

	"github.com/dtn7/cboring"

	"github.com/dsrich/opensim-networking/pkg/circuit"
)

// Record of one datagram.
type Record struct {
	Direction circuit.Direction
	Timestamp time.Time
	Sequence  uint32
	Data      []byte
}

// MarshalCbor writes a CBOR array of direction, timestamp in nanoseconds, sequence number and the datagram.
func (rec *Record) MarshalCbor(w io.Writer) error {
	if err := cboring.WriteArrayLength(4, w); err != nil {
		return err
	}

	fields := []uint64{uint64(rec.Direction), uint64(rec.Timestamp.UnixNano()), uint64(rec.Sequence)}
	for _, field := range fields {
		if err := cboring.WriteUInt(field, w); err != nil {
			return err
		}
	}

	return cboring.WriteByteString(rec.Data, w)
}

// UnmarshalCbor reads a Record from its CBOR representation.
func (rec *Record) UnmarshalCbor(r io.Reader) error {
	if l, err := cboring.ReadArrayLength(r); err != nil {
		return err
	} else if l != 4 {
		return fmt.Errorf("wrong array length: %d instead of 4", l)
	}

	if n, err := cboring.ReadUInt(r); err != nil {
		return err
	} else if dir := circuit.Direction(n); dir != circuit.Inbound && dir != circuit.Outbound {
		return fmt.Errorf("invalid direction %d", n)
	} else {
		rec.Direction = dir
	}

	if n, err := cboring.ReadUInt(r); err != nil {
		return err
	} else {
		rec.Timestamp = time.Unix(0, int64(n))
	}

	if n, err := cboring.ReadUInt(r); err != nil {
		return err
	} else if n > 0xFFFFFFFF {
		return fmt.Errorf("sequence number %d exceeds 32 bit", n)
	} else {
		rec.Sequence = uint32(n)
	}

	if data, err := cboring.ReadByteString(r); err != nil {
		return err
	} else {
		rec.Data = data
	}

	return nil
}

// Packet decodes the recorded datagram.
func (rec Record) Packet(codec circuit.Codec) (circuit.Packet, error) {
	return codec.Decode(rec.Data)
}

func (rec Record) String() string {
	return fmt.Sprintf("Record(%v, %s, seq=%d, %d octets)",
		rec.Direction, rec.Timestamp.Format("15:04:05.000"), rec.Sequence, len(rec.Data))
}
