// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package messages

import (
	"bytes"
	"testing"
)

func TestMessageTypeWire(t *testing.T) {
	tests := []struct {
		t      MessageType
		freq   Frequency
		number uint16
		data   []byte
	}{
		{TypeStartPingCheck, High, 1, []byte{0x01}},
		{TypeLayerData, High, 11, []byte{0x0B}},
		{MessageType(0xFF05), Medium, 5, []byte{0xFF, 0x05}},
		{TypeUseCircuitCode, Low, 3, []byte{0xFF, 0xFF, 0x00, 0x03}},
		{TypeRegionHandshake, Low, 148, []byte{0xFF, 0xFF, 0x00, 0x94}},
		{MessageType(0xFFFF0123), Low, 0x123, []byte{0xFF, 0xFF, 0x01, 0x23}},
		{TypePacketAck, Fixed, 0xFB, []byte{0xFF, 0xFF, 0xFF, 0xFB}},
	}

	for _, test := range tests {
		if freq := test.t.Frequency(); freq != test.freq {
			t.Fatalf("%v: frequency %v instead of %v", test.t, freq, test.freq)
		}
		if number := test.t.Number(); number != test.number {
			t.Fatalf("%v: number %d instead of %d", test.t, number, test.number)
		}
		if l := test.t.Len(); l != len(test.data) {
			t.Fatalf("%v: length %d instead of %d", test.t, l, len(test.data))
		}

		buf := new(bytes.Buffer)
		if _, err := test.t.WriteTo(buf); err != nil {
			t.Fatal(err)
		} else if !bytes.Equal(buf.Bytes(), test.data) {
			t.Fatalf("%v: wrote %x instead of %x", test.t, buf.Bytes(), test.data)
		}

		if readType, err := ReadMessageType(buf); err != nil {
			t.Fatal(err)
		} else if readType != test.t {
			t.Fatalf("read %v instead of %v", readType, test.t)
		}
	}
}

func TestNewMessageType(t *testing.T) {
	tests := []struct {
		freq   Frequency
		number uint16
		t      MessageType
		valid  bool
	}{
		{High, 4, TypeAgentUpdate, true},
		{High, 0, 0, false},
		{High, 0xFF, 0, false},
		{Medium, 5, MessageType(0xFF05), true},
		{Low, 249, TypeCompleteAgentMovement, true},
		{Fixed, 0xFD, TypeCloseCircuit, true},
		{Fixed, 0x100, 0, false},
		{Frequency(23), 1, 0, false},
	}

	for _, test := range tests {
		mt, err := NewMessageType(test.freq, test.number)
		if (err == nil) != test.valid {
			t.Fatalf("%v/%d: valid := %t, got %v", test.freq, test.number, test.valid, err)
		} else if test.valid && mt != test.t {
			t.Fatalf("%v/%d: got %v instead of %v", test.freq, test.number, mt, test.t)
		}
	}
}

func TestReadMessageTypeTruncated(t *testing.T) {
	for _, data := range [][]byte{{}, {0xFF}, {0xFF, 0xFF}, {0xFF, 0xFF, 0x00}} {
		if _, err := ReadMessageType(bytes.NewReader(data)); err == nil {
			t.Fatalf("reading %x did not error", data)
		}
	}
}

func TestMessageTypeString(t *testing.T) {
	if s := TypeRegionHandshake.String(); s != "RegionHandshake" {
		t.Fatalf("got %q", s)
	}
	if s := MessageType(0xFFFF0123).String(); s != "Low(291)" {
		t.Fatalf("got %q", s)
	}
}
