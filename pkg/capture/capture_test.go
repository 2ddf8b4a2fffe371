// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package capture

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/dtn7/cboring"

	"github.com/dsrich/opensim-networking/pkg/circuit"
	"github.com/dsrich/opensim-networking/pkg/messages"
)

func TestRecordCbor(t *testing.T) {
	rec := Record{
		Direction: circuit.Outbound,
		Timestamp: time.Unix(0, 1700000000123456789),
		Sequence:  0xFFFFFFFE,
		Data:      []byte{0x40, 0xFF, 0xFF, 0xFF, 0xFE, 0x00, 0xFF, 0xFF, 0xFF, 0xFD},
	}

	buff := new(bytes.Buffer)
	if err := cboring.Marshal(&rec, buff); err != nil {
		t.Fatal(err)
	}

	var rec2 Record
	if err := cboring.Unmarshal(&rec2, buff); err != nil {
		t.Fatal(err)
	}

	if !rec.Timestamp.Equal(rec2.Timestamp) {
		t.Fatalf("timestamp %v became %v", rec.Timestamp, rec2.Timestamp)
	}
	rec2.Timestamp = rec.Timestamp

	if !reflect.DeepEqual(rec, rec2) {
		t.Fatalf("%v became %v", rec, rec2)
	}
}

func TestRecordCborInvalid(t *testing.T) {
	tests := [][]byte{
		// array of three
		{0x83, 0x00, 0x00, 0x00},
		// invalid direction
		{0x84, 0x05, 0x00, 0x00, 0x40},
		// missing byte string
		{0x84, 0x00, 0x00, 0x00},
	}

	for _, test := range tests {
		var rec Record
		if err := cboring.Unmarshal(&rec, bytes.NewBuffer(test)); err == nil {
			t.Fatalf("%x was unmarshalled", test)
		}
	}
}

func TestRecorderReader(t *testing.T) {
	codec := circuit.NewCodec(messages.NewCatalog())

	outbound := circuit.Packet{
		Sequence: 1,
		Reliable: true,
		Message:  &messages.CompletePingCheck{PingID: messages.CompletePingCheckPingID{PingID: 3}},
	}
	outData, err := codec.Encode(outbound)
	if err != nil {
		t.Fatal(err)
	}

	undecodable := []byte{0x00, 0x00, 0x00, 0x00, 0x07, 0x00, 0x7E}

	buff := new(bytes.Buffer)
	recorder := NewRecorder(buff)
	recorder.TracePacket(circuit.Outbound, &outbound, outData)
	recorder.TracePacket(circuit.Inbound, nil, undecodable)

	if err := recorder.Flush(); err != nil {
		t.Fatal(err)
	}
	if n := recorder.Count(); n != 2 {
		t.Fatalf("recorded %d datagrams", n)
	}

	records, err := NewReader(buff).ReadAll()
	if err != nil {
		t.Fatal(err)
	} else if len(records) != 2 {
		t.Fatalf("read %d records", len(records))
	}

	if records[0].Direction != circuit.Outbound || records[0].Sequence != 1 {
		t.Fatalf("unexpected record %v", records[0])
	}
	if p, err := records[0].Packet(codec); err != nil {
		t.Fatal(err)
	} else if !reflect.DeepEqual(p.Message, outbound.Message) {
		t.Fatalf("unexpected message %v", p.Message)
	}

	// Undecodable datagrams keep their sequence number.
	if records[1].Direction != circuit.Inbound || records[1].Sequence != 7 {
		t.Fatalf("unexpected record %v", records[1])
	}
	var decodeErr *circuit.DecodeError
	if _, err := records[1].Packet(codec); !errors.As(err, &decodeErr) || decodeErr.Kind != circuit.UnknownMessageType {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestRecorderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.cbor")

	recorder, err := CreateRecorder(path)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		recorder.TracePacket(circuit.Inbound, nil, []byte{0x00, 0x00, 0x00, 0x00, byte(i), 0x00})
	}
	if err := recorder.Close(); err != nil {
		t.Fatal(err)
	}

	file, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	reader := file.Reader
	for i := 0; i < 10; i++ {
		if rec, err := reader.ReadRecord(); err != nil {
			t.Fatal(err)
		} else if rec.Sequence != uint32(i) {
			t.Fatalf("record %d has sequence number %d", i, rec.Sequence)
		}
	}

	if _, err := reader.ReadRecord(); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestReaderTruncated(t *testing.T) {
	buff := new(bytes.Buffer)

	recorder := NewRecorder(buff)
	recorder.TracePacket(circuit.Inbound, nil, []byte{0x01, 0x02, 0x03})
	if err := recorder.Flush(); err != nil {
		t.Fatal(err)
	}

	data := buff.Bytes()
	if _, err := NewReader(bytes.NewReader(data[:1])).ReadRecord(); err == nil || err == io.EOF {
		t.Fatalf("truncated record resulted in %v", err)
	}
}
