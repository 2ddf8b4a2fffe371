// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package capture

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dtn7/cboring"
	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"

	"github.com/dsrich/opensim-networking/pkg/circuit"
)

// Recorder is a circuit.PacketTracer, which writes a Record for each datagram.
//
// Write errors are logged once. Afterwards, the Recorder discards all further datagrams.
type Recorder struct {
	mutex  sync.Mutex
	writer *bufio.Writer
	closer io.Closer
	count  uint64
	err    error
}

// NewRecorder writing into w. If w is an io.Closer, it will be closed by Close.
func NewRecorder(w io.Writer) *Recorder {
	rec := &Recorder{writer: bufio.NewWriter(w)}
	if closer, ok := w.(io.Closer); ok {
		rec.closer = closer
	}
	return rec
}

// CreateRecorder writing into a newly created or truncated file.
func CreateRecorder(path string) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return NewRecorder(f), nil
}

// TracePacket records a datagram.
func (rec *Recorder) TracePacket(dir circuit.Direction, packet *circuit.Packet, raw []byte) {
	record := Record{
		Direction: dir,
		Timestamp: time.Now(),
		Data:      append([]byte(nil), raw...),
	}

	if packet != nil {
		record.Sequence = packet.Sequence
	} else if len(raw) >= 5 {
		record.Sequence = binary.BigEndian.Uint32(raw[1:5])
	}

	rec.mutex.Lock()
	defer rec.mutex.Unlock()

	if rec.err != nil {
		return
	}

	if err := cboring.Marshal(&record, rec.writer); err != nil {
		rec.err = err
		log.WithError(err).Warn("Recording datagram failed, stopping capture")
		return
	}
	rec.count++
}

// Count of written Records.
func (rec *Recorder) Count() uint64 {
	rec.mutex.Lock()
	defer rec.mutex.Unlock()

	return rec.count
}

// Flush buffered Records.
func (rec *Recorder) Flush() error {
	rec.mutex.Lock()
	defer rec.mutex.Unlock()

	return rec.writer.Flush()
}

// Close flushes all Records and closes the underlying writer.
func (rec *Recorder) Close() (err error) {
	rec.mutex.Lock()
	defer rec.mutex.Unlock()

	if flushErr := rec.writer.Flush(); flushErr != nil {
		err = multierror.Append(err, flushErr)
	}
	if rec.closer != nil {
		if closeErr := rec.closer.Close(); closeErr != nil {
			err = multierror.Append(err, closeErr)
		}
	}
	return
}
