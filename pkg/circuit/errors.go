// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package circuit

import (
	"errors"
	"fmt"

	"github.com/dsrich/opensim-networking/pkg/messages"
)

var (
	// ErrTimeout is wrapped if a reliable send was not acknowledged or a Read received no message in time.
	ErrTimeout = errors.New("timed out")

	// ErrClosed is wrapped if an operation was started on or interrupted by a closed Circuit.
	ErrClosed = errors.New("circuit closed")

	// ErrCancelled is wrapped by pending reliable sends when their Circuit was closed.
	ErrCancelled = errors.New("cancelled")

	// ErrWrongHandler should be returned by a MessageHandler which received a message it cannot handle.
	ErrWrongHandler = errors.New("wrong handler for message")
)

// ConnectError is returned if a Circuit could not be established.
type ConnectError struct {
	Address string
	Err     error
}

func (ce *ConnectError) Error() string {
	return fmt.Sprintf("connecting to %s failed: %v", ce.Address, ce.Err)
}

func (ce *ConnectError) Unwrap() error {
	return ce.Err
}

// SendMessageError describes a failed send. Err is either ErrTimeout, ErrCancelled, ErrClosed or an error of the
// underlying Transport or Codec.
type SendMessageError struct {
	Type     messages.MessageType
	Sequence uint32
	Attempts int
	Err      error
}

func (sme *SendMessageError) Error() string {
	if errors.Is(sme.Err, ErrTimeout) {
		return fmt.Sprintf("sending %v (seq %d) failed: no acknowledgement after %d attempts",
			sme.Type, sme.Sequence, sme.Attempts)
	}
	return fmt.Sprintf("sending %v (seq %d) failed: %v", sme.Type, sme.Sequence, sme.Err)
}

func (sme *SendMessageError) Unwrap() error {
	return sme.Err
}

// ReadMessageError describes a failed Read. Err is ErrTimeout, ErrClosed or a context's error.
type ReadMessageError struct {
	Err error
}

func (rme *ReadMessageError) Error() string {
	return fmt.Sprintf("reading message failed: %v", rme.Err)
}

func (rme *ReadMessageError) Unwrap() error {
	return rme.Err
}
