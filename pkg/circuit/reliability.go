// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package circuit

import (
	"context"
	"sync"
	"time"
)

// SendResult is the completion handle of a send. It resolves exactly once: for a reliable send when its
// acknowledgement arrived or all attempts failed, for an unreliable send after its transmission.
type SendResult struct {
	done chan struct{}
	once sync.Once
	err  error
}

func newSendResult() *SendResult {
	return &SendResult{done: make(chan struct{})}
}

func (sr *SendResult) resolve(err error) {
	sr.once.Do(func() {
		sr.err = err
		close(sr.done)
	})
}

// Done returns a channel which is closed when this SendResult is resolved.
func (sr *SendResult) Done() <-chan struct{} {
	return sr.done
}

// Err returns the outcome. This is nil both for a successful send and for an unresolved one, check Done first.
func (sr *SendResult) Err() error {
	select {
	case <-sr.done:
		return sr.err
	default:
		return nil
	}
}

// Wait blocks until this SendResult is resolved and returns its outcome.
func (sr *SendResult) Wait() error {
	<-sr.done
	return sr.err
}

// WaitContext blocks until this SendResult is resolved or the context is done.
func (sr *SendResult) WaitContext(ctx context.Context) error {
	select {
	case <-sr.done:
		return sr.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pendingSend is an unacknowledged reliable packet.
type pendingSend struct {
	packet   Packet
	data     []byte
	attempts int
	deadline time.Time
	timer    *time.Timer
	result   *SendResult
}

// seenEntry is one inbound sequence number with its arrival.
type seenEntry struct {
	seq uint32
	at  time.Time
}

// seenInbound remembers recently dispatched sequence numbers. Entries are forgotten after the horizon or when the
// capacity is exceeded, oldest first.
type seenInbound struct {
	horizon  time.Duration
	capacity int

	entries map[uint32]time.Time
	order   []seenEntry
}

func newSeenInbound(horizon time.Duration, capacity int) *seenInbound {
	return &seenInbound{
		horizon:  horizon,
		capacity: capacity,
		entries:  make(map[uint32]time.Time),
	}
}

// observe a sequence number and report if it was already seen.
func (si *seenInbound) observe(seq uint32, now time.Time) (duplicate bool) {
	si.expire(now)

	if _, duplicate = si.entries[seq]; duplicate {
		return
	}

	si.entries[seq] = now
	si.order = append(si.order, seenEntry{seq: seq, at: now})

	for len(si.entries) > si.capacity {
		si.dropOldest()
	}
	return
}

func (si *seenInbound) expire(now time.Time) {
	for len(si.order) > 0 && now.Sub(si.order[0].at) > si.horizon {
		si.dropOldest()
	}
}

func (si *seenInbound) dropOldest() {
	oldest := si.order[0]
	si.order = si.order[1:]

	if at, ok := si.entries[oldest.seq]; ok && at.Equal(oldest.at) {
		delete(si.entries, oldest.seq)
	}
}

func (si *seenInbound) len() int {
	return len(si.entries)
}
