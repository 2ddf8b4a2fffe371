// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package circuit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"

	"github.com/dsrich/opensim-networking/pkg/messages"
)

// Circuit is the connection to one simulator. It is safe for concurrent use.
type Circuit struct {
	config    Config
	codec     Codec
	transport Transport
	logger    *log.Entry

	// mutex guards all following fields until the next empty line.
	mutex    sync.Mutex
	nextSeq  uint32
	pending  map[uint32]*pendingSend
	seen     *seenInbound
	ackQueue []uint32
	ackTimer *time.Timer
	handlers MessageHandlers
	waiter   chan messages.Message
	stats    Stats
	closed   bool
	err      error

	readSem chan struct{}

	stopSyn chan struct{}
	stopAck chan struct{}
}

// Initiate a Circuit towards the simulator addressed by the ConnectInfo.
//
// No messages are exchanged, the UDP socket is just opened. The handlers are copied into the new Circuit. If the
// logger is nil, the standard logger is used.
func Initiate(info ConnectInfo, config Config, handlers MessageHandlers, logger *log.Entry) (*Circuit, error) {
	if err := config.Validate(); err != nil {
		return nil, &ConnectError{Address: info.Address(), Err: err}
	}

	transport, err := DialUDP(info.Address())
	if err != nil {
		return nil, &ConnectError{Address: info.Address(), Err: err}
	}

	if logger == nil {
		logger = log.WithField("circuit", info.Address())
	}

	c, err := NewCircuit(transport, config, handlers, logger)
	if err != nil {
		_ = transport.Close()
		return nil, &ConnectError{Address: info.Address(), Err: err}
	}

	c.log().WithField("agent", info.AgentID).Info("Initiated circuit")
	return c, nil
}

// NewCircuit on top of an existing Transport, which will be owned by the Circuit from now on.
func NewCircuit(transport Transport, config Config, handlers MessageHandlers, logger *log.Entry) (*Circuit, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if config.Catalog == nil {
		config.Catalog = messages.NewCatalog()
	}
	if logger == nil {
		name := "circuit"
		if stringer, ok := transport.(fmt.Stringer); ok {
			name = stringer.String()
		}
		logger = log.WithField("circuit", name)
	}

	c := &Circuit{
		config:    config,
		codec:     NewCodec(config.Catalog),
		transport: transport,
		logger:    logger,

		pending:  make(map[uint32]*pendingSend),
		seen:     newSeenInbound(config.SeenHorizon, config.SeenCapacity),
		handlers: make(MessageHandlers, len(handlers)),

		readSem: make(chan struct{}, 1),

		stopSyn: make(chan struct{}),
		stopAck: make(chan struct{}),
	}

	for t, handler := range handlers {
		c.handlers[t] = handler
	}

	go c.handle()

	return c, nil
}

func (c *Circuit) log() *log.Entry {
	return c.logger
}

// Send a message. The returned SendResult resolves as soon as the message was transmitted for an unreliable send,
// or when an acknowledgement arrived or all attempts failed for a reliable send.
func (c *Circuit) Send(msg messages.Message, reliable bool) *SendResult {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.sendLocked(msg, reliable)
}

// sendLocked requires the caller to hold the mutex.
func (c *Circuit) sendLocked(msg messages.Message, reliable bool) *SendResult {
	result := newSendResult()

	if c.closed {
		result.resolve(&SendMessageError{Type: msg.Type(), Err: ErrClosed})
		return result
	}

	packet := Packet{
		Sequence: c.allocSequence(),
		Reliable: reliable,
		Acks:     c.takeAcks(c.config.MaxPiggybackAcks),
		Message:  msg,
	}

	data, err := c.codec.Encode(packet)
	if err != nil {
		c.requeueAcksLocked(packet.Acks)
		result.resolve(&SendMessageError{Type: msg.Type(), Sequence: packet.Sequence, Err: err})
		return result
	}

	if err := c.transmitLocked(&packet, data); err != nil {
		c.requeueAcksLocked(packet.Acks)
		c.log().WithError(err).WithField("message", msg.Type()).Warn("Transmitting message failed")
		result.resolve(&SendMessageError{Type: msg.Type(), Sequence: packet.Sequence, Attempts: 1, Err: err})
		return result
	}
	c.stats.Sent++

	if !reliable {
		result.resolve(nil)
		return result
	}

	ps := &pendingSend{
		packet:   packet,
		data:     data,
		attempts: 1,
		deadline: time.Now().Add(c.config.SendTimeout),
		result:   result,
	}
	ps.timer = time.AfterFunc(c.config.SendTimeout, func() { c.retransmit(packet.Sequence) })
	c.pending[packet.Sequence] = ps

	c.log().WithFields(log.Fields{
		"message":  msg.Type(),
		"sequence": packet.Sequence,
	}).Debug("Sent reliable message")

	return result
}

// allocSequence returns the next outbound sequence number. Zero is skipped on wraparound.
func (c *Circuit) allocSequence() uint32 {
	c.nextSeq++
	if c.nextSeq == 0 {
		c.nextSeq = 1
	}
	return c.nextSeq
}

func (c *Circuit) transmitLocked(packet *Packet, data []byte) error {
	if c.config.Tracer != nil {
		c.config.Tracer.TracePacket(Outbound, packet, data)
	}
	return c.transport.Send(data)
}

// retransmit is called by a pending send's timer.
func (c *Circuit) retransmit(seq uint32) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	ps, ok := c.pending[seq]
	if !ok || c.closed {
		return
	}

	logger := c.log().WithFields(log.Fields{
		"message":  ps.packet.Message.Type(),
		"sequence": seq,
		"attempts": ps.attempts,
	})

	if ps.attempts >= c.config.SendAttempts {
		delete(c.pending, seq)
		c.stats.Failed++
		logger.Info("Reliable message was not acknowledged")

		ps.result.resolve(&SendMessageError{
			Type:     ps.packet.Message.Type(),
			Sequence: seq,
			Attempts: ps.attempts,
			Err:      ErrTimeout,
		})
		return
	}

	ps.packet.Resent = true
	markResent(ps.data)
	ps.attempts++

	if err := c.transmitLocked(&ps.packet, ps.data); err != nil {
		delete(c.pending, seq)
		logger.WithError(err).Warn("Retransmitting message failed")

		ps.result.resolve(&SendMessageError{
			Type:     ps.packet.Message.Type(),
			Sequence: seq,
			Attempts: ps.attempts,
			Err:      err,
		})
		return
	}
	c.stats.Resent++
	logger.Debug("Retransmitted reliable message")

	ps.deadline = time.Now().Add(c.config.SendTimeout)
	ps.timer = time.AfterFunc(c.config.SendTimeout, func() { c.retransmit(seq) })
}

// acknowledgeLocked resolves the pending sends for the acknowledged sequence numbers.
func (c *Circuit) acknowledgeLocked(acks []uint32) {
	for _, seq := range acks {
		ps, ok := c.pending[seq]
		if !ok {
			continue
		}

		delete(c.pending, seq)
		ps.timer.Stop()
		c.stats.Acked++

		ps.result.resolve(nil)
	}
}

// takeAcks removes up to n queued acknowledgements.
func (c *Circuit) takeAcks(n int) (acks []uint32) {
	if n > len(c.ackQueue) {
		n = len(c.ackQueue)
	}
	if n == 0 {
		return nil
	}

	acks = make([]uint32, n)
	copy(acks, c.ackQueue)
	c.ackQueue = c.ackQueue[n:]

	if len(c.ackQueue) == 0 && c.ackTimer != nil {
		c.ackTimer.Stop()
		c.ackTimer = nil
	}
	return
}

// queueAckLocked schedules an acknowledgement, which is either appended to the next outgoing packet or flushed.
func (c *Circuit) queueAckLocked(seq uint32) {
	c.ackQueue = append(c.ackQueue, seq)
	c.armAckTimerLocked()
}

// requeueAcksLocked puts acknowledgements of a failed transmission back in front of the queue.
func (c *Circuit) requeueAcksLocked(acks []uint32) {
	if len(acks) == 0 {
		return
	}

	c.ackQueue = append(append([]uint32(nil), acks...), c.ackQueue...)
	c.armAckTimerLocked()
}

// armAckTimerLocked starts the flush timer for queued acknowledgements. No timer is started for a closed Circuit.
func (c *Circuit) armAckTimerLocked() {
	if c.closed || c.ackTimer != nil || len(c.ackQueue) == 0 {
		return
	}
	c.ackTimer = time.AfterFunc(c.config.AckFlushInterval, c.flushAcks)
}

// flushAcks sends all queued acknowledgements within standalone PacketAck messages.
func (c *Circuit) flushAcks() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.ackTimer = nil

	for !c.closed && len(c.ackQueue) > 0 {
		ids := c.takeAcks(maxAcks)
		if err := c.sendLocked(messages.NewPacketAck(ids), false).Err(); err != nil {
			c.log().WithError(err).Warn("Sending acknowledgements failed, retrying later")
			c.requeueAcksLocked(ids)
			return
		}
	}
}

// handle the receive path until the Circuit is closed or the Transport fails.
func (c *Circuit) handle() {
	defer close(c.stopAck)

	for {
		data, err := c.transport.Receive()
		if err != nil {
			select {
			case <-c.stopSyn:
				c.log().Debug("Receive path stopped")

			default:
				c.log().WithError(err).Error("Receiving failed, terminating circuit")
				c.teardown(err)
				_ = c.transport.Close()
			}
			return
		}

		c.receive(data)
	}
}

// receive processes one inbound datagram.
func (c *Circuit) receive(data []byte) {
	packet, err := c.codec.Decode(data)

	c.mutex.Lock()

	// The receive path might still deliver a datagram between teardown and the Transport's closing.
	if c.closed {
		c.mutex.Unlock()
		return
	}

	if c.config.Tracer != nil {
		if err != nil {
			c.config.Tracer.TracePacket(Inbound, nil, data)
		} else {
			c.config.Tracer.TracePacket(Inbound, &packet, data)
		}
	}

	if err != nil {
		c.stats.Undecodable++
		c.mutex.Unlock()

		c.log().WithError(err).WithField("length", len(data)).Warn("Dropping undecodable datagram")
		return
	}
	c.stats.Received++

	c.acknowledgeLocked(packet.Acks)

	if packet.Reliable {
		c.queueAckLocked(packet.Sequence)

		if c.seen.observe(packet.Sequence, time.Now()) {
			c.stats.Duplicates++
			c.mutex.Unlock()

			c.log().WithField("sequence", packet.Sequence).Debug("Dropping duplicate packet")
			return
		}
	}

	if ack, ok := packet.Message.(*messages.PacketAck); ok {
		c.acknowledgeLocked(ack.IDs())
		c.mutex.Unlock()
		return
	}

	c.mutex.Unlock()

	c.dispatch(packet.Message)
}

// Read blocks until the next message is delivered to this reader. A timeout of zero or less waits without limit.
//
// While a Read call is waiting, it receives messages in favor of registered handlers. Concurrent calls are
// serialized.
func (c *Circuit) Read(timeout time.Duration) (messages.Message, error) {
	if timeout <= 0 {
		return c.ReadContext(context.Background())
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return c.ReadContext(ctx)
}

// ReadContext is like Read, but waits until the context is done.
func (c *Circuit) ReadContext(ctx context.Context) (messages.Message, error) {
	select {
	case c.readSem <- struct{}{}:
		defer func() { <-c.readSem }()

	case <-c.stopSyn:
		return nil, &ReadMessageError{Err: ErrClosed}

	case <-ctx.Done():
		return nil, &ReadMessageError{Err: readCtxErr(ctx)}
	}

	waiter := make(chan messages.Message, 1)

	c.mutex.Lock()
	if c.closed {
		c.mutex.Unlock()
		return nil, &ReadMessageError{Err: ErrClosed}
	}
	c.waiter = waiter
	c.mutex.Unlock()

	select {
	case msg := <-waiter:
		return msg, nil

	case <-c.stopSyn:
		return nil, &ReadMessageError{Err: ErrClosed}

	case <-ctx.Done():
		c.mutex.Lock()
		if c.waiter == waiter {
			c.waiter = nil
		}
		c.mutex.Unlock()

		// A message might have been delivered right before the waiter was unregistered.
		select {
		case msg := <-waiter:
			return msg, nil
		default:
			return nil, &ReadMessageError{Err: readCtxErr(ctx)}
		}
	}
}

func readCtxErr(ctx context.Context) error {
	if ctx.Err() == context.DeadlineExceeded {
		return ErrTimeout
	}
	return ctx.Err()
}

// teardown marks the Circuit as closed, cancels all pending sends and wakes a waiting reader. It returns false if
// the Circuit was already torn down.
func (c *Circuit) teardown(cause error) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return false
	}

	c.closed = true
	c.err = cause

	for seq, ps := range c.pending {
		ps.timer.Stop()
		ps.result.resolve(&SendMessageError{
			Type:     ps.packet.Message.Type(),
			Sequence: seq,
			Attempts: ps.attempts,
			Err:      ErrCancelled,
		})
	}
	c.pending = make(map[uint32]*pendingSend)

	if c.ackTimer != nil {
		c.ackTimer.Stop()
		c.ackTimer = nil
	}
	c.ackQueue = nil
	c.waiter = nil

	close(c.stopSyn)
	return true
}

// Close this Circuit. All pending sends fail with ErrCancelled, a waiting Read returns ErrClosed and the Transport is
// closed. Close must not be called from within a MessageHandler.
func (c *Circuit) Close() (err error) {
	if c.teardown(nil) {
		c.log().Info("Closing circuit")

		if closeErr := c.transport.Close(); closeErr != nil {
			err = multierror.Append(err, closeErr)
		}
	}

	<-c.stopAck
	return
}

// Done returns a channel which is closed after the Circuit was torn down.
func (c *Circuit) Done() <-chan struct{} {
	return c.stopSyn
}

// Err returns the Transport's error which terminated this Circuit, or nil.
func (c *Circuit) Err() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.err
}

// Stats returns a snapshot of this Circuit's counters.
func (c *Circuit) Stats() Stats {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	stats := c.stats
	stats.Pending = len(c.pending)
	return stats
}
