// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package circuit

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dsrich/opensim-networking/pkg/messages"
)

// mockTransport is an in-memory Transport. Datagrams sent by the Circuit are queued in outbound, datagrams put
// into inbound are received by the Circuit. Errors put into sendErrs fail the next Send calls.
type mockTransport struct {
	inbound  chan []byte
	outbound chan []byte
	errs     chan error
	sendErrs chan error

	closed    chan struct{}
	closeOnce sync.Once
}

func newMockTransport() *mockTransport {
	return &mockTransport{
		inbound:  make(chan []byte, 64),
		outbound: make(chan []byte, 1024),
		errs:     make(chan error, 1),
		sendErrs: make(chan error, 4),
		closed:   make(chan struct{}),
	}
}

func (mt *mockTransport) Send(data []byte) error {
	select {
	case <-mt.closed:
		return errors.New("mock transport is closed")
	case err := <-mt.sendErrs:
		return err
	default:
	}

	buff := make([]byte, len(data))
	copy(buff, data)
	mt.outbound <- buff
	return nil
}

func (mt *mockTransport) Receive() ([]byte, error) {
	select {
	case data := <-mt.inbound:
		return data, nil
	case err := <-mt.errs:
		return nil, err
	case <-mt.closed:
		return nil, errors.New("mock transport is closed")
	}
}

func (mt *mockTransport) Close() error {
	mt.closeOnce.Do(func() { close(mt.closed) })
	return nil
}

// testPeer plays the simulator's role on the other end of a mockTransport.
type testPeer struct {
	t         *testing.T
	transport *mockTransport
	codec     Codec
}

// deliver a Packet to the Circuit.
func (peer *testPeer) deliver(p Packet) {
	data, err := peer.codec.Encode(p)
	if err != nil {
		peer.t.Fatal(err)
	}
	peer.transport.inbound <- data
}

// next returns the next Packet sent by the Circuit or fails after the timeout.
func (peer *testPeer) next(timeout time.Duration) Packet {
	select {
	case data := <-peer.transport.outbound:
		p, err := peer.codec.Decode(data)
		if err != nil {
			peer.t.Fatal(err)
		}
		return p

	case <-time.After(timeout):
		peer.t.Fatalf("no packet was sent within %v", timeout)
		return Packet{}
	}
}

// collect all Packets sent by the Circuit within the duration.
func (peer *testPeer) collect(duration time.Duration) (packets []Packet) {
	deadline := time.After(duration)
	for {
		select {
		case data := <-peer.transport.outbound:
			p, err := peer.codec.Decode(data)
			if err != nil {
				peer.t.Fatal(err)
			}
			packets = append(packets, p)

		case <-deadline:
			return
		}
	}
}

// expectSilence fails if the Circuit sends anything within the duration.
func (peer *testPeer) expectSilence(duration time.Duration) {
	if packets := peer.collect(duration); len(packets) > 0 {
		peer.t.Fatalf("expected no packets, got %v", packets)
	}
}

// ackedSequences counts each acknowledged sequence number, both appended and within PacketAck messages.
func ackedSequences(packets []Packet) map[uint32]int {
	acks := make(map[uint32]int)
	for _, p := range packets {
		for _, seq := range p.Acks {
			acks[seq]++
		}
		if pa, ok := p.Message.(*messages.PacketAck); ok {
			for _, seq := range pa.IDs() {
				acks[seq]++
			}
		}
	}
	return acks
}

func testConfig() Config {
	conf := DefaultConfig()
	conf.SendTimeout = 50 * time.Millisecond
	conf.SendAttempts = 3
	conf.AckFlushInterval = 10 * time.Millisecond
	return conf
}

func newTestCircuit(t *testing.T, conf Config, handlers MessageHandlers) (*Circuit, *testPeer) {
	transport := newMockTransport()

	c, err := NewCircuit(transport, conf, handlers, nil)
	if err != nil {
		t.Fatal(err)
	}

	peer := &testPeer{
		t:         t,
		transport: transport,
		codec:     testCodec(),
	}
	return c, peer
}

// waitFor polls the condition until it holds or the timeout elapsed.
func waitFor(t *testing.T, timeout time.Duration, condition func() bool) {
	deadline := time.Now().Add(timeout)
	for !condition() {
		if time.Now().After(deadline) {
			t.Fatalf("condition did not hold within %v", timeout)
		}
		time.Sleep(time.Millisecond)
	}
}

// waitForReader blocks until a Read call is registered.
func waitForReader(t *testing.T, c *Circuit) {
	waitFor(t, time.Second, func() bool {
		c.mutex.Lock()
		defer c.mutex.Unlock()
		return c.waiter != nil
	})
}

func pingCheck(id uint8) *messages.StartPingCheck {
	return &messages.StartPingCheck{PingID: messages.StartPingCheckPingID{PingID: id}}
}
