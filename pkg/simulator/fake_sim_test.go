// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package simulator

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dsrich/opensim-networking/pkg/circuit"
	"github.com/dsrich/opensim-networking/pkg/messages"
)

// fakeSim is a minimal simulator on the loopback interface. It acknowledges every reliable packet and answers
// UseCircuitCode with its handshake message.
type fakeSim struct {
	t     *testing.T
	conn  *net.UDPConn
	codec circuit.Codec

	// handshake is sent after UseCircuitCode, if not nil.
	handshake messages.Message

	// handshakeFirst sends the handshake right away and delays the acknowledgement of UseCircuitCode instead.
	handshakeFirst bool

	received chan messages.Message

	mutex  sync.Mutex
	seq    uint32
	client *net.UDPAddr
	closed bool

	wg sync.WaitGroup
}

func newFakeSim(t *testing.T, handshake messages.Message) *fakeSim {
	return startFakeSim(t, handshake, false)
}

func startFakeSim(t *testing.T, handshake messages.Message, handshakeFirst bool) *fakeSim {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}

	sim := &fakeSim{
		t:              t,
		conn:           conn,
		codec:          circuit.NewCodec(messages.NewCatalog()),
		handshake:      handshake,
		handshakeFirst: handshakeFirst,
		received:       make(chan messages.Message, 64),
	}

	sim.wg.Add(1)
	go sim.handle()

	return sim
}

func (sim *fakeSim) connectInfo() ConnectInfo {
	addr := sim.conn.LocalAddr().(*net.UDPAddr)
	return ConnectInfo{
		ConnectInfo: circuit.ConnectInfo{
			Host:        "127.0.0.1",
			Port:        uint16(addr.Port),
			AgentID:     uuid.MustParse("a2e76fcd-9360-4f6d-a924-000000000003"),
			SessionID:   uuid.MustParse("6e41fa26-ac11-4b9f-a3e0-000000000004"),
			CircuitCode: 1337,
		},
		CapabilitiesSeed: "http://127.0.0.1:9000/caps/seed",
	}
}

func (sim *fakeSim) handle() {
	defer sim.wg.Done()

	buff := make([]byte, 65535)
	for {
		n, addr, err := sim.conn.ReadFromUDP(buff)
		if err != nil {
			return
		}

		p, err := sim.codec.Decode(buff[:n])
		if err != nil {
			sim.t.Errorf("fake simulator received undecodable datagram: %v", err)
			continue
		}

		sim.mutex.Lock()
		sim.client = addr
		sim.mutex.Unlock()

		_, isUseCircuitCode := p.Message.(*messages.UseCircuitCode)
		overtake := isUseCircuitCode && sim.handshake != nil && sim.handshakeFirst

		if overtake {
			ack := simPacket(messages.NewPacketAck([]uint32{p.Sequence}), false)
			sim.send(simPacket(sim.handshake, true))
			time.AfterFunc(handshakeDelay, func() { sim.send(ack) })
		} else if p.Reliable {
			sim.send(simPacket(messages.NewPacketAck([]uint32{p.Sequence}), false))
		}

		if _, ok := p.Message.(*messages.PacketAck); ok {
			continue
		}
		sim.received <- p.Message

		// The handshake follows after a short processing delay, like a real simulator's.
		if isUseCircuitCode && sim.handshake != nil && !overtake {
			time.AfterFunc(handshakeDelay, func() { sim.send(simPacket(sim.handshake, true)) })
		}
	}
}

const handshakeDelay = 50 * time.Millisecond

// simPacket without sequence number, which is assigned by send.
func simPacket(msg messages.Message, reliable bool) circuit.Packet {
	return circuit.Packet{Reliable: reliable, Message: msg}
}

func (sim *fakeSim) send(p circuit.Packet) {
	sim.mutex.Lock()
	defer sim.mutex.Unlock()

	if sim.closed {
		return
	}

	sim.seq++
	p.Sequence = sim.seq

	data, err := sim.codec.Encode(p)
	if err != nil {
		sim.t.Errorf("fake simulator cannot encode %v: %v", p, err)
		return
	}

	if _, err := sim.conn.WriteToUDP(data, sim.client); err != nil {
		sim.t.Errorf("fake simulator cannot send: %v", err)
	}
}

// expect the next message received by the fake simulator to be of the given type.
func (sim *fakeSim) expect(t messages.MessageType) messages.Message {
	select {
	case msg := <-sim.received:
		if msg.Type() != t {
			sim.t.Fatalf("expected %v, received %v", t, msg.Type())
		}
		return msg

	case <-time.After(2 * time.Second):
		sim.t.Fatalf("did not receive %v", t)
		return nil
	}
}

func (sim *fakeSim) close() {
	sim.mutex.Lock()
	sim.closed = true
	sim.mutex.Unlock()

	_ = sim.conn.Close()
	sim.wg.Wait()
}

func testRegionHandshake() *messages.RegionHandshake {
	msg := &messages.RegionHandshake{}
	msg.RegionInfo.SimName = messages.Variable1("Test Region\x00")
	msg.RegionInfo.SimOwner = uuid.MustParse("00000000-0000-0000-0000-0000000000ee")
	msg.RegionInfo.WaterHeight = 20
	msg.RegionInfo2.RegionID = uuid.MustParse("00000000-0000-0000-0000-0000000000aa")
	return msg
}

func testConfig() Config {
	conf := DefaultConfig()
	conf.Circuit.SendTimeout = 200 * time.Millisecond
	conf.Circuit.AckFlushInterval = 10 * time.Millisecond
	conf.HandshakeTimeout = time.Second
	return conf
}
