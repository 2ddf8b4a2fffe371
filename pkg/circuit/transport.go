// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package circuit

import (
	"errors"
	"net"
	"syscall"

	log "github.com/sirupsen/logrus"
)

// Transport is the datagram channel below a Circuit. Every call of Send transmits one datagram, every call of
// Receive returns one.
type Transport interface {
	// Send a datagram. This method might block.
	Send(data []byte) error

	// Receive waits for the next datagram. This method blocks.
	Receive() ([]byte, error)

	// Close this Transport. Furthermore, the Receive method must be interrupted.
	Close() error
}

// maxDatagramSize is the largest UDP payload.
const maxDatagramSize = 65535

// UDPTransport is a Transport exchanging datagrams with exactly one remote address.
//
// The socket itself is unconnected. Thus, ICMP errors caused by a peer which is not listening yet do not interrupt
// Receive, and the peer just appears silent. Datagrams from other addresses are dropped.
type UDPTransport struct {
	conn   *net.UDPConn
	remote *net.UDPAddr
	buff   []byte
}

// DialUDP creates a UDPTransport towards the given "host:port" address.
func DialUDP(address string) (*UDPTransport, error) {
	raddr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, err
	}

	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return nil, err
	}

	return &UDPTransport{
		conn:   conn,
		remote: raddr,
		buff:   make([]byte, maxDatagramSize),
	}, nil
}

// Send a datagram to the remote address.
func (t *UDPTransport) Send(data []byte) error {
	_, err := t.conn.WriteToUDP(data, t.remote)
	return err
}

// Receive the next datagram from the remote address. This method must not be called concurrently.
func (t *UDPTransport) Receive() ([]byte, error) {
	for {
		n, addr, err := t.conn.ReadFromUDP(t.buff)
		if errors.Is(err, syscall.ECONNREFUSED) {
			log.WithField("transport", t).Debug("Remote address refused a datagram")
			continue
		} else if err != nil {
			return nil, err
		}

		if !addr.IP.Equal(t.remote.IP) || addr.Port != t.remote.Port {
			log.WithFields(log.Fields{
				"transport": t,
				"sender":    addr,
			}).Debug("Dropping datagram from a foreign address")
			continue
		}

		data := make([]byte, n)
		copy(data, t.buff[:n])
		return data, nil
	}
}

// Close the socket.
func (t *UDPTransport) Close() error {
	return t.conn.Close()
}

// LocalAddr returns the local socket address.
func (t *UDPTransport) LocalAddr() net.Addr {
	return t.conn.LocalAddr()
}

// RemoteAddr returns the simulator's address.
func (t *UDPTransport) RemoteAddr() net.Addr {
	return t.remote
}

func (t *UDPTransport) String() string {
	return t.conn.LocalAddr().String() + "->" + t.remote.String()
}
