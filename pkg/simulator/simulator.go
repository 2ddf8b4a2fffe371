// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package simulator establishes an agent's session with a simulator on top of a circuit.Circuit.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"

	"github.com/dsrich/opensim-networking/pkg/circuit"
	"github.com/dsrich/opensim-networking/pkg/messages"
)

// ErrUnexpectedHandshake is wrapped if the simulator answered UseCircuitCode with anything but a RegionHandshake.
var ErrUnexpectedHandshake = errors.New("did not receive RegionHandshake")

// ConnectInfo as handed out by the login service.
type ConnectInfo struct {
	circuit.ConnectInfo

	// CapabilitiesSeed is the URL of the simulator's capabilities, which are not used by this package.
	CapabilitiesSeed string
}

// Config for Connect.
type Config struct {
	Circuit circuit.Config

	// HandshakeTimeout limits the wait for the RegionHandshake. Zero waits without limit.
	HandshakeTimeout time.Duration

	// InitialState is reported to the simulator after the handshake.
	InitialState AgentState
}

// DefaultConfig places the agent at (10, 10, 0) and waits up to 15 seconds for the RegionHandshake.
func DefaultConfig() Config {
	return Config{
		Circuit:          circuit.DefaultConfig(),
		HandshakeTimeout: 15 * time.Second,
		InitialState: AgentState{
			Position:     messages.Vector3{X: 10, Y: 10, Z: 0},
			Modality:     Walking,
			BodyRotation: messages.QuaternionFromAxisAngle(messages.Vector3{Z: 1}, 0),
			HeadRotation: messages.QuaternionFromAxisAngle(messages.Vector3{Z: 1}, 0),
		},
	}
}

// Locator identifies a Simulator.
type Locator struct {
	Host string
	Port uint16
}

func (l Locator) String() string {
	return fmt.Sprintf("%s:%d", l.Host, l.Port)
}

// Simulator is an agent's established session with one simulator.
type Simulator struct {
	info       ConnectInfo
	locator    Locator
	regionInfo RegionInfo
	circuit    *circuit.Circuit
}

// Connect to a simulator and run the handshake.
//
// A handler answering StartPingCheck is installed, unless the handlers already contain one. The handshake sends
// UseCircuitCode, awaits the RegionHandshake, sends CompleteAgentMovement and finally the initial AgentUpdate.
// Every failing step results in a *circuit.ConnectError.
func Connect(info ConnectInfo, handlers circuit.MessageHandlers, config Config) (*Simulator, error) {
	allHandlers := make(circuit.MessageHandlers, len(handlers)+1)
	allHandlers[messages.TypeStartPingCheck] = handlePing
	for t, handler := range handlers {
		allHandlers[t] = handler
	}

	logger := log.WithField("simulator", info.Address())

	c, err := circuit.Initiate(info.ConnectInfo, config.Circuit, allHandlers, logger)
	if err != nil {
		return nil, err
	}

	sim := &Simulator{
		info:    info,
		locator: Locator{Host: info.Host, Port: info.Port},
		circuit: c,
	}

	if err := sim.handshake(config, allHandlers[messages.TypeRegionHandshake], logger); err != nil {
		_ = c.Close()
		return nil, &circuit.ConnectError{Address: info.Address(), Err: err}
	}

	logger.WithField("region", sim.regionInfo).Info("Connected to simulator")
	return sim, nil
}

func (sim *Simulator) handshake(config Config, restore circuit.MessageHandler, logger *log.Entry) error {
	agentID, sessionID, code := sim.info.AgentID, sim.info.SessionID, sim.info.CircuitCode

	// The RegionHandshake might overtake the acknowledgement of UseCircuitCode. Until a Read is waiting, it is
	// buffered by a temporary handler, which also interrupts the following Read.
	handshakes := make(chan *messages.RegionHandshake, 1)
	arrived, signal := context.WithCancel(context.Background())
	defer signal()

	sim.circuit.Insert(messages.TypeRegionHandshake, func(msg messages.Message, _ *circuit.Circuit) error {
		handshake, ok := msg.(*messages.RegionHandshake)
		if !ok {
			return circuit.ErrWrongHandler
		}

		select {
		case handshakes <- handshake:
		default:
		}
		signal()
		return nil
	})
	defer sim.circuit.Insert(messages.TypeRegionHandshake, restore)

	logger.Debug("Sending UseCircuitCode")
	if err := sim.circuit.Send(useCircuitCode(code, agentID, sessionID), true).Wait(); err != nil {
		return err
	}

	logger.Debug("Waiting for RegionHandshake")
	var ctx context.Context
	var cancel context.CancelFunc
	if config.HandshakeTimeout > 0 {
		ctx, cancel = context.WithTimeout(arrived, config.HandshakeTimeout)
	} else {
		ctx, cancel = context.WithCancel(arrived)
	}
	defer cancel()

	msg, err := sim.circuit.ReadContext(ctx)

	var handshake *messages.RegionHandshake
	select {
	case handshake = <-handshakes:
		logger.Debug("RegionHandshake arrived before the Read")

	default:
		if err != nil {
			return err
		}

		var ok bool
		if handshake, ok = msg.(*messages.RegionHandshake); !ok {
			return fmt.Errorf("%w, got %v", ErrUnexpectedHandshake, msg.Type())
		}
	}
	sim.regionInfo = NewRegionInfo(handshake)

	logger.Debug("Sending CompleteAgentMovement")
	if err := sim.circuit.Send(completeAgentMovement(code, agentID, sessionID), true).Wait(); err != nil {
		return err
	}

	logger.Debug("Sending initial AgentUpdate")
	return sim.circuit.Send(config.InitialState.UpdateMessage(agentID, sessionID), true).Wait()
}

// handlePing answers StartPingCheck messages.
func handlePing(msg messages.Message, c *circuit.Circuit) error {
	ping, ok := msg.(*messages.StartPingCheck)
	if !ok {
		return circuit.ErrWrongHandler
	}

	reply := &messages.CompletePingCheck{PingID: messages.CompletePingCheckPingID{PingID: ping.PingID.PingID}}
	c.Send(reply, false)
	return nil
}

// Locator of this Simulator.
func (sim *Simulator) Locator() Locator {
	return sim.locator
}

// RegionInfo as received during the handshake.
func (sim *Simulator) RegionInfo() RegionInfo {
	return sim.regionInfo
}

// Circuit towards this Simulator.
func (sim *Simulator) Circuit() *circuit.Circuit {
	return sim.circuit
}

// SendMessage through the Circuit.
func (sim *Simulator) SendMessage(msg messages.Message, reliable bool) *circuit.SendResult {
	return sim.circuit.Send(msg, reliable)
}

// Read the next message from the Circuit, see circuit.Circuit.Read.
func (sim *Simulator) Read(timeout time.Duration) (messages.Message, error) {
	return sim.circuit.Read(timeout)
}

// Close the session by announcing CloseCircuit and closing the Circuit.
func (sim *Simulator) Close() (err error) {
	if sendErr := sim.circuit.Send(&messages.CloseCircuit{}, false).Wait(); sendErr != nil {
		err = multierror.Append(err, sendErr)
	}
	if closeErr := sim.circuit.Close(); closeErr != nil {
		err = multierror.Append(err, closeErr)
	}
	return
}
