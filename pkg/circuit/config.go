// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package circuit

import (
	"fmt"
	"math"
	"time"

	"github.com/hashicorp/go-multierror"
)

// Config of a Circuit, captured at its construction.
type Config struct {
	// SendTimeout is the interval between retransmissions of an unacknowledged reliable packet.
	SendTimeout time.Duration

	// SendAttempts is the maximum amount of transmissions of a reliable packet, including the first one.
	SendAttempts int

	// AckFlushInterval is the time acknowledgements wait for outgoing traffic to be appended to. Afterwards, they
	// are sent within a standalone PacketAck message.
	AckFlushInterval time.Duration

	// SeenHorizon is the age after which an inbound sequence number is forgotten.
	SeenHorizon time.Duration

	// SeenCapacity limits the amount of remembered inbound sequence numbers.
	SeenCapacity int

	// MaxPiggybackAcks limits the acknowledgements appended to an outgoing packet. Zero disables appending.
	MaxPiggybackAcks int

	// Catalog of known messages. The messages package's full catalog is used if nil.
	Catalog Catalog

	// Tracer is informed about each datagram, if set.
	Tracer PacketTracer
}

// DefaultConfig returns the Config used if nothing else is specified.
func DefaultConfig() Config {
	return Config{
		SendTimeout:      5 * time.Second,
		SendAttempts:     5,
		AckFlushInterval: 100 * time.Millisecond,
		SeenHorizon:      60 * time.Second,
		SeenCapacity:     4096,
		MaxPiggybackAcks: math.MaxUint8,
	}
}

// Validate this Config. All violations are reported together.
func (conf Config) Validate() (errs error) {
	if conf.SendTimeout <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("send timeout %v must be positive", conf.SendTimeout))
	}
	if conf.SendAttempts < 1 {
		errs = multierror.Append(errs, fmt.Errorf("send attempts %d must be at least 1", conf.SendAttempts))
	}
	if conf.AckFlushInterval <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("ack flush interval %v must be positive", conf.AckFlushInterval))
	}
	if conf.SeenHorizon <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("seen horizon %v must be positive", conf.SeenHorizon))
	}
	if conf.SeenCapacity < 1 {
		errs = multierror.Append(errs, fmt.Errorf("seen capacity %d must be at least 1", conf.SeenCapacity))
	}
	if conf.MaxPiggybackAcks < 0 || conf.MaxPiggybackAcks > math.MaxUint8 {
		errs = multierror.Append(errs, fmt.Errorf("piggyback acks %d not within [0, %d]", conf.MaxPiggybackAcks, math.MaxUint8))
	}

	return
}
