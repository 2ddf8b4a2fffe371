// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package messages

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
)

// Message describes all kinds of messages, which have their type tag, serialization and deserialization in common.
//
// Marshal and Unmarshal only handle the message's blocks. The MessageType is written and read by the caller.
type Message interface {
	Type() MessageType
	Marshal(w io.Writer) error
	Unmarshal(r io.Reader) error
}

// ErrUnknownMessageType is returned for a MessageType without a registered Message.
var ErrUnknownMessageType = errors.New("unknown message type")

type messageInfo struct {
	name      string
	prototype Message
	zerocoded bool
}

// registry maps each known MessageType to an example instance of its type.
var registry = map[MessageType]messageInfo{
	TypeStartPingCheck:    {"StartPingCheck", &StartPingCheck{}, false},
	TypeCompletePingCheck: {"CompletePingCheck", &CompletePingCheck{}, false},
	TypeAgentUpdate:       {"AgentUpdate", &AgentUpdate{}, true},
	TypeLayerData:         {"LayerData", &LayerData{}, false},

	TypeUseCircuitCode:        {"UseCircuitCode", &UseCircuitCode{}, false},
	TypeRegionHandshake:       {"RegionHandshake", &RegionHandshake{}, true},
	TypeRegionHandshakeReply:  {"RegionHandshakeReply", &RegionHandshakeReply{}, true},
	TypeCompleteAgentMovement: {"CompleteAgentMovement", &CompleteAgentMovement{}, false},
	TypeAgentMovementComplete: {"AgentMovementComplete", &AgentMovementComplete{}, false},

	TypePacketAck:    {"PacketAck", &PacketAck{}, false},
	TypeOpenCircuit:  {"OpenCircuit", &OpenCircuit{}, false},
	TypeCloseCircuit: {"CloseCircuit", &CloseCircuit{}, false},
}

// NewMessage creates a new, empty Message for a given MessageType.
func NewMessage(t MessageType) (msg Message, err error) {
	info, exists := registry[t]
	if !exists {
		err = fmt.Errorf("%w: %v", ErrUnknownMessageType, t)
		return
	}

	msgElem := reflect.TypeOf(info.prototype).Elem()
	msg = reflect.New(msgElem).Interface().(Message)
	return
}

// Catalog maps MessageTypes to their Message implementations and encodes or decodes message bodies.
//
// A Catalog might be extended by Register before its first use; afterwards it must be treated as read-only.
type Catalog struct {
	entries map[MessageType]messageInfo
}

// NewCatalog creates a Catalog containing every message type of this package.
func NewCatalog() *Catalog {
	c := &Catalog{entries: make(map[MessageType]messageInfo, len(registry))}
	for t, info := range registry {
		c.entries[t] = info
	}
	return c
}

// Register an additional Message. An existing registration for the same MessageType will be replaced.
func (c *Catalog) Register(name string, prototype Message, zerocoded bool) {
	c.entries[prototype.Type()] = messageInfo{name: name, prototype: prototype, zerocoded: zerocoded}
}

// New creates a fresh Message of the given type.
func (c *Catalog) New(t MessageType) (Message, error) {
	info, exists := c.entries[t]
	if !exists {
		return nil, fmt.Errorf("%w: %v", ErrUnknownMessageType, t)
	}

	msgElem := reflect.TypeOf(info.prototype).Elem()
	return reflect.New(msgElem).Interface().(Message), nil
}

// Decode a message body of the given type. Octets following the last known block are ignored.
func (c *Catalog) Decode(t MessageType, body []byte) (Message, error) {
	msg, err := c.New(t)
	if err != nil {
		return nil, err
	}

	if err := msg.Unmarshal(bytes.NewReader(body)); err != nil {
		return nil, fmt.Errorf("unmarshalling %v failed: %w", t, err)
	}
	return msg, nil
}

// Encode a Message into its type tag and body.
func (c *Catalog) Encode(msg Message) (MessageType, []byte, error) {
	buff := new(bytes.Buffer)
	if err := msg.Marshal(buff); err != nil {
		return msg.Type(), nil, fmt.Errorf("marshalling %v failed: %w", msg.Type(), err)
	}
	return msg.Type(), buff.Bytes(), nil
}

// IsZerocoded reports if messages of this type should be zero-coded on the wire.
func (c *Catalog) IsZerocoded(t MessageType) bool {
	return c.entries[t].zerocoded
}

// Types returns all registered MessageTypes in ascending order.
func (c *Catalog) Types() []MessageType {
	types := make([]MessageType, 0, len(c.entries))
	for t := range c.entries {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
