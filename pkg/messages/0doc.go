// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package messages provides the message catalog for the simulator UDP protocol. Each message type is identified by
// its MessageType, the numeric identifier written in front of every message body, and implements the Message
// interface for serialization and deserialization of its blocks.
//
// The Catalog maps a MessageType to a fresh Message and is consumed by the circuit package's packet codec.
//
//	catalog := messages.NewCatalog()
//	t, body, err := catalog.Encode(&messages.CompletePingCheck{PingID: messages.CompletePingCheckPingID{PingID: 3}})
//	msg, err := catalog.Decode(t, body)
//
// Bodies are little endian. Variable length fields are represented by the Variable1 and Variable2 types, which
// carry a one resp. two byte length prefix on the wire.
package messages
