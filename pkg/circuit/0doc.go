// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package circuit implements the per-connection protocol engine towards a simulator.
//
// A Circuit turns a lossy, unordered datagram stream into a de-duplicated message channel. Messages might be sent
// reliably, which results in retransmissions until the peer acknowledges the packet or the configured amount of
// attempts is exhausted. Inbound messages are either handed to a blocking Read call or to a MessageHandler,
// registered for the message's type.
//
// The wire envelope is handled by the Codec. Its message bodies are delegated to a Catalog, which is implemented by
// the messages package.
package circuit
