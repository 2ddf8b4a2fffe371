// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package circuit

import (
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/dsrich/opensim-networking/pkg/messages"
)

// MessageHandler is called for each inbound message of its registered type, unless a Read call is waiting.
//
// Handlers run inline on the Circuit's receive path and must return quickly. They might send messages through the
// passed Circuit, but must neither Read from nor Close it. ErrWrongHandler should be returned for unexpected
// messages. Returned errors are logged.
type MessageHandler func(msg messages.Message, c *Circuit) error

// MessageHandlers maps each message type to at most one MessageHandler.
type MessageHandlers map[messages.MessageType]MessageHandler

// Insert a MessageHandler for a message type, replacing an existing one. A nil handler removes the registration.
//
// The handler is used for all messages processed after Insert returned.
func (c *Circuit) Insert(t messages.MessageType, handler MessageHandler) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if handler == nil {
		delete(c.handlers, t)
	} else {
		c.handlers[t] = handler
	}
}

// dispatch a non-duplicate message to exactly one consumer: a waiting reader, a handler or nobody.
//
// The consumer is selected while holding the lock, the handler is called afterwards.
func (c *Circuit) dispatch(msg messages.Message) {
	c.mutex.Lock()

	if c.waiter != nil {
		c.waiter <- msg
		c.waiter = nil
		c.mutex.Unlock()
		return
	}

	handler, ok := c.handlers[msg.Type()]
	if !ok {
		c.stats.Undispatched++
		c.mutex.Unlock()

		c.log().WithField("message", msg.Type()).Debug("Dropping message without reader or handler")
		return
	}
	c.mutex.Unlock()

	if err := handler(msg, c); err != nil {
		logger := c.log().WithFields(log.Fields{
			"message": msg.Type(),
			"error":   err,
		})

		if errors.Is(err, ErrWrongHandler) {
			logger.Warn("Handler was registered for a wrong message type")
		} else {
			logger.Warn("Handler errored")
		}
	}
}
