// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package simulator

import (
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/dsrich/opensim-networking/pkg/circuit"
	"github.com/dsrich/opensim-networking/pkg/messages"
)

// Initiate an agent's entrance into a region on an already initiated Circuit.
//
// Both UseCircuitCode and CompleteAgentMovement are sent reliably. Each send must be acknowledged before the next
// step starts.
func Initiate(c *circuit.Circuit, circuitCode uint32, agentID, sessionID uuid.UUID) error {
	logger := log.WithFields(log.Fields{
		"circuit code": circuitCode,
		"agent":        agentID,
		"session":      sessionID,
	})

	logger.Info("Sending UseCircuitCode and waiting for acknowledgement")
	if err := c.Send(useCircuitCode(circuitCode, agentID, sessionID), true).Wait(); err != nil {
		return err
	}

	logger.Info("Sending CompleteAgentMovement and waiting for acknowledgement")
	return c.Send(completeAgentMovement(circuitCode, agentID, sessionID), true).Wait()
}

func useCircuitCode(circuitCode uint32, agentID, sessionID uuid.UUID) *messages.UseCircuitCode {
	return &messages.UseCircuitCode{CircuitCode: messages.UseCircuitCodeCircuitCode{
		Code:      circuitCode,
		SessionID: sessionID,
		ID:        agentID,
	}}
}

func completeAgentMovement(circuitCode uint32, agentID, sessionID uuid.UUID) *messages.CompleteAgentMovement {
	return &messages.CompleteAgentMovement{AgentData: messages.CompleteAgentMovementAgentData{
		AgentID:     agentID,
		SessionID:   sessionID,
		CircuitCode: circuitCode,
	}}
}
