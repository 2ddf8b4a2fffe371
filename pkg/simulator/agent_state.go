// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package simulator

import (
	"github.com/google/uuid"

	"github.com/dsrich/opensim-networking/pkg/messages"
)

// Modality of the agent's movement.
type Modality uint8

const (
	Walking Modality = iota
	Flying
)

func (m Modality) String() string {
	switch m {
	case Walking:
		return "walking"
	case Flying:
		return "flying"
	default:
		return "INVALID"
	}
}

// MoveDirection relative to the agent's body rotation.
type MoveDirection uint8

const (
	NoMovement MoveDirection = iota
	Forward
	Backward
	Left
	Right
	Up
	Down
)

// Control flags of the AgentUpdate message.
const (
	ControlAtPos   uint32 = 1 << 0
	ControlAtNeg   uint32 = 1 << 1
	ControlLeftPos uint32 = 1 << 2
	ControlLeftNeg uint32 = 1 << 3
	ControlUpPos   uint32 = 1 << 4
	ControlUpNeg   uint32 = 1 << 5
	ControlFly     uint32 = 1 << 13
)

// drawDistance is the camera's far plane in meters.
const drawDistance = 64

// AgentState is the part of the agent's state which is reported to the Simulator.
type AgentState struct {
	Position      messages.Vector3
	MoveDirection MoveDirection
	Modality      Modality
	BodyRotation  messages.Quaternion
	HeadRotation  messages.Quaternion
}

// ControlFlags derived from the movement direction and modality.
func (as AgentState) ControlFlags() (flags uint32) {
	switch as.MoveDirection {
	case Forward:
		flags |= ControlAtPos
	case Backward:
		flags |= ControlAtNeg
	case Left:
		flags |= ControlLeftPos
	case Right:
		flags |= ControlLeftNeg
	case Up:
		flags |= ControlUpPos
	case Down:
		flags |= ControlUpNeg
	}

	if as.Modality == Flying {
		flags |= ControlFly
	}
	return
}

// UpdateMessage creates an AgentUpdate with a camera placed at the agent, looking along its body rotation.
func (as AgentState) UpdateMessage(agentID, sessionID uuid.UUID) *messages.AgentUpdate {
	return &messages.AgentUpdate{AgentData: messages.AgentUpdateAgentData{
		AgentID:        agentID,
		SessionID:      sessionID,
		BodyRotation:   as.BodyRotation,
		HeadRotation:   as.HeadRotation,
		State:          0,
		CameraCenter:   as.Position,
		CameraAtAxis:   as.BodyRotation.Rotate(messages.Vector3{X: 1}),
		CameraLeftAxis: as.BodyRotation.Rotate(messages.Vector3{Y: 1}),
		CameraUpAxis:   as.BodyRotation.Rotate(messages.Vector3{Z: 1}),
		Far:            drawDistance,
		ControlFlags:   as.ControlFlags(),
		Flags:          0,
	}}
}
