// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package messages

import (
	"fmt"
	"io"

	"github.com/google/uuid"
)

// AgentUpdateAgentData is AgentUpdate's only block.
type AgentUpdateAgentData struct {
	AgentID        uuid.UUID
	SessionID      uuid.UUID
	BodyRotation   Quaternion
	HeadRotation   Quaternion
	State          uint8
	CameraCenter   Vector3
	CameraAtAxis   Vector3
	CameraLeftAxis Vector3
	CameraUpAxis   Vector3
	Far            float32
	ControlFlags   uint32
	Flags          uint8
}

// AgentUpdate reports the agent's rotation, camera and movement controls to the simulator.
type AgentUpdate struct {
	AgentData AgentUpdateAgentData
}

func (_ *AgentUpdate) Type() MessageType { return TypeAgentUpdate }

func (m AgentUpdate) String() string {
	return fmt.Sprintf("AgentUpdate(AgentID=%v, ControlFlags=%#x)", m.AgentData.AgentID, m.AgentData.ControlFlags)
}

func (m *AgentUpdate) Marshal(w io.Writer) error {
	return writeFields(w, m.AgentData)
}

func (m *AgentUpdate) Unmarshal(r io.Reader) error {
	return readFields(r, &m.AgentData)
}

// CompleteAgentMovementAgentData is CompleteAgentMovement's only block.
type CompleteAgentMovementAgentData struct {
	AgentID     uuid.UUID
	SessionID   uuid.UUID
	CircuitCode uint32
}

// CompleteAgentMovement finishes the agent's arrival in a region.
type CompleteAgentMovement struct {
	AgentData CompleteAgentMovementAgentData
}

func (_ *CompleteAgentMovement) Type() MessageType { return TypeCompleteAgentMovement }

func (m CompleteAgentMovement) String() string {
	return fmt.Sprintf("CompleteAgentMovement(AgentID=%v, CircuitCode=%d)", m.AgentData.AgentID, m.AgentData.CircuitCode)
}

func (m *CompleteAgentMovement) Marshal(w io.Writer) error {
	return writeFields(w, m.AgentData)
}

func (m *CompleteAgentMovement) Unmarshal(r io.Reader) error {
	return readFields(r, &m.AgentData)
}

// AgentMovementCompleteAgentData identifies the agent.
type AgentMovementCompleteAgentData struct {
	AgentID   uuid.UUID
	SessionID uuid.UUID
}

// AgentMovementCompleteData describes the agent's position in the region.
type AgentMovementCompleteData struct {
	Position     Vector3
	LookAt       Vector3
	RegionHandle uint64
	Timestamp    uint32
}

// AgentMovementCompleteSimData names the simulator's version.
type AgentMovementCompleteSimData struct {
	ChannelVersion Variable2
}

// AgentMovementComplete is the simulator's answer to CompleteAgentMovement.
type AgentMovementComplete struct {
	AgentData AgentMovementCompleteAgentData
	Data      AgentMovementCompleteData
	SimData   AgentMovementCompleteSimData
}

func (_ *AgentMovementComplete) Type() MessageType { return TypeAgentMovementComplete }

func (m AgentMovementComplete) String() string {
	return fmt.Sprintf("AgentMovementComplete(AgentID=%v, Position=%v, RegionHandle=%d)",
		m.AgentData.AgentID, m.Data.Position, m.Data.RegionHandle)
}

func (m *AgentMovementComplete) Marshal(w io.Writer) error {
	return writeFields(w, m.AgentData, m.Data, m.SimData.ChannelVersion)
}

func (m *AgentMovementComplete) Unmarshal(r io.Reader) error {
	return readFields(r, &m.AgentData, &m.Data, &m.SimData.ChannelVersion)
}
