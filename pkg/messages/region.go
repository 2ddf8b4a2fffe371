// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package messages

import (
	"fmt"
	"io"

	"github.com/google/uuid"
)

// RegionHandshakeRegionInfo holds the region's static information and terrain textures.
type RegionHandshakeRegionInfo struct {
	RegionFlags        uint32
	SimAccess          uint8
	SimName            Variable1
	SimOwner           uuid.UUID
	IsEstateManager    bool
	WaterHeight        float32
	BillableFactor     float32
	CacheID            uuid.UUID
	TerrainBase        [4]uuid.UUID
	TerrainDetail      [4]uuid.UUID
	TerrainStartHeight [4]float32
	TerrainHeightRange [4]float32
}

// RegionHandshakeRegionInfo2 holds the region's ID.
type RegionHandshakeRegionInfo2 struct {
	RegionID uuid.UUID
}

// RegionHandshake is sent by the simulator after a circuit was activated by UseCircuitCode.
//
// Newer simulators append further blocks, which are ignored.
type RegionHandshake struct {
	RegionInfo  RegionHandshakeRegionInfo
	RegionInfo2 RegionHandshakeRegionInfo2
}

func (_ *RegionHandshake) Type() MessageType { return TypeRegionHandshake }

func (m RegionHandshake) String() string {
	return fmt.Sprintf("RegionHandshake(SimName=%q, RegionID=%v)", string(m.RegionInfo.SimName), m.RegionInfo2.RegionID)
}

func (m *RegionHandshake) Marshal(w io.Writer) error {
	ri := m.RegionInfo
	return writeFields(w,
		ri.RegionFlags, ri.SimAccess, ri.SimName, ri.SimOwner, ri.IsEstateManager,
		ri.WaterHeight, ri.BillableFactor, ri.CacheID,
		ri.TerrainBase, ri.TerrainDetail, ri.TerrainStartHeight, ri.TerrainHeightRange,
		m.RegionInfo2)
}

func (m *RegionHandshake) Unmarshal(r io.Reader) error {
	ri := &m.RegionInfo
	return readFields(r,
		&ri.RegionFlags, &ri.SimAccess, &ri.SimName, &ri.SimOwner, &ri.IsEstateManager,
		&ri.WaterHeight, &ri.BillableFactor, &ri.CacheID,
		&ri.TerrainBase, &ri.TerrainDetail, &ri.TerrainStartHeight, &ri.TerrainHeightRange,
		&m.RegionInfo2)
}

// RegionHandshakeReplyAgentData identifies the agent.
type RegionHandshakeReplyAgentData struct {
	AgentID   uuid.UUID
	SessionID uuid.UUID
}

// RegionHandshakeReplyRegionInfo carries the viewer's flags.
type RegionHandshakeReplyRegionInfo struct {
	Flags uint32
}

// RegionHandshakeReply acknowledges a RegionHandshake on the application level.
type RegionHandshakeReply struct {
	AgentData  RegionHandshakeReplyAgentData
	RegionInfo RegionHandshakeReplyRegionInfo
}

func (_ *RegionHandshakeReply) Type() MessageType { return TypeRegionHandshakeReply }

func (m RegionHandshakeReply) String() string {
	return fmt.Sprintf("RegionHandshakeReply(AgentID=%v, Flags=%#x)", m.AgentData.AgentID, m.RegionInfo.Flags)
}

func (m *RegionHandshakeReply) Marshal(w io.Writer) error {
	return writeFields(w, m.AgentData, m.RegionInfo)
}

func (m *RegionHandshakeReply) Unmarshal(r io.Reader) error {
	return readFields(r, &m.AgentData, &m.RegionInfo)
}
