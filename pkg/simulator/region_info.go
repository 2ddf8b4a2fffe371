// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package simulator

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"

	"github.com/dsrich/opensim-networking/pkg/messages"
)

// RegionInfo describes the region a Simulator hosts, as announced by its RegionHandshake.
type RegionInfo struct {
	Name     string
	RegionID uuid.UUID
	Owner    uuid.UUID
	Flags    uint32
	Access   uint8

	IsEstateManager bool
	WaterHeight     float32
	BillableFactor  float32
	CacheID         uuid.UUID

	TerrainBase        [4]uuid.UUID
	TerrainDetail      [4]uuid.UUID
	TerrainStartHeight [4]float32
	TerrainHeightRange [4]float32
}

// NewRegionInfo extracts the RegionInfo from a RegionHandshake.
func NewRegionInfo(handshake *messages.RegionHandshake) RegionInfo {
	ri := handshake.RegionInfo

	return RegionInfo{
		Name:     string(bytes.TrimRight(ri.SimName, "\x00")),
		RegionID: handshake.RegionInfo2.RegionID,
		Owner:    ri.SimOwner,
		Flags:    ri.RegionFlags,
		Access:   ri.SimAccess,

		IsEstateManager: ri.IsEstateManager,
		WaterHeight:     ri.WaterHeight,
		BillableFactor:  ri.BillableFactor,
		CacheID:         ri.CacheID,

		TerrainBase:        ri.TerrainBase,
		TerrainDetail:      ri.TerrainDetail,
		TerrainStartHeight: ri.TerrainStartHeight,
		TerrainHeightRange: ri.TerrainHeightRange,
	}
}

func (ri RegionInfo) String() string {
	return fmt.Sprintf("Region(%q, id=%v, owner=%v, water=%.1f)", ri.Name, ri.RegionID, ri.Owner, ri.WaterHeight)
}
