// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package simulator

import (
	"fmt"

	"github.com/dsrich/opensim-networking/pkg/messages"
)

// LayerType of a LayerData message's patches.
type LayerType uint8

const (
	Land LayerType = iota
	Wind
	Cloud
	Water
	VarLand
	VarWind
	VarCloud
	VarWater
)

var layerTypeCodes = map[byte]LayerType{
	'L': Land,
	'7': Wind,
	'8': Cloud,
	'W': Water,
	'M': VarLand,
	'X': VarWind,
	'9': VarCloud,
	':': VarWater,
}

var layerTypeNames = map[LayerType]string{
	Land:     "land",
	Wind:     "wind",
	Cloud:    "cloud",
	Water:    "water",
	VarLand:  "var-land",
	VarWind:  "var-wind",
	VarCloud: "var-cloud",
	VarWater: "var-water",
}

// ParseLayerType from its one octet code.
func ParseLayerType(code byte) (LayerType, error) {
	if lt, ok := layerTypeCodes[code]; ok {
		return lt, nil
	}
	return 0, fmt.Errorf("unknown layer type code 0x%02x", code)
}

// LayerTypeOf a LayerData message.
func LayerTypeOf(msg *messages.LayerData) (LayerType, error) {
	return ParseLayerType(msg.LayerID.Type)
}

// IsExtended reports if this layer belongs to the variable sized region variants.
func (lt LayerType) IsExtended() bool {
	return lt >= VarLand
}

func (lt LayerType) String() string {
	if name, ok := layerTypeNames[lt]; ok {
		return name
	}
	return "INVALID"
}
