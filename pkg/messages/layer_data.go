// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package messages

import (
	"fmt"
	"io"
)

// LayerDataLayerID names the kind of layer, e.g., 'L' for land.
type LayerDataLayerID struct {
	Type uint8
}

// LayerDataLayerData is the compressed patch data.
type LayerDataLayerData struct {
	Data Variable2
}

// LayerData transports compressed terrain, wind, cloud or water patches.
type LayerData struct {
	LayerID   LayerDataLayerID
	LayerData LayerDataLayerData
}

func (_ *LayerData) Type() MessageType { return TypeLayerData }

func (m LayerData) String() string {
	return fmt.Sprintf("LayerData(Type=%q, %d octets)", rune(m.LayerID.Type), len(m.LayerData.Data))
}

func (m *LayerData) Marshal(w io.Writer) error {
	return writeFields(w, m.LayerID, m.LayerData.Data)
}

func (m *LayerData) Unmarshal(r io.Reader) error {
	return readFields(r, &m.LayerID, &m.LayerData.Data)
}
