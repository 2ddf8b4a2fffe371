// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package circuit

import (
	"fmt"
	"math"
)

// zeroEncode replaces each run of zero octets by a zero followed by the run's length.
func zeroEncode(data []byte) []byte {
	out := make([]byte, 0, len(data))

	for i := 0; i < len(data); {
		if data[i] != 0 {
			out = append(out, data[i])
			i++
			continue
		}

		run := 0
		for i < len(data) && data[i] == 0 && run < math.MaxUint8 {
			run++
			i++
		}
		out = append(out, 0, byte(run))
	}

	return out
}

// zeroDecode reverts zeroEncode.
func zeroDecode(data []byte) ([]byte, error) {
	out := make([]byte, 0, 2*len(data))

	for i := 0; i < len(data); i++ {
		if data[i] != 0 {
			out = append(out, data[i])
			continue
		}

		if i+1 >= len(data) {
			return nil, fmt.Errorf("zero-coded run at offset %d lacks its length", i)
		}
		i++
		out = append(out, make([]byte, data[i])...)
	}

	return out, nil
}
