// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package messages

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Variable1 is a variable length field with a one octet length prefix.
type Variable1 []byte

// Variable2 is a variable length field with a two octet, little endian length prefix.
type Variable2 []byte

// IPPort is a port number, the only field written in network byte order.
type IPPort uint16

// IPAddr is an IPv4 address in network byte order.
type IPAddr [4]byte

func (ip IPAddr) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", ip[0], ip[1], ip[2], ip[3])
}

// Vector3 is a single precision three dimensional vector.
type Vector3 struct {
	X, Y, Z float32
}

// Vector3d is a double precision three dimensional vector.
type Vector3d struct {
	X, Y, Z float64
}

// Vector4 is a single precision four dimensional vector.
type Vector4 struct {
	X, Y, Z, W float32
}

// Quaternion is a normalized rotation. Only the vector part is transmitted, W is implied and never negative.
type Quaternion struct {
	X, Y, Z float32
}

// NewQuaternion normalizes the given quaternion and returns its wire representation.
func NewQuaternion(x, y, z, w float32) Quaternion {
	norm := float32(math.Sqrt(float64(x*x + y*y + z*z + w*w)))
	if norm == 0 {
		return Quaternion{}
	}

	x, y, z, w = x/norm, y/norm, z/norm, w/norm
	if w < 0 {
		x, y, z = -x, -y, -z
	}
	return Quaternion{X: x, Y: y, Z: z}
}

// QuaternionFromAxisAngle creates a rotation of angle radians around the given axis.
func QuaternionFromAxisAngle(axis Vector3, angle float64) Quaternion {
	s := float32(math.Sin(angle / 2))
	return NewQuaternion(axis.X*s, axis.Y*s, axis.Z*s, float32(math.Cos(angle/2)))
}

// W returns the implied scalar part.
func (q Quaternion) W() float32 {
	if sq := 1 - q.X*q.X - q.Y*q.Y - q.Z*q.Z; sq > 0 {
		return float32(math.Sqrt(float64(sq)))
	}
	return 0
}

// Rotate the vector by this quaternion.
func (q Quaternion) Rotate(v Vector3) Vector3 {
	w := q.W()

	// t = 2 * (q.xyz x v)
	tx := 2 * (q.Y*v.Z - q.Z*v.Y)
	ty := 2 * (q.Z*v.X - q.X*v.Z)
	tz := 2 * (q.X*v.Y - q.Y*v.X)

	return Vector3{
		X: v.X + w*tx + (q.Y*tz - q.Z*ty),
		Y: v.Y + w*ty + (q.Z*tx - q.X*tz),
		Z: v.Z + w*tz + (q.X*ty - q.Y*tx),
	}
}

// writeFields serializes each field in order. Fixed size values are written little endian with encoding/binary,
// Variable1, Variable2 and IPPort get their special treatment.
func writeFields(w io.Writer, fields ...interface{}) error {
	for _, field := range fields {
		var err error

		switch field := field.(type) {
		case Variable1:
			if len(field) > math.MaxUint8 {
				return fmt.Errorf("Variable1 field of %d octets exceeds %d", len(field), math.MaxUint8)
			}
			if err = binary.Write(w, binary.LittleEndian, uint8(len(field))); err == nil {
				_, err = w.Write(field)
			}

		case Variable2:
			if len(field) > math.MaxUint16 {
				return fmt.Errorf("Variable2 field of %d octets exceeds %d", len(field), math.MaxUint16)
			}
			if err = binary.Write(w, binary.LittleEndian, uint16(len(field))); err == nil {
				_, err = w.Write(field)
			}

		case IPPort:
			err = binary.Write(w, binary.BigEndian, uint16(field))

		default:
			err = binary.Write(w, binary.LittleEndian, field)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// readFields is the counterpart of writeFields and expects pointers.
func readFields(r io.Reader, fields ...interface{}) error {
	for _, field := range fields {
		var err error

		switch field := field.(type) {
		case *Variable1:
			var l uint8
			if err = binary.Read(r, binary.LittleEndian, &l); err == nil {
				*field = make(Variable1, l)
				_, err = io.ReadFull(r, *field)
			}

		case *Variable2:
			var l uint16
			if err = binary.Read(r, binary.LittleEndian, &l); err == nil {
				*field = make(Variable2, l)
				_, err = io.ReadFull(r, *field)
			}

		case *IPPort:
			var p uint16
			if err = binary.Read(r, binary.BigEndian, &p); err == nil {
				*field = IPPort(p)
			}

		default:
			err = binary.Read(r, binary.LittleEndian, field)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// writeBlockCount writes the one octet amount of a Variable block.
func writeBlockCount(w io.Writer, n int) error {
	if n > math.MaxUint8 {
		return fmt.Errorf("%d blocks exceed the maximum of %d", n, math.MaxUint8)
	}
	return binary.Write(w, binary.LittleEndian, uint8(n))
}

func readBlockCount(r io.Reader) (int, error) {
	var n uint8
	err := binary.Read(r, binary.LittleEndian, &n)
	return int(n), err
}
