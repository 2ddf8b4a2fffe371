// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package capture

import (
	"os"
)

// File is an opened capture file.
type File struct {
	*Reader
	f *os.File
}

// OpenFile opens a capture file for reading.
func OpenFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &File{Reader: NewReader(f), f: f}, nil
}

// Close the underlying file.
func (file *File) Close() error {
	return file.f.Close()
}
