// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package capture

import (
	"bufio"
	"fmt"
	"io"

	"github.com/dtn7/cboring"
)

// Reader for Records written by a Recorder.
type Reader struct {
	r *bufio.Reader
}

// NewReader reading from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// ReadRecord returns the next Record or io.EOF at the end of the capture.
func (reader *Reader) ReadRecord() (rec Record, err error) {
	if _, err = reader.r.Peek(1); err != nil {
		return
	}

	if err = cboring.Unmarshal(&rec, reader.r); err != nil {
		err = fmt.Errorf("unmarshalling record failed: %w", err)
	}
	return
}

// ReadAll remaining Records.
func (reader *Reader) ReadAll() (records []Record, err error) {
	for {
		rec, recErr := reader.ReadRecord()
		if recErr == io.EOF {
			return
		} else if recErr != nil {
			err = recErr
			return
		}

		records = append(records, rec)
	}
}
