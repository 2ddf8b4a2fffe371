// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/dsrich/opensim-networking/pkg/capture"
	"github.com/dsrich/opensim-networking/pkg/circuit"
	"github.com/dsrich/opensim-networking/pkg/messages"
)

// printUsage of simtrace and exit with an error code afterwards.
func printUsage() {
	_, _ = fmt.Fprintf(os.Stderr, "Usage of %s capture-file:\n\n", os.Args[0])
	_, _ = fmt.Fprintf(os.Stderr, "  Prints each datagram recorded by simclient's [capture] option, together with\n")
	_, _ = fmt.Fprintf(os.Stderr, "  its decoded envelope and message type.\n\n")

	os.Exit(1)
}

// describe a Record in one line.
func describe(rec capture.Record, codec circuit.Codec) string {
	arrow := "<-"
	if rec.Direction == circuit.Outbound {
		arrow = "->"
	}

	prefix := fmt.Sprintf("%s %s %10d", rec.Timestamp.Format("15:04:05.000"), arrow, rec.Sequence)

	p, err := rec.Packet(codec)
	if err != nil {
		return fmt.Sprintf("%s  %d octets, %v", prefix, len(rec.Data), err)
	}

	var flags string
	if p.Reliable {
		flags += "R"
	}
	if p.Resent {
		flags += "r"
	}
	if p.Zerocoded {
		flags += "Z"
	}

	line := fmt.Sprintf("%s %-3s %v", prefix, flags, p.Message.Type())
	if len(p.Acks) > 0 {
		line += fmt.Sprintf(" acks=%v", p.Acks)
	}
	if stringer, ok := p.Message.(fmt.Stringer); ok {
		line += " " + stringer.String()
	}
	return line
}

func main() {
	if len(os.Args) != 2 {
		printUsage()
	}

	file, err := capture.OpenFile(os.Args[1])
	if err != nil {
		log.WithError(err).Fatal("Opening capture errored")
	}
	defer file.Close()

	codec := circuit.NewCodec(messages.NewCatalog())

	for {
		rec, err := file.ReadRecord()
		if err == io.EOF {
			break
		} else if err != nil {
			log.WithError(err).Fatal("Reading capture errored")
		}

		fmt.Println(describe(rec, codec))
	}
}
