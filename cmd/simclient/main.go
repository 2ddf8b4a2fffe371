// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"

	"github.com/dsrich/opensim-networking/pkg/circuit"
	"github.com/dsrich/opensim-networking/pkg/messages"
	"github.com/dsrich/opensim-networking/pkg/simulator"
)

// waitSigint blocks the current thread until a SIGINT appears or the circuit is gone.
func waitSigint(done <-chan struct{}) {
	signalSyn := make(chan os.Signal, 1)
	signal.Notify(signalSyn, os.Interrupt)

	select {
	case <-signalSyn:
	case <-done:
		log.Warn("Circuit was terminated")
	}
}

// handleLayerData logs the layer type of each received LayerData message.
func handleLayerData(msg messages.Message, _ *circuit.Circuit) error {
	layerData, ok := msg.(*messages.LayerData)
	if !ok {
		return circuit.ErrWrongHandler
	}

	layerType, err := simulator.LayerTypeOf(layerData)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"layer":  layerType,
		"octets": len(layerData.LayerData.Data),
	}).Info("Received LayerData")
	return nil
}

func main() {
	if len(os.Args) != 2 {
		log.Fatalf("Usage: %s configuration.toml", os.Args[0])
	}

	conf, err := parseConfig(os.Args[1])
	if err != nil {
		log.WithFields(log.Fields{
			"error": err,
		}).Fatal("Failed to parse config")
	}

	handlers := circuit.MessageHandlers{
		messages.TypeLayerData: handleLayerData,
	}

	sim, err := simulator.Connect(conf.info, handlers, conf.simConf)
	if err != nil {
		log.WithError(err).Fatal("Connecting to simulator failed")
	}

	log.WithFields(log.Fields{
		"simulator": sim.Locator(),
		"region":    sim.RegionInfo(),
	}).Info("Connected")

	waitSigint(sim.Circuit().Done())
	log.Info("Shutting down..")

	if err := sim.Close(); err != nil {
		log.WithError(err).Warn("Closing simulator errored")
	}

	log.WithField("stats", sim.Circuit().Stats()).Info("Circuit statistics")

	if conf.recorder != nil {
		if err := conf.recorder.Close(); err != nil {
			log.WithError(err).Warn("Closing capture errored")
		}
	}
}
