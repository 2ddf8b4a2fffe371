// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"

	"github.com/dsrich/opensim-networking/pkg/capture"
	"github.com/dsrich/opensim-networking/pkg/circuit"
	"github.com/dsrich/opensim-networking/pkg/simulator"
)

// tomlConfig describes the TOML-configuration.
type tomlConfig struct {
	Logging logConf
	Circuit circuitConf
	Session sessionConf
	Capture captureConf
}

// logConf describes the Logging-configuration block.
type logConf struct {
	Level        string
	ReportCaller bool `toml:"report-caller"`
	Format       string
}

// circuitConf describes the Circuit-configuration block. Durations are strings like "5s" or "100ms".
type circuitConf struct {
	SendTimeout      string `toml:"send-timeout"`
	SendAttempts     int    `toml:"send-attempts"`
	AckFlushInterval string `toml:"ack-flush-interval"`
	SeenHorizon      string `toml:"seen-horizon"`
	HandshakeTimeout string `toml:"handshake-timeout"`
}

// sessionConf describes the Session-configuration block, as resulting from the login.
type sessionConf struct {
	Sim              string
	AgentId          string `toml:"agent-id"`
	SessionId        string `toml:"session-id"`
	CircuitCode      uint32 `toml:"circuit-code"`
	CapabilitiesSeed string `toml:"capabilities-seed"`
}

// captureConf describes the Capture-configuration block.
type captureConf struct {
	File string
}

// setupLogging based on the Logging-configuration block.
func setupLogging(conf logConf) {
	if conf.Level != "" {
		if lvl, err := log.ParseLevel(conf.Level); err != nil {
			log.WithFields(log.Fields{
				"level":    conf.Level,
				"error":    err,
				"provided": "panic,fatal,error,warn,info,debug,trace",
			}).Warn("Failed to set log level. Please select one of the provided ones")
		} else {
			log.SetLevel(lvl)
		}
	}

	log.SetReportCaller(conf.ReportCaller)

	switch conf.Format {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05.000",
		})

	case "json":
		log.SetFormatter(&log.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})

	default:
		log.Warn("Unknown logging format")
	}
}

// parseDuration sets the target if the value is not empty.
func parseDuration(name, value string, target *time.Duration) error {
	if value == "" {
		return nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("circuit.%s: %w", name, err)
	}
	*target = d
	return nil
}

// parseSimulatorConfig based on the Circuit-configuration block. Missing values are taken from the defaults.
func parseSimulatorConfig(conf circuitConf) (simConf simulator.Config, err error) {
	simConf = simulator.DefaultConfig()

	durations := []struct {
		name   string
		value  string
		target *time.Duration
	}{
		{"send-timeout", conf.SendTimeout, &simConf.Circuit.SendTimeout},
		{"ack-flush-interval", conf.AckFlushInterval, &simConf.Circuit.AckFlushInterval},
		{"seen-horizon", conf.SeenHorizon, &simConf.Circuit.SeenHorizon},
		{"handshake-timeout", conf.HandshakeTimeout, &simConf.HandshakeTimeout},
	}
	for _, d := range durations {
		if dErr := parseDuration(d.name, d.value, d.target); dErr != nil {
			err = multierror.Append(err, dErr)
		}
	}

	if conf.SendAttempts != 0 {
		simConf.Circuit.SendAttempts = conf.SendAttempts
	}

	if vErr := simConf.Circuit.Validate(); vErr != nil {
		err = multierror.Append(err, vErr)
	}
	return
}

// parseConnectInfo based on the Session-configuration block.
func parseConnectInfo(conf sessionConf) (info simulator.ConnectInfo, err error) {
	if conf.Sim == "" {
		err = fmt.Errorf("session.sim is empty")
		return
	}

	info.ConnectInfo, err = circuit.ParseConnectInfo(conf.Sim, conf.AgentId, conf.SessionId, conf.CircuitCode)
	info.CapabilitiesSeed = conf.CapabilitiesSeed
	return
}

// config is the parsed configuration of a simclient.
type config struct {
	info     simulator.ConnectInfo
	simConf  simulator.Config
	recorder *capture.Recorder
}

// parseConfig from a TOML file and set up the logging.
func parseConfig(filename string) (conf config, err error) {
	var tomlConf tomlConfig
	if _, err = toml.DecodeFile(filename, &tomlConf); err != nil {
		return
	}

	setupLogging(tomlConf.Logging)

	if conf.simConf, err = parseSimulatorConfig(tomlConf.Circuit); err != nil {
		return
	}
	if conf.info, err = parseConnectInfo(tomlConf.Session); err != nil {
		return
	}

	if tomlConf.Capture.File != "" {
		if conf.recorder, err = capture.CreateRecorder(tomlConf.Capture.File); err != nil {
			return
		}
		conf.simConf.Circuit.Tracer = conf.recorder

		log.WithField("file", tomlConf.Capture.File).Info("Capturing datagrams")
	}

	log.WithFields(log.Fields{
		"sim":           conf.info.Address(),
		"agent":         conf.info.AgentID,
		"send timeout":  conf.simConf.Circuit.SendTimeout,
		"send attempts": conf.simConf.Circuit.SendAttempts,
	}).Debug("Parsed configuration")

	return
}
