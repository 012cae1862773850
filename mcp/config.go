package mcp

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// ConnectionConfig is everything needed to open a session with a PLC:
// endpoint, series, comm type, and the 3E routing header fields.
// Grounded on original_source/plc_operations.py::PLCConnectionConfig
// (env var names/defaults) generalized with the access-option fields
// from original_source/mcprotocol/protocol_3e.py::setaccessopt.
type ConnectionConfig struct {
	Host      string
	Port      int
	Series    Series
	Transport Transport
	ASCII     bool
	Timeout   time.Duration

	Network       byte
	PC            byte
	DestModuleIO  uint16
	DestModuleSta byte
	TimerSec      int // monitoring timer, in seconds; converted to 250ms units on the wire
}

// Addr returns the "host:port" dial target.
func (c ConnectionConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c ConnectionConfig) frameOptions() frameOptions {
	return frameOptions{
		ASCII:         c.ASCII,
		Network:       c.Network,
		PC:            c.PC,
		DestModuleIO:  c.DestModuleIO,
		DestModuleSta: c.DestModuleSta,
		Timer:         uint16(c.TimerSec * 4),
	}
}

// DefaultConnectionConfig mirrors PLCConnectionConfig's built-in
// defaults: loopback, port 5511, a 3 second timeout, binary comm type
// over TCP against a Q-series PLC with the routing header left at its
// "unspecified" values.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		Host:          "127.0.0.1",
		Port:          5511,
		Series:        SeriesQ,
		Transport:     TransportTCP,
		ASCII:         false,
		Timeout:       3 * time.Second,
		Network:       0,
		PC:            0xFF,
		DestModuleIO:  0x3FF,
		DestModuleSta: 0,
		TimerSec:      4,
	}
}

// ConfigFromEnv reads PLC_IP, PLC_PORT, PLC_TIMEOUT_SEC, PLC_SERIES,
// PLC_COMMTYPE, and PLC_TRANSPORT, falling back to
// DefaultConnectionConfig's values for anything unset or unparsable.
// Grounded on plc_operations.py::PLCConnectionConfig.
func ConfigFromEnv() ConnectionConfig {
	cfg := DefaultConnectionConfig()

	if v := os.Getenv("PLC_IP"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("PLC_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := os.Getenv("PLC_TIMEOUT_SEC"); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Timeout = time.Duration(secs * float64(time.Second))
		}
	}
	if v := os.Getenv("PLC_SERIES"); v != "" {
		if series, err := ParseSeries(v); err == nil {
			cfg.Series = series
		}
	}
	if v := os.Getenv("PLC_COMMTYPE"); v == "ascii" {
		cfg.ASCII = true
	}
	switch os.Getenv("PLC_TRANSPORT") {
	case "tcp":
		cfg.Transport = TransportTCP
	case "udp":
		cfg.Transport = TransportUDP
	}

	return cfg
}

var (
	defaultOnce   sync.Once
	defaultConfig ConnectionConfig
)

// Default returns the process-wide ConnectionConfig, built once from
// the environment on first use. Later calls always observe the same
// value; it is not a mutable process-wide setting, only a lazily
// computed accessor.
func Default() ConnectionConfig {
	defaultOnce.Do(func() {
		defaultConfig = ConfigFromEnv()
	})
	return defaultConfig
}
