package mcp

import "fmt"

// ParseError reports a device-spec string that does not match the
// recognized grammar (see Parse).
type ParseError struct {
	Spec string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid device specification: %s", e.Spec)
}

// DeviceCodeError reports a device kind that parses cleanly but has no
// wire-level mapping for the given PLC series.
type DeviceCodeError struct {
	Series Series
	Kind   string
}

func (e *DeviceCodeError) Error() string {
	return fmt.Sprintf(
		"device %q is not supported on %s series PLC; for hexadecimal devices "+
			"(X, Y, B, W, SB, SW, DX, DY, ZR) with alphabetic addresses, insert "+
			"'0' between device name and address (e.g., XFFF -> X0FFF)",
		e.Kind, e.Series,
	)
}

// ConnectError wraps a transport-level failure: dial, send, recv, or use
// of a Client that is not connected. It always carries a human-readable
// message and, when available, the underlying cause. A response shorter
// than its declared data length is not detected by the transport; only
// the later decoding step reports a response too short for its fields.
type ConnectError struct {
	Message string
	Cause   error
}

func (e *ConnectError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("PLC connection error: %s - %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("PLC connection error: %s", e.Message)
}

func (e *ConnectError) Unwrap() error { return e.Cause }

// ProtocolError reports a non-zero end-code returned by the PLC.
type ProtocolError struct {
	code uint16
}

func newProtocolError(code uint16) *ProtocolError {
	return &ProtocolError{code: code}
}

// Code returns the raw 16-bit end-code the PLC returned.
func (e *ProtocolError) Code() uint16 { return e.code }

func (e *ProtocolError) Error() string {
	if msg, ok := statusMessages[e.code]; ok {
		return fmt.Sprintf("MC protocol error 0x%04X: %s", e.code, msg)
	}
	return fmt.Sprintf("MC protocol error 0x%04X", e.code)
}

// CommTypeError reports an invalid communication-type configuration value.
type CommTypeError struct{}

func (e *CommTypeError) Error() string {
	return `communication type must be "binary" or "ascii"`
}

// PLCTypeError reports an invalid PLC series configuration value.
type PLCTypeError struct{}

func (e *PLCTypeError) Error() string {
	return `PLC type must be "Q", "L", "QnA", "iQ-L", or "iQ-R"`
}

// statusMessages maps 3E end-codes to a short human-readable meaning,
// grounded on original_source/mcprotocol/errors.py::check_mcprotocol_error.
var statusMessages = map[uint16]string{
	0xC050: "internal PLC error",
	0xC051: "not in RUN mode",
	0xC052: "device-count out of range",
	0xC053: "device out of range",
	0xC054: "device write-disabled",
	0xC055: "program executing",
	0xC056: "command malformed",
	0xC058: "parameter error",
	0xC059: "command unsupported by module",
	0xC05C: "request-data error",
	0xC05F: "request-content error",
	0xC060: "request-length error",
	0xC061: "monitor-registration overflow",
	0xC0B5: "CPU error",
}
