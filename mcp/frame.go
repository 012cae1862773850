package mcp

import (
	"fmt"
)

// frameOptions carries the header fields that accompany every 3E
// request, grounded on
// original_source/mcprotocol/protocol_3e.py::Type3E.__init__/setaccessopt.
type frameOptions struct {
	ASCII         bool
	Network       byte
	PC            byte
	DestModuleIO  uint16
	DestModuleSta byte
	Timer         uint16 // 250ms units
}

const subheader3E = 0x5000

// wordSize returns the number of bytes (binary) or hex digits (ASCII)
// one "word" field occupies on the wire.
func (o frameOptions) wordSize() int {
	if o.ASCII {
		return 4
	}
	return 2
}

// buildFrame wraps requestData (command + subcommand + body) in the 3E
// send-frame: subheader, routing header, data length, monitoring timer.
// The subheader is always rendered big-endian/as literal text "5000" —
// the one field that does not follow the rest of the frame's
// little-endian (binary) or plain-hex-text (ASCII) convention, per
// spec.md §4.4 and protocol_3e.py::_make_senddata.
func buildFrame(opts frameOptions, requestData []byte) ([]byte, error) {
	frame := make([]byte, 0, 16+len(requestData))

	if opts.ASCII {
		frame = append(frame, []byte(fmt.Sprintf("%04X", subheader3E))...)
	} else {
		frame = append(frame, byte(subheader3E>>8), byte(subheader3E))
	}

	fields := []struct {
		value int64
		width Width
	}{
		{int64(opts.Network), Byte},
		{int64(opts.PC), Byte},
		{int64(opts.DestModuleIO), Short},
		{int64(opts.DestModuleSta), Byte},
	}
	for _, f := range fields {
		enc, err := EncodeValue(f.value, f.width, opts.ASCII)
		if err != nil {
			return nil, err
		}
		frame = append(frame, enc...)
	}

	dataLength := opts.wordSize() + len(requestData)
	lengthEnc, err := EncodeValue(int64(dataLength), Short, opts.ASCII)
	if err != nil {
		return nil, err
	}
	frame = append(frame, lengthEnc...)

	timerEnc, err := EncodeValue(int64(opts.Timer), Short, opts.ASCII)
	if err != nil {
		return nil, err
	}
	frame = append(frame, timerEnc...)

	frame = append(frame, requestData...)
	return frame, nil
}

// buildCommandData encodes a command+subcommand pair, the first two
// fields of every request body.
func buildCommandData(opts frameOptions, command, subcommand uint16) ([]byte, error) {
	cmd, err := EncodeValue(int64(command), Short, opts.ASCII)
	if err != nil {
		return nil, err
	}
	sub, err := EncodeValue(int64(subcommand), Short, opts.ASCII)
	if err != nil {
		return nil, err
	}
	return append(cmd, sub...), nil
}

// buildDeviceData encodes a single device's (code, address) pair for
// the given series. Binary mode uses a 3-byte (4-byte on iQ-R) little
// endian address plus a 1-byte (2-byte on iQ-R) code; ASCII mode uses
// the fixed-width code name followed by a decimal zero-padded address
// (6 digits, 8 on iQ-R) regardless of the kind's own address radix.
// Grounded on device_manager.py::make_device_data.
func buildDeviceData(opts frameOptions, series Series, spec DeviceSpec) ([]byte, error) {
	code, err := LookupDeviceCode(series, spec.Kind)
	if err != nil {
		return nil, err
	}

	if opts.ASCII {
		width := 6
		if series == SeriesIQR {
			width = 8
		}
		return []byte(fmt.Sprintf("%s%0*d", code.ASCIICode, width, spec.Address)), nil
	}

	if series == SeriesIQR {
		buf := make([]byte, 0, 6)
		buf = append(buf, byte(spec.Address), byte(spec.Address>>8), byte(spec.Address>>16), byte(spec.Address>>24))
		buf = append(buf, byte(code.BinaryCode), byte(code.BinaryCode>>8))
		return buf, nil
	}

	buf := make([]byte, 0, 4)
	buf = append(buf, byte(spec.Address), byte(spec.Address>>8), byte(spec.Address>>16))
	buf = append(buf, byte(code.BinaryCode))
	return buf, nil
}

// answerOffsets returns (statusIndex, dataIndex) for a 3E response,
// grounded on protocol_3e.py::_get_answerstatus_index/_get_answerdata_index.
func answerOffsets(ascii bool) (status, data int) {
	if ascii {
		return 18, 22
	}
	return 9, 11
}

// parseStatus validates the end-code of a 3E response, found at the
// status offset from answerOffsets, and returns a *ProtocolError for a
// non-zero end-code.
func parseStatus(resp []byte, opts frameOptions) error {
	statusIdx, _ := answerOffsets(opts.ASCII)
	width := Short
	if statusIdx+width.asciiDigitsOrBytes(opts.ASCII) > len(resp) {
		return fmt.Errorf("mcp: response too short to contain a status code")
	}
	end := statusIdx + width.asciiDigitsOrBytes(opts.ASCII)
	status, err := DecodeValue(resp[statusIdx:end], width, opts.ASCII, false)
	if err != nil {
		return err
	}
	if status != 0 {
		return newProtocolError(uint16(status))
	}
	return nil
}

// asciiDigitsOrBytes returns the field's wire length: hex digits in
// ASCII mode, raw bytes in binary mode.
func (w Width) asciiDigitsOrBytes(ascii bool) int {
	if ascii {
		return w.asciiDigits()
	}
	return int(w)
}

// payload returns the response body following the header+status
// prefix.
func payload(resp []byte, opts frameOptions) ([]byte, error) {
	if err := parseStatus(resp, opts); err != nil {
		return nil, err
	}
	_, dataIdx := answerOffsets(opts.ASCII)
	if dataIdx > len(resp) {
		return nil, fmt.Errorf("mcp: response too short to contain a payload")
	}
	return resp[dataIdx:], nil
}
