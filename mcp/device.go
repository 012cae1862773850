package mcp

import (
	"strconv"
	"strings"
)

// DeviceSpec is the parsed form of a device-spec string such as "D100",
// "M200:3", "X1A", or "YH20".
type DeviceSpec struct {
	Kind    string
	Address int
	Length  int
}

// knownKinds lists every recognized device-kind token, longest first so
// that a scan picks "SM" over "S" and "LSTS" over "L". Grounded on
// original_source/device_readers/base_device_reader.py's known_devices
// list, extended with the iQ-R symbols from spec.md §6 and STS/STC/STN
// from original_source/mcprotocol/constants.py's common device table.
var knownKinds = []string{
	"LSTS", "LSTN",
	"STS", "STC", "STN",
	"LTS", "LTC", "LTN", "LCS", "LCC", "LCN",
	"SM", "SD", "CN", "CC", "CS", "CX", "TN", "TC", "TS", "TX",
	"SB", "SW", "DX", "DY", "ZR", "LZ", "RD",
	"X", "Y", "B", "M", "D", "T", "C", "Z", "H", "L", "F", "V", "R", "W", "S", "U", "N",
}

var knownKindSet = func() map[string]bool {
	set := make(map[string]bool, len(knownKinds))
	for _, k := range knownKinds {
		set[k] = true
	}
	return set
}()

// Parse parses a device-spec string into its (kind, address, length)
// components. Grammar, longest-match and radix rules are grounded on
// original_source/mcprotocol/device_manager.py::parse_device_spec.
func Parse(spec string) (DeviceSpec, error) {
	devicePart := spec
	length := 1

	if idx := strings.IndexByte(spec, ':'); idx >= 0 {
		devicePart = spec[:idx]
		lengthStr := spec[idx+1:]
		n, err := strconv.Atoi(lengthStr)
		if err != nil || n < 1 {
			return DeviceSpec{}, &ParseError{Spec: spec}
		}
		length = n
	}

	if devicePart == "" {
		return DeviceSpec{}, &ParseError{Spec: spec}
	}

	upper := strings.ToUpper(devicePart)

	// H-notation forces a hex address, e.g. "YH20" -> (Y, 0x20). The
	// marker must appear strictly after index 0: a bare "H100" is the
	// single-letter kind H with a decimal address, not H-notation.
	if hPos := strings.IndexByte(upper, 'H'); hPos > 0 {
		kind := upper[:hPos]
		addrStr := upper[hPos+1:]
		if !knownKindSet[kind] || addrStr == "" {
			return DeviceSpec{}, &ParseError{Spec: spec}
		}
		addr, err := strconv.ParseInt(addrStr, 16, 64)
		if err != nil {
			return DeviceSpec{}, &ParseError{Spec: spec}
		}
		return DeviceSpec{Kind: kind, Address: int(addr), Length: length}, nil
	}

	for _, kind := range knownKinds {
		if !strings.HasPrefix(upper, kind) {
			continue
		}
		addrStr := upper[len(kind):]
		if addrStr == "" {
			continue
		}
		if addr, ok := parseAddress(kind, addrStr); ok {
			return DeviceSpec{Kind: kind, Address: addr, Length: length}, nil
		}
	}

	return DeviceSpec{}, &ParseError{Spec: spec}
}

// parseAddress applies the radix rule: an explicit 0x/0X prefix always
// forces hex; otherwise decimal is tried first, falling back to hex only
// for hex-addressed families.
func parseAddress(kind, addrStr string) (int, bool) {
	if strings.HasPrefix(addrStr, "0X") {
		v, err := strconv.ParseInt(addrStr[2:], 16, 64)
		if err != nil {
			return 0, false
		}
		return int(v), true
	}

	if v, err := strconv.ParseInt(addrStr, 10, 64); err == nil {
		return int(v), true
	}

	if isHexAddressed(kind) {
		if v, err := strconv.ParseInt(addrStr, 16, 64); err == nil {
			return int(v), true
		}
	}

	return 0, false
}
