package mcp

import "strings"

// Series identifies a MELSEC CPU family. iQ-R carries a wider
// address/device-code field and an extended device set; the others
// share a common table.
type Series int

const (
	SeriesQ Series = iota
	SeriesL
	SeriesQnA
	SeriesIQL
	SeriesIQR
)

func (s Series) String() string {
	switch s {
	case SeriesQ:
		return "Q"
	case SeriesL:
		return "L"
	case SeriesQnA:
		return "QnA"
	case SeriesIQL:
		return "iQ-L"
	case SeriesIQR:
		return "iQ-R"
	default:
		return "unknown"
	}
}

// ParseSeries resolves one of the five recognized series tokens.
func ParseSeries(s string) (Series, error) {
	switch s {
	case "Q":
		return SeriesQ, nil
	case "L":
		return SeriesL, nil
	case "QnA":
		return SeriesQnA, nil
	case "iQ-L":
		return SeriesIQL, nil
	case "iQ-R":
		return SeriesIQR, nil
	default:
		return 0, &PLCTypeError{}
	}
}

// Class identifies the wire-level unit size of a device family.
type Class int

const (
	ClassBit Class = iota
	ClassWord
	ClassDword
)

func (c Class) String() string {
	switch c {
	case ClassBit:
		return "bit"
	case ClassWord:
		return "word"
	case ClassDword:
		return "dword"
	default:
		return "unknown"
	}
}

// DeviceCode is the wire-level identity of a device family for a given
// PLC series: its binary code point, its fixed-width ASCII name, and its
// unit class.
type DeviceCode struct {
	BinaryCode uint16
	ASCIICode  string
	Class      Class
}

// binaryCodes is the common table shared by all series, grounded on
// original_source/mcprotocol/constants.py::DeviceConstants.
var binaryCodes = map[string]uint16{
	"SM":  0x91,
	"SD":  0xA9,
	"X":   0x9C,
	"Y":   0x9D,
	"M":   0x90,
	"L":   0x92,
	"F":   0x93,
	"V":   0x94,
	"B":   0xA0,
	"D":   0xA8,
	"W":   0xB4,
	"TS":  0xC1,
	"TC":  0xC0,
	"TN":  0xC2,
	"STS": 0xC7,
	"STC": 0xC6,
	"STN": 0xC8,
	"CS":  0xC4,
	"CC":  0xC3,
	"CN":  0xC5,
	"SB":  0xA1,
	"SW":  0xB5,
	"DX":  0xA2,
	"DY":  0xA3,
	"R":   0xAF,
	"ZR":  0xB0,
}

// binaryCodesIQR extends binaryCodes with iQ-R-only devices.
var binaryCodesIQR = map[string]uint16{
	"LTS":  0x51,
	"LTC":  0x50,
	"LTN":  0x52,
	"LSTS": 0x59,
	"LSTN": 0x5A,
	"LCS":  0x55,
	"LCC":  0x54,
	"LCN":  0x56,
	"LZ":   0x62,
	"RD":   0x2C,
}

// hexAddressed is the set of device families whose address digits are
// interpreted as hexadecimal rather than decimal.
var hexAddressed = map[string]bool{
	"X": true, "Y": true, "B": true, "W": true,
	"SB": true, "SW": true, "DX": true, "DY": true, "ZR": true,
}

// classCommon classifies the common table's devices.
var classCommon = map[string]Class{
	"SM": ClassBit, "X": ClassBit, "Y": ClassBit, "M": ClassBit, "L": ClassBit,
	"F": ClassBit, "V": ClassBit, "B": ClassBit, "TS": ClassBit, "TC": ClassBit,
	"STS": ClassBit, "STC": ClassBit, "CS": ClassBit, "CC": ClassBit,
	"SB": ClassBit, "DX": ClassBit, "DY": ClassBit,

	"SD": ClassWord, "D": ClassWord, "W": ClassWord, "TN": ClassWord,
	"STN": ClassWord, "CN": ClassWord, "SW": ClassWord, "R": ClassWord,
	"ZR": ClassWord, "RD": ClassWord,
}

// classIQRExtra classifies the iQ-R-only devices; RD is classified
// already in classCommon since word_devices in the source includes it
// unconditionally.
var classIQRExtra = map[string]Class{
	"LTS": ClassBit, "LTC": ClassBit, "LTN": ClassBit,
	"LSTS": ClassBit, "LCS": ClassBit, "LCC": ClassBit,

	"LSTN": ClassDword, "LCN": ClassDword, "LZ": ClassDword,
}

// LookupDeviceCode resolves the wire-level identity of a device kind for
// a PLC series. Kind must already be upper-cased (Parse does this).
func LookupDeviceCode(series Series, kind string) (DeviceCode, error) {
	padding := 2
	if series == SeriesIQR {
		padding = 4
	}

	if ascii, ok := renamedASCII(series, kind); ok {
		code, ok := binaryCodes[kind]
		if !ok {
			return DeviceCode{}, &DeviceCodeError{Series: series, Kind: kind}
		}
		class, ok := classCommon[kind]
		if !ok {
			return DeviceCode{}, &DeviceCodeError{Series: series, Kind: kind}
		}
		return DeviceCode{BinaryCode: code, ASCIICode: ascii, Class: class}, nil
	}

	if code, ok := binaryCodes[kind]; ok {
		class, ok := classCommon[kind]
		if !ok {
			return DeviceCode{}, &DeviceCodeError{Series: series, Kind: kind}
		}
		return DeviceCode{
			BinaryCode: code,
			ASCIICode:  padASCII(kind, padding),
			Class:      class,
		}, nil
	}

	if series == SeriesIQR {
		if code, ok := binaryCodesIQR[kind]; ok {
			class, ok := classIQRExtra[kind]
			if !ok {
				class, ok = classCommon[kind]
			}
			if !ok {
				return DeviceCode{}, &DeviceCodeError{Series: series, Kind: kind}
			}
			return DeviceCode{
				BinaryCode: code,
				ASCIICode:  padASCII(kind, padding),
				Class:      class,
			}, nil
		}
	}

	return DeviceCode{}, &DeviceCodeError{Series: series, Kind: kind}
}

// renamedASCII handles the STS/STC/STN special case: these render as
// SS/SC/SN on non-iQ-R series and keep their full three-letter form on
// iQ-R, per constants.py::get_ascii_devicecode.
func renamedASCII(series Series, kind string) (string, bool) {
	padding := 2
	if series == SeriesIQR {
		padding = 4
	}
	switch kind {
	case "STS":
		if series == SeriesIQR {
			return padASCII("STS", padding), true
		}
		return padASCII("SS", padding), true
	case "STC":
		if series == SeriesIQR {
			return padASCII("STC", padding), true
		}
		return padASCII("SC", padding), true
	case "STN":
		if series == SeriesIQR {
			return padASCII("STN", padding), true
		}
		return padASCII("SN", padding), true
	}
	return "", false
}

// padASCII left-justifies name to width, padded with '*' as the source
// device tables do.
func padASCII(name string, width int) string {
	if len(name) >= width {
		return name
	}
	return name + strings.Repeat("*", width-len(name))
}

// isHexAddressed reports whether kind's address digits are hexadecimal.
func isHexAddressed(kind string) bool {
	return hexAddressed[kind]
}
