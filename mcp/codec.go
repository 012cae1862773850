package mcp

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// Width is the wire-level size of a value, in bytes (binary mode) or
// the unit the corresponding ASCII field is derived from.
type Width int

const (
	Byte  Width = 1
	Short Width = 2
	Long  Width = 4
)

// asciiDigits is the hex-digit width of an ASCII-mode field for a given
// Width, grounded on core.py::encode_value's per-mode rjust width.
func (w Width) asciiDigits() int {
	switch w {
	case Byte:
		return 2
	case Short:
		return 4
	case Long:
		return 8
	default:
		return 0
	}
}

func (w Width) bitSize() uint {
	switch w {
	case Byte:
		return 8
	case Short:
		return 16
	case Long:
		return 32
	default:
		return 0
	}
}

// EncodeValue renders value on the wire for the given width and comm
// type. Binary mode is little-endian; ASCII mode is an upper-case
// zero-padded hex string of fixed width. Grounded on
// original_source/mcprotocol/core.py::encode_value.
func EncodeValue(value int64, width Width, ascii bool) ([]byte, error) {
	digits := width.asciiDigits()
	if digits == 0 {
		return nil, fmt.Errorf("mcp: invalid value width %v", width)
	}

	if !ascii {
		buf := make([]byte, int(width))
		switch width {
		case Byte:
			buf[0] = byte(value)
		case Short:
			binary.LittleEndian.PutUint16(buf, uint16(value))
		case Long:
			binary.LittleEndian.PutUint32(buf, uint32(value))
		}
		return buf, nil
	}

	mask := uint64(1)<<width.bitSize() - 1
	text := strings.ToUpper(fmt.Sprintf("%0*x", digits, uint64(value)&mask))
	return []byte(text), nil
}

// DecodeValue reads a value off the wire for the given width and comm
// type. When signed is true the result is sign-extended as two's
// complement at the field's bit width. Grounded on
// original_source/mcprotocol/core.py::decode_value/twos_complement.
func DecodeValue(data []byte, width Width, ascii bool, signed bool) (int64, error) {
	if !ascii {
		if len(data) < int(width) {
			return 0, fmt.Errorf("mcp: short read decoding %v-byte value", width)
		}
		var raw uint64
		switch width {
		case Byte:
			raw = uint64(data[0])
		case Short:
			raw = uint64(binary.LittleEndian.Uint16(data))
		case Long:
			raw = uint64(binary.LittleEndian.Uint32(data))
		default:
			return 0, fmt.Errorf("mcp: invalid value width %v", width)
		}
		if signed {
			return twosComplement(int64(raw), width), nil
		}
		return int64(raw), nil
	}

	digits := width.asciiDigits()
	if digits == 0 || len(data) < digits {
		return 0, fmt.Errorf("mcp: short read decoding ascii %v-digit value", digits)
	}
	raw, err := strconv.ParseUint(string(data[:digits]), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("mcp: invalid ascii value %q: %w", data[:digits], err)
	}
	if signed {
		return twosComplement(int64(raw), width), nil
	}
	return int64(raw), nil
}

// twosComplement reinterprets val's low width-bits as a signed integer.
func twosComplement(val int64, width Width) int64 {
	bitSize := width.bitSize()
	signBit := int64(1) << (bitSize - 1)
	mask := int64(1)<<bitSize - 1
	val &= mask
	if val&signBit != 0 {
		val -= int64(1) << bitSize
	}
	return val
}

// UnpackBits splits a binary-mode bit-unit payload into individual 0/1
// values. Per-byte nibble packing: even index reads bit 4, odd index
// reads bit 0 of the same byte. Grounded on
// original_source/mcprotocol/protocol_3e.py::batchread_bitunits.
func UnpackBits(data []byte, count int) ([]int, error) {
	values := make([]int, count)
	for i := 0; i < count; i++ {
		byteIdx := i / 2
		if byteIdx >= len(data) {
			return nil, fmt.Errorf("mcp: short read unpacking bit %d of %d", i, count)
		}
		b := data[byteIdx]
		if i%2 == 0 {
			values[i] = int((b >> 4) & 1)
		} else {
			values[i] = int(b & 1)
		}
	}
	return values, nil
}

// UnpackBitsASCII splits an ASCII-mode bit-unit payload ("0"/"1" bytes)
// into individual values.
func UnpackBitsASCII(data []byte, count int) ([]int, error) {
	if len(data) < count {
		return nil, fmt.Errorf("mcp: short read unpacking %d ascii bits", count)
	}
	values := make([]int, count)
	for i := 0; i < count; i++ {
		switch data[i] {
		case '0':
			values[i] = 0
		case '1':
			values[i] = 1
		default:
			return nil, fmt.Errorf("mcp: invalid ascii bit value %q", data[i])
		}
	}
	return values, nil
}

// PackBits packs 0/1 values into the binary-mode nibble layout used when
// assembling a bit-unit write payload. Kept for symmetry with
// UnpackBits even though writes are out of scope for the public Client.
func PackBits(values []int) []byte {
	buf := make([]byte, (len(values)+1)/2)
	for i, v := range values {
		if v == 0 {
			continue
		}
		byteIdx := i / 2
		if i%2 == 0 {
			buf[byteIdx] |= 1 << 4
		} else {
			buf[byteIdx] |= 1
		}
	}
	return buf
}
