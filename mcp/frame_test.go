package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultOpts() frameOptions {
	return frameOptions{
		ASCII:         false,
		Network:       0,
		PC:            0xFF,
		DestModuleIO:  0x3FF,
		DestModuleSta: 0,
		Timer:         16,
	}
}

func TestBuildFrameSubheaderAlwaysBigEndian(t *testing.T) {
	frame, err := buildFrame(defaultOpts(), []byte{0x01, 0x02})
	require.NoError(t, err)
	// subheader 0x5000 must render big-endian even though every other
	// binary field on the wire is little-endian.
	assert.Equal(t, []byte{0x50, 0x00}, frame[:2])

	asciiFrame, err := buildFrame(frameOptions{ASCII: true, PC: 0xFF, DestModuleIO: 0x3FF}, []byte("0102"))
	require.NoError(t, err)
	assert.Equal(t, "5000", string(asciiFrame[:4]))
}

func TestBuildDeviceDataBinaryNonIQR(t *testing.T) {
	spec := DeviceSpec{Kind: "D", Address: 0x64, Length: 1}
	data, err := buildDeviceData(defaultOpts(), SeriesQ, spec)
	require.NoError(t, err)
	// 3-byte little-endian address + 1-byte device code (D = 0xA8).
	assert.Equal(t, []byte{0x64, 0x00, 0x00, 0xA8}, data)
}

func TestBuildDeviceDataBinaryIQR(t *testing.T) {
	spec := DeviceSpec{Kind: "D", Address: 0x64, Length: 1}
	data, err := buildDeviceData(defaultOpts(), SeriesIQR, spec)
	require.NoError(t, err)
	// 4-byte little-endian address + 2-byte device code.
	assert.Equal(t, []byte{0x64, 0x00, 0x00, 0x00, 0xA8, 0x00}, data)
}

func TestBuildDeviceDataASCIIUsesDecimalAddressRegardlessOfKindRadix(t *testing.T) {
	opts := frameOptions{ASCII: true}
	// X is hex-addressed for parsing purposes, but the ASCII device-data
	// encoding always renders the address field as decimal digits.
	spec := DeviceSpec{Kind: "X", Address: 0x1A, Length: 1}
	data, err := buildDeviceData(opts, SeriesQ, spec)
	require.NoError(t, err)
	assert.Equal(t, "X*000026", string(data))
}

func TestParseStatusNonZeroIsProtocolError(t *testing.T) {
	opts := defaultOpts()
	resp := make([]byte, 13)
	resp[9] = 0x50
	resp[10] = 0xC0 // little-endian 0xC050
	err := parseStatus(resp, opts)
	require.Error(t, err)
	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, uint16(0xC050), protoErr.Code())
}

func TestPayloadZeroStatus(t *testing.T) {
	opts := defaultOpts()
	resp := make([]byte, 15)
	resp[9] = 0x00
	resp[10] = 0x00
	resp[11] = 0xAB
	resp[12] = 0xCD
	body, err := payload(resp, opts)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAB, 0xCD, 0x00, 0x00}, body)
}
