package mcp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupDeviceCode(t *testing.T) {
	cases := []struct {
		name   string
		series Series
		kind   string
		want   DeviceCode
	}{
		{"D on Q series", SeriesQ, "D", DeviceCode{BinaryCode: 0xA8, ASCIICode: "D*", Class: ClassWord}},
		{"X on Q series", SeriesQ, "X", DeviceCode{BinaryCode: 0x9C, ASCIICode: "X*", Class: ClassBit}},
		{"STS renamed to SS on Q series", SeriesQ, "STS", DeviceCode{BinaryCode: 0xC7, ASCIICode: "SS", Class: ClassBit}},
		{"STS kept on iQ-R", SeriesIQR, "STS", DeviceCode{BinaryCode: 0xC7, ASCIICode: "STS*", Class: ClassBit}},
		{"LSTN is iQ-R-only dword", SeriesIQR, "LSTN", DeviceCode{BinaryCode: 0x5A, ASCIICode: "LSTN", Class: ClassDword}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := LookupDeviceCode(tc.series, tc.kind)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLookupDeviceCodeSeriesTableDiff(t *testing.T) {
	// Q and iQ-R disagree on STS's ASCII rendering and nothing else about
	// the bit class; cmp.Diff pinpoints exactly that field when the two
	// series' device codes drift apart.
	q, err := LookupDeviceCode(SeriesQ, "STS")
	require.NoError(t, err)
	iqr, err := LookupDeviceCode(SeriesIQR, "STS")
	require.NoError(t, err)

	want := DeviceCode{BinaryCode: 0xC7, ASCIICode: "SS", Class: ClassBit}
	if diff := cmp.Diff(want, q); diff != "" {
		t.Errorf("Q series STS code mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(q.Class, iqr.Class); diff != "" {
		t.Errorf("STS class should match across series (-Q +iQ-R):\n%s", diff)
	}
	assert.NotEqual(t, q.ASCIICode, iqr.ASCIICode)
}

func TestLookupDeviceCodeUnsupported(t *testing.T) {
	_, err := LookupDeviceCode(SeriesQ, "LSTN")
	require.Error(t, err)
	var codeErr *DeviceCodeError
	assert.ErrorAs(t, err, &codeErr)
}

func TestParseSeries(t *testing.T) {
	series, err := ParseSeries("iQ-R")
	require.NoError(t, err)
	assert.Equal(t, SeriesIQR, series)

	_, err = ParseSeries("bogus")
	require.Error(t, err)
	var plcErr *PLCTypeError
	assert.ErrorAs(t, err, &plcErr)
}
