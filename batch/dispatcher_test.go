package batch

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hi-ropon/go-melsec/mcp"
)

// queuePLC serves len(responses) sequential request/response cycles on
// a single accepted connection, replying with responses[i] to the i-th
// frame it reads, in order. Mirrors the one-shared-connection-per-batch
// lifecycle batch.Dispatcher relies on.
func queuePLC(t *testing.T, responses [][]byte) (host string, port int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 4096)
		for _, resp := range responses {
			if _, err := conn.Read(buf); err != nil {
				return
			}
			if _, err := conn.Write(resp); err != nil {
				return
			}
		}
	}()

	h, p, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err = strconv.Atoi(p)
	require.NoError(t, err)
	return h, port
}

// binaryResponse builds a minimal 3E binary response: 9 bytes of
// unexamined header, a zero status, and the given payload.
func binaryResponse(payload []byte) []byte {
	resp := make([]byte, 9, 11+len(payload))
	resp = append(resp, 0x00, 0x00) // status = success
	resp = append(resp, payload...)
	return resp
}

// binaryErrorResponse builds a 3E binary response carrying a non-zero
// end code and no payload, the shape that triggers *mcp.ProtocolError.
func binaryErrorResponse(code uint16) []byte {
	resp := make([]byte, 9, 11)
	return append(resp, byte(code), byte(code>>8))
}

// int16le encodes a signed short as little-endian bytes.
func int16le(v int16) []byte {
	return []byte{byte(v), byte(v >> 8)}
}

func TestDispatcherReadMixedClasses(t *testing.T) {
	// The dispatcher issues the bit group first, then the word group, so
	// the fake PLC's response queue mirrors that order.
	bitResp := binaryResponse([]byte{0x10}) // bit4 set -> value 1
	wordResp := binaryResponse([]byte{0x2A, 0x00})

	host, port := queuePLC(t, [][]byte{bitResp, wordResp})

	cfg := mcp.DefaultConnectionConfig()
	cfg.Host = host
	cfg.Port = port
	cfg.Timeout = time.Second

	dispatcher := NewDispatcher(cfg)
	results := dispatcher.Read(context.Background(), []string{"X10", "D100"})

	require.Len(t, results, 2)
	require.True(t, results[0].Success)
	require.Equal(t, []int64{1}, results[0].Values)
	require.True(t, results[1].Success)
	require.Equal(t, []int64{42}, results[1].Values)
}

func TestDispatcherReadWordGroupSlicesMultiLengthSpecs(t *testing.T) {
	// D100 (length 1) and D200:2 (length 2) expand to three consecutive
	// single-word devices and ride one randomread round trip; the
	// dispatcher must slice the flat [10,20,30] result back into a
	// 1-value and a 2-value outcome in request order.
	payload := append(append(int16le(10), int16le(20)...), int16le(30)...)
	host, port := queuePLC(t, [][]byte{binaryResponse(payload)})

	cfg := mcp.DefaultConnectionConfig()
	cfg.Host = host
	cfg.Port = port
	cfg.Timeout = time.Second

	dispatcher := NewDispatcher(cfg)
	results := dispatcher.Read(context.Background(), []string{"D100", "D200:2"})

	require.Len(t, results, 2)
	require.True(t, results[0].Success)
	require.Equal(t, []int64{10}, results[0].Values)
	require.True(t, results[1].Success)
	require.Equal(t, []int64{20, 30}, results[1].Values)
}

func TestDispatcherReadWordGroupFallsBackOnProtocolError(t *testing.T) {
	// The combined randomread call fails with a non-zero end code, so
	// the dispatcher falls back to one BatchReadWordUnits call per
	// original spec, in request order.
	errResp := binaryErrorResponse(0xC056)
	singleResp1 := binaryResponse(int16le(10))
	singleResp2 := binaryResponse(append(int16le(20), int16le(30)...))

	host, port := queuePLC(t, [][]byte{errResp, singleResp1, singleResp2})

	cfg := mcp.DefaultConnectionConfig()
	cfg.Host = host
	cfg.Port = port
	cfg.Timeout = time.Second

	dispatcher := NewDispatcher(cfg)
	results := dispatcher.Read(context.Background(), []string{"D100", "D200:2"})

	require.Len(t, results, 2)
	require.True(t, results[0].Success)
	require.Equal(t, []int64{10}, results[0].Values)
	require.True(t, results[1].Success)
	require.Equal(t, []int64{20, 30}, results[1].Values)
}

func TestDispatcherReadParseErrorIsPerItem(t *testing.T) {
	dispatcher := NewDispatcher(mcp.DefaultConnectionConfig())
	results := dispatcher.Read(context.Background(), []string{"@@@"})
	require.Len(t, results, 1)
	require.False(t, results[0].Success)
	require.Equal(t, "@@@", results[0].Spec)
}

func TestDispatcherReadConnectFailureLabelsEveryItem(t *testing.T) {
	cfg := mcp.DefaultConnectionConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 1
	cfg.Timeout = 200 * time.Millisecond

	dispatcher := NewDispatcher(cfg)
	results := dispatcher.Read(context.Background(), []string{"D100", "X10"})

	require.Len(t, results, 2)
	for _, r := range results {
		require.False(t, r.Success)
		require.Contains(t, r.Error, "PLC connection error")
	}
}

func TestDispatcherReadEmptyInputReturnsNil(t *testing.T) {
	dispatcher := NewDispatcher(mcp.DefaultConnectionConfig())
	results := dispatcher.Read(context.Background(), nil)
	require.Nil(t, results)
}
