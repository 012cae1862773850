package gateway

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hi-ropon/go-melsec/mcp"
)

// fakePLC accepts one connection and replies to every request frame
// with the same fixed binary response.
func fakePLC(t *testing.T, response []byte) (string, int) {
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
		for {
			if _, err := conn.Read(buf); err != nil {
				return
			}
			if _, err := conn.Write(response); err != nil {
				return
			}
		}
	}()

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, port
}

func binaryResponse(payload []byte) []byte {
	resp := make([]byte, 9, 11+len(payload))
	resp = append(resp, 0x00, 0x00)
	return append(resp, payload...)
}

func TestHandleReadPath(t *testing.T) {
	host, port := fakePLC(t, binaryResponse([]byte{0x2A, 0x00}))
	cfg := mcp.DefaultConnectionConfig()
	cfg.Host = host
	cfg.Port = port
	cfg.Timeout = time.Second

	h := NewHandler(func() mcp.ConnectionConfig { return cfg })

	req := httptest.NewRequest(http.MethodGet, "/api/read/D/100/1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body ReadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, []int64{42}, body.Values)
}

func TestHandleBatchReadEmptyDeviceList(t *testing.T) {
	cfg := mcp.DefaultConnectionConfig()
	h := NewHandler(func() mcp.ConnectionConfig { return cfg })

	req := httptest.NewRequest(http.MethodPost, "/api/batch_read", strings.NewReader(`{"devices":[]}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body BatchReadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 0, body.TotalDevices)
	require.Empty(t, body.Results)
}

func TestHandleBatchReadStatus(t *testing.T) {
	cfg := mcp.DefaultConnectionConfig()
	h := NewHandler(func() mcp.ConnectionConfig { return cfg })

	req := httptest.NewRequest(http.MethodGet, "/api/batch_read_status", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body batchReadStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.BatchReadAvailable)
	require.Equal(t, 32, body.MaxDevicesPerRequest)
}
