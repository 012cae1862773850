package mcp

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTransportSendRecvTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 4)
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		conn.Write(buf[:n])
	}()

	tr := newTransport(TransportTCP, ln.Addr().String(), time.Second)
	require.NoError(t, tr.connect(context.Background()))
	defer tr.close()

	require.NoError(t, tr.send([]byte{0x01, 0x02, 0x03, 0x04}))
	resp, err := tr.recv()
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, resp)

	<-serverDone
}

func TestTransportConnectFailureWrapsConnectError(t *testing.T) {
	tr := newTransport(TransportTCP, "127.0.0.1:1", 200*time.Millisecond)
	err := tr.connect(context.Background())
	require.Error(t, err)
	var connErr *ConnectError
	require.ErrorAs(t, err, &connErr)
}
