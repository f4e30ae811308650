package protocol

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTCPConnection_WriteDeliversBytes(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		received <- data
	}()

	addr := ln.Addr().(*net.TCPAddr)
	conn := NewTCPConnection(&TCPConfig{
		Host:         "127.0.0.1",
		Port:         addr.Port,
		Timeout:      time.Second,
		WriteTimeout: time.Second,
	}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, conn.Open(ctx))
	assert.True(t, conn.IsOpen())
	require.NoError(t, conn.Write(ctx, []byte{0x1B, 0x40, 'h', 'i'}))
	require.NoError(t, conn.Close())
	assert.False(t, conn.IsOpen())

	select {
	case data := <-received:
		assert.Equal(t, []byte{0x1B, 0x40, 'h', 'i'}, data)
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not receive data")
	}
}

func TestTCPConnection_OpenRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	conn := NewTCPConnection(&TCPConfig{Host: "127.0.0.1", Port: port, Timeout: time.Second}, zap.NewNop())
	err = conn.Open(context.Background())
	assert.Error(t, err)
	assert.False(t, conn.IsOpen())
}

func TestTCPConnection_WriteWhenClosed(t *testing.T) {
	conn := NewTCPConnection(&TCPConfig{Host: "127.0.0.1", Port: 9100}, zap.NewNop())
	assert.Error(t, conn.Write(context.Background(), []byte("x")))
}
