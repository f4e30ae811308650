package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"testing"

	"github.com/google/gousb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"thermal-print-service/internal/dispatch"
	"thermal-print-service/internal/model"
	"thermal-print-service/internal/protocol"
	"thermal-print-service/internal/resolver"
)

type fakeConn struct {
	openErr  error
	writeErr error
	open     bool
	closed   bool
	written  []byte
}

func (c *fakeConn) Open(context.Context) error {
	if c.openErr != nil {
		return c.openErr
	}
	c.open = true
	return nil
}

func (c *fakeConn) Close() error {
	c.open = false
	c.closed = true
	return nil
}

func (c *fakeConn) IsOpen() bool { return c.open }

func (c *fakeConn) Write(_ context.Context, data []byte) error {
	if c.writeErr != nil {
		return c.writeErr
	}
	c.written = append(c.written, data...)
	return nil
}

func (c *fakeConn) GetProtocolType() model.ConnectionType { return model.ConnectionTypeTCP }

func usbDest() model.Destination {
	return model.Destination{Kind: model.DestinationUSBDevice, Identifier: "04b8:0202"}
}

func connectionBackend(conn *fakeConn) *ConnectionBackend {
	factory := func(model.Destination) (protocol.DeviceProtocol, error) { return conn, nil }
	return NewConnectionBackend("usb", dispatch.KindProtocolClient, resolver.NewStatic("test"), factory, nil, zap.NewNop())
}

func TestConnectionBackend_OpenWriteClose(t *testing.T) {
	conn := &fakeConn{}
	b := connectionBackend(conn)

	require.NoError(t, b.Send(context.Background(), usbDest(), []byte("ticket")))

	assert.Equal(t, []byte("ticket"), conn.written)
	assert.True(t, conn.closed)
	assert.Equal(t, dispatch.KindProtocolClient, b.Kind())
}

func TestConnectionBackend_WriteFailureClosesConnection(t *testing.T) {
	conn := &fakeConn{writeErr: errors.New("pipe stalled")}
	b := connectionBackend(conn)

	err := b.Send(context.Background(), usbDest(), []byte("ticket"))

	assert.ErrorIs(t, err, dispatch.ErrBackend)
	assert.True(t, conn.closed)
}

func TestConnectionBackend_FactoryError(t *testing.T) {
	factory := func(model.Destination) (protocol.DeviceProtocol, error) { return nil, errors.New("bad endpoint") }
	b := NewConnectionBackend("legacy", dispatch.KindLegacy, resolver.NewStatic("test"), factory, nil, zap.NewNop())

	err := b.Send(context.Background(), usbDest(), []byte("x"))
	assert.ErrorIs(t, err, dispatch.ErrBackend)
}

func TestClassifyOpenError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"usb access", fmt.Errorf("failed to open USB device: %w", gousb.ErrorAccess), dispatch.ErrPermissionDenied},
		{"usb missing", fmt.Errorf("USB device 04b8:0202: %w", protocol.ErrDeviceNotFound), dispatch.ErrDestinationUnavailable},
		{"usb no device", gousb.ErrorNoDevice, dispatch.ErrDestinationUnavailable},
		{"file permission", &os.PathError{Op: "open", Path: "/dev/ttyUSB0", Err: syscall.EACCES}, dispatch.ErrPermissionDenied},
		{"file missing", &os.PathError{Op: "open", Path: "/dev/ttyUSB0", Err: syscall.ENOENT}, dispatch.ErrDestinationUnavailable},
		{"refused", fmt.Errorf("failed to connect: %w", syscall.ECONNREFUSED), dispatch.ErrDestinationUnavailable},
		{"other", errors.New("boom"), dispatch.ErrBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyOpenError(usbDest(), tt.err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestEndpointProtocolFactory(t *testing.T) {
	factory := EndpointProtocolFactory(zap.NewNop())

	conn, err := factory(model.Destination{Kind: model.DestinationEndpoint, Identifier: "tcp:192.168.1.50:9100"})
	require.NoError(t, err)
	assert.Equal(t, model.ConnectionTypeTCP, conn.GetProtocolType())
	assert.False(t, conn.IsOpen())

	_, err = factory(model.Destination{Kind: model.DestinationEndpoint, Identifier: "fax:123"})
	assert.Error(t, err)
}

func TestUSBProtocolFactory(t *testing.T) {
	factory := USBProtocolFactory(0, 0, zap.NewNop())

	conn, err := factory(usbDest())
	require.NoError(t, err)
	assert.Equal(t, model.ConnectionTypeUSB, conn.GetProtocolType())

	_, err = factory(model.Destination{Kind: model.DestinationDevicePath, Identifier: "/dev/usb/lp0"})
	assert.Error(t, err)
}
