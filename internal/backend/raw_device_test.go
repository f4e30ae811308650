package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"thermal-print-service/internal/codepage"
	"thermal-print-service/internal/dispatch"
	"thermal-print-service/internal/model"
	"thermal-print-service/internal/resolver"
)

func newRawDevice(t *testing.T, dests ...model.Destination) *RawDeviceBackend {
	t.Helper()
	return NewRawDeviceBackend(resolver.NewStatic("test", dests...), codepage.CP858, zap.NewNop())
}

func devicePath(path string) model.Destination {
	return model.Destination{Kind: model.DestinationDevicePath, Identifier: path}
}

func TestRawDeviceBackend_WritesPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lp0")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	b := newRawDevice(t, devicePath(path))
	payload := []byte{0x1B, 0x40, 'h', 'i', 0x1D, 0x56, 0x41, 0x03}

	require.NoError(t, b.Send(context.Background(), devicePath(path), payload))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, "raw-device", b.Name())
	assert.Equal(t, dispatch.KindRawDevice, b.Kind())
	assert.Equal(t, []codepage.Profile{codepage.CP858}, b.Profiles())
}

func TestRawDeviceBackend_Errors(t *testing.T) {
	existing := filepath.Join(t.TempDir(), "lp1")
	require.NoError(t, os.WriteFile(existing, nil, 0o600))

	tests := []struct {
		name    string
		dest    model.Destination
		access  func(string) error
		wantErr error
	}{
		{
			name:    "missing device",
			dest:    devicePath(filepath.Join(t.TempDir(), "absent")),
			wantErr: dispatch.ErrDestinationUnavailable,
		},
		{
			name:    "not writable",
			dest:    devicePath(existing),
			access:  func(string) error { return syscall.EACCES },
			wantErr: dispatch.ErrPermissionDenied,
		},
		{
			name:    "wrong destination kind",
			dest:    model.Destination{Kind: model.DestinationQueueName, Identifier: "Albaranes"},
			wantErr: dispatch.ErrBackend,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newRawDevice(t)
			if tt.access != nil {
				b.access = tt.access
			}
			err := b.Send(context.Background(), tt.dest, []byte("x"))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRawDeviceBackend_PermissionHint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lp0")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	b := newRawDevice(t)
	b.access = func(string) error { return syscall.EACCES }

	err := b.Send(context.Background(), devicePath(path), []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chmod")
	assert.Equal(t, model.ReasonPermissionDenied, dispatch.Classify(err))
}

func TestRawDeviceBackend_OpenPermissionError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lp0")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	b := newRawDevice(t)
	b.open = func(p string) (*os.File, error) {
		return nil, &os.PathError{Op: "open", Path: p, Err: syscall.EACCES}
	}

	err := b.Send(context.Background(), devicePath(path), []byte("x"))
	assert.ErrorIs(t, err, dispatch.ErrPermissionDenied)
}

func TestRawDeviceBackend_BlockedWriteHonorsContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lp0")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	release := make(chan struct{})
	defer close(release)

	b := newRawDevice(t)
	b.open = func(string) (*os.File, error) {
		<-release
		return nil, errors.New("released")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := b.Send(ctx, devicePath(path), []byte("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}
