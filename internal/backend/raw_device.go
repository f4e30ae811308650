// internal/backend/raw_device.go
package backend

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"thermal-print-service/internal/codepage"
	"thermal-print-service/internal/dispatch"
	"thermal-print-service/internal/model"
	"thermal-print-service/internal/resolver"
)

// RawDeviceBackend writes the command stream straight to a printer device
// node such as /dev/usb/lp0. Text jobs use a single pre-selected code page.
type RawDeviceBackend struct {
	resolver resolver.Resolver
	profile  codepage.Profile
	logger   *zap.Logger

	access func(path string) error
	open   func(path string) (*os.File, error)
}

// NewRawDeviceBackend creates a raw device backend
func NewRawDeviceBackend(r resolver.Resolver, profile codepage.Profile, logger *zap.Logger) *RawDeviceBackend {
	return &RawDeviceBackend{
		resolver: r,
		profile:  profile,
		logger:   logger.With(zap.String("backend", "raw-device")),
		access:   checkWritable,
		open:     openDevice,
	}
}

func (b *RawDeviceBackend) Name() string               { return "raw-device" }
func (b *RawDeviceBackend) Kind() dispatch.BackendKind { return dispatch.KindRawDevice }

func (b *RawDeviceBackend) Resolve(ctx context.Context) ([]model.Destination, error) {
	return b.resolver.Resolve(ctx)
}

func (b *RawDeviceBackend) Profiles() []codepage.Profile {
	return []codepage.Profile{b.profile}
}

// Send opens the device and writes the payload in one call. A write that
// outlives ctx is abandoned; the goroutine finishes when the kernel
// returns.
func (b *RawDeviceBackend) Send(ctx context.Context, dest model.Destination, payload []byte) error {
	if dest.Kind != model.DestinationDevicePath {
		return fmt.Errorf("%w: raw device cannot address %s", dispatch.ErrBackend, dest)
	}
	path := dest.Identifier

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s does not exist", dispatch.ErrDestinationUnavailable, path)
		}
		return fmt.Errorf("%w: stat %s: %w", dispatch.ErrBackend, path, err)
	}
	if err := b.access(path); err != nil {
		return permissionDenied(path, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- b.write(path, payload)
	}()

	select {
	case err := <-done:
		if err == nil {
			b.logger.Debug("Payload written", zap.String("path", path), zap.Int("bytes", len(payload)))
		}
		return err
	case <-ctx.Done():
		return fmt.Errorf("%w: write to %s: %w", dispatch.ErrBackend, path, ctx.Err())
	}
}

func (b *RawDeviceBackend) write(path string, payload []byte) error {
	f, err := b.open(path)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrPermission):
			return permissionDenied(path, err)
		case errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("%w: %s disappeared: %w", dispatch.ErrDestinationUnavailable, path, err)
		}
		return fmt.Errorf("%w: open %s: %w", dispatch.ErrBackend, path, err)
	}

	n, err := f.Write(payload)
	closeErr := f.Close()
	if err != nil {
		return fmt.Errorf("%w: write %s: %w", dispatch.ErrBackend, path, err)
	}
	if n != len(payload) {
		return fmt.Errorf("%w: short write to %s: %d of %d bytes", dispatch.ErrBackend, path, n, len(payload))
	}
	if closeErr != nil {
		return fmt.Errorf("%w: close %s: %w", dispatch.ErrBackend, path, closeErr)
	}
	return nil
}

func openDevice(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_SYNC, 0)
}

func permissionDenied(path string, err error) error {
	return fmt.Errorf("%w: %s is not writable (sudo chmod 666 %s or add the user to the lp group): %w",
		dispatch.ErrPermissionDenied, path, path, err)
}
