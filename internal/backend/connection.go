// internal/backend/connection.go
package backend

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"syscall"
	"time"

	"github.com/google/gousb"
	"go.bug.st/serial"
	"go.uber.org/zap"

	"thermal-print-service/internal/codepage"
	"thermal-print-service/internal/dispatch"
	"thermal-print-service/internal/model"
	"thermal-print-service/internal/protocol"
	"thermal-print-service/internal/resolver"
)

// ProtocolFactory creates an unopened connection for a destination
type ProtocolFactory func(dest model.Destination) (protocol.DeviceProtocol, error)

// USBProtocolFactory connects to "VID:PID" destinations over libusb
func USBProtocolFactory(endpoint int, writeTimeout time.Duration, logger *zap.Logger) ProtocolFactory {
	return func(dest model.Destination) (protocol.DeviceProtocol, error) {
		vendor, product, ok := strings.Cut(dest.Identifier, ":")
		if dest.Kind != model.DestinationUSBDevice || !ok {
			return nil, fmt.Errorf("not a USB destination: %s", dest)
		}
		config := map[string]interface{}{
			"vendor_id":  vendor,
			"product_id": product,
			"timeout":    writeTimeout,
		}
		if endpoint > 0 {
			config["endpoint"] = endpoint
		}
		return protocol.CreateProtocol(model.ConnectionTypeUSB, config, logger)
	}
}

// EndpointProtocolFactory connects to serial and TCP endpoint destinations
func EndpointProtocolFactory(logger *zap.Logger) ProtocolFactory {
	return func(dest model.Destination) (protocol.DeviceProtocol, error) {
		connType, config, err := protocol.ParseEndpoint(dest.Identifier)
		if err != nil {
			return nil, err
		}
		return protocol.CreateProtocol(connType, config, logger)
	}
}

// ConnectionBackend delivers jobs through a protocol connection that is
// opened, written once and closed for every attempt.
type ConnectionBackend struct {
	name     string
	kind     dispatch.BackendKind
	resolver resolver.Resolver
	factory  ProtocolFactory
	profiles []codepage.Profile
	logger   *zap.Logger
}

// NewConnectionBackend creates a connection-based backend
func NewConnectionBackend(name string, kind dispatch.BackendKind, r resolver.Resolver, factory ProtocolFactory, profiles []codepage.Profile, logger *zap.Logger) *ConnectionBackend {
	return &ConnectionBackend{
		name:     name,
		kind:     kind,
		resolver: r,
		factory:  factory,
		profiles: profiles,
		logger:   logger.With(zap.String("backend", name)),
	}
}

func (b *ConnectionBackend) Name() string               { return b.name }
func (b *ConnectionBackend) Kind() dispatch.BackendKind { return b.kind }

func (b *ConnectionBackend) Resolve(ctx context.Context) ([]model.Destination, error) {
	return b.resolver.Resolve(ctx)
}

func (b *ConnectionBackend) Profiles() []codepage.Profile {
	return b.profiles
}

func (b *ConnectionBackend) Send(ctx context.Context, dest model.Destination, payload []byte) error {
	conn, err := b.factory(dest)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", dispatch.ErrBackend, dest, err)
	}

	if err := conn.Open(ctx); err != nil {
		return classifyOpenError(dest, err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			b.logger.Warn("Failed to close connection", zap.Stringer("destination", dest), zap.Error(err))
		}
	}()

	if err := conn.Write(ctx, payload); err != nil {
		return fmt.Errorf("%w: write to %s: %w", dispatch.ErrBackend, dest, err)
	}

	b.logger.Debug("Payload written",
		zap.Stringer("destination", dest),
		zap.String("protocol", string(conn.GetProtocolType())),
		zap.Int("bytes", len(payload)),
	)
	return nil
}

// classifyOpenError maps library open failures onto dispatch sentinels
func classifyOpenError(dest model.Destination, err error) error {
	var portErr *serial.PortError
	switch {
	case errors.Is(err, gousb.ErrorAccess), errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s: %w", dispatch.ErrPermissionDenied, dest, err)
	case errors.As(err, &portErr) && portErr.Code() == serial.PermissionDenied:
		return fmt.Errorf("%w: %s: %w", dispatch.ErrPermissionDenied, dest, err)
	case errors.As(err, &portErr) && portErr.Code() == serial.PortNotFound,
		errors.Is(err, gousb.ErrorNoDevice),
		errors.Is(err, gousb.ErrorNotFound),
		errors.Is(err, protocol.ErrDeviceNotFound),
		errors.Is(err, fs.ErrNotExist),
		errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("%w: %s: %w", dispatch.ErrDestinationUnavailable, dest, err)
	}
	return fmt.Errorf("%w: open %s: %w", dispatch.ErrBackend, dest, err)
}
