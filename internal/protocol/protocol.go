// internal/protocol/protocol.go
package protocol

import (
	"context"
	"errors"

	"thermal-print-service/internal/model"
)

// ErrDeviceNotFound is returned by Open when the device is not attached
var ErrDeviceNotFound = errors.New("device not found")

// DeviceProtocol is a write-only link to a printer. A connection is opened
// for one job, receives the complete command stream and is closed again.
type DeviceProtocol interface {
	Open(ctx context.Context) error
	Close() error
	IsOpen() bool

	// Write sends data in a single transfer
	Write(ctx context.Context, data []byte) error

	GetProtocolType() model.ConnectionType
}
