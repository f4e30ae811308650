// internal/model/destination.go
package model

import "fmt"

// DestinationKind identifies how a backend addresses a printer
type DestinationKind string

const (
	DestinationDevicePath      DestinationKind = "DEVICE_PATH"
	DestinationQueueName       DestinationKind = "QUEUE_NAME"
	DestinationPlatformCommand DestinationKind = "PLATFORM_COMMAND"
	DestinationUSBDevice       DestinationKind = "USB_DEVICE"
	DestinationEndpoint        DestinationKind = "ENDPOINT"
)

// ConnectionType represents how a connection-based backend reaches the device
type ConnectionType string

const (
	ConnectionTypeSerial ConnectionType = "SERIAL"
	ConnectionTypeUSB    ConnectionType = "USB"
	ConnectionTypeTCP    ConnectionType = "TCP"
)

// Destination is a concrete target a backend can send bytes to.
// An empty Identifier on a queue destination means the system default queue.
type Destination struct {
	Kind       DestinationKind `json:"kind"`
	Identifier string          `json:"identifier"`
	Label      string          `json:"label,omitempty"`
}

// IsDefaultQueue reports whether the destination is the spooler's default queue
func (d Destination) IsDefaultQueue() bool {
	return d.Kind == DestinationQueueName && d.Identifier == ""
}

func (d Destination) String() string {
	id := d.Identifier
	if d.IsDefaultQueue() {
		id = "<default>"
	}
	if d.Label != "" && d.Label != id {
		return fmt.Sprintf("%s(%s %q)", d.Kind, id, d.Label)
	}
	return fmt.Sprintf("%s(%s)", d.Kind, id)
}
