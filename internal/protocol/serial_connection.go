// internal/protocol/serial_connection.go
package protocol

import (
	"context"
	"fmt"
	"sync"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"thermal-print-service/internal/model"
)

// SerialConnection implements DeviceProtocol for serial printers
type SerialConnection struct {
	config *SerialConfig
	port   serial.Port
	logger *zap.Logger
	mutex  sync.Mutex
	isOpen bool
}

// NewSerialConnection creates a new serial connection
func NewSerialConnection(config *SerialConfig, logger *zap.Logger) DeviceProtocol {
	return &SerialConnection{
		config: config,
		logger: logger.With(
			zap.String("protocol", "serial"),
			zap.String("port", config.Port),
		),
	}
}

// Open opens the serial port
func (sc *SerialConnection) Open(ctx context.Context) error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	if sc.isOpen {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	mode := &serial.Mode{
		BaudRate: sc.config.BaudRate,
		DataBits: sc.config.DataBits,
		StopBits: serial.OneStopBit,
	}
	if sc.config.StopBits == 2 {
		mode.StopBits = serial.TwoStopBits
	}

	switch sc.config.Parity {
	case "odd":
		mode.Parity = serial.OddParity
	case "even":
		mode.Parity = serial.EvenParity
	default:
		mode.Parity = serial.NoParity
	}

	port, err := serial.Open(sc.config.Port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", sc.config.Port, err)
	}

	sc.port = port
	sc.isOpen = true

	sc.logger.Debug("Serial port opened", zap.Int("baud_rate", sc.config.BaudRate))
	return nil
}

// Close closes the serial port
func (sc *SerialConnection) Close() error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	if !sc.isOpen || sc.port == nil {
		return nil
	}

	err := sc.port.Close()
	sc.port = nil
	sc.isOpen = false
	if err != nil {
		return fmt.Errorf("failed to close serial port: %w", err)
	}
	return nil
}

// IsOpen returns whether the connection is open
func (sc *SerialConnection) IsOpen() bool {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	return sc.isOpen && sc.port != nil
}

// Write writes data and waits until the port has transmitted it. The
// serial driver has no cancellable write, so a stuck port is abandoned
// when ctx expires and closed by the caller.
func (sc *SerialConnection) Write(ctx context.Context, data []byte) error {
	sc.mutex.Lock()
	port := sc.port
	open := sc.isOpen
	sc.mutex.Unlock()

	if !open || port == nil {
		return fmt.Errorf("serial port not open")
	}

	done := make(chan error, 1)
	go func() {
		n, err := port.Write(data)
		if err != nil {
			done <- fmt.Errorf("failed to write to serial port: %w", err)
			return
		}
		if n != len(data) {
			done <- fmt.Errorf("incomplete write: wrote %d of %d bytes", n, len(data))
			return
		}
		done <- port.Drain()
	}()

	select {
	case err := <-done:
		if err != nil {
			return err
		}
		sc.logger.Debug("Serial write completed", zap.Int("bytes", len(data)))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetProtocolType returns the protocol type
func (sc *SerialConnection) GetProtocolType() model.ConnectionType {
	return model.ConnectionTypeSerial
}
