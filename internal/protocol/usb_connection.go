// internal/protocol/usb_connection.go
package protocol

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/gousb"
	"go.uber.org/zap"

	"thermal-print-service/internal/model"
)

// USBConnection writes to a printer's bulk OUT endpoint through libusb
type USBConnection struct {
	config   *USBConfig
	ctx      *gousb.Context
	device   *gousb.Device
	intf     *gousb.Interface
	done     func()
	outEndpt *gousb.OutEndpoint
	logger   *zap.Logger
	mutex    sync.Mutex
	isOpen   bool
}

// NewUSBConnection creates a new USB connection
func NewUSBConnection(config *USBConfig, logger *zap.Logger) DeviceProtocol {
	return &USBConnection{
		config: config,
		logger: logger.With(
			zap.String("protocol", "usb"),
			zap.String("vendor_id", config.VendorID),
			zap.String("product_id", config.ProductID),
		),
	}
}

// Open finds the device, detaches the kernel printer driver if bound,
// and claims the default interface.
func (uc *USBConnection) Open(ctx context.Context) error {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()

	if uc.isOpen {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	vendorID, err := parseHexID(uc.config.VendorID)
	if err != nil {
		return fmt.Errorf("invalid vendor ID: %w", err)
	}
	productID, err := parseHexID(uc.config.ProductID)
	if err != nil {
		return fmt.Errorf("invalid product ID: %w", err)
	}

	usbCtx := gousb.NewContext()

	device, err := usbCtx.OpenDeviceWithVIDPID(vendorID, productID)
	if err != nil {
		usbCtx.Close()
		return fmt.Errorf("failed to open USB device %s:%s: %w", vendorID, productID, err)
	}
	if device == nil {
		usbCtx.Close()
		return fmt.Errorf("USB device %s:%s: %w", vendorID, productID, ErrDeviceNotFound)
	}

	if err := device.SetAutoDetach(true); err != nil {
		uc.logger.Warn("Could not enable kernel driver auto-detach", zap.Error(err))
	}

	intf, done, err := device.DefaultInterface()
	if err != nil {
		device.Close()
		usbCtx.Close()
		return fmt.Errorf("failed to claim interface: %w", err)
	}

	endpoint := uc.config.Endpoint
	if endpoint == 0 {
		endpoint, err = bulkOutEndpoint(intf)
		if err != nil {
			done()
			device.Close()
			usbCtx.Close()
			return err
		}
	}

	outEndpt, err := intf.OutEndpoint(endpoint)
	if err != nil {
		done()
		device.Close()
		usbCtx.Close()
		return fmt.Errorf("failed to get out endpoint %d: %w", endpoint, err)
	}

	uc.ctx = usbCtx
	uc.device = device
	uc.intf = intf
	uc.done = done
	uc.outEndpt = outEndpt
	uc.isOpen = true

	uc.logger.Debug("USB connection opened", zap.Int("endpoint", endpoint))
	return nil
}

// Close releases the interface, device and libusb context
func (uc *USBConnection) Close() error {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()

	if !uc.isOpen {
		return nil
	}

	var closeErr error
	if uc.done != nil {
		uc.done()
	}
	if uc.device != nil {
		closeErr = uc.device.Close()
	}
	if uc.ctx != nil {
		if err := uc.ctx.Close(); err != nil && closeErr == nil {
			closeErr = err
		}
	}

	uc.ctx, uc.device, uc.intf, uc.done, uc.outEndpt = nil, nil, nil, nil, nil
	uc.isOpen = false

	if closeErr != nil {
		return fmt.Errorf("failed to close USB device: %w", closeErr)
	}
	return nil
}

// IsOpen returns whether the connection is open
func (uc *USBConnection) IsOpen() bool {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()
	return uc.isOpen && uc.outEndpt != nil
}

// Write sends data as one bulk transfer bounded by ctx
func (uc *USBConnection) Write(ctx context.Context, data []byte) error {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()

	if !uc.isOpen || uc.outEndpt == nil {
		return fmt.Errorf("USB connection not open")
	}

	if uc.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.config.Timeout)
		defer cancel()
	}

	n, err := uc.outEndpt.WriteContext(ctx, data)
	if err != nil {
		return fmt.Errorf("failed to write to USB device: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("incomplete write: wrote %d of %d bytes", n, len(data))
	}

	uc.logger.Debug("USB write completed", zap.Int("bytes", n))
	return nil
}

// GetProtocolType returns the protocol type
func (uc *USBConnection) GetProtocolType() model.ConnectionType {
	return model.ConnectionTypeUSB
}

func bulkOutEndpoint(intf *gousb.Interface) (int, error) {
	best := 0
	for _, desc := range intf.Setting.Endpoints {
		if desc.Direction != gousb.EndpointDirectionOut || desc.TransferType != gousb.TransferTypeBulk {
			continue
		}
		if best == 0 || desc.Number < best {
			best = desc.Number
		}
	}
	if best == 0 {
		return 0, fmt.Errorf("interface %s has no bulk OUT endpoint", intf)
	}
	return best, nil
}

// parseHexID parses a hex ID string (0x04b8 or 04b8)
func parseHexID(hexStr string) (gousb.ID, error) {
	hexStr = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(hexStr)), "0x")

	id, err := strconv.ParseUint(hexStr, 16, 16)
	if err != nil {
		return 0, err
	}
	return gousb.ID(id), nil
}
