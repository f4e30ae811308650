// internal/resolver/usb.go
package resolver

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/gousb"
	"go.uber.org/zap"

	"thermal-print-service/internal/model"
)

// USBEnumerator lists attached USB printers
type USBEnumerator func(ctx context.Context) ([]model.Destination, error)

// USBPrinterResolver finds printers reachable through libusb
type USBPrinterResolver struct {
	enumerate USBEnumerator
	logger    *zap.Logger
}

// NewUSBPrinterResolver creates a resolver that enumerates the USB bus
// for printer-class interfaces and known printer vendors.
func NewUSBPrinterResolver(vendors *VendorDatabase, logger *zap.Logger) *USBPrinterResolver {
	if vendors == nil {
		vendors = NewVendorDatabase()
	}
	return NewUSBPrinterResolverWithEnumerator(libusbEnumerator(vendors), logger)
}

// NewUSBPrinterResolverWithEnumerator creates a resolver over a custom enumerator
func NewUSBPrinterResolverWithEnumerator(enumerate USBEnumerator, logger *zap.Logger) *USBPrinterResolver {
	return &USBPrinterResolver{
		enumerate: enumerate,
		logger:    logger.With(zap.String("resolver", "usb")),
	}
}

func (r *USBPrinterResolver) Name() string { return "usb" }

func (r *USBPrinterResolver) Resolve(ctx context.Context) ([]model.Destination, error) {
	dests, err := r.enumerate(ctx)
	if err != nil {
		if len(dests) == 0 {
			return nil, fmt.Errorf("USB enumeration failed: %w", err)
		}
		r.logger.Warn("USB enumeration incomplete", zap.Error(err))
	}
	r.logger.Debug("USB printers resolved", zap.Int("count", len(dests)))
	return dests, nil
}

// USBIdentifier formats the identifier used for USB destinations
func USBIdentifier(vendorID, productID gousb.ID) string {
	return fmt.Sprintf("%s:%s", vendorID, productID)
}

func libusbEnumerator(vendors *VendorDatabase) USBEnumerator {
	return func(ctx context.Context) ([]model.Destination, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		usbCtx := gousb.NewContext()
		defer usbCtx.Close()

		seen := make(map[string]bool)
		var found []model.Destination

		// The filter only inspects descriptors; returning false keeps
		// every device closed.
		_, err := usbCtx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
			if !isPrinter(desc) && !vendors.IsKnownVendor(desc.Vendor) {
				return false
			}
			id := USBIdentifier(desc.Vendor, desc.Product)
			if seen[id] {
				return false
			}
			seen[id] = true
			found = append(found, model.Destination{
				Kind:       model.DestinationUSBDevice,
				Identifier: id,
				Label:      vendors.Describe(desc.Vendor, desc.Product),
			})
			return false
		})

		sort.Slice(found, func(i, j int) bool { return found[i].Identifier < found[j].Identifier })
		return found, err
	}
}

func isPrinter(desc *gousb.DeviceDesc) bool {
	if desc.Class == gousb.ClassPrinter {
		return true
	}
	for _, cfg := range desc.Configs {
		for _, intf := range cfg.Interfaces {
			for _, alt := range intf.AltSettings {
				if alt.Class == gousb.ClassPrinter {
					return true
				}
			}
		}
	}
	return false
}
