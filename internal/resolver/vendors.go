// internal/resolver/vendors.go
package resolver

import (
	"fmt"

	"github.com/google/gousb"
)

// VendorDatabase identifies receipt printers by USB vendor and product
type VendorDatabase struct {
	vendors map[gousb.ID]*VendorInfo
}

// VendorInfo names a vendor and the printer models known for it
type VendorInfo struct {
	Name     string
	products map[gousb.ID]string
}

// NewVendorDatabase creates the database with the built-in vendors
func NewVendorDatabase() *VendorDatabase {
	db := &VendorDatabase{vendors: make(map[gousb.ID]*VendorInfo)}

	db.AddVendor(0x04B8, "Seiko Epson", map[gousb.ID]string{
		0x0202: "TM-T88IV",
		0x0203: "TM-T88V",
		0x0214: "TM-T88VI",
		0x0215: "TM-T20III",
		0x0216: "TM-T82III",
		0x0217: "TM-M30",
		0x0E15: "TM-T20II",
		0x0E28: "TM-T20III",
	})
	db.AddVendor(0x0519, "Star Micronics", map[gousb.ID]string{
		0x0001: "TSP143III",
		0x0003: "TSP654II",
	})
	db.AddVendor(0x1D90, "Citizen", map[gousb.ID]string{
		0x2060: "CT-S310II",
	})
	db.AddVendor(0x1504, "BIXOLON", map[gousb.ID]string{
		0x0006: "SRP-330II",
		0x0007: "SRP-350III",
	})
	// Generic 58/80mm POS printers sold under many brands
	db.AddVendor(0x0416, "Winbond POS", map[gousb.ID]string{
		0x5011: "POS58",
	})
	db.AddVendor(0x0FE6, "ICS Advent POS", map[gousb.ID]string{
		0x811E: "POS80",
	})

	return db
}

// AddVendor registers or extends a vendor
func (db *VendorDatabase) AddVendor(vendorID gousb.ID, name string, products map[gousb.ID]string) {
	info, ok := db.vendors[vendorID]
	if !ok {
		info = &VendorInfo{Name: name, products: make(map[gousb.ID]string)}
		db.vendors[vendorID] = info
	}
	for id, model := range products {
		info.products[id] = model
	}
}

// IsKnownVendor checks if a vendor ID is in the database
func (db *VendorDatabase) IsKnownVendor(vendorID gousb.ID) bool {
	_, exists := db.vendors[vendorID]
	return exists
}

// Describe returns a human readable label for a vendor/product pair
func (db *VendorDatabase) Describe(vendorID, productID gousb.ID) string {
	info, ok := db.vendors[vendorID]
	if !ok {
		return fmt.Sprintf("USB printer %s:%s", vendorID, productID)
	}
	if model, ok := info.products[productID]; ok {
		return info.Name + " " + model
	}
	return fmt.Sprintf("%s %s", info.Name, productID)
}
