package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/google/gousb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"thermal-print-service/internal/model"
)

func TestUSBPrinterResolver(t *testing.T) {
	printer := model.Destination{Kind: model.DestinationUSBDevice, Identifier: "04b8:0202"}

	tests := []struct {
		name    string
		dests   []model.Destination
		err     error
		want    int
		wantErr bool
	}{
		{name: "found", dests: []model.Destination{printer}, want: 1},
		{name: "none attached", want: 0},
		{name: "partial enumeration", dests: []model.Destination{printer}, err: errors.New("busy"), want: 1},
		{name: "libusb unavailable", err: errors.New("LIBUSB_ERROR_ACCESS"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewUSBPrinterResolverWithEnumerator(func(context.Context) ([]model.Destination, error) {
				return tt.dests, tt.err
			}, zap.NewNop())

			dests, err := r.Resolve(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, dests, tt.want)
		})
	}
}

func TestVendorDatabase(t *testing.T) {
	db := NewVendorDatabase()
	assert.True(t, db.IsKnownVendor(0x04B8))
	assert.False(t, db.IsKnownVendor(0xFFFF))
	assert.Equal(t, "Seiko Epson TM-T88IV", db.Describe(0x04B8, 0x0202))
	assert.Equal(t, "USB printer ffff:0001", db.Describe(0xFFFF, 0x0001))

	db.AddVendor(0xFFFF, "Acme", map[gousb.ID]string{0x0001: "R-1"})
	assert.Equal(t, "Acme R-1", db.Describe(0xFFFF, 0x0001))
	assert.Equal(t, "04b8:0202", USBIdentifier(0x04B8, 0x0202))
}
