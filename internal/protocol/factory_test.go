package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"thermal-print-service/internal/model"
)

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		wantType model.ConnectionType
		want     map[string]interface{}
		wantErr  bool
	}{
		{
			name:     "serial port",
			endpoint: "serial:/dev/ttyUSB0",
			wantType: model.ConnectionTypeSerial,
			want:     map[string]interface{}{"port": "/dev/ttyUSB0"},
		},
		{
			name:     "serial port with baud rate",
			endpoint: "serial:COM3@19200",
			wantType: model.ConnectionTypeSerial,
			want:     map[string]interface{}{"port": "COM3", "baud_rate": 19200},
		},
		{
			name:     "tcp host only",
			endpoint: "tcp:printer.local",
			wantType: model.ConnectionTypeTCP,
			want:     map[string]interface{}{"host": "printer.local"},
		},
		{
			name:     "tcp host and port",
			endpoint: "tcp:192.168.1.50:9100",
			wantType: model.ConnectionTypeTCP,
			want:     map[string]interface{}{"host": "192.168.1.50", "port": 9100},
		},
		{
			name:     "usb ids",
			endpoint: "usb:04b8:0202",
			wantType: model.ConnectionTypeUSB,
			want:     map[string]interface{}{"vendor_id": "04b8", "product_id": "0202"},
		},
		{name: "missing scheme", endpoint: "/dev/ttyUSB0", wantErr: true},
		{name: "bad baud", endpoint: "serial:/dev/ttyS0@fast", wantErr: true},
		{name: "usb without product", endpoint: "usb:04b8", wantErr: true},
		{name: "unknown scheme", endpoint: "bluetooth:00:11:22", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			connType, config, err := ParseEndpoint(tt.endpoint)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, connType)
			assert.Equal(t, tt.want, config)
		})
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name     string
		connType model.ConnectionType
		config   map[string]interface{}
		wantErr  bool
	}{
		{name: "serial ok", connType: model.ConnectionTypeSerial, config: map[string]interface{}{"port": "/dev/ttyS0", "baud_rate": 9600}},
		{name: "serial odd baud", connType: model.ConnectionTypeSerial, config: map[string]interface{}{"port": "/dev/ttyS0", "baud_rate": 1234}, wantErr: true},
		{name: "serial without port", connType: model.ConnectionTypeSerial, config: map[string]interface{}{}, wantErr: true},
		{name: "tcp ok", connType: model.ConnectionTypeTCP, config: map[string]interface{}{"host": "h", "port": float64(9100)}},
		{name: "tcp port out of range", connType: model.ConnectionTypeTCP, config: map[string]interface{}{"host": "h", "port": 70000}, wantErr: true},
		{name: "usb ok", connType: model.ConnectionTypeUSB, config: map[string]interface{}{"vendor_id": "0x04B8", "product_id": "0202"}},
		{name: "usb bad hex", connType: model.ConnectionTypeUSB, config: map[string]interface{}{"vendor_id": "zz", "product_id": "0202"}, wantErr: true},
		{name: "unknown type", connType: model.ConnectionType("BLUETOOTH"), config: map[string]interface{}{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfig(tt.connType, tt.config)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateProtocol(t *testing.T) {
	logger := zap.NewNop()

	p, err := CreateProtocol(model.ConnectionTypeTCP, map[string]interface{}{"host": "127.0.0.1", "port": 9100}, logger)
	require.NoError(t, err)
	assert.Equal(t, model.ConnectionTypeTCP, p.GetProtocolType())
	assert.False(t, p.IsOpen())

	p, err = CreateProtocol(model.ConnectionTypeSerial, map[string]interface{}{"port": "/dev/ttyS9"}, logger)
	require.NoError(t, err)
	assert.Equal(t, model.ConnectionTypeSerial, p.GetProtocolType())

	_, err = CreateProtocol(model.ConnectionTypeUSB, map[string]interface{}{"vendor_id": "04b8"}, logger)
	assert.Error(t, err)
}
