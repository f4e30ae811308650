// internal/protocol/factory.go
package protocol

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"thermal-print-service/internal/model"
)

var validBaudRates = []int{1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200}

// CreateProtocol creates a protocol based on connection type and configuration
func CreateProtocol(connectionType model.ConnectionType, config map[string]interface{}, logger *zap.Logger) (DeviceProtocol, error) {
	if err := ValidateConfig(connectionType, config); err != nil {
		return nil, err
	}

	switch connectionType {
	case model.ConnectionTypeSerial:
		return createSerialProtocol(config, logger), nil
	case model.ConnectionTypeUSB:
		return createUSBProtocol(config, logger), nil
	case model.ConnectionTypeTCP:
		return createTCPProtocol(config, logger), nil
	default:
		return nil, fmt.Errorf("unsupported protocol type: %s", connectionType)
	}
}

// ParseEndpoint turns an endpoint string into a connection type and the
// config map CreateProtocol expects. Accepted forms:
//
//	serial:/dev/ttyUSB0            serial:/dev/ttyUSB0@19200
//	tcp:192.168.1.50               tcp:192.168.1.50:9100
//	usb:04b8:0202
func ParseEndpoint(endpoint string) (model.ConnectionType, map[string]interface{}, error) {
	scheme, rest, ok := strings.Cut(strings.TrimSpace(endpoint), ":")
	if !ok || rest == "" {
		return "", nil, fmt.Errorf("invalid endpoint %q: expected scheme:address", endpoint)
	}

	switch strings.ToLower(scheme) {
	case "serial":
		config := map[string]interface{}{"port": rest}
		if port, baud, found := strings.Cut(rest, "@"); found {
			rate, err := strconv.Atoi(baud)
			if err != nil {
				return "", nil, fmt.Errorf("invalid baud rate in %q: %w", endpoint, err)
			}
			config["port"] = port
			config["baud_rate"] = rate
		}
		return model.ConnectionTypeSerial, config, nil

	case "tcp":
		config := map[string]interface{}{"host": rest}
		if i := strings.LastIndex(rest, ":"); i > 0 {
			port, err := strconv.Atoi(rest[i+1:])
			if err != nil {
				return "", nil, fmt.Errorf("invalid port in %q: %w", endpoint, err)
			}
			config["host"] = rest[:i]
			config["port"] = port
		}
		return model.ConnectionTypeTCP, config, nil

	case "usb":
		vendor, product, found := strings.Cut(rest, ":")
		if !found {
			return "", nil, fmt.Errorf("invalid USB endpoint %q: expected usb:VID:PID", endpoint)
		}
		return model.ConnectionTypeUSB, map[string]interface{}{
			"vendor_id":  vendor,
			"product_id": product,
		}, nil
	}

	return "", nil, fmt.Errorf("unsupported endpoint scheme %q", scheme)
}

func createSerialProtocol(config map[string]interface{}, logger *zap.Logger) DeviceProtocol {
	serialConfig := &SerialConfig{
		Port:     config["port"].(string),
		BaudRate: 9600,
		DataBits: 8,
		StopBits: 1,
		Parity:   "none",
		Timeout:  5 * time.Second,
	}

	if v, ok := intValue(config["baud_rate"]); ok {
		serialConfig.BaudRate = v
	}
	if v, ok := intValue(config["data_bits"]); ok {
		serialConfig.DataBits = v
	}
	if v, ok := intValue(config["stop_bits"]); ok {
		serialConfig.StopBits = v
	}
	if parity, ok := config["parity"].(string); ok {
		serialConfig.Parity = parity
	}
	if v, ok := durationValue(config["timeout"]); ok {
		serialConfig.Timeout = v
	}

	return NewSerialConnection(serialConfig, logger)
}

func createUSBProtocol(config map[string]interface{}, logger *zap.Logger) DeviceProtocol {
	usbConfig := &USBConfig{
		VendorID:  config["vendor_id"].(string),
		ProductID: config["product_id"].(string),
		Timeout:   5 * time.Second,
	}

	if v, ok := intValue(config["endpoint"]); ok {
		usbConfig.Endpoint = v
	}
	if v, ok := durationValue(config["timeout"]); ok {
		usbConfig.Timeout = v
	}

	return NewUSBConnection(usbConfig, logger)
}

func createTCPProtocol(config map[string]interface{}, logger *zap.Logger) DeviceProtocol {
	tcpConfig := &TCPConfig{
		Host:         config["host"].(string),
		Port:         9100, // raw printing port
		Timeout:      5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	if v, ok := intValue(config["port"]); ok {
		tcpConfig.Port = v
	}
	if v, ok := durationValue(config["timeout"]); ok {
		tcpConfig.Timeout = v
	}
	if v, ok := durationValue(config["write_timeout"]); ok {
		tcpConfig.WriteTimeout = v
	}

	return NewTCPConnection(tcpConfig, logger)
}

// ValidateConfig validates configuration for a specific protocol type
func ValidateConfig(connectionType model.ConnectionType, config map[string]interface{}) error {
	switch connectionType {
	case model.ConnectionTypeSerial:
		return validateSerialConfig(config)
	case model.ConnectionTypeUSB:
		return validateUSBConfig(config)
	case model.ConnectionTypeTCP:
		return validateTCPConfig(config)
	default:
		return fmt.Errorf("unsupported connection type: %s", connectionType)
	}
}

func validateSerialConfig(config map[string]interface{}) error {
	if port, ok := config["port"].(string); !ok || port == "" {
		return fmt.Errorf("serial port is required")
	}

	if raw, ok := config["baud_rate"]; ok {
		rate, ok := intValue(raw)
		if !ok {
			return fmt.Errorf("invalid baud_rate type")
		}
		for _, valid := range validBaudRates {
			if rate == valid {
				return nil
			}
		}
		return fmt.Errorf("invalid baud rate: %d", rate)
	}

	return nil
}

func validateUSBConfig(config map[string]interface{}) error {
	for _, key := range []string{"vendor_id", "product_id"} {
		id, ok := config[key].(string)
		if !ok {
			return fmt.Errorf("USB %s is required", key)
		}
		if _, err := parseHexID(id); err != nil {
			return fmt.Errorf("invalid USB %s %q: %w", key, id, err)
		}
	}
	return nil
}

func validateTCPConfig(config map[string]interface{}) error {
	if host, ok := config["host"].(string); !ok || host == "" {
		return fmt.Errorf("TCP host is required")
	}

	if raw, ok := config["port"]; ok {
		port, ok := intValue(raw)
		if !ok {
			return fmt.Errorf("invalid port type")
		}
		if port < 1 || port > 65535 {
			return fmt.Errorf("invalid port number: %d", port)
		}
	}

	return nil
}

// intValue accepts the numeric types produced by JSON and YAML decoding
func intValue(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func durationValue(v interface{}) (time.Duration, bool) {
	switch d := v.(type) {
	case time.Duration:
		return d, true
	case string:
		if dur, err := time.ParseDuration(d); err == nil {
			return dur, true
		}
	}
	return 0, false
}
