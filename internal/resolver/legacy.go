// internal/resolver/legacy.go
package resolver

import (
	"context"
	"strings"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"thermal-print-service/internal/model"
	"thermal-print-service/internal/protocol"
)

// EndpointResolver returns configured serial and TCP endpoints. Serial
// endpoints are dropped when the port is not attached; network endpoints
// are always returned since reachability is only known on connect.
type EndpointResolver struct {
	endpoints []string
	listPorts func() ([]string, error)
	logger    *zap.Logger
}

// NewEndpointResolver creates a resolver over endpoint strings such as
// "serial:/dev/ttyUSB0@19200" or "tcp:192.168.1.50:9100".
func NewEndpointResolver(endpoints []string, logger *zap.Logger) *EndpointResolver {
	return &EndpointResolver{
		endpoints: endpoints,
		listPorts: serial.GetPortsList,
		logger:    logger.With(zap.String("resolver", "endpoint")),
	}
}

func (r *EndpointResolver) Name() string { return "endpoint" }

func (r *EndpointResolver) Resolve(ctx context.Context) ([]model.Destination, error) {
	var present map[string]bool
	if ports, err := r.listPorts(); err != nil {
		r.logger.Warn("Serial port listing failed, keeping all serial endpoints", zap.Error(err))
	} else {
		present = make(map[string]bool, len(ports))
		for _, p := range ports {
			present[p] = true
		}
	}

	var dests []model.Destination
	for _, endpoint := range r.endpoints {
		connType, config, err := protocol.ParseEndpoint(endpoint)
		if err != nil {
			r.logger.Warn("Skipping invalid endpoint", zap.String("endpoint", endpoint), zap.Error(err))
			continue
		}
		if connType == model.ConnectionTypeSerial && present != nil {
			port, _ := config["port"].(string)
			if !present[port] {
				continue
			}
		}
		dests = append(dests, model.Destination{
			Kind:       model.DestinationEndpoint,
			Identifier: strings.TrimSpace(endpoint),
			Label:      strings.ToLower(string(connType)),
		})
	}
	return dests, nil
}
