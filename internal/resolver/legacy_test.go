package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEndpointResolver(t *testing.T) {
	r := NewEndpointResolver([]string{
		"serial:/dev/ttyUSB0@19200",
		"serial:/dev/ttyS9",
		"tcp:192.168.1.50:9100",
		"bogus",
	}, zap.NewNop())
	r.listPorts = func() ([]string, error) { return []string{"/dev/ttyUSB0", "/dev/ttyS0"}, nil }

	dests, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"serial:/dev/ttyUSB0@19200", "tcp:192.168.1.50:9100"}, identifiers(dests))
	assert.Equal(t, "serial", dests[0].Label)
	assert.Equal(t, "tcp", dests[1].Label)
}

func TestEndpointResolver_ListingFailureKeepsSerial(t *testing.T) {
	r := NewEndpointResolver([]string{"serial:COM3"}, zap.NewNop())
	r.listPorts = func() ([]string, error) { return nil, errors.New("no permission") }

	dests, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"serial:COM3"}, identifiers(dests))
}
