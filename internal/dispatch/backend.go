// internal/dispatch/backend.go
package dispatch

import (
	"context"
	"sort"

	"thermal-print-service/internal/codepage"
	"thermal-print-service/internal/model"
)

// BackendKind tags a transport family and fixes its place in the chain
type BackendKind string

const (
	KindProtocolClient BackendKind = "protocol-client"
	KindSpooler        BackendKind = "spooler"
	KindRawDevice      BackendKind = "raw-device"
	KindLegacy         BackendKind = "legacy"
)

var kindPriority = map[BackendKind]int{
	KindProtocolClient: 0,
	KindSpooler:        1,
	KindRawDevice:      2,
	KindLegacy:         3,
}

// Priority returns the kind's position in the chain. Unknown kinds sort last.
func (k BackendKind) Priority() int {
	if p, ok := kindPriority[k]; ok {
		return p
	}
	return len(kindPriority)
}

// Backend is one way of getting bytes to a printer
type Backend interface {
	Name() string
	Kind() BackendKind
	// Resolve lists destinations for this attempt
	Resolve(ctx context.Context) ([]model.Destination, error)
	// Profiles lists the code pages to try for text jobs, in order
	Profiles() []codepage.Profile
	// Send delivers a complete command stream in one operation
	Send(ctx context.Context, dest model.Destination, payload []byte) error
}

// Chain is an ordered list of backends
type Chain []Backend

// NewChain orders backends by kind priority. Backends of the same kind
// keep the order they were given in.
func NewChain(backends ...Backend) Chain {
	chain := make(Chain, 0, len(backends))
	for _, b := range backends {
		if b != nil {
			chain = append(chain, b)
		}
	}
	sort.SliceStable(chain, func(i, j int) bool {
		return chain[i].Kind().Priority() < chain[j].Kind().Priority()
	})
	return chain
}

// Names returns backend names in chain order
func (c Chain) Names() []string {
	names := make([]string, len(c))
	for i, b := range c {
		names[i] = b.Name()
	}
	return names
}
