// Package dispatchtest provides a scriptable dispatch.Backend for tests.
package dispatchtest

import (
	"context"
	"sync"

	"thermal-print-service/internal/codepage"
	"thermal-print-service/internal/dispatch"
	"thermal-print-service/internal/model"
)

// Send is one recorded delivery
type Send struct {
	Destination model.Destination
	Payload     []byte
}

// Backend is a dispatch.Backend whose behavior is set by its fields
type Backend struct {
	BackendName  string
	BackendKind  dispatch.BackendKind
	Destinations []model.Destination
	ResolveErr   error
	ProfileList  []codepage.Profile
	// SendFunc decides the result of each send; nil means success
	SendFunc func(ctx context.Context, dest model.Destination, payload []byte) error

	mu    sync.Mutex
	sends []Send
}

// NewBackend creates a fake backend resolving the given destinations
func NewBackend(name string, kind dispatch.BackendKind, dests ...model.Destination) *Backend {
	return &Backend{BackendName: name, BackendKind: kind, Destinations: dests}
}

// FailWith makes every send fail with err
func (b *Backend) FailWith(err error) *Backend {
	b.SendFunc = func(context.Context, model.Destination, []byte) error { return err }
	return b
}

func (b *Backend) Name() string                 { return b.BackendName }
func (b *Backend) Kind() dispatch.BackendKind   { return b.BackendKind }
func (b *Backend) Profiles() []codepage.Profile { return b.ProfileList }

func (b *Backend) Resolve(context.Context) ([]model.Destination, error) {
	if b.ResolveErr != nil {
		return nil, b.ResolveErr
	}
	return append([]model.Destination(nil), b.Destinations...), nil
}

func (b *Backend) Send(ctx context.Context, dest model.Destination, payload []byte) error {
	b.mu.Lock()
	b.sends = append(b.sends, Send{Destination: dest, Payload: append([]byte(nil), payload...)})
	b.mu.Unlock()

	if b.SendFunc == nil {
		return nil
	}
	return b.SendFunc(ctx, dest, payload)
}

// Sends returns the recorded deliveries
func (b *Backend) Sends() []Send {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Send(nil), b.sends...)
}

// Device returns a device-path destination
func Device(path string) model.Destination {
	return model.Destination{Kind: model.DestinationDevicePath, Identifier: path}
}

// Queue returns a queue destination
func Queue(name string) model.Destination {
	return model.Destination{Kind: model.DestinationQueueName, Identifier: name}
}
