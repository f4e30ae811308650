// internal/resolver/resolver.go
package resolver

import (
	"context"

	"thermal-print-service/internal/model"
)

// Resolver lists the concrete destinations a backend should try, in the
// order they should be tried. An empty result is not an error.
type Resolver interface {
	Resolve(ctx context.Context) ([]model.Destination, error)
	Name() string
}

// Static always returns the same destinations
type Static struct {
	name         string
	destinations []model.Destination
}

// NewStatic creates a resolver over a fixed destination list
func NewStatic(name string, destinations ...model.Destination) *Static {
	return &Static{name: name, destinations: destinations}
}

func (s *Static) Name() string { return s.name }

func (s *Static) Resolve(context.Context) ([]model.Destination, error) {
	return append([]model.Destination(nil), s.destinations...), nil
}
