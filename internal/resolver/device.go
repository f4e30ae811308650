// internal/resolver/device.go
package resolver

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"thermal-print-service/internal/model"
)

// DevicePathResolver finds printer device files on Linux. Configured
// paths come first in configured order, then anything else matched by
// the glob pattern.
type DevicePathResolver struct {
	paths       []string
	globPattern string
	stat        func(string) (os.FileInfo, error)
	glob        func(string) ([]string, error)
	logger      *zap.Logger
}

// NewDevicePathResolver creates a resolver over device paths
func NewDevicePathResolver(paths []string, globPattern string, logger *zap.Logger) *DevicePathResolver {
	return &DevicePathResolver{
		paths:       paths,
		globPattern: globPattern,
		stat:        os.Stat,
		glob:        filepath.Glob,
		logger:      logger.With(zap.String("resolver", "device-path")),
	}
}

func (r *DevicePathResolver) Name() string { return "device-path" }

// Resolve returns the device paths that currently exist
func (r *DevicePathResolver) Resolve(ctx context.Context) ([]model.Destination, error) {
	seen := make(map[string]bool)
	var found []model.Destination

	add := func(path string) {
		if seen[path] {
			return
		}
		seen[path] = true
		if _, err := r.stat(path); err != nil {
			return
		}
		found = append(found, model.Destination{
			Kind:       model.DestinationDevicePath,
			Identifier: path,
			Label:      filepath.Base(path),
		})
	}

	for _, path := range r.paths {
		add(path)
	}

	if r.globPattern != "" {
		matches, err := r.glob(r.globPattern)
		if err != nil {
			r.logger.Warn("Invalid device glob pattern", zap.String("pattern", r.globPattern), zap.Error(err))
		}
		sort.Strings(matches)
		for _, path := range matches {
			add(path)
		}
	}

	r.logger.Debug("Device paths resolved", zap.Int("count", len(found)))
	return found, nil
}
