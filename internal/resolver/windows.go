// internal/resolver/windows.go
package resolver

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"thermal-print-service/internal/execx"
	"thermal-print-service/internal/model"
)

// DefaultWindowsEnumerateCommand lists installed printers, one per line
var DefaultWindowsEnumerateCommand = []string{
	"powershell", "-NoProfile", "-NonInteractive", "-Command",
	"Get-Printer | Select-Object -ExpandProperty Name",
}

// WindowsPrinterResolver finds the installed Windows printer to hand to
// the raw print helper. The first accepted printer found is cached for
// the life of the process.
type WindowsPrinterResolver struct {
	runner   execx.Runner
	command  []string
	accepted []string
	cache    *NameCache
	logger   *zap.Logger
}

// NewWindowsPrinterResolver creates a resolver. command defaults to
// DefaultWindowsEnumerateCommand.
func NewWindowsPrinterResolver(runner execx.Runner, command, accepted []string, cache *NameCache, logger *zap.Logger) *WindowsPrinterResolver {
	if len(command) == 0 {
		command = DefaultWindowsEnumerateCommand
	}
	if cache == nil {
		cache = NewNameCache()
	}
	return &WindowsPrinterResolver{
		runner:   runner,
		command:  command,
		accepted: accepted,
		cache:    cache,
		logger:   logger.With(zap.String("resolver", "windows")),
	}
}

func (r *WindowsPrinterResolver) Name() string { return "windows-printer" }

// Resolve returns the cached printer, or enumerates and caches the first
// printer whose name contains an accepted name.
func (r *WindowsPrinterResolver) Resolve(ctx context.Context) ([]model.Destination, error) {
	if name, ok := r.cache.Load(); ok {
		return []model.Destination{platformDestination(name)}, nil
	}

	out, err := r.runner.Run(ctx, r.command[0], r.command[1:]...)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate printers: %w", err)
	}

	for _, name := range ParseNameList(out.Stdout) {
		if matchesAny(name, r.accepted) {
			effective := r.cache.Store(name)
			r.logger.Info("Printer selected", zap.String("printer", effective))
			return []model.Destination{platformDestination(effective)}, nil
		}
	}

	r.logger.Debug("No accepted printer installed", zap.Strings("accepted", r.accepted))
	return nil, nil
}

// ParseNameList reads a one-name-per-line listing, skipping blank lines
// and the "Name" column header printed by wmic.
func ParseNameList(output []byte) []string {
	var names []string
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.EqualFold(line, "name") || strings.HasPrefix(line, "----") {
			continue
		}
		names = append(names, line)
	}
	return names
}

func matchesAny(name string, accepted []string) bool {
	if len(accepted) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, want := range accepted {
		if strings.Contains(lower, strings.ToLower(want)) {
			return true
		}
	}
	return false
}

func platformDestination(name string) model.Destination {
	return model.Destination{
		Kind:       model.DestinationPlatformCommand,
		Identifier: name,
		Label:      name,
	}
}
