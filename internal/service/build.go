// internal/service/build.go
package service

import (
	"fmt"

	"go.uber.org/zap"

	"thermal-print-service/internal/backend"
	"thermal-print-service/internal/config"
	"thermal-print-service/internal/dispatch"
	"thermal-print-service/internal/driver/escpos"
	"thermal-print-service/internal/execx"
	"thermal-print-service/internal/resolver"
)

// NewFromConfig wires the backend chain for goos and returns a ready print
// service. events may be nil.
func NewFromConfig(cfg *config.Config, goos string, events dispatch.EventHandler, logger *zap.Logger) (*PrintService, error) {
	chain, err := backend.BuildChain(goos, cfg, backend.Deps{
		Runner:    execx.NewCommandRunner(cfg.Printer.CommandTimeout, logger),
		NameCache: resolver.NewNameCache(),
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build backend chain: %w", err)
	}

	dispatcher := dispatch.NewDispatcher(escpos.NewBuilder(), cfg.Printer.AttemptTimeout, logger)
	if events != nil {
		dispatcher.SetEventHandler(events)
	}

	return NewPrintService(dispatcher, chain, Options{
		DefaultTitle: cfg.Printer.DefaultTitle,
		MaxJobBytes:  cfg.Printer.MaxJobBytes,
		LockFile:     cfg.Printer.LockFile,
		LockTimeout:  cfg.Printer.LockTimeout,
	}, logger), nil
}
