// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"go.uber.org/zap"

	"thermal-print-service/internal/config"
	"thermal-print-service/internal/handler"
	"thermal-print-service/internal/routes"
	"thermal-print-service/internal/service"
	"thermal-print-service/internal/utils"
)

// Application represents the main application
type Application struct {
	config *config.Config
	logger *zap.Logger
	server *http.Server

	eventBus     *handler.EventBus
	stopEvents   context.CancelFunc
	printService *service.PrintService
	wsHandler    *handler.WebSocketHandler
}

func main() {
	app, err := NewApplication()
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := app.Start(); err != nil {
		app.logger.Fatal("Failed to start application", zap.Error(err))
	}
}

// NewApplication creates a new application instance
func NewApplication() (*Application, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	serviceLogger := utils.NewServiceLogger(logger, cfg.App.Name)
	serviceLogger.LogServiceStart(cfg.App.Version,
		zap.String("platform", runtime.GOOS),
		zap.String("environment", cfg.App.Environment),
	)

	app := &Application{
		config: cfg,
		logger: logger,
	}

	app.initializeEventBus()

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initializeServer()
	return app, nil
}

// initializeEventBus starts fanning dispatch events out to stream clients
func (app *Application) initializeEventBus() {
	ctx, cancel := context.WithCancel(context.Background())
	app.eventBus = handler.NewEventBus(app.logger)
	app.stopEvents = cancel
	go app.eventBus.Start(ctx)
}

// initializeServices builds the backend chain for this platform
func (app *Application) initializeServices() error {
	printService, err := service.NewFromConfig(app.config, runtime.GOOS, app.eventBus, app.logger)
	if err != nil {
		return err
	}
	app.printService = printService

	app.logger.Info("Print service initialized",
		zap.Strings("backends", printService.Backends()),
		zap.Strings("accepted_names", app.config.Printer.AcceptedNames),
	)
	return nil
}

// initializeServer sets up HTTP server and routes
func (app *Application) initializeServer() {
	routerManager := routes.NewRouter(app.config, app.logger, app.printService, app.eventBus)
	router := routerManager.SetupRouter()
	app.wsHandler = routerManager.WebSocketHandler()

	app.server = &http.Server{
		Addr:         app.config.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  app.config.Server.IdleTimeout,
	}

	app.logger.Info("HTTP server initialized",
		zap.String("address", app.config.GetServerAddr()),
		zap.Bool("tls_enabled", app.config.Server.TLS.Enabled),
	)
}

// useTLS reports whether TLS is enabled and both files are present
func (app *Application) useTLS() bool {
	tls := app.config.Server.TLS
	if !tls.Enabled {
		return false
	}
	for _, file := range []string{tls.CertFile, tls.KeyFile} {
		if _, err := os.Stat(file); err != nil {
			app.logger.Warn("TLS file unavailable, serving plain HTTP",
				zap.String("file", file),
				zap.Error(err),
			)
			return false
		}
	}
	return true
}

// Start serves HTTP until a shutdown signal arrives
func (app *Application) Start() error {
	secure := app.useTLS()

	go func() {
		app.logger.Info("Starting HTTP server",
			zap.String("address", app.server.Addr),
			zap.Bool("tls", secure),
		)

		var err error
		if secure {
			err = app.server.ListenAndServeTLS(
				app.config.Server.TLS.CertFile,
				app.config.Server.TLS.KeyFile,
			)
		} else {
			err = app.server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	app.waitForShutdown()
	return nil
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func (app *Application) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	app.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	app.shutdown()
}

// shutdown performs graceful shutdown
func (app *Application) shutdown() {
	serviceLogger := utils.NewServiceLogger(app.logger, app.config.App.Name)
	serviceLogger.LogServiceStop("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Hijacked stream connections are not closed by Shutdown
	if app.wsHandler != nil {
		app.wsHandler.Shutdown()
	}

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		app.logger.Info("HTTP server stopped")
	}

	app.stopEvents()

	if err := app.printService.Close(); err != nil {
		app.logger.Error("Print service close error", zap.Error(err))
	}

	app.logger.Info("Application shutdown completed")

	if err := utils.CloseLogger(app.logger); err != nil {
		fmt.Printf("Logger close error: %v\n", err)
	}
}
