// internal/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"thermal-print-service/internal/config"
	"thermal-print-service/internal/handler"
	"thermal-print-service/internal/middleware"
	"thermal-print-service/internal/service"
	"thermal-print-service/internal/utils"
)

// Router holds all dependencies for routing
type Router struct {
	config       *config.Config
	logger       *zap.Logger
	printService *service.PrintService
	eventBus     *handler.EventBus
	wsHandler    *handler.WebSocketHandler
}

// NewRouter creates a new router instance
func NewRouter(
	config *config.Config,
	logger *zap.Logger,
	printService *service.PrintService,
	eventBus *handler.EventBus,
) *Router {
	return &Router{
		config:       config,
		logger:       logger,
		printService: printService,
		eventBus:     eventBus,
	}
}

// SetupRouter creates and configures the Gin router
func (r *Router) SetupRouter() *gin.Engine {
	if r.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	r.addMiddleware(router)
	r.addRoutes(router)

	return router
}

// WebSocketHandler returns the attempt stream handler once routes are set up
func (r *Router) WebSocketHandler() *handler.WebSocketHandler {
	return r.wsHandler
}

// addMiddleware adds middleware to the router
func (r *Router) addMiddleware(router *gin.Engine) {
	router.Use(middleware.RecoveryMiddleware(r.logger))
	router.Use(middleware.RequestIDMiddleware())

	serviceLogger := utils.NewServiceLogger(r.logger, "http-server")
	router.Use(middleware.LoggingMiddleware(serviceLogger))

	router.Use(middleware.CORSMiddleware(&r.config.Server))

	r.logger.Debug("Middleware configured")
}

// addRoutes sets up all application routes. Paths are unversioned to
// stay compatible with existing web clients.
func (r *Router) addRoutes(router *gin.Engine) {
	healthHandler := handler.NewHealthHandler(r.printService, r.config, r.logger)
	printHandler := handler.NewPrintHandler(r.printService, r.config.Server.MaxBodyBytes, r.logger)
	printerHandler := handler.NewPrinterHandler(r.printService, r.logger)
	r.wsHandler = handler.NewWebSocketHandler(r.eventBus, r.logger)

	root := router.Group("")
	healthHandler.RegisterRoutes(root)
	printHandler.RegisterRoutes(root)
	printerHandler.RegisterRoutes(root)
	r.wsHandler.RegisterRoutes(root)

	r.logger.Info("All routes configured successfully")
}
