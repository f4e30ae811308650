// internal/utils/logger.go
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"thermal-print-service/internal/config"
	"thermal-print-service/internal/model"
)

const defaultLogFile = "./logs/thermal-print-service.log"

// LoggerManager manages application logging
type LoggerManager struct {
	config *config.LoggingConfig
}

// NewLogger creates a new logger instance based on configuration
func NewLogger(cfg *config.LoggingConfig) (*zap.Logger, error) {
	manager := &LoggerManager{config: cfg}

	logger, err := manager.createLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

func (lm *LoggerManager) createLogger() (*zap.Logger, error) {
	encoderConfig := lm.getEncoderConfig()

	var encoder zapcore.Encoder
	switch lm.config.Format {
	case "console":
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	writeSyncer, err := lm.getWriteSyncer()
	if err != nil {
		return nil, fmt.Errorf("failed to create write syncer: %w", err)
	}

	level, err := zapcore.ParseLevel(lm.config.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	core := zapcore.NewCore(encoder, writeSyncer, level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func (lm *LoggerManager) getEncoderConfig() zapcore.EncoderConfig {
	config := zap.NewProductionEncoderConfig()

	config.TimeKey = "timestamp"
	config.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
	config.LevelKey = "level"
	config.EncodeLevel = zapcore.LowercaseLevelEncoder
	config.CallerKey = "caller"
	config.EncodeCaller = zapcore.ShortCallerEncoder
	config.MessageKey = "message"
	config.StacktraceKey = "stacktrace"
	config.EncodeDuration = zapcore.MillisDurationEncoder

	if lm.config.Format == "console" {
		config.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
		config.EncodeDuration = zapcore.StringDurationEncoder
	}

	return config
}

// getWriteSyncer returns stdout, stderr or a rotated log file
func (lm *LoggerManager) getWriteSyncer() (zapcore.WriteSyncer, error) {
	switch lm.config.Output {
	case "stdout":
		return zapcore.AddSync(os.Stdout), nil
	case "stderr":
		return zapcore.AddSync(os.Stderr), nil
	}

	filename := lm.config.Output
	if filename == "" {
		filename = defaultLogFile
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   filename,
		MaxSize:    lm.config.MaxSize, // MB
		MaxBackups: lm.config.MaxBackups,
		MaxAge:     lm.config.MaxAge, // days
		Compress:   lm.config.Compress,
	}), nil
}

// AttemptLogger logs the steps of a single dispatch
type AttemptLogger struct {
	logger     *zap.Logger
	dispatchID string
	startTime  time.Time
}

// NewAttemptLogger creates a dispatch-scoped logger
func NewAttemptLogger(baseLogger *zap.Logger, dispatchID string, kind model.JobKind) *AttemptLogger {
	return &AttemptLogger{
		logger: baseLogger.With(
			zap.String("dispatch_id", dispatchID),
			zap.String("job_kind", string(kind)),
			zap.String("component", "dispatch"),
		),
		dispatchID: dispatchID,
		startTime:  time.Now(),
	}
}

// Start logs the beginning of the dispatch
func (al *AttemptLogger) Start(fields ...zap.Field) {
	al.logger.Info("Dispatch started", fields...)
}

// Attempt logs one backend × encoding × destination try
func (al *AttemptLogger) Attempt(result model.AttemptResult) {
	fields := []zap.Field{
		zap.String("backend", result.Backend),
		zap.String("outcome", string(result.Outcome)),
		zap.Duration("duration", result.Duration),
	}
	if result.Destination != nil {
		fields = append(fields, zap.Stringer("destination", result.Destination))
	}
	if result.Encoding != "" {
		fields = append(fields, zap.String("encoding", result.Encoding))
	}
	if result.RequestedEncoding != "" && result.RequestedEncoding != result.Encoding {
		fields = append(fields, zap.String("requested_encoding", result.RequestedEncoding))
	}
	if result.Degraded {
		fields = append(fields, zap.Bool("degraded", true))
	}

	if result.Succeeded() {
		al.logger.Info("Print attempt succeeded", fields...)
		return
	}

	fields = append(fields, zap.String("reason", string(result.Reason)))
	if result.Err != nil {
		fields = append(fields, zap.Error(result.Err))
	}
	al.logger.Warn("Print attempt failed", fields...)
}

// Degraded logs that text could not be encoded losslessly
func (al *AttemptLogger) Degraded(backend, requested string) {
	al.logger.Warn("Text transliterated to ASCII",
		zap.String("backend", backend),
		zap.String("requested_encoding", requested),
	)
}

// Success logs successful completion
func (al *AttemptLogger) Success(attempts int, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.Duration("duration", time.Since(al.startTime)),
		zap.Int("attempts", attempts),
	}, fields...)
	al.logger.Info("Dispatch completed", allFields...)
}

// Failure logs exhaustion of the chain
func (al *AttemptLogger) Failure(err error, attempts int) {
	al.logger.Error("Dispatch failed",
		zap.Duration("duration", time.Since(al.startTime)),
		zap.Int("attempts", attempts),
		zap.Error(err),
	)
}

// ServiceLogger provides service-level logging functionality
type ServiceLogger struct {
	*zap.Logger
	serviceName string
}

// NewServiceLogger creates a service-specific logger
func NewServiceLogger(baseLogger *zap.Logger, serviceName string) *ServiceLogger {
	return &ServiceLogger{
		Logger:      baseLogger.With(zap.String("service", serviceName)),
		serviceName: serviceName,
	}
}

// LogServiceStart logs service startup
func (sl *ServiceLogger) LogServiceStart(version string, fields ...zap.Field) {
	sl.Info("Service starting", append([]zap.Field{zap.String("version", version)}, fields...)...)
}

// LogServiceStop logs service shutdown
func (sl *ServiceLogger) LogServiceStop(reason string) {
	sl.Info("Service stopping", zap.String("reason", reason))
}

// LogAPIRequest logs HTTP API requests; 4xx at warn and 5xx at error level
func (sl *ServiceLogger) LogAPIRequest(method, path, userAgent, clientIP string, statusCode int, duration time.Duration, fields ...zap.Field) {
	level := zapcore.InfoLevel
	if statusCode >= 400 {
		level = zapcore.WarnLevel
	}
	if statusCode >= 500 {
		level = zapcore.ErrorLevel
	}

	if ce := sl.Check(level, "API request"); ce != nil {
		ce.Write(append([]zap.Field{
			zap.String("method", method),
			zap.String("path", path),
			zap.String("user_agent", userAgent),
			zap.String("client_ip", clientIP),
			zap.Int("status_code", statusCode),
			zap.Duration("duration", duration),
		}, fields...)...)
	}
}

// LoggerWithRequestID adds request ID to logger
func LoggerWithRequestID(logger *zap.Logger, requestID string) *zap.Logger {
	return logger.With(zap.String("request_id", requestID))
}

// LogError is a helper function for consistent error logging
func LogError(logger *zap.Logger, message string, err error, fields ...zap.Field) {
	logger.Error(message, append([]zap.Field{zap.Error(err)}, fields...)...)
}

// CloseLogger flushes buffered entries
func CloseLogger(logger *zap.Logger) error {
	return logger.Sync()
}
