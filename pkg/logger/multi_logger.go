package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogCategory represents different event log categories
type LogCategory string

const (
	CategoryResolve  LogCategory = "resolve"  // Platform probe events (JSON)
	CategoryPipeline LogCategory = "pipeline" // Fetch pipeline events (JSON)
	CategoryError    LogCategory = "error"    // Application errors (JSON)
)

// MultiLogger provides categorized event logging with one dated output file
// per category.
type MultiLogger struct {
	loggers map[LogCategory]*zap.Logger
	config  MultiLoggerConfig
	mu      sync.RWMutex
}

// MultiLoggerConfig contains configuration for multi-output logging
type MultiLoggerConfig struct {
	Level   string // debug, info, warn, error
	LogsDir string // Directory for log files
}

// NewMultiLogger creates a new multi-output logger
func NewMultiLogger(config MultiLoggerConfig) (*MultiLogger, error) {
	if config.LogsDir == "" {
		return nil, fmt.Errorf("logs_dir must be specified")
	}

	if err := os.MkdirAll(config.LogsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	ml := &MultiLogger{
		loggers: make(map[LogCategory]*zap.Logger),
		config:  config,
	}

	level := parseLevel(config.Level)

	for _, category := range []LogCategory{CategoryResolve, CategoryPipeline} {
		l, err := ml.createStructuredLogger(category, level)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s logger: %w", category, err)
		}
		ml.loggers[category] = l
	}

	errorLogger, err := ml.createStructuredLogger(CategoryError, zapcore.ErrorLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create error logger: %w", err)
	}
	ml.loggers[CategoryError] = errorLogger

	return ml, nil
}

// createStructuredLogger creates a JSON-formatted logger for a category
func (ml *MultiLogger) createStructuredLogger(category LogCategory, level zapcore.Level) (*zap.Logger, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.MessageKey = "msg"
	encoderConfig.LevelKey = "level"
	encoderConfig.CallerKey = "" // cleaner event records

	encoder := zapcore.NewJSONEncoder(encoderConfig)

	logPath := ml.categoryLogPath(category)
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(file), level)
	return zap.New(core), nil
}

// categoryLogPath generates a log file path for a category with current date
func (ml *MultiLogger) categoryLogPath(category LogCategory) string {
	dateStr := time.Now().Format("20060102")
	return filepath.Join(ml.config.LogsDir, fmt.Sprintf("%s-%s.log", category, dateStr))
}

// GetLogger returns the structured logger for a specific category
func (ml *MultiLogger) GetLogger(category LogCategory) *zap.Logger {
	ml.mu.RLock()
	defer ml.mu.RUnlock()

	if logger, ok := ml.loggers[category]; ok {
		return logger
	}
	return ml.loggers[CategoryError]
}

// LogResolveEvent logs one platform probe event with structured data
func (ml *MultiLogger) LogResolveEvent(event string, fields ...zap.Field) {
	ml.GetLogger(CategoryResolve).Info(event, fields...)
}

// LogPipelineEvent logs one fetch pipeline event with structured data
func (ml *MultiLogger) LogPipelineEvent(event string, fields ...zap.Field) {
	ml.GetLogger(CategoryPipeline).Info(event, fields...)
}

// LogAppError logs an application-level error
func (ml *MultiLogger) LogAppError(msg string, fields ...zap.Field) {
	ml.GetLogger(CategoryError).Error(msg, fields...)
}

// Sync flushes all loggers
func (ml *MultiLogger) Sync() error {
	ml.mu.RLock()
	defer ml.mu.RUnlock()

	var lastErr error
	for _, logger := range ml.loggers {
		if err := logger.Sync(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
