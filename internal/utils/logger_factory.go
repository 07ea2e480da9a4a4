package utils

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logLevelDebugValueConstant           = "debug"
	logLevelInfoValueConstant            = "info"
	logLevelWarnValueConstant            = "warn"
	logLevelErrorValueConstant           = "error"
	logFormatStructuredValueConstant     = "structured"
	logFormatConsoleValueConstant        = "console"
	structuredZapEncodingConstant        = "json"
	consoleZapEncodingConstant           = "console"
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
)

// LogLevel enumerates supported logging granularities.
type LogLevel string

// Supported log levels.
const (
	LogLevelDebug LogLevel = LogLevel(logLevelDebugValueConstant)
	LogLevelInfo  LogLevel = LogLevel(logLevelInfoValueConstant)
	LogLevelWarn  LogLevel = LogLevel(logLevelWarnValueConstant)
	LogLevelError LogLevel = LogLevel(logLevelErrorValueConstant)
)

// LogFormat enumerates supported logger encodings.
type LogFormat string

// Supported log formats.
const (
	LogFormatStructured LogFormat = LogFormat(logFormatStructuredValueConstant)
	LogFormatConsole    LogFormat = LogFormat(logFormatConsoleValueConstant)
)

var zapLevelByLogLevel = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

var zapEncodingByLogFormat = map[LogFormat]string{
	LogFormatStructured: structuredZapEncodingConstant,
	LogFormatConsole:    consoleZapEncodingConstant,
}

// LoggerFactory builds zap.Logger instances with consistent configuration.
type LoggerFactory struct{}

// NewLoggerFactory constructs a logger factory.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{}
}

// CreateLogger produces a zap.Logger honoring the requested level and format.
func (factory *LoggerFactory) CreateLogger(requestedLevel LogLevel, requestedFormat LogFormat) (*zap.Logger, error) {
	zapLevel, levelSupported := zapLevelByLogLevel[requestedLevel]
	if !levelSupported {
		return nil, fmt.Errorf(unsupportedLogLevelTemplateConstant, requestedLevel)
	}

	zapEncoding, formatSupported := zapEncodingByLogFormat[requestedFormat]
	if !formatSupported {
		return nil, fmt.Errorf(unsupportedLogFormatTemplateConstant, requestedFormat)
	}

	loggerConfiguration := zap.NewProductionConfig()
	loggerConfiguration.Level = zap.NewAtomicLevelAt(zapLevel)
	loggerConfiguration.Encoding = zapEncoding
	if requestedFormat == LogFormatConsole {
		loggerConfiguration.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	return loggerConfiguration.Build()
}
