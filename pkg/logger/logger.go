package logger

import (
	"log"
	"os"
	"strings"
)

// LogLevel constants
const (
	LogLevelError = "error"
	LogLevelWarn  = "warn"
	LogLevelInfo  = "info"
	LogLevelDebug = "debug"
	LogLevelTrace = "trace"
)

// LoggingConfig represents the logging configuration
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Global logging configuration
var GlobalLogging *LoggingConfig

// Init installs the global logging configuration and redirects output
// to the configured file if one is set.
func Init(config *LoggingConfig) {
	GlobalLogging = config

	if config.File != "" {
		// 0600 permissions: log files may contain device addresses
		output, err := os.OpenFile(config.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			log.Printf("Failed to open log file %s: %v", config.File, err)
			return
		}
		log.SetOutput(output)
	}
}

// shouldLog checks if a message should be logged based on current level
func shouldLog(currentLevel, messageLevel string) bool {
	levels := []string{LogLevelError, LogLevelWarn, LogLevelInfo, LogLevelDebug, LogLevelTrace}

	currentIndex := -1
	messageIndex := -1

	for i, level := range levels {
		if level == currentLevel {
			currentIndex = i
		}
		if level == messageLevel {
			messageIndex = i
		}
	}

	// If either level is not found, default to allowing the message
	if currentIndex == -1 || messageIndex == -1 {
		return true
	}

	return messageIndex <= currentIndex
}

func enabled(messageLevel string) bool {
	if GlobalLogging == nil {
		return messageLevel != LogLevelDebug && messageLevel != LogLevelTrace
	}
	return shouldLog(strings.ToLower(GlobalLogging.Level), messageLevel)
}

// LogError logs error messages
func LogError(format string, args ...interface{}) {
	if enabled(LogLevelError) {
		log.Printf("ERROR "+format, args...)
	}
}

// LogWarn logs warning messages
func LogWarn(format string, args ...interface{}) {
	if enabled(LogLevelWarn) {
		log.Printf("WARN  "+format, args...)
	}
}

// LogInfo logs info messages
func LogInfo(format string, args ...interface{}) {
	if enabled(LogLevelInfo) {
		log.Printf("INFO  "+format, args...)
	}
}

// LogDebug logs debug messages
func LogDebug(format string, args ...interface{}) {
	if enabled(LogLevelDebug) {
		log.Printf("DEBUG "+format, args...)
	}
}

// LogTrace logs trace messages
func LogTrace(format string, args ...interface{}) {
	if enabled(LogLevelTrace) {
		log.Printf("TRACE "+format, args...)
	}
}

// IsTraceEnabled checks if trace logging is enabled
func IsTraceEnabled() bool {
	return enabled(LogLevelTrace)
}
